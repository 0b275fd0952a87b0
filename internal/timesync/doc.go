// Package timesync establishes the wall-clock time for a wake cycle.
//
// Sync queries an NTP server with a bounded timeout, corrects the local clock
// by the measured offset, and converts the result into local time using a
// POSIX TZ rule such as "EST5EDT,M3.2.0,M11.1.0". Rules are evaluated by this
// package rather than the system zoneinfo database so the board shows the same
// time as the device build regardless of the host's /etc/localtime.
package timesync
