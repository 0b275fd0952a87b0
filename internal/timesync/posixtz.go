package timesync

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRule reports a malformed POSIX TZ string.
var ErrInvalidRule = errors.New("invalid timezone rule")

const (
	secondsPerDay      = 24 * 60 * 60
	defaultTransition  = 2 * 60 * 60
	defaultDSTRuleText = "M3.2.0,M11.1.0"
)

type ruleKind int

const (
	ruleJulian    ruleKind = iota // Jn: 1..365, February 29 never counted
	ruleDayOfYear                 // n: 0..365, February 29 counted
	ruleMonthWeek                 // Mm.w.d
)

type transition struct {
	kind  ruleKind
	day   int
	week  int
	month int
	// seconds after local midnight; may be negative or exceed a day
	at int
}

// Rule is a parsed POSIX TZ rule. Offsets are seconds east of UTC.
type Rule struct {
	StdName   string
	StdOffset int
	DSTName   string
	DSTOffset int

	start transition
	end   transition
	text  string
}

// HasDST reports whether the rule defines daylight saving time.
func (r Rule) HasDST() bool { return r.DSTName != "" }

func (r Rule) String() string { return r.text }

// IsZero reports whether r is the zero Rule rather than a parsed one.
func (r Rule) IsZero() bool { return r.text == "" }

// UTC is the rule used when no timezone is configured and offsets are zero.
var UTC = Rule{StdName: "UTC", text: "UTC0"}

// ParseRule parses a POSIX TZ string:
//
//	std offset [dst [offset] [,start[/time],end[/time]]]
//
// A dst name without transition rules uses the US rules M3.2.0,M11.1.0.
func ParseRule(text string) (Rule, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Rule{}, fmt.Errorf("%w: empty", ErrInvalidRule)
	}
	p := &ruleParser{src: text}
	r := Rule{text: text}

	var ok bool
	if r.StdName, ok = p.name(); !ok {
		return Rule{}, p.fail("standard zone name")
	}
	stdOffset, ok := p.offset()
	if !ok {
		return Rule{}, p.fail("standard offset")
	}
	// POSIX offsets are west of UTC; flip to east.
	r.StdOffset = -stdOffset
	if p.done() {
		return r, nil
	}

	if r.DSTName, ok = p.name(); !ok {
		return Rule{}, p.fail("daylight zone name")
	}
	r.DSTOffset = r.StdOffset + 3600
	if !p.done() && p.peek() != ',' && p.peek() != ';' {
		dstOffset, ok := p.offset()
		if !ok {
			return Rule{}, p.fail("daylight offset")
		}
		r.DSTOffset = -dstOffset
	}

	if p.done() {
		p = &ruleParser{src: "," + defaultDSTRuleText}
	}
	if c := p.peek(); c != ',' && c != ';' {
		return Rule{}, p.fail("',' before transition rules")
	}
	p.pos++
	if r.start, ok = p.transition(); !ok {
		return Rule{}, p.fail("start rule")
	}
	if p.peek() != ',' {
		return Rule{}, p.fail("',' between transition rules")
	}
	p.pos++
	if r.end, ok = p.transition(); !ok {
		return Rule{}, p.fail("end rule")
	}
	if !p.done() {
		return Rule{}, p.fail("end of rule")
	}
	return r, nil
}

// RuleFromOffsets builds a rule from fixed UTC and daylight offsets the way
// the device runtime does when no TZ string is configured: a "UTC" standard
// zone and, when dst is non-zero, a "DST" zone on the default US transitions.
func RuleFromOffsets(gmt, dst time.Duration) Rule {
	std := int(gmt / time.Second)
	text := "UTC" + posixOffset(-std)
	if dst != 0 {
		text += "DST" + posixOffset(-(std + int(dst/time.Second)))
	}
	r, err := ParseRule(text)
	if err != nil {
		return UTC
	}
	return r
}

func posixOffset(west int) string {
	sign := ""
	if west < 0 {
		sign = "-"
		west = -west
	}
	h, m, s := west/3600, (west%3600)/60, west%60
	switch {
	case s != 0:
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	case m != 0:
		return fmt.Sprintf("%s%d:%02d", sign, h, m)
	default:
		return fmt.Sprintf("%s%d", sign, h)
	}
}

// Lookup returns the zone abbreviation, offset east of UTC, and DST flag in
// effect at instant t.
func (r Rule) Lookup(t time.Time) (string, int, bool) {
	if !r.HasDST() {
		return r.StdName, r.StdOffset, false
	}
	unix := t.Unix()
	year := t.UTC().Add(time.Duration(r.StdOffset) * time.Second).Year()

	start := r.instant(year, r.start, r.StdOffset)
	end := r.instant(year, r.end, r.DSTOffset)

	var dst bool
	if start < end {
		dst = unix >= start && unix < end
	} else {
		// Southern hemisphere: DST spans the new year.
		dst = !(unix >= end && unix < start)
	}
	if dst {
		return r.DSTName, r.DSTOffset, true
	}
	return r.StdName, r.StdOffset, false
}

// In converts t to the local time described by the rule.
func (r Rule) In(t time.Time) time.Time {
	name, offset, _ := r.Lookup(t)
	return t.In(time.FixedZone(name, offset))
}

// Resolve returns the instant at which clocks in the zone read the given
// date and time. A reading skipped by a forward jump resolves to just past
// the gap; a reading repeated by a backward jump resolves to standard time.
func (r Rule) Resolve(year int, month time.Month, day, hour, minute int) time.Time {
	wall := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	_, offset, _ := r.Lookup(wall.Add(-time.Duration(r.StdOffset) * time.Second))
	at := wall.Add(-time.Duration(offset) * time.Second)
	if _, actual, _ := r.Lookup(at); actual != offset {
		at = wall.Add(-time.Duration(actual) * time.Second)
	}
	return r.In(at)
}

// instant returns the Unix time of a transition in year, where the
// transition's wall time is expressed in the zone with the given offset.
func (r Rule) instant(year int, tr transition, offset int) int64 {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	day := yearDay(year, tr)
	return jan1.Unix() + int64(day)*secondsPerDay + int64(tr.at) - int64(offset)
}

// yearDay returns the zero-based day of the year a transition falls on.
func yearDay(year int, tr transition) int {
	switch tr.kind {
	case ruleJulian:
		day := tr.day - 1
		if isLeap(year) && tr.day >= 60 {
			day++
		}
		return day
	case ruleDayOfYear:
		return tr.day
	default:
		first := time.Date(year, time.Month(tr.month), 1, 0, 0, 0, 0, time.UTC)
		mday := (tr.day-int(first.Weekday())+7)%7 + (tr.week-1)*7
		if length := daysIn(year, time.Month(tr.month)); mday >= length {
			mday -= 7
		}
		return first.YearDay() - 1 + mday
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

type ruleParser struct {
	src string
	pos int
}

func (p *ruleParser) done() bool { return p.pos >= len(p.src) }

func (p *ruleParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *ruleParser) fail(want string) error {
	return fmt.Errorf("%w: %q: expected %s at offset %d", ErrInvalidRule, p.src, want, p.pos)
}

// name reads an alphabetic zone name or a quoted <...> name of at least
// three characters.
func (p *ruleParser) name() (string, bool) {
	if p.peek() == '<' {
		end := strings.IndexByte(p.src[p.pos:], '>')
		if end < 0 {
			return "", false
		}
		value := p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
		return value, len(value) >= 3
	}
	start := p.pos
	for !p.done() && isAlpha(p.peek()) {
		p.pos++
	}
	value := p.src[start:p.pos]
	return value, len(value) >= 3
}

// offset reads [+-]hh[:mm[:ss]] and returns signed seconds.
func (p *ruleParser) offset() (int, bool) {
	sign := 1
	switch p.peek() {
	case '-':
		sign = -1
		p.pos++
	case '+':
		p.pos++
	}
	secs, ok := p.clock(24)
	if !ok {
		return 0, false
	}
	return sign * secs, true
}

// clock reads hh[:mm[:ss]] with hh no greater than maxHours.
func (p *ruleParser) clock(maxHours int) (int, bool) {
	hours, ok := p.number(0, maxHours)
	if !ok {
		return 0, false
	}
	total := hours * 3600
	if p.peek() != ':' {
		return total, true
	}
	p.pos++
	minutes, ok := p.number(0, 59)
	if !ok {
		return 0, false
	}
	total += minutes * 60
	if p.peek() != ':' {
		return total, true
	}
	p.pos++
	seconds, ok := p.number(0, 59)
	if !ok {
		return 0, false
	}
	return total + seconds, true
}

func (p *ruleParser) number(lo, hi int) (int, bool) {
	start := p.pos
	for !p.done() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, false
	}
	value, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil || value < lo || value > hi {
		return 0, false
	}
	return value, true
}

func (p *ruleParser) transition() (transition, bool) {
	var tr transition
	var ok bool
	switch c := p.peek(); {
	case c == 'J':
		p.pos++
		tr.kind = ruleJulian
		if tr.day, ok = p.number(1, 365); !ok {
			return tr, false
		}
	case c == 'M':
		p.pos++
		tr.kind = ruleMonthWeek
		if tr.month, ok = p.number(1, 12); !ok || p.peek() != '.' {
			return tr, false
		}
		p.pos++
		if tr.week, ok = p.number(1, 5); !ok || p.peek() != '.' {
			return tr, false
		}
		p.pos++
		if tr.day, ok = p.number(0, 6); !ok {
			return tr, false
		}
	case c >= '0' && c <= '9':
		tr.kind = ruleDayOfYear
		if tr.day, ok = p.number(0, 365); !ok {
			return tr, false
		}
	default:
		return tr, false
	}

	tr.at = defaultTransition
	if p.peek() == '/' {
		p.pos++
		sign := 1
		switch p.peek() {
		case '-':
			sign = -1
			p.pos++
		case '+':
			p.pos++
		}
		// RFC 8536 allows transition hours in [-167, 167].
		secs, ok := p.clock(167)
		if !ok {
			return tr, false
		}
		tr.at = sign * secs
	}
	return tr, true
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
