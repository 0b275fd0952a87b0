package todoist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is a Todoist identifier. Older API versions send numbers, newer ones
// send strings; both decode to the same decimal text.
type ID string

// UnmarshalJSON accepts a JSON string, an integer, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("todoist id: %w", err)
		}
		if _, err := n.Int64(); err != nil {
			return fmt.Errorf("todoist id %s is not an integer", n)
		}
		*id = ID(n.String())
		return nil
	}
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// numeric reports whether the identifier is a plain decimal number.
func (id ID) numeric() bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

// CompareIDs orders identifiers: numeric ids compare by value and sort before
// non-numeric ids, which compare lexically.
func CompareIDs(a, b ID) int {
	an, bn := a.numeric(), b.numeric()
	switch {
	case an && bn:
		as := strings.TrimLeft(string(a), "0")
		bs := strings.TrimLeft(string(b), "0")
		if len(as) != len(bs) {
			if len(as) < len(bs) {
				return -1
			}
			return 1
		}
		return strings.Compare(as, bs)
	case an:
		return -1
	case bn:
		return 1
	default:
		return strings.Compare(string(a), string(b))
	}
}

// Project is a Todoist project.
type Project struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Section is a named group of tasks inside a project.
type Section struct {
	ID        ID     `json:"id"`
	ProjectID ID     `json:"project_id"`
	Name      string `json:"name"`
}

const (
	dateLayout     = "2006-01-02"
	floatingLayout = "2006-01-02T15:04:05"
)

// Due is a task's due date. Date is always set; Datetime is present for tasks
// due at a specific time, either in UTC or as floating local time.
type Due struct {
	Date        string `json:"date"`
	Datetime    string `json:"datetime,omitempty"`
	String      string `json:"string,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	IsRecurring bool   `json:"is_recurring"`

	// At is the ordering instant derived from Date and Datetime. Date-only
	// and floating values are read as UTC wall time.
	At time.Time `json:"-"`
}

// UnmarshalJSON decodes the due object and derives At.
func (d *Due) UnmarshalJSON(data []byte) error {
	type plain Due
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Due(raw)
	at, err := parseDue(d.Date, d.Datetime)
	if err != nil {
		return err
	}
	d.At = at
	return nil
}

// AllDay reports whether the task is due on a date without a time.
func (d *Due) AllDay() bool { return d != nil && d.Datetime == "" }

// Floating reports whether the due time has no zone and should be shown as
// written rather than converted to local time.
func (d *Due) Floating() bool {
	if d == nil || d.Datetime == "" {
		return false
	}
	_, err := time.Parse(time.RFC3339Nano, d.Datetime)
	return err != nil
}

func parseDue(date, datetime string) (time.Time, error) {
	if datetime = strings.TrimSpace(datetime); datetime != "" {
		if t, err := time.Parse(time.RFC3339Nano, datetime); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.Parse(floatingLayout, datetime); err == nil {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("due datetime %q not recognized", datetime)
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, fmt.Errorf("due date missing")
	}
	// Recurring floating dates may carry a time component in the date field.
	if len(date) > len(dateLayout) {
		return parseDue("", date)
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date %q not recognized", date)
	}
	return t, nil
}

// Task is an active Todoist task.
type Task struct {
	ID          ID       `json:"id"`
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   ID       `json:"project_id"`
	SectionID   ID       `json:"section_id"`
	Priority    int      `json:"priority"`
	Labels      []string `json:"labels,omitempty"`
	Completed   bool     `json:"is_completed"`
	Due         *Due     `json:"due"`
}

// UnmarshalJSON reads the completion flag from either "is_completed" or
// "completed"; a true value under either key marks the task completed.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var wire struct {
		plain
		CompletedAlt *bool `json:"completed"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*t = Task(wire.plain)
	if wire.CompletedAlt != nil && *wire.CompletedAlt {
		t.Completed = true
	}
	return nil
}

// HasDue reports whether the task carries a due date.
func (t Task) HasDue() bool { return t.Due != nil && !t.Due.At.IsZero() }
