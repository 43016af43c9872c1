package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrInvalidWeekday = errors.New("invalid weekday tag")

// Weekday is the locale-independent tag stored on recurring slots.
type Weekday string

const (
	Sunday    Weekday = "SUNDAY"
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
)

// indexed by time.Weekday
var weekdayTags = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func (w Weekday) String() string {
	return string(w)
}

func (w Weekday) index() int {
	for i, tag := range weekdayTags {
		if tag == w {
			return i
		}
	}
	return -1
}

func (w Weekday) Valid() bool {
	return w.index() >= 0
}

func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return w, nil
}

// WeekdayTag maps the date of t (in t's location) to its tag.
func WeekdayTag(t time.Time) Weekday {
	return weekdayTags[t.Weekday()]
}

// WeekdaySet is an unordered set of weekday tags.
type WeekdaySet map[Weekday]struct{}

func NewWeekdaySet(days ...Weekday) WeekdaySet {
	set := make(WeekdaySet, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

func AllWeekdays() WeekdaySet {
	return NewWeekdaySet(weekdayTags[:]...)
}

// ParseWeekdaySet parses tags and rejects an empty or invalid input.
func ParseWeekdaySet(tags []string) (WeekdaySet, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: empty weekday set", ErrInvalidWeekday)
	}
	set := make(WeekdaySet, len(tags))
	for _, tag := range tags {
		w, err := ParseWeekday(tag)
		if err != nil {
			return nil, err
		}
		set[w] = struct{}{}
	}
	return set, nil
}

func (s WeekdaySet) Contains(w Weekday) bool {
	_, ok := s[w]
	return ok
}

func (s WeekdaySet) Len() int {
	return len(s)
}

// Tags returns the set sorted Sunday first.
func (s WeekdaySet) Tags() []Weekday {
	tags := make([]Weekday, 0, len(s))
	for w := range s {
		tags = append(tags, w)
	}
	sort.Slice(tags, func(i, j int) bool {
		return tags[i].index() < tags[j].index()
	})
	return tags
}

func (s WeekdaySet) Strings() []string {
	tags := s.Tags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}

func (s WeekdaySet) Equal(other WeekdaySet) bool {
	if len(s) != len(other) {
		return false
	}
	for w := range s {
		if !other.Contains(w) {
			return false
		}
	}
	return true
}
