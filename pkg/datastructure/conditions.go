package datastructure

import "time"

type Modifier uint8

const (
	MODIFIER_OPEN Modifier = iota
	MODIFIER_CLOSED
	MODIFIER_OFF
	MODIFIER_UNKNOWN
)

// TimeSpan is a clock interval in minutes since midnight. To < From wraps past midnight.
type TimeSpan struct {
	From int32
	To   int32
}

// WeekdayRange is a bit mask, Monday = bit 0 ... Sunday = bit 6.
type WeekdayRange struct {
	Weekdays int32
}

type Monthday struct {
	Month uint8
	Day   uint8
}

type MonthdayRange struct {
	From Monthday
	To   Monthday
}

// OpeningHours is one rule of a conditional restriction ("Mo-Fr 07:00-09:00").
// Empty selectors match everything.
type OpeningHours struct {
	Times     []TimeSpan
	Weekdays  []WeekdayRange
	Monthdays []MonthdayRange
	Modifier  Modifier
}

func weekdayBit(d time.Weekday) int32 {
	// time.Sunday == 0
	return 1 << ((int(d) + 6) % 7)
}

// IsInRange reports whether t falls into every non-empty selector of the rule.
func (o OpeningHours) IsInRange(t time.Time) bool {
	if len(o.Monthdays) > 0 {
		ok := false
		md := Monthday{Month: uint8(t.Month()), Day: uint8(t.Day())}
		for _, r := range o.Monthdays {
			if r.contains(md) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if len(o.Weekdays) > 0 {
		ok := false
		for _, w := range o.Weekdays {
			if w.Weekdays&weekdayBit(t.Weekday()) != 0 {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if len(o.Times) > 0 {
		minute := int32(t.Hour()*60 + t.Minute())
		ok := false
		for _, s := range o.Times {
			if s.From <= s.To {
				ok = minute >= s.From && minute < s.To
			} else {
				ok = minute >= s.From || minute < s.To
			}
			if ok {
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (m Monthday) key() int {
	return int(m.Month)*32 + int(m.Day)
}

func (r MonthdayRange) contains(m Monthday) bool {
	from, to, k := r.From.key(), r.To.key(), m.key()
	if from <= to {
		return k >= from && k <= to
	}
	return k >= from || k <= to
}
