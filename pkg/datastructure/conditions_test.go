package datastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpeningHoursIsInRange(t *testing.T) {
	at := func(month time.Month, day, hour, minute int) time.Time {
		return time.Date(2024, month, day, hour, minute, 0, 0, time.UTC)
	}

	t.Run("empty selectors match everything", func(t *testing.T) {
		assert.True(t, OpeningHours{}.IsInRange(at(time.February, 29, 3, 0)))
	})

	t.Run("night span wraps past midnight", func(t *testing.T) {
		night := OpeningHours{Times: []TimeSpan{{From: 22 * 60, To: 6 * 60}}}
		assert.True(t, night.IsInRange(at(time.March, 1, 23, 30)))
		assert.True(t, night.IsInRange(at(time.March, 1, 5, 59)))
		assert.False(t, night.IsInRange(at(time.March, 1, 6, 0)))
		assert.False(t, night.IsInRange(at(time.March, 1, 12, 0)))
	})

	t.Run("weekend", func(t *testing.T) {
		weekend := OpeningHours{Weekdays: []WeekdayRange{{Weekdays: 0b1100000}}}
		// 2024-06-01 is a saturday
		assert.True(t, weekend.IsInRange(at(time.June, 1, 10, 0)))
		assert.True(t, weekend.IsInRange(at(time.June, 2, 10, 0)))
		assert.False(t, weekend.IsInRange(at(time.June, 3, 10, 0)))
	})

	t.Run("winter wraps over new year", func(t *testing.T) {
		winter := OpeningHours{Monthdays: []MonthdayRange{{
			From: Monthday{Month: 11, Day: 1},
			To:   Monthday{Month: 3, Day: 31},
		}}}
		assert.True(t, winter.IsInRange(at(time.December, 25, 0, 0)))
		assert.True(t, winter.IsInRange(at(time.January, 10, 0, 0)))
		assert.False(t, winter.IsInRange(at(time.July, 10, 0, 0)))
	})

	t.Run("every selector has to match", func(t *testing.T) {
		rushHour := OpeningHours{
			Times:    []TimeSpan{{From: 7 * 60, To: 9 * 60}},
			Weekdays: []WeekdayRange{{Weekdays: 0b0011111}},
		}
		assert.True(t, rushHour.IsInRange(at(time.June, 3, 8, 0)))
		assert.False(t, rushHour.IsInRange(at(time.June, 1, 8, 0)))
		assert.False(t, rushHour.IsInRange(at(time.June, 3, 10, 0)))
	})
}

func TestNameTable(t *testing.T) {
	nt := NewNameTable()
	assert.Equal(t, NameID(0), nt.GetID(""))
	kaliurang := nt.GetID("Jalan Kaliurang")
	magelang := nt.GetID("Jalan Magelang")
	assert.Equal(t, NameID(1), kaliurang)
	assert.Equal(t, NameID(2), magelang)
	assert.Equal(t, kaliurang, nt.GetID("Jalan Kaliurang"))
	assert.Equal(t, 3, nt.Size())
	assert.Equal(t, "", nt.GetName(99))

	restored := NewNameTableFromData(nt.CharData, nt.Offsets)
	assert.Equal(t, "Jalan Magelang", restored.GetName(magelang))
	assert.Equal(t, magelang, restored.GetID("Jalan Magelang"))
	assert.Equal(t, nt.Size(), restored.Size())
}
