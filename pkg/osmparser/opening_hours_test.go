package osmparser

import (
	"testing"
	"time"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpeningHours(t *testing.T) {
	t.Run("weekdays and times", func(t *testing.T) {
		oh, err := ParseOpeningHours("Mo-Fr 07:00-09:00,16:00-18:30")
		require.NoError(t, err)
		require.Len(t, oh, 1)
		assert.Equal(t, da.MODIFIER_OPEN, oh[0].Modifier)
		assert.Equal(t, []da.WeekdayRange{{Weekdays: 0b0011111}}, oh[0].Weekdays)
		assert.Equal(t, []da.TimeSpan{{From: 420, To: 540}, {From: 960, To: 1110}}, oh[0].Times)
		assert.Empty(t, oh[0].Monthdays)
	})

	t.Run("weekday list and wrapping range", func(t *testing.T) {
		oh, err := ParseOpeningHours("Sa,Su")
		require.NoError(t, err)
		assert.Equal(t, int32(0b1100000), oh[0].Weekdays[0].Weekdays)

		oh, err = ParseOpeningHours("Fr-Mo")
		require.NoError(t, err)
		assert.Equal(t, int32(0b1110001), oh[0].Weekdays[0].Weekdays)
	})

	t.Run("month ranges", func(t *testing.T) {
		oh, err := ParseOpeningHours("Nov 01-Mar 31")
		require.NoError(t, err)
		assert.Equal(t, []da.MonthdayRange{{From: da.Monthday{Month: 11, Day: 1}, To: da.Monthday{Month: 3, Day: 31}}}, oh[0].Monthdays)

		oh, err = ParseOpeningHours("Jun-Aug")
		require.NoError(t, err)
		assert.Equal(t, []da.MonthdayRange{{From: da.Monthday{Month: 6, Day: 1}, To: da.Monthday{Month: 8, Day: 31}}}, oh[0].Monthdays)

		oh, err = ParseOpeningHours("Dec 24-26 08:00-12:00")
		require.NoError(t, err)
		assert.Equal(t, []da.MonthdayRange{{From: da.Monthday{Month: 12, Day: 24}, To: da.Monthday{Month: 12, Day: 26}}}, oh[0].Monthdays)
		assert.Equal(t, []da.TimeSpan{{From: 480, To: 720}}, oh[0].Times)
	})

	t.Run("rules and modifiers", func(t *testing.T) {
		oh, err := ParseOpeningHours("Mo-Sa 22:00-06:00; Su 24/7 off")
		require.NoError(t, err)
		require.Len(t, oh, 2)
		assert.Equal(t, []da.TimeSpan{{From: 1320, To: 360}}, oh[0].Times)
		assert.Equal(t, da.MODIFIER_OFF, oh[1].Modifier)
		assert.Empty(t, oh[1].Times)
	})

	t.Run("end past midnight wraps", func(t *testing.T) {
		oh, err := ParseOpeningHours("20:00-26:00")
		require.NoError(t, err)
		assert.Equal(t, []da.TimeSpan{{From: 1200, To: 120}}, oh[0].Times)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"", "PH off", "Mo-Fr 25:00-26:00", "07:00", "Mo-", "Jan 32", "sunrise-sunset", "(Mo)"} {
			_, err := ParseOpeningHours(s)
			require.Error(t, err, s)
			assert.Equal(t, util.ErrFilterableData, util.Code(err), s)
		}
	})
}

func TestParsedOpeningHoursMatchTime(t *testing.T) {
	oh, err := ParseOpeningHours("Mo-Fr 07:00-09:00")
	require.NoError(t, err)

	wednesdayMorning := time.Date(2024, time.May, 15, 8, 30, 0, 0, time.UTC)
	wednesdayNoon := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	saturdayMorning := time.Date(2024, time.May, 18, 8, 30, 0, 0, time.UTC)

	assert.True(t, oh[0].IsInRange(wednesdayMorning))
	assert.False(t, oh[0].IsInRange(wednesdayNoon))
	assert.False(t, oh[0].IsInRange(saturdayMorning))
}
