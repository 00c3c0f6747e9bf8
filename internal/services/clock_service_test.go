package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockpro/backend/internal/utils"
)

func newClockFixture(at time.Time) *clockService {
	return &clockService{now: func() time.Time { return at }}
}

func TestTimeIn_DefaultsToUTC(t *testing.T) {
	svc := newClockFixture(time.Date(2025, 1, 15, 13, 45, 30, 0, time.UTC))

	info, err := svc.TimeIn("")
	require.NoError(t, err)
	assert.Equal(t, "UTC", info.Timezone)
	assert.Equal(t, "13:45:30", info.Time24)
	assert.Equal(t, "1:45:30 PM", info.Time12)
	assert.Equal(t, "2025-01-15", info.Date)
	assert.Equal(t, "Wednesday", info.DayOfWeek)
	assert.Equal(t, 0.0, info.UTCOffset)
	assert.False(t, info.IsDST)
}

func TestTimeIn_NamedZone(t *testing.T) {
	svc := newClockFixture(time.Date(2025, 1, 15, 13, 45, 0, 0, time.UTC))

	info, err := svc.TimeIn("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", info.Timezone)
	assert.Equal(t, "08:45:00", info.Time24) // UTC-5 in January
	assert.Equal(t, -5.0, info.UTCOffset)
	assert.False(t, info.IsDST)

	// Same zone in July is in daylight time.
	svc = newClockFixture(time.Date(2025, 7, 15, 13, 45, 0, 0, time.UTC))
	info, err = svc.TimeIn("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, -4.0, info.UTCOffset)
	assert.True(t, info.IsDST)
}

func TestTimeIn_InvalidZone(t *testing.T) {
	svc := newClockFixture(time.Now())

	_, err := svc.TimeIn("Mars/Olympus_Mons")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestWorldTimes_MixedEntries(t *testing.T) {
	svc := newClockFixture(time.Date(2025, 1, 15, 23, 30, 0, 0, time.UTC))

	out := svc.WorldTimes([]WorldTimeQuery{
		{City: "Tokyo", Country: "Japan", Timezone: "Asia/Tokyo"},
		{City: "Nowhere", Timezone: "Not/AZone"},
	})
	require.Len(t, out, 2)

	tokyo := out[0]
	assert.Equal(t, "Tokyo", tokyo.City)
	assert.Empty(t, tokyo.Error)
	require.NotNil(t, tokyo.TimeInfo)
	assert.Equal(t, "08:30:00", tokyo.TimeInfo.Time24) // UTC+9
	assert.True(t, tokyo.IsNextDay)

	bad := out[1]
	assert.Equal(t, "invalid timezone", bad.Error)
	assert.Nil(t, bad.TimeInfo)
}

func TestTimezones_Search(t *testing.T) {
	svc := newClockFixture(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))

	all := svc.Timezones("")
	assert.NotEmpty(t, all)
	assert.LessOrEqual(t, len(all), timezoneLimit)

	ny := svc.Timezones("new_york")
	require.Len(t, ny, 1)
	assert.Equal(t, "America/New_York", ny[0].Timezone)
	assert.Equal(t, "New York", ny[0].City)
	assert.Equal(t, "America", ny[0].Region)
	assert.Equal(t, "-05:00", ny[0].OffsetString)

	assert.Empty(t, svc.Timezones("atlantis"))
}

func TestConvert_WinterOffsets(t *testing.T) {
	svc := newClockFixture(time.Now())

	conv, err := svc.Convert("2025-01-15 09:00:00", "America/New_York", "Europe/London")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-15 09:00:00", conv.From.Time)
	assert.Equal(t, "-05:00", conv.From.Offset)
	assert.Equal(t, "2025-01-15 14:00:00", conv.To.Time)
	assert.Equal(t, "+00:00", conv.To.Offset)
	assert.Equal(t, 300, conv.TimeDifference)
}

func TestConvert_AcceptsRFC3339(t *testing.T) {
	svc := newClockFixture(time.Now())

	conv, err := svc.Convert("2025-06-15T09:00:00Z", "UTC", "Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15 14:30:00", conv.To.Time)
	assert.Equal(t, 330, conv.TimeDifference)
}

func TestConvert_Errors(t *testing.T) {
	svc := newClockFixture(time.Now())

	cases := []struct {
		name              string
		timeStr, from, to string
	}{
		{"missing time", "", "UTC", "Asia/Tokyo"},
		{"missing from", "2025-01-15 09:00:00", "", "Asia/Tokyo"},
		{"bad from zone", "2025-01-15 09:00:00", "Not/AZone", "Asia/Tokyo"},
		{"bad to zone", "2025-01-15 09:00:00", "UTC", "Not/AZone"},
		{"unparseable time", "yesterday at noon", "UTC", "Asia/Tokyo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Convert(tc.timeStr, tc.from, tc.to)
			require.Error(t, err)
			assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
		})
	}
}
