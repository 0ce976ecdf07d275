package traveltime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidTZ(t *testing.T) {
	_, err := New("Not/A_Real_Zone")
	require.Error(t, err)
}

func TestHomeTZRoundTrip(t *testing.T) {
	a, err := New("America/New_York")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", a.HomeTZ())
}

func TestOffsetDeltaSameZoneIsZero(t *testing.T) {
	a, err := New("UTC")
	require.NoError(t, err)
	a.deviceLoc = mustLoad(t, "UTC")

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 0, a.OffsetDelta(now))
	require.False(t, a.IsTraveling())
}

func TestOffsetDeltaDifferentZones(t *testing.T) {
	a, err := New("America/New_York")
	require.NoError(t, err)
	a.deviceLoc = mustLoad(t, "Asia/Tokyo")
	require.True(t, a.IsTraveling())

	// Use a fixed instant where NY is UTC-5 (standard time, no DST) and
	// Tokyo is UTC+9: delta = 9*3600 - (-5*3600) = 14*3600.
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	require.Equal(t, 14*3600, a.OffsetDelta(now))
}

func TestHomeToDeviceAndBackAreInverses(t *testing.T) {
	a, err := New("America/New_York")
	require.NoError(t, err)
	a.deviceLoc = mustLoad(t, "Asia/Tokyo")

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	shifted := a.HomeToDevice(now)
	back := a.DeviceToHome(shifted)
	require.Equal(t, now.Unix(), back.Unix())
}

func TestEffectiveDayTypeWeekend(t *testing.T) {
	a, err := New("UTC")
	require.NoError(t, err)

	// 2026-01-16 is a Friday in UTC.
	friday := time.Date(2026, 1, 16, 10, 0, 0, 0, time.UTC)
	require.Equal(t, DayTypeWeekend, a.EffectiveDayType(friday))
}

func TestEffectiveDayTypeSchoolNight(t *testing.T) {
	a, err := New("UTC")
	require.NoError(t, err)

	// 2026-01-13 is a Tuesday.
	tuesdayEvening := time.Date(2026, 1, 13, 21, 0, 0, 0, time.UTC)
	require.Equal(t, DayTypeSchoolNight, a.EffectiveDayType(tuesdayEvening))
}

func TestEffectiveDayTypeWeekday(t *testing.T) {
	a, err := New("UTC")
	require.NoError(t, err)

	tuesdayAfternoon := time.Date(2026, 1, 13, 14, 0, 0, 0, time.UTC)
	require.Equal(t, DayTypeWeekday, a.EffectiveDayType(tuesdayAfternoon))
}

func TestAdjustedRemainingClipsAtDayBoundary(t *testing.T) {
	a, err := New("UTC")
	require.NoError(t, err)

	// 23:00 UTC, one hour (3600s) before the home-timezone day boundary.
	now := time.Date(2026, 1, 13, 23, 0, 0, 0, time.UTC)
	require.Equal(t, 3600, a.AdjustedRemaining(7200, now))
}

func TestAdjustedRemainingDoesNotClipWhenWithinDay(t *testing.T) {
	a, err := New("UTC")
	require.NoError(t, err)

	now := time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)
	require.Equal(t, 1800, a.AdjustedRemaining(1800, now))
}

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}
