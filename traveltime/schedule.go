package traveltime

import "time"

// EffectiveDayType evaluates weekday vs weekend vs school-night using
// the wall-clock date in home_tz, not device-local (spec §4.8). Friday
// and Saturday are weekend; any other day at or after
// schoolNightStartHour home-local is a school night; otherwise weekday.
func (a *Adjuster) EffectiveDayType(now time.Time) DayType {
	homeNow := now.In(a.homeLoc)
	switch homeNow.Weekday() {
	case time.Friday, time.Saturday:
		return DayTypeWeekend
	}
	if homeNow.Hour() >= schoolNightStartHour {
		return DayTypeSchoolNight
	}
	return DayTypeWeekday
}

// nextHomeMidnight returns the instant of the next home-timezone
// midnight strictly after now.
func (a *Adjuster) nextHomeMidnight(now time.Time) time.Time {
	homeNow := now.In(a.homeLoc)
	y, m, d := homeNow.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, a.homeLoc).AddDate(0, 0, 1)
	return midnight
}

// AdjustedRemaining returns rawRemaining clipped so it does not cross a
// home-timezone day boundary still in the future (spec §4.8): the child
// cannot gain time by flying west into an earlier home-local day.
func (a *Adjuster) AdjustedRemaining(rawRemaining int, now time.Time) int {
	boundary := a.nextHomeMidnight(now)
	secondsUntilBoundary := int(boundary.Sub(now).Seconds())
	if secondsUntilBoundary >= 0 && secondsUntilBoundary < rawRemaining {
		return secondsUntilBoundary
	}
	return rawRemaining
}
