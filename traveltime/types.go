// Package traveltime implements TravelTimeAdjuster (C8): reconciliation
// between a device's local clock and a configured home timezone, so
// schedule day boundaries stay correct when a child travels across
// timezones (spec §4.8).
package traveltime

import (
	"time"

	"github.com/allow2/offlinecore/errs"
)

// DayType is the scheduling bucket a wall-clock date falls into,
// evaluated against the home timezone rather than device-local time.
type DayType int

const (
	DayTypeWeekday DayType = iota
	DayTypeWeekend
	DayTypeSchoolNight
)

func (d DayType) String() string {
	switch d {
	case DayTypeWeekend:
		return "weekend"
	case DayTypeSchoolNight:
		return "school_night"
	default:
		return "weekday"
	}
}

// schoolNightStartHour is the home-local hour (24h) at which a weekday
// evening is treated as a "school night" rather than an ordinary
// weekday. Not specified by the original interface; pinned here as this
// implementation's decision (DESIGN.md).
const schoolNightStartHour = 20

// Adjuster holds the configured home timezone and resolves the device
// timezone from the OS at construction time.
type Adjuster struct {
	homeTZ     string
	homeLoc    *time.Location
	deviceLoc  *time.Location
}

// New creates an Adjuster for homeTZ, an IANA timezone identifier. The
// device timezone is resolved from the OS via time.Local.
func New(homeTZ string) (*Adjuster, error) {
	loc, err := time.LoadLocation(homeTZ)
	if err != nil {
		return nil, errs.New(errs.Malformed, "traveltime.New", err)
	}
	return &Adjuster{
		homeTZ:    homeTZ,
		homeLoc:   loc,
		deviceLoc: time.Local,
	}, nil
}

// HomeTZ returns the configured home timezone identifier.
func (a *Adjuster) HomeTZ() string { return a.homeTZ }

// DeviceTZ returns the OS-resolved device timezone identifier.
func (a *Adjuster) DeviceTZ() string { return a.deviceLoc.String() }

// IsTraveling reports whether the device's resolved timezone differs
// from the configured home timezone.
func (a *Adjuster) IsTraveling() bool {
	return a.homeLoc.String() != a.deviceLoc.String()
}

// OffsetDelta returns device_offset - home_offset, in seconds, at now.
func (a *Adjuster) OffsetDelta(now time.Time) int {
	_, homeOffset := now.In(a.homeLoc).Zone()
	_, deviceOffset := now.In(a.deviceLoc).Zone()
	return deviceOffset - homeOffset
}

// HomeToDevice applies OffsetDelta to convert a home-timezone instant
// into its device-timezone wall-clock equivalent.
func (a *Adjuster) HomeToDevice(t time.Time) time.Time {
	return t.Add(time.Duration(a.OffsetDelta(t)) * time.Second)
}

// DeviceToHome applies the inverse of OffsetDelta.
func (a *Adjuster) DeviceToHome(t time.Time) time.Time {
	return t.Add(-time.Duration(a.OffsetDelta(t)) * time.Second)
}
