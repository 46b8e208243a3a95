//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package ejson

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is a calendar-aware duration as used by table columns of the
// duration type. It stores three independent components because calendar
// months and days are not fixed-length: a duration of one month is not a
// fixed number of nanoseconds.
//
// Duration is intentionally distinct from time.Duration. Use
// ToTimeDuration to convert when Months is zero.
type Duration struct {
	// Months accumulates the year and month ("y", "mo") units.
	Months int64

	// Days accumulates the week and day ("w", "d") units.
	Days int64

	// Nanoseconds accumulates the sub-day ("h", "m", "s", "ms", "us",
	// "ns") units.
	Nanoseconds int64
}

// unitPosition orders duration units from largest to smallest. Literals
// must use units in strictly increasing position order.
var unitPosition = map[string]int{
	"y":  0,
	"mo": 1,
	"w":  2,
	"d":  3,
	"h":  4,
	"m":  5,
	"s":  6,
	"ms": 7,
	"us": 8,
	"ns": 9,
}

var monthMultiplier = []struct {
	unit string
	mult int64
}{
	{"y", 12},
	{"mo", 1},
}

var dayMultiplier = []struct {
	unit string
	mult int64
}{
	{"w", 7},
	{"d", 1},
}

var nanosecondMultiplier = []struct {
	unit string
	mult int64
}{
	{"h", 3600000000000},
	{"m", 60000000000},
	{"s", 1000000000},
	{"ms", 1000000},
	{"us", 1000},
	{"ns", 1},
}

// "ms" and "mo" must come before "m" in the alternation, otherwise a wrong
// "m" match is found first.
var (
	durationValidPattern = regexp.MustCompile(`^(-?\d+(y|ms|mo|w|d|h|m|s|us|ns))+$`)
	durationItemPattern  = regexp.MustCompile(`(-?\d+)(y|ms|mo|w|d|h|m|s|us|ns)`)
)

const durationFormatDesc = "Durations must be a non-empty sequence of " +
	"'<quantity><unit>', without repetitions and in strict decreasing order. " +
	"Quantities are integers, possibly with a leading minus sign, and units " +
	"take value among: 'y', 'mo', 'w', 'd', 'h', 'm', 's', 'ms', 'us' (or " +
	"'µs'), 'ns', in this order."

// ParseDuration parses a duration literal such as "1y2mo3d" or "-5h30m".
//
// Units must appear in strictly decreasing order without repetitions, each
// preceded by a signed integer quantity. The empty string parses to the
// zero duration.
func ParseDuration(s string) (Duration, error) {
	if s == "" {
		return Duration{}, nil
	}

	norm := strings.ReplaceAll(strings.ToLower(s), "µs", "us")
	if !durationValidPattern.MatchString(norm) {
		return Duration{}, fmt.Errorf("invalid literal for a duration: %q. %s",
			s, durationFormatDesc)
	}

	matches := durationItemPattern.FindAllStringSubmatch(norm, -1)
	if len(matches) == 0 {
		return Duration{}, fmt.Errorf("no quantity+unit groups in literal for a duration: %q. %s",
			s, durationFormatDesc)
	}

	values := make(map[string]int64, len(matches))
	lastPos := -1
	for _, m := range matches {
		qty, unit := m[1], m[2]
		pos := unitPosition[unit]
		if pos < lastPos {
			return Duration{}, fmt.Errorf("unit %q cannot follow smaller units in literal for a duration: %q. %s",
				unit, s, durationFormatDesc)
		}
		if pos == lastPos {
			return Duration{}, fmt.Errorf("unit %q cannot be repeated in literal for a duration: %q. %s",
				unit, s, durationFormatDesc)
		}
		lastPos = pos

		v, err := strconv.ParseInt(qty, 10, 64)
		if err != nil {
			return Duration{}, fmt.Errorf("invalid quantity %q in literal for a duration: %q. %s",
				qty, s, durationFormatDesc)
		}
		values[unit] = v
	}

	var d Duration
	for _, mu := range monthMultiplier {
		d.Months += mu.mult * values[mu.unit]
	}
	for _, mu := range dayMultiplier {
		d.Days += mu.mult * values[mu.unit]
	}
	for _, mu := range nanosecondMultiplier {
		d.Nanoseconds += mu.mult * values[mu.unit]
	}
	return d, nil
}

// String renders the duration as a literal, greedily emitting the largest
// unit first within each component group. Days are always rendered with
// the "d" unit, never as weeks. The zero duration renders as the empty
// string.
//
// This implements the fmt.Stringer interface.
func (d Duration) String() string {
	var sb strings.Builder

	if d.Months != 0 {
		residual := d.Months
		for _, mu := range monthMultiplier {
			qty := residual / mu.mult
			if qty >= 1 {
				fmt.Fprintf(&sb, "%d%s", qty, mu.unit)
				residual -= qty * mu.mult
			}
		}
	}
	if d.Days > 0 {
		fmt.Fprintf(&sb, "%dd", d.Days)
	}
	if d.Nanoseconds != 0 {
		residual := d.Nanoseconds
		for _, mu := range nanosecondMultiplier {
			qty := residual / mu.mult
			if qty >= 1 {
				fmt.Fprintf(&sb, "%d%s", qty, mu.unit)
				residual -= qty * mu.mult
			}
		}
	}
	return sb.String()
}

// IsZero reports whether all three components are zero.
func (d Duration) IsZero() bool {
	return d.Months == 0 && d.Days == 0 && d.Nanoseconds == 0
}

// ToTimeDuration converts to a fixed-length time.Duration, counting each
// day as 24 hours. It fails when Months is nonzero, since calendar months
// have no fixed length.
func (d Duration) ToTimeDuration() (time.Duration, error) {
	if d.Months != 0 {
		return 0, fmt.Errorf("cannot convert a duration with nonzero months (%d) into a time.Duration", d.Months)
	}
	return time.Duration(d.Days)*24*time.Hour + time.Duration(d.Nanoseconds), nil
}

// FromTimeDuration converts a fixed-length time.Duration, splitting whole
// 24-hour periods into the Days component.
func FromTimeDuration(td time.Duration) Duration {
	const day = 24 * time.Hour
	return Duration{
		Days:        int64(td / day),
		Nanoseconds: int64(td % day),
	}
}
