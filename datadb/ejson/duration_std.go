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
)

// ISO-8601-style duration literals, the alternative wire form accepted and
// produced by the API: "[-]P[nY][nM][nD][T[nH][nM][fS]]".

const durationStdFormatDesc = "Durations must be expressed according to the " +
	"'[-]P[nY][nM][nD][T[nH][nM][fS]]' pattern, with: an optional leading " +
	"minus sign; a literal P; a sequence of at least one '<quantity><unit>' " +
	"specification. These, if appearing, must be in strict order (resp. " +
	"years, months, days, hours, minutes, seconds). If sub-day " +
	"specifications are present, a literal 'T' must separate them from the " +
	"whole-day part. Quantities are non-negative integers except for the " +
	"seconds specification, which can be a decimal number. At least one " +
	"time specification must be provided. Examples: \"P1M10D\", " +
	"\"P1Y3MT4H15.43S\", \"-PT2M55S\"."

var (
	stdPreTValidator  = regexp.MustCompile(`^(\d+Y)?(\d+M)?(\d+D)?$`)
	stdPreTParser     = regexp.MustCompile(`(\d+)(Y|M|D)`)
	stdPostTValidator = regexp.MustCompile(`^(\d+H)?(\d+M)?(\d*\.?\d*S)?$`)
	stdPostTParser    = regexp.MustCompile(`(\d*\.?\d*)(H|M|S)`)
)

// ParseStdDuration parses an ISO-8601-style duration literal into a
// Duration. A leading minus sign negates every component.
func ParseStdDuration(s string) (Duration, error) {
	if s == "" {
		return Duration{}, fmt.Errorf("empty strings are not valid durations. %s",
			durationStdFormatDesc)
	}

	signum := int64(1)
	var stripped string
	switch {
	case strings.HasPrefix(s, "-P"):
		signum = -1
		stripped = s[2:]
	case strings.HasPrefix(s, "P"):
		stripped = s[1:]
	default:
		return Duration{}, fmt.Errorf("a string not starting with '-P' or 'P' is not a valid duration (received: %q). %s",
			s, durationStdFormatDesc)
	}

	if stripped == "" || stripped == "T" {
		return Duration{}, fmt.Errorf("a string without quantity-unit specifications is not a valid duration (received: %q). %s",
			s, durationStdFormatDesc)
	}

	tBlocks := strings.Split(stripped, "T")
	var preT, postT string
	switch len(tBlocks) {
	case 1:
		preT = tBlocks[0]
	case 2:
		preT = tBlocks[0]
		postT = tBlocks[1]
	default:
		return Duration{}, fmt.Errorf("a duration string must contain at most one single 'T' separator (received: %q). %s",
			s, durationStdFormatDesc)
	}

	if !stdPreTValidator.MatchString(preT) {
		return Duration{}, fmt.Errorf("invalid whole-day component for a duration string (received: %q). %s",
			s, durationStdFormatDesc)
	}
	var months, days int64
	for _, m := range stdPreTParser.FindAllStringSubmatch(preT, -1) {
		qty, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Duration{}, fmt.Errorf("invalid quantity in duration string (received: %q). %s",
				s, durationStdFormatDesc)
		}
		switch m[2] {
		case "Y":
			months += 12 * qty
		case "M":
			months += qty
		case "D":
			days += qty
		}
	}

	if !stdPostTValidator.MatchString(postT) {
		return Duration{}, fmt.Errorf("invalid fraction-of-day component for a duration string (received: %q). %s",
			s, durationStdFormatDesc)
	}
	var nanoseconds int64
	for _, m := range stdPostTParser.FindAllStringSubmatch(postT, -1) {
		if m[2] == "S" {
			secs, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return Duration{}, fmt.Errorf("invalid seconds quantity in duration string (received: %q). %s",
					s, durationStdFormatDesc)
			}
			nanoseconds += int64(secs*1e9 + 0.5)
			continue
		}
		qty, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Duration{}, fmt.Errorf("float values are accepted only for the seconds duration specification (received: %q). %s",
				s, durationStdFormatDesc)
		}
		switch m[2] {
		case "H":
			nanoseconds += qty * 3600000000000
		case "M":
			nanoseconds += qty * 60000000000
		}
	}

	// A null duration is always positive regardless of the leading sign.
	if months == 0 && days == 0 && nanoseconds == 0 {
		signum = 1
	}

	return Duration{
		Months:      signum * months,
		Days:        signum * days,
		Nanoseconds: signum * nanoseconds,
	}, nil
}

// ToStdString renders the duration as an ISO-8601-style literal. The zero
// duration renders as "PT0S". A duration whose components are all
// non-positive renders with a leading minus sign; components with mixed
// signs have no representation in this form and cause an error.
func (d Duration) ToStdString() (string, error) {
	if d.IsZero() {
		return "PT0S", nil
	}

	pos := d.Months > 0 || d.Days > 0 || d.Nanoseconds > 0
	neg := d.Months < 0 || d.Days < 0 || d.Nanoseconds < 0
	if pos && neg {
		return "", fmt.Errorf("cannot render a duration with mixed-sign components (months=%d, days=%d, nanoseconds=%d) in the standard form",
			d.Months, d.Days, d.Nanoseconds)
	}

	months, days, nanoseconds := d.Months, d.Days, d.Nanoseconds
	var sb strings.Builder
	if neg {
		sb.WriteString("-")
		months, days, nanoseconds = -months, -days, -nanoseconds
	}
	sb.WriteString("P")

	if months != 0 {
		if years := months / 12; years >= 1 {
			fmt.Fprintf(&sb, "%dY", years)
			months -= years * 12
		}
		if months >= 1 {
			fmt.Fprintf(&sb, "%dM", months)
		}
	}
	if days > 0 {
		fmt.Fprintf(&sb, "%dD", days)
	}
	if nanoseconds != 0 {
		sb.WriteString("T")
		residual := nanoseconds
		if hours := residual / 3600000000000; hours >= 1 {
			fmt.Fprintf(&sb, "%dH", hours)
			residual -= hours * 3600000000000
		}
		if minutes := residual / 60000000000; minutes >= 1 {
			fmt.Fprintf(&sb, "%dM", minutes)
			residual -= minutes * 60000000000
		}
		if residual != 0 {
			secs := strconv.FormatFloat(float64(residual)/1e9, 'f', 9, 64)
			secs = strings.TrimRight(secs, "0")
			secs = strings.TrimRight(secs, ".")
			fmt.Fprintf(&sb, "%sS", secs)
		}
	}
	return sb.String(), nil
}
