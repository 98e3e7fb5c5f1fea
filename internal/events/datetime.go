package events

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// normalizeDateTime parses an ISO 8601 date or date-time and re-serializes
// it in canonical form: YYYY-MM-DDTHH:MM:SS, then .ffffff when the
// microseconds are non-zero, then ±HH:MM when the input carried an offset.
// "Z" becomes "+00:00" and a date alone becomes midnight.
//
// Dates may be calendar (YYYY-MM-DD, YYYYMMDD) or week dates (YYYY-Www[-D],
// YYYYWww[D]). Times may be extended (HH[:MM[:SS[.f]]]) or basic
// (HH[MM[SS[.f]]]) and are separated from the date by 'T' or a space.
// Offsets take the same forms as times, with a leading sign.
func normalizeDateTime(field, value string) (string, error) {
	invalid := &DateTimeError{Field: field, Value: value}

	datePart, rest, ok := splitDate(value)
	if !ok {
		return "", invalid
	}
	year, month, day, ok := parseDate(datePart)
	if !ok {
		return "", invalid
	}

	var hour, minute, second, micro int
	var offset *time.Duration
	if rest != "" {
		if rest[0] != 'T' && rest[0] != 't' && rest[0] != ' ' {
			return "", invalid
		}
		clock := rest[1:]
		var zone string
		if idx := strings.IndexAny(clock, "Zz+-"); idx >= 0 {
			clock, zone = clock[:idx], clock[idx:]
		}
		if hour, minute, second, micro, ok = parseClock(clock); !ok {
			return "", invalid
		}
		if zone != "" {
			d, ok := parseOffset(zone)
			if !ok {
				return "", invalid
			}
			offset = &d
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%04d-%02d-%02dT%02d:%02d:%02d", year, month, day, hour, minute, second)
	if micro != 0 {
		fmt.Fprintf(&b, ".%06d", micro)
	}
	if offset != nil {
		b.WriteString(formatOffset(*offset))
	}
	return b.String(), nil
}

// splitDate cuts the date portion off value. Its length depends on the
// form: 10 (YYYY-MM-DD, YYYY-Www-D), 8 (YYYYMMDD, YYYY-Www, YYYYWwwD) or
// 7 (YYYYWww).
func splitDate(value string) (date, rest string, ok bool) {
	n := 8
	switch {
	case len(value) > 5 && value[4] == '-' && value[5] == 'W':
		if len(value) >= 10 && value[8] == '-' {
			n = 10
		}
	case len(value) > 4 && value[4] == '-':
		n = 10
	case len(value) > 4 && value[4] == 'W':
		n = 7
		if len(value) >= 8 && isDigit(value[7]) {
			n = 8
		}
	}
	if len(value) < n {
		return "", "", false
	}
	return value[:n], value[n:], true
}

// parseDate parses a calendar or week date in extended or basic form and
// rejects dates that do not exist.
func parseDate(s string) (year, month, day int, ok bool) {
	if len(s) < 7 {
		return 0, 0, 0, false
	}
	if year, ok = atoiDigits(s[0:4]); !ok || year < 1 {
		return 0, 0, 0, false
	}
	body := s[4:]
	extended := body[0] == '-'
	if extended {
		body = body[1:]
	}

	if body[0] == 'W' {
		return parseWeekDate(year, body[1:], extended)
	}

	switch {
	case extended && len(body) == 5 && body[2] == '-':
		body = body[0:2] + body[3:5]
	case !extended && len(body) == 4:
	default:
		return 0, 0, 0, false
	}
	if month, ok = atoiDigits(body[0:2]); !ok || month < 1 || month > 12 {
		return 0, 0, 0, false
	}
	if day, ok = atoiDigits(body[2:4]); !ok || day < 1 {
		return 0, 0, 0, false
	}
	// time.Date normalizes overflow (Feb 30 -> Mar 2), so compare back.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

// parseWeekDate parses the "ww[-D]" or "ww[D]" tail of an ISO week date.
// The weekday defaults to Monday.
func parseWeekDate(year int, s string, extended bool) (int, int, int, bool) {
	if len(s) < 2 {
		return 0, 0, 0, false
	}
	week, ok := atoiDigits(s[0:2])
	if !ok {
		return 0, 0, 0, false
	}
	s = s[2:]
	weekday := 1
	if s != "" {
		if extended {
			if s[0] != '-' {
				return 0, 0, 0, false
			}
			s = s[1:]
		}
		if len(s) != 1 {
			return 0, 0, 0, false
		}
		if weekday, ok = atoiDigits(s); !ok {
			return 0, 0, 0, false
		}
	}
	if week < 1 || week > 53 || weekday < 1 || weekday > 7 {
		return 0, 0, 0, false
	}
	// Only long years have a week 53; Dec 28 always falls in the last week.
	if _, last := time.Date(year, 12, 28, 0, 0, 0, 0, time.UTC).ISOWeek(); week > last {
		return 0, 0, 0, false
	}

	// Week 1 is the week containing Jan 4.
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	monday := jan4.AddDate(0, 0, -((int(jan4.Weekday()) + 6) % 7))
	t := monday.AddDate(0, 0, (week-1)*7+weekday-1)
	if t.Year() < 1 || t.Year() > 9999 {
		return 0, 0, 0, false
	}
	return t.Year(), int(t.Month()), t.Day(), true
}

// parseClock parses HH[:MM[:SS[.f...]]] or HH[MM[SS[.f...]]]. The two
// forms cannot be mixed. Fractions longer than six digits are truncated
// to microseconds.
func parseClock(s string) (hour, minute, second, micro int, ok bool) {
	if len(s) < 2 {
		return 0, 0, 0, 0, false
	}
	if hour, ok = atoiDigits(s[0:2]); !ok || hour > 23 {
		return 0, 0, 0, 0, false
	}
	s = s[2:]
	if s == "" {
		return hour, 0, 0, 0, true
	}

	extended := s[0] == ':'
	if extended {
		s = s[1:]
	}
	if len(s) < 2 {
		return 0, 0, 0, 0, false
	}
	if minute, ok = atoiDigits(s[0:2]); !ok || minute > 59 {
		return 0, 0, 0, 0, false
	}
	s = s[2:]
	if s == "" {
		return hour, minute, 0, 0, true
	}

	if extended {
		if s[0] != ':' {
			return 0, 0, 0, 0, false
		}
		s = s[1:]
	}
	if len(s) < 2 {
		return 0, 0, 0, 0, false
	}
	if second, ok = atoiDigits(s[0:2]); !ok || second > 59 {
		return 0, 0, 0, 0, false
	}
	s = s[2:]
	if s == "" {
		return hour, minute, second, 0, true
	}

	if (s[0] != '.' && s[0] != ',') || len(s) < 2 {
		return 0, 0, 0, 0, false
	}
	frac := s[1:]
	if _, ok = atoiDigits(frac); !ok {
		return 0, 0, 0, 0, false
	}
	if len(frac) > 6 {
		frac = frac[:6]
	}
	frac += strings.Repeat("0", 6-len(frac))
	micro, _ = strconv.Atoi(frac)
	return hour, minute, second, micro, true
}

// parseOffset parses Z or a signed clock value (±HH, ±HH:MM, ±HHMM,
// ±HH:MM:SS[.f], ±HHMMSS[.f]) into an offset east of UTC.
func parseOffset(s string) (time.Duration, bool) {
	if s == "Z" || s == "z" {
		return 0, true
	}
	var sign time.Duration = 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}
	hh, mm, ss, us, ok := parseClock(s[1:])
	if !ok {
		return 0, false
	}
	d := time.Duration(hh)*time.Hour +
		time.Duration(mm)*time.Minute +
		time.Duration(ss)*time.Second +
		time.Duration(us)*time.Microsecond
	return sign * d, true
}

func formatOffset(d time.Duration) string {
	sign := '+'
	if d < 0 {
		sign = '-'
		d = -d
	}
	secs := int(d / time.Second)
	micro := int(d % time.Second / time.Microsecond)
	out := fmt.Sprintf("%c%02d:%02d", sign, secs/3600, secs%3600/60)
	if s := secs % 60; s != 0 || micro != 0 {
		out += fmt.Sprintf(":%02d", s)
	}
	if micro != 0 {
		out += fmt.Sprintf(".%06d", micro)
	}
	return out
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// atoiDigits parses a non-empty string of ASCII digits.
func atoiDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
