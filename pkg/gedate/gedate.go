// Package gedate converts free-text genealogical dates into ordering keys.
//
// Source records carry dates such as "12 MAR 1890", "ABT 1850" or "1901".
// Layout only needs to compare them, so [OrderKey] maps every text to a
// [time.Time] and never fails: empty or unparseable text yields [Earliest],
// which sorts before every real date.
//
//	gedate.OrderKey("ABT 1850")    // 1850-01-01
//	gedate.OrderKey("12 MAR 1890") // 1890-03-12
//	gedate.OrderKey("")            // Earliest
package gedate

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Earliest is the ordering key for missing or unparseable dates.
var Earliest = time.Time{}

// ErrUnparseable is returned by [Key] when no known layout matches.
var ErrUnparseable = errors.New("unparseable date")

// qualifiers are approximation words stripped before parsing.
var qualifiers = map[string]bool{
	"abt": true, "about": true, "approx": true, "approximately": true,
	"aft": true, "after": true, "bef": true, "before": true,
	"est": true, "cal": true, "int": true, "ca": true, "c": true,
	"circa": true, "~": true,
}

var layouts = []string{
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02",
	"2.1.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
}

// Key parses text into an ordering key.
//
// Empty text yields [Earliest] with no error. A bare year of up to four
// digits yields January 1 of that year. "BET x AND y" ranges use x. Year 0
// is unparseable, so no date sorts ahead of an undated event.
func Key(text string) (time.Time, error) {
	s := normalize(text)
	if s == "" {
		return Earliest, nil
	}

	if isYear(s) {
		if year, _ := strconv.Atoi(s); year >= 1 {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
		}
		return Earliest, ErrUnparseable
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil && t.Year() >= 1 {
			return t, nil
		}
	}
	return Earliest, ErrUnparseable
}

// OrderKey is [Key] with failures mapped to [Earliest].
func OrderKey(text string) time.Time {
	t, _ := Key(text)
	return t
}

// Compare orders two date texts by their keys.
func Compare(a, b string) int {
	return OrderKey(a).Compare(OrderKey(b))
}

func normalize(text string) string {
	fields := strings.Fields(text)
	if len(fields) > 0 && strings.EqualFold(fields[0], "bet") {
		fields = fields[1:]
		for i, f := range fields {
			if strings.EqualFold(f, "and") {
				fields = fields[:i]
				break
			}
		}
	}
	for len(fields) > 0 && qualifiers[strings.ToLower(strings.TrimSuffix(fields[0], "."))] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

func isYear(s string) bool {
	if len(s) == 0 || len(s) > 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
