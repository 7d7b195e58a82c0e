// Package dates converts human-entered birthdates into the fixed-width
// calendar-date form the identity backend requires, and computes ages from
// calendar components without going through a timezone-sensitive parse.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Wire is the only date shape the backend accepts: YYYY-MM-DD, 10 chars.
var wirePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var ErrBadDate = errors.New("not a valid calendar date")

// CalendarDate is a date with no time component, in wire form.
type CalendarDate string

func (d CalendarDate) String() string { return string(d) }

// Components returns year, month, day as integers. Valid only on values
// produced by Normalize.
func (d CalendarDate) Components() (year, month, day int) {
	year, _ = strconv.Atoi(string(d)[0:4])
	month, _ = strconv.Atoi(string(d)[5:7])
	day, _ = strconv.Atoi(string(d)[8:10])
	return year, month, day
}

// Normalize accepts either ISO form (YYYY-MM-DD, optionally with a time
// suffix which is stripped) or MM/DD/YYYY and returns the canonical wire
// form. The date is rebuilt from its components so a midnight timestamp in
// another zone can never shift the day.
func Normalize(raw string) (CalendarDate, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrBadDate
	}

	// Strip a time suffix: "2025-01-05T00:00:00.000Z" or "2025-01-05 00:00".
	if i := strings.IndexAny(s, "T "); i > 0 {
		s = s[:i]
	}

	var year, month, day int
	switch {
	case strings.Contains(s, "-"):
		parts := strings.Split(s, "-")
		if len(parts) != 3 {
			return "", ErrBadDate
		}
		year, month, day = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
	case strings.Contains(s, "/"):
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return "", ErrBadDate
		}
		month, day, year = atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
	default:
		return "", ErrBadDate
	}

	if year < 1000 || year > 9999 || !validDay(year, month, day) {
		return "", ErrBadDate
	}

	out := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if len(out) != 10 || !wirePattern.MatchString(out) {
		return "", ErrBadDate
	}
	return CalendarDate(out), nil
}

// AgeAt returns full years elapsed between the date and now.
func AgeAt(d CalendarDate, now time.Time) int {
	year, month, day := d.Components()
	age := now.Year() - year
	if int(now.Month()) < month || (int(now.Month()) == month && now.Day() < day) {
		age--
	}
	return age
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return n
}

func validDay(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	days := [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	max := days[month-1]
	if month == 2 && isLeap(year) {
		max = 29
	}
	return day <= max
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
