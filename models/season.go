package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidSeason     = errors.New("invalid season")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidSeasonWeek = errors.New("invalid season/week")
	ErrInvalidOption     = errors.New("invalid option")
)

var (
	seasonPattern    = regexp.MustCompile(`^\d{4}(REG|PRE|POST)$`)
	yearOnlyPattern  = regexp.MustCompile(`^\d{4}$`)
	namedMonthDate   = regexp.MustCompile(`^\d{4}-[A-Z]{3}-\d{2}$`)
	numericMonthDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidateSeason reports whether season is "YYYYREG", "YYYYPRE" or
// "YYYYPOST". With alternate set, only a bare "YYYY" is accepted.
func ValidateSeason(season string, alternate bool) bool {
	if alternate {
		return yearOnlyPattern.MatchString(season)
	}
	return seasonPattern.MatchString(season)
}

// ValidateDate accepts "2017-SEP-25" or "2017-09-25" (month name is case
// insensitive) and rejects dates that do not exist on the calendar.
func ValidateDate(s string) bool {
	up := strings.ToUpper(s)
	switch {
	case numericMonthDate.MatchString(up):
		_, err := time.Parse("2006-01-02", up)
		return err == nil
	case namedMonthDate.MatchString(up):
		// time.Parse wants "Sep", not "SEP".
		normalized := up[:5] + up[5:6] + strings.ToLower(up[6:8]) + up[8:]
		_, err := time.Parse("2006-Jan-02", normalized)
		return err == nil
	}
	return false
}

// ValidateSeasonWeek checks the week against the season type: PRE 0-4,
// REG 1-18, POST 1-4.
func ValidateSeasonWeek(season string, week int) bool {
	if !ValidateSeason(season, false) {
		return false
	}
	switch {
	case strings.HasSuffix(season, "PRE"):
		return week >= 0 && week <= 4
	case strings.HasSuffix(season, "REG"):
		return week >= 1 && week <= 18
	case strings.HasSuffix(season, "POST"):
		return week >= 1 && week <= 4
	}
	return false
}

// RequireSeason returns ErrInvalidSeason unless season matches one of the
// allowed forms.
func RequireSeason(season string, allowYearOnly bool) error {
	if ValidateSeason(season, false) || (allowYearOnly && ValidateSeason(season, true)) {
		return nil
	}
	if allowYearOnly {
		return fmt.Errorf("%w: %q must be YYYY, YYYYREG, YYYYPRE or YYYYPOST", ErrInvalidSeason, season)
	}
	return fmt.Errorf("%w: %q must be YYYYREG, YYYYPRE or YYYYPOST", ErrInvalidSeason, season)
}

// RequireSeasonWeek wraps ValidateSeasonWeek with a descriptive error.
func RequireSeasonWeek(season string, week int) error {
	if !ValidateSeasonWeek(season, week) {
		return fmt.Errorf("%w: season %q week %d", ErrInvalidSeasonWeek, season, week)
	}
	return nil
}

// RequireDate wraps ValidateDate with a descriptive error.
func RequireDate(date string) error {
	if !ValidateDate(date) {
		return fmt.Errorf("%w: %q must be YYYY-MM-DD or YYYY-MON-DD", ErrInvalidDate, date)
	}
	return nil
}

// RequireOption returns ErrInvalidOption unless value is in allowed.
func RequireOption(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidOption, name, allowed, value)
}
