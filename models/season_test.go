package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSeason(t *testing.T) {
	assert.True(t, ValidateSeason("2024REG", false))
	assert.True(t, ValidateSeason("2023POST", false))
	assert.True(t, ValidateSeason("2025PRE", false))
	assert.False(t, ValidateSeason("2024", false))
	assert.False(t, ValidateSeason("2024reg", false))
	assert.True(t, ValidateSeason("2024", true))
	assert.False(t, ValidateSeason("2024REG", true))
	assert.False(t, ValidateSeason("24", true))
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2017-09-25", true},
		{"2017-SEP-25", true},
		{"2017-sep-25", true},
		{"2017-02-30", false},
		{"2017-FEB-30", false},
		{"2017-XYZ-01", false},
		{"17-09-25", false},
		{"2017/09/25", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateDate(tt.in), tt.in)
	}
}

func TestValidateSeasonWeek(t *testing.T) {
	assert.True(t, ValidateSeasonWeek("2024PRE", 0))
	assert.False(t, ValidateSeasonWeek("2024PRE", 5))
	assert.True(t, ValidateSeasonWeek("2024REG", 1))
	assert.True(t, ValidateSeasonWeek("2024REG", 18))
	assert.False(t, ValidateSeasonWeek("2024REG", 0))
	assert.False(t, ValidateSeasonWeek("2024REG", 19))
	assert.True(t, ValidateSeasonWeek("2024POST", 4))
	assert.False(t, ValidateSeasonWeek("2024POST", 5))
	assert.False(t, ValidateSeasonWeek("2024", 1))
}

func TestRequireHelpersWrapSentinels(t *testing.T) {
	assert.True(t, errors.Is(RequireSeason("2024", false), ErrInvalidSeason))
	assert.NoError(t, RequireSeason("2024", true))
	assert.True(t, errors.Is(RequireSeasonWeek("2024REG", 40), ErrInvalidSeasonWeek))
	assert.True(t, errors.Is(RequireDate("nope"), ErrInvalidDate))
	assert.True(t, errors.Is(RequireOption("typeof", "nope", "available", "free-agent"), ErrInvalidOption))
	assert.NoError(t, RequireOption("typeof", "available", "available", "free-agent"))
}
