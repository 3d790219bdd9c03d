package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	from, to, err := dateRange{}.resolve(now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -30), from)
	assert.Equal(t, now.AddDate(0, 0, 30), to)

	from, to, err = dateRange{from: "2024-01-01", to: "2024-01-31"}.resolve(now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", from.Format(time.DateOnly))
	assert.Equal(t, "2024-01-31", to.Format(time.DateOnly))

	_, _, err = dateRange{from: "2024-02-01", to: "2024-01-01"}.resolve(now)
	assert.Error(t, err)

	_, _, err = dateRange{from: "yesterday"}.resolve(now)
	assert.ErrorContains(t, err, "--from")
}

func TestParseDue(t *testing.T) {
	due, err := parseDue("")
	require.NoError(t, err)
	assert.True(t, due.IsZero())

	due, err = parseDue("2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, due.Hour())

	due, err = parseDue("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.March, due.Month())

	_, err = parseDue("soon")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "-", describe("", "Acme"))
	assert.Equal(t, "O1", describe("O1", ""))
	assert.Equal(t, "Acme (O1)", describe("O1", "Acme"))
}

func TestArgOrFlag(t *testing.T) {
	assert.Equal(t, "a b", argOrFlag([]string{"a", "b"}, "x"))
	assert.Equal(t, "x", argOrFlag(nil, " x "))
}
