package cronexpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMatches_Wildcard(t *testing.T) {
	for _, value := range []int{0, 17, 59} {
		ok, err := fieldMatches("*", value)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestFieldMatches_Step(t *testing.T) {
	t.Run("wildcard base", func(t *testing.T) {
		matching := map[int]bool{0: true, 15: true, 30: true, 45: true}
		for value := 0; value < 60; value++ {
			ok, err := fieldMatches("*/15", value)
			require.NoError(t, err)
			assert.Equal(t, matching[value], ok, "value %d", value)
		}
	})

	t.Run("integer base", func(t *testing.T) {
		ok, err := fieldMatches("10/5", 10)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = fieldMatches("10/5", 25)
		require.NoError(t, err)
		assert.True(t, ok)

		// Values below the base never match.
		ok, err = fieldMatches("10/5", 5)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = fieldMatches("10/5", 12)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("bad step", func(t *testing.T) {
		_, err := fieldMatches("*/x", 0)
		assert.ErrorIs(t, err, ErrBadExpression)

		_, err = fieldMatches("*/0", 0)
		assert.ErrorIs(t, err, ErrBadExpression)
	})
}

func TestFieldMatches_Range(t *testing.T) {
	for value, want := range map[int]bool{8: false, 9: true, 13: true, 17: true, 18: false} {
		ok, err := fieldMatches("9-17", value)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "value %d", value)
	}
}

func TestFieldMatches_List(t *testing.T) {
	for value, want := range map[int]bool{1: true, 2: false, 15: true, 30: true, 45: false} {
		ok, err := fieldMatches("1,15,30", value)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "value %d", value)
	}

	_, err := fieldMatches("1,x,30", 1)
	assert.ErrorIs(t, err, ErrBadExpression)
}

func TestFieldMatches_Integer(t *testing.T) {
	ok, err := fieldMatches("30", 30)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fieldMatches("30", 29)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = fieldMatches("thirty", 30)
	assert.ErrorIs(t, err, ErrBadExpression)
}

func TestMatches_AllWildcards(t *testing.T) {
	timestamps := []time.Time{
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 15, 23, 59, 0, 0, time.UTC),
		time.Now(),
	}
	for _, ts := range timestamps {
		ok, err := Matches("* * * * *", ts)
		require.NoError(t, err)
		assert.True(t, ok, "timestamp %s", ts)
	}
}

func TestMatches_DayOfWeek(t *testing.T) {
	monday := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())
	sunday := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, sunday.Weekday())

	ok, err := Matches("* * * * 1", monday)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches("* * * * 0", sunday)
	require.NoError(t, err)
	assert.True(t, ok)

	// 7 is not an alias for Sunday in this dialect.
	ok, err = Matches("* * * * 7", sunday)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatches_FieldCount(t *testing.T) {
	now := time.Now()

	_, err := Matches("* * * *", now)
	assert.ErrorIs(t, err, ErrBadExpression)

	_, err = Matches("* * * * * *", now)
	assert.ErrorIs(t, err, ErrBadExpression)
}

func TestMatches_FullExpressions(t *testing.T) {
	friday5pm := time.Date(2025, time.June, 6, 17, 0, 0, 0, time.UTC)
	require.Equal(t, time.Friday, friday5pm.Weekday())

	ok, err := Matches("0 17 * * 5", friday5pm)
	require.NoError(t, err)
	assert.True(t, ok)

	saturday5pm := friday5pm.Add(24 * time.Hour)
	ok, err = Matches("0 17 * * 5", saturday5pm)
	require.NoError(t, err)
	assert.False(t, ok)

	morning := time.Date(2025, time.June, 6, 7, 0, 0, 0, time.UTC)
	ok, err = Matches("0 7 * * *", morning)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Matches("0 7 * * *", morning.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := []string{
		"* * * * *",
		"*/30 * * * *",
		"0 7 * * *",
		"0 17 * * 5",
		"0,30 9-17 * * 1,2,3,4,5",
	}
	for _, expr := range valid {
		assert.NoError(t, Validate(expr), "expression %q", expr)
	}

	invalid := []string{
		"* * * *",
		"* * * * * *",
		"a * * * *",
		"1-b * * * *",
		"*/ * * * *",
		"",
	}
	for _, expr := range invalid {
		assert.ErrorIs(t, Validate(expr), ErrBadExpression, "expression %q", expr)
	}
}

func TestNext(t *testing.T) {
	base := time.Date(2025, time.June, 6, 6, 30, 0, 0, time.UTC)

	next := Next("0 7 * * *", base)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, time.June, 6, 7, 0, 0, 0, time.UTC), *next)

	// Advisory only: expressions the standard parser rejects yield nil.
	assert.Nil(t, Next("not a cron expression", base))
}
