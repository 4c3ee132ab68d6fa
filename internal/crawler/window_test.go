package crawler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateWindow(t *testing.T) {
	w, err := ParseDateWindow("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 1), w.Start)
	assert.Equal(t, day(2024, 3, 31), w.End)
	assert.Equal(t, "[2024-03-01, 2024-03-31]", w.String())

	open, err := ParseDateWindow("", "2024-03-31")
	require.NoError(t, err)
	assert.True(t, open.Start.IsZero())
	assert.Equal(t, "[*, 2024-03-31]", open.String())

	_, err = ParseDateWindow("2024-04-01", "2024-03-31")
	assert.Error(t, err)

	_, err = ParseDateWindow("03/01/2024", "")
	assert.Error(t, err)
}

func TestDateWindowContains(t *testing.T) {
	w, err := NewDateWindow(day(2024, 3, 1), day(2024, 3, 31))
	require.NoError(t, err)

	assert.True(t, w.Contains(day(2024, 3, 1)))
	assert.True(t, w.Contains(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, w.Contains(day(2024, 3, 15)))
	assert.False(t, w.Contains(day(2024, 2, 29)))
	assert.False(t, w.Contains(day(2024, 4, 1)))

	assert.True(t, DateWindow{}.Contains(day(1999, 1, 1)))
	assert.True(t, DateWindow{Start: day(2024, 3, 1)}.Contains(day(2030, 1, 1)))
	assert.False(t, DateWindow{End: day(2024, 3, 1)}.Contains(day(2024, 3, 2)))
}

func TestParseReviewDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-03-05", day(2024, 3, 5), true},
		{"2024-03-05T22:10:00Z", day(2024, 3, 5), true},
		{"Reviewed on 2024-03-05", day(2024, 3, 5), true},
		{"03/05/2024", day(2024, 3, 5), true},
		{"3/5/2024", day(2024, 3, 5), true},
		{"Mar 5, 2024", day(2024, 3, 5), true},
		{"Reviewed on March 5, 2024", day(2024, 3, 5), true},
		{"Sep. 9, 2023", day(2023, 9, 9), true},
		{"Sept. 5, 2024", day(2024, 9, 5), true},
		{"Reviewed Sept 5, 2024", day(2024, 9, 5), true},
		{"September 5, 2024", day(2024, 9, 5), true},
		{"5 Sept 2024", day(2024, 9, 5), true},
		{"5 March 2024", day(2024, 3, 5), true},
		{"two days ago", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseReviewDate(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}
