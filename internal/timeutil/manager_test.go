package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return v
}

func TestWeekStartAroundMidnight(t *testing.T) {
	m := MustManager("Asia/Taipei")

	sunday := mustParse(t, "2024-01-14T15:59:59.999Z")
	monday := mustParse(t, "2024-01-14T16:00:00Z")

	assert.Equal(t, mustParse(t, "2024-01-07T16:00:00Z"), m.WeekStart(sunday))
	assert.Equal(t, time.Monday, m.WeekStart(sunday).In(m.Location()).Weekday())
	assert.Equal(t, mustParse(t, "2024-01-14T16:00:00Z"), m.WeekStart(monday))
}

func TestWeekBoundsSpanSevenDays(t *testing.T) {
	m := MustManager("Asia/Taipei")

	start, end := m.WeekBounds(mustParse(t, "2024-01-17T09:30:00Z"))
	assert.Equal(t, mustParse(t, "2024-01-14T16:00:00Z"), start)
	assert.Equal(t, mustParse(t, "2024-01-21T15:59:59.999Z"), end)
	assert.Equal(t, 7*24*time.Hour-time.Millisecond, end.Sub(start))
	assert.Equal(t, time.Monday, start.In(m.Location()).Weekday())
}

func TestDayBoundsContainInstant(t *testing.T) {
	m := MustManager("Asia/Taipei")
	base := mustParse(t, "2024-01-01T00:00:00Z")

	for i := 0; i < 500; i++ {
		ts := base.Add(time.Duration(i) * 97 * time.Minute)
		start, end := m.DayBounds(ts)
		assert.False(t, ts.Before(start), ts)
		assert.False(t, ts.After(end), ts)
		assert.Equal(t, m.DateString(ts), m.DateString(start))
		assert.Equal(t, m.DateString(ts), m.DateString(end))

		ws := m.WeekStart(ts)
		local := ws.In(m.Location())
		assert.Equal(t, time.Monday, local.Weekday())
		assert.Zero(t, local.Hour())
		assert.Zero(t, local.Minute())
	}
}

func TestSameCivilDateSameBounds(t *testing.T) {
	m := MustManager("Asia/Taipei")

	s1, e1 := m.DayBounds(mustParse(t, "2024-01-14T16:00:00Z"))
	s2, e2 := m.DayBounds(mustParse(t, "2024-01-15T15:59:59.999Z"))
	assert.Equal(t, s1, s2)
	assert.Equal(t, e1, e2)
	assert.Equal(t, "2024-01-15", m.DateString(s1))
}

func TestDSTWeekIsSevenCivilDays(t *testing.T) {
	m := MustManager("America/New_York")

	// Spring forward on 2024-03-10 makes this week one hour short.
	start, end := m.WeekBounds(mustParse(t, "2024-03-06T12:00:00Z"))
	assert.Equal(t, mustParse(t, "2024-03-04T05:00:00Z"), start)
	assert.Equal(t, mustParse(t, "2024-03-11T03:59:59.999Z"), end)

	days := m.DaysOfWeek(start)
	require.Len(t, days, 7)
	for i, d := range days {
		local := d.In(m.Location())
		assert.Zero(t, local.Hour(), i)
		assert.Equal(t, time.Weekday((i+1)%7), local.Weekday())
	}

	assert.Equal(t, "2024-03-11", m.DateString(m.AddDays(start, 7)))
}

func TestParseDate(t *testing.T) {
	m := MustManager("Asia/Taipei")

	d, err := m.ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, mustParse(t, "2024-01-14T16:00:00Z"), d)

	_, err = m.ParseDate("15/01/2024")
	assert.Error(t, err)
}

func TestNowSeam(t *testing.T) {
	m := MustManager("Asia/Taipei")
	fixed := mustParse(t, "2024-01-15T04:00:00Z")

	m.SetNowFunc(func() time.Time { return fixed.In(time.FixedZone("X", 3600)) })
	assert.Equal(t, fixed, m.Now())
	assert.Equal(t, time.UTC, m.Now().Location())

	m.SetNowFunc(nil)
	assert.WithinDuration(t, time.Now(), m.Now(), time.Second)
}

func TestFormatting(t *testing.T) {
	m := MustManager("Asia/Taipei")
	ws := mustParse(t, "2024-01-14T16:00:00Z")

	assert.Equal(t, "Jan 15", m.FormatShortDate(ws))
	assert.Equal(t, "Mon", m.FormatWeekday(ws))
	assert.Equal(t, "00:00", m.FormatTime(ws))
	assert.Equal(t, "1/15", m.FormatChartDate(ws))
	assert.Equal(t, "Jan 15 - Jan 21", m.FormatWeekRange(ws))
}

func TestNewManagerRejectsUnknownZone(t *testing.T) {
	_, err := NewManager("Nowhere/Special")
	assert.Error(t, err)

	m, err := NewManager("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, m.Location().String())
}
