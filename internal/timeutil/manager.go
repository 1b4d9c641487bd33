// Package timeutil owns every translation between absolute instants and
// civil dates in the configured reference zone. Nothing else in the module
// derives day or week boundaries on its own.
package timeutil

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout      = "2006-01-02"
	DefaultTimezone = "Asia/Taipei"
)

// Manager computes civil day and week boundaries in a fixed zone. All
// returned instants are in UTC.
type Manager struct {
	loc *time.Location

	mu      sync.RWMutex
	nowFunc func() time.Time
}

func NewManager(zone string) (*Manager, error) {
	if zone == "" {
		zone = DefaultTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", zone, err)
	}
	return &Manager{loc: loc, nowFunc: time.Now}, nil
}

// MustManager is NewManager for zones known to be valid.
func MustManager(zone string) *Manager {
	m, err := NewManager(zone)
	if err != nil {
		panic(err)
	}
	return m
}

// SetNowFunc replaces the clock. Passing nil restores time.Now.
func (m *Manager) SetNowFunc(fn func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		fn = time.Now
	}
	m.nowFunc = fn
}

func (m *Manager) Now() time.Time {
	m.mu.RLock()
	fn := m.nowFunc
	m.mu.RUnlock()
	return fn().UTC()
}

func (m *Manager) Location() *time.Location {
	return m.loc
}

func (m *Manager) startOfDay(t time.Time) time.Time {
	lt := t.In(m.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, m.loc)
}

// DayBounds returns the first instant and the last millisecond of the civil
// day containing t.
func (m *Manager) DayBounds(t time.Time) (time.Time, time.Time) {
	start := m.startOfDay(t)
	next := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, m.loc)
	return start.UTC(), next.Add(-time.Millisecond).UTC()
}

// WeekStart returns Monday 00:00 of the week containing t.
func (m *Manager) WeekStart(t time.Time) time.Time {
	day := m.startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, m.loc).UTC()
}

// WeekEnd returns the last millisecond of the Sunday in weekStart's week.
func (m *Manager) WeekEnd(weekStart time.Time) time.Time {
	ws := m.WeekStart(weekStart).In(m.loc)
	next := time.Date(ws.Year(), ws.Month(), ws.Day()+7, 0, 0, 0, 0, m.loc)
	return next.Add(-time.Millisecond).UTC()
}

func (m *Manager) WeekBounds(t time.Time) (time.Time, time.Time) {
	start := m.WeekStart(t)
	return start, m.WeekEnd(start)
}

// DateString formats t as YYYY-MM-DD in the reference zone.
func (m *Manager) DateString(t time.Time) string {
	return t.In(m.loc).Format(DateLayout)
}

// ParseDate returns the first instant of the civil date s (YYYY-MM-DD).
func (m *Manager) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, m.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d.UTC(), nil
}

// AddDays shifts t by n civil days, keeping the wall clock in the zone.
func (m *Manager) AddDays(t time.Time, n int) time.Time {
	lt := t.In(m.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day()+n, lt.Hour(), lt.Minute(), lt.Second(), lt.Nanosecond(), m.loc).UTC()
}

// DaysOfWeek returns the seven civil-day starts of weekStart's week.
func (m *Manager) DaysOfWeek(weekStart time.Time) []time.Time {
	ws := m.WeekStart(weekStart).In(m.loc)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = time.Date(ws.Year(), ws.Month(), ws.Day()+i, 0, 0, 0, 0, m.loc).UTC()
	}
	return days
}

// Display helpers. Never compare their output.

func (m *Manager) FormatShortDate(t time.Time) string {
	return t.In(m.loc).Format("Jan 2")
}

func (m *Manager) FormatWeekday(t time.Time) string {
	return t.In(m.loc).Format("Mon")
}

func (m *Manager) FormatTime(t time.Time) string {
	return t.In(m.loc).Format("15:04")
}

func (m *Manager) FormatChartDate(t time.Time) string {
	return t.In(m.loc).Format("1/2")
}

func (m *Manager) FormatWeekRange(weekStart time.Time) string {
	return m.FormatShortDate(weekStart) + " - " + m.FormatShortDate(m.WeekEnd(weekStart))
}
