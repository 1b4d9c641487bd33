package domain

import (
	"context"
	"time"
)

// UserProvisioner creates users on first sight.
type UserProvisioner interface {
	EnsureUserExists(ctx context.Context, externalID string) (*User, error)
}

// WeeklyUpdater recomputes the weekly aggregate containing an instant.
type WeeklyUpdater interface {
	UpdateWeeklyStats(ctx context.Context, userID string, t time.Time) (*WeeklyStats, error)
}
