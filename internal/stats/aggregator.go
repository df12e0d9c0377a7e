// Package stats derives rolling usage metrics from stored counters and
// timestamps.
package stats

import (
	"context"
	"math"
	"time"

	"github.com/lmarquezt/chatvault/internal/store"
)

// Summary is the aggregate view shown on a user's stats screen.
type Summary struct {
	TotalMessages     int64      `json:"total_messages"`
	TotalChats        int64      `json:"total_chats"`
	LastLogin         *time.Time `json:"last_login"`
	DaysActive        int        `json:"days_active"`
	AvgMessagesPerDay float64    `json:"avg_messages_per_day"`
}

type Aggregator struct {
	store *store.Store
	now   func() time.Time
}

func New(st *store.Store) *Aggregator {
	return &Aggregator{store: st, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	return &Aggregator{store: a.store, now: now}
}

// Summary computes the user's usage metrics. A brand-new user has
// DaysActive 1; a negative day count (clock skew) guards the division and
// reports a zero average instead of failing. A missing stats row is lazily
// initialized to zeroes by the store.
func (a *Aggregator) Summary(ctx context.Context, userID uint64) (*Summary, error) {
	row, err := a.store.GetStatsRow(ctx, userID)
	if err != nil {
		return nil, err
	}
	createdAt, err := a.store.GetUserCreatedAt(ctx, userID)
	if err != nil {
		return nil, err
	}

	days := daysActive(createdAt, a.now())
	avg := 0.0
	if days > 0 {
		avg = round1(float64(row.TotalMessages) / float64(days))
	}

	return &Summary{
		TotalMessages:     row.TotalMessages,
		TotalChats:        row.TotalChats,
		LastLogin:         row.LastLogin,
		DaysActive:        days,
		AvgMessagesPerDay: avg,
	}, nil
}

// RecordLogin stamps the user's last login to now.
func (a *Aggregator) RecordLogin(ctx context.Context, userID uint64) error {
	return a.store.RecordLogin(ctx, userID)
}

// IncrementMessageCount bumps the message counter by exactly one.
func (a *Aggregator) IncrementMessageCount(ctx context.Context, userID uint64) error {
	return a.store.IncrementMessageCount(ctx, userID)
}

// daysActive counts whole days elapsed since creation, plus one, so a user
// created moments ago is on day 1.
func daysActive(createdAt, now time.Time) int {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed.Hours()/24) + 1
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
