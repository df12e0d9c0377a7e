package stats

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lmarquezt/chatvault/internal/models"
	"github.com/lmarquezt/chatvault/internal/store"
)

func setup(t *testing.T) (*store.Store, *gorm.DB) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(gormsqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Message{}, &models.Profile{}, &models.Stats{}))
	return store.New(db), db
}

func TestSummary_BrandNewUser(t *testing.T) {
	st, _ := setup(t)
	ctx := context.Background()

	u, err := st.CreateUser(ctx, "pia", "pw")
	require.NoError(t, err)

	agg := New(st)
	sum, err := agg.Summary(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.DaysActive)
	assert.Equal(t, int64(0), sum.TotalMessages)
	assert.Equal(t, 0.0, sum.AvgMessagesPerDay)
	require.NotNil(t, sum.LastLogin, "lazy init stamps first login")
}

func TestSummary_AverageOneDecimal(t *testing.T) {
	st, _ := setup(t)
	ctx := context.Background()

	u, err := st.CreateUser(ctx, "quin", "pw")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.IncrementMessageCount(ctx, u.ID))
	}

	agg := New(st)
	sum, err := agg.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.DaysActive)
	assert.Equal(t, 3.0, sum.AvgMessagesPerDay)
}

func TestSummary_MultiDayRounding(t *testing.T) {
	st, _ := setup(t)
	ctx := context.Background()

	u, err := st.CreateUser(ctx, "rhea", "pw")
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		require.NoError(t, st.IncrementMessageCount(ctx, u.ID))
	}

	created, err := st.GetUserCreatedAt(ctx, u.ID)
	require.NoError(t, err)

	// pin "now" two full days after creation: day 3, 7/3 = 2.333... -> 2.3
	agg := New(st).WithClock(func() time.Time { return created.Add(48*time.Hour + time.Minute) })
	sum, err := agg.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.DaysActive)
	assert.Equal(t, 2.3, sum.AvgMessagesPerDay)
}

func TestSummary_ClockSkewGuard(t *testing.T) {
	st, _ := setup(t)
	ctx := context.Background()

	u, err := st.CreateUser(ctx, "sam", "pw")
	require.NoError(t, err)
	require.NoError(t, st.IncrementMessageCount(ctx, u.ID))

	created, err := st.GetUserCreatedAt(ctx, u.ID)
	require.NoError(t, err)

	// "now" before the creation timestamp must not divide by zero or fail
	agg := New(st).WithClock(func() time.Time { return created.Add(-time.Hour) })
	sum, err := agg.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.DaysActive)
	assert.Equal(t, 0.0, sum.AvgMessagesPerDay)
}

func TestSummary_LazyInitZeroedDefaults(t *testing.T) {
	st, db := setup(t)
	ctx := context.Background()

	u, err := st.CreateUser(ctx, "tess", "pw")
	require.NoError(t, err)

	var cnt int64
	require.NoError(t, db.Model(&models.Stats{}).Count(&cnt).Error)
	require.Zero(t, cnt, "no stats row before first access")

	agg := New(st)
	sum, err := agg.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.TotalMessages)
	assert.Equal(t, int64(0), sum.TotalChats)

	require.NoError(t, db.Model(&models.Stats{}).Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)
}

func TestSummary_UnknownUser(t *testing.T) {
	st, _ := setup(t)
	agg := New(st)
	_, err := agg.Summary(context.Background(), 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
