package store

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
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Message{}, &models.Profile{}, &models.Stats{},
	))
	return db
}

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	db := openTestDB(t)
	return New(db), db
}

func TestCreateUser_DuplicateFailsWithoutMutation(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	_, err = s.CreateUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	var cnt int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Count(&cnt).Error)
	assert.Equal(t, int64(1), cnt)
}

func TestCreateUser_HashesSecret(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "bob", "plaintext")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.Where("username = ?", "bob").First(&user).Error)
	assert.NotEqual(t, "plaintext", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "plaintext")
}

func TestValidateCredentials(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "carol", "pw123")
	require.NoError(t, err)

	id, valid, err := s.ValidateCredentials(ctx, "carol", "pw123")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, u.ID, id)

	id, valid, err = s.ValidateCredentials(ctx, "carol", "pw123x")
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Zero(t, id)

	id, valid, err = s.ValidateCredentials(ctx, "nobody", "pw123")
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Zero(t, id)
}

func TestDeleteUser_CascadesEverything(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "dave", "pw")
	require.NoError(t, err)
	require.NoError(t, s.EnsureProfile(ctx, u.ID))
	_, err = s.SaveMessage(ctx, u.ID, models.RoleUser, "hi")
	require.NoError(t, err)
	_, err = s.SaveMessage(ctx, u.ID, models.RoleAssistant, "hello")
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	for _, probe := range []struct {
		name  string
		model any
	}{
		{"users", &models.User{}},
		{"messages", &models.Message{}},
		{"profiles", &models.Profile{}},
		{"stats", &models.Stats{}},
	} {
		var cnt int64
		require.NoError(t, db.Model(probe.model).Count(&cnt).Error)
		assert.Zero(t, cnt, "leftover rows in %s", probe.name)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.DeleteUser(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers_SortedByUsername(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, name := range []string{"zoe", "adam", "mia"} {
		_, err := s.CreateUser(ctx, name, "pw")
		require.NoError(t, err)
	}

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "adam", users[0].Username)
	assert.Equal(t, "mia", users[1].Username)
	assert.Equal(t, "zoe", users[2].Username)
}

func TestGetUsername(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "erin", "pw")
	require.NoError(t, err)

	name, err := s.GetUsername(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin", name)

	_, err = s.GetUsername(ctx, u.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveMessage_RejectsUnknownRole(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "fred", "pw")
	require.NoError(t, err)

	_, err = s.SaveMessage(ctx, u.ID, "system", "nope")
	assert.ErrorIs(t, err, ErrValidation)

	var cnt int64
	require.NoError(t, db.Model(&models.Message{}).Count(&cnt).Error)
	assert.Zero(t, cnt)
}

func TestGetMessages_LimitReturnsMostRecentAscending(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "gina", "pw")
	require.NoError(t, err)

	contents := []string{"m1", "m2", "m3", "m4"}
	for i, c := range contents {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		_, err := s.SaveMessage(ctx, u.ID, role, c)
		require.NoError(t, err)
	}

	got, err := s.GetMessages(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m3", got[0].Content)
	assert.Equal(t, "m4", got[1].Content)
}

func TestGetMessages_RoundTripFidelity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "hugo", "pw")
	require.NoError(t, err)

	sent := []struct{ role, content string }{
		{models.RoleUser, "¿Qué tal?\n\ttabs and unicode — ✓"},
		{models.RoleAssistant, `{"not":"parsed"}`},
		{models.RoleUser, ""},
	}
	for _, m := range sent {
		_, err := s.SaveMessage(ctx, u.ID, m.role, m.content)
		require.NoError(t, err)
	}

	got, err := s.GetMessages(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, got, len(sent))
	for i, m := range sent {
		assert.Equal(t, m.role, got[i].Role)
		assert.Equal(t, m.content, got[i].Content)
	}
}

func TestClearMessages_LeavesProfileAndStats(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "iris", "pw")
	require.NoError(t, err)
	require.NoError(t, s.EnsureProfile(ctx, u.ID))
	_, err = s.SaveMessage(ctx, u.ID, models.RoleUser, "hello")
	require.NoError(t, err)

	require.NoError(t, s.ClearMessages(ctx, u.ID))

	var msgs, profiles, stats int64
	require.NoError(t, db.Model(&models.Message{}).Count(&msgs).Error)
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	require.NoError(t, db.Model(&models.Stats{}).Count(&stats).Error)
	assert.Zero(t, msgs)
	assert.Equal(t, int64(1), profiles)
	assert.Equal(t, int64(1), stats)
}

func TestAvatar_RangeValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "june", "pw")
	require.NoError(t, err)

	// defaults materialize lazily
	avatar, err := s.GetAvatar(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, avatar)

	assert.ErrorIs(t, s.SetAvatar(ctx, u.ID, 0), ErrValidation)
	assert.ErrorIs(t, s.SetAvatar(ctx, u.ID, 11), ErrValidation)

	avatar, err = s.GetAvatar(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, avatar, "rejected writes must not mutate")

	require.NoError(t, s.SetAvatar(ctx, u.ID, 5))
	avatar, err = s.GetAvatar(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, avatar)
}

func TestTheme_EnumValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "kent", "pw")
	require.NoError(t, err)

	theme, err := s.GetTheme(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)

	assert.ErrorIs(t, s.SetTheme(ctx, u.ID, "solarized"), ErrValidation)

	require.NoError(t, s.SetTheme(ctx, u.ID, models.ThemeLight))
	theme, err = s.GetTheme(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, theme)
}

func TestEnsureProfile_IdempotentAndStampsFirstLogin(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "lena", "pw")
	require.NoError(t, err)

	require.NoError(t, s.EnsureProfile(ctx, u.ID))

	var st models.Stats
	require.NoError(t, db.First(&st, "user_id = ?", u.ID).Error)
	require.NotNil(t, st.LastLogin)
	first := *st.LastLogin

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.EnsureProfile(ctx, u.ID))

	var profiles, stats int64
	require.NoError(t, db.Model(&models.Profile{}).Where("user_id = ?", u.ID).Count(&profiles).Error)
	require.NoError(t, db.Model(&models.Stats{}).Where("user_id = ?", u.ID).Count(&stats).Error)
	assert.Equal(t, int64(1), profiles)
	assert.Equal(t, int64(1), stats)

	require.NoError(t, db.First(&st, "user_id = ?", u.ID).Error)
	assert.True(t, st.LastLogin.Equal(first), "last_login must only be stamped on first creation")
}

func TestEnsureProfile_UnknownUser(t *testing.T) {
	s, _ := newTestStore(t)
	assert.ErrorIs(t, s.EnsureProfile(context.Background(), 999), ErrNotFound)
}

func TestCounters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "mona", "pw")
	require.NoError(t, err)

	require.NoError(t, s.IncrementMessageCount(ctx, u.ID))
	require.NoError(t, s.IncrementMessageCount(ctx, u.ID))
	require.NoError(t, s.IncrementChatCount(ctx, u.ID))

	row, err := s.GetStatsRow(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.TotalMessages)
	assert.Equal(t, int64(1), row.TotalChats)
}

func TestRecordLogin(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "nora", "pw")
	require.NoError(t, err)
	require.NoError(t, s.EnsureProfile(ctx, u.ID))

	before, err := s.GetStatsRow(ctx, u.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.RecordLogin(ctx, u.ID))

	after, err := s.GetStatsRow(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, after.LastLogin)
	assert.True(t, after.LastLogin.After(*before.LastLogin))
}
