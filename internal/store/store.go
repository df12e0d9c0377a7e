// Package store implements the persistence layer: users and credentials,
// message history, profiles and usage stats. Every logical operation runs
// against a single gorm connection or transaction, so concurrent readers
// never observe a half-written user/message/profile/stats group.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lmarquezt/chatvault/internal/auth"
	"github.com/lmarquezt/chatvault/internal/models"
)

// Cache is an optional read cache for hot lookups. A nil Cache is valid and
// disables caching entirely.
type Cache interface {
	GetUsername(ctx context.Context, userID uint64) (string, bool)
	SetUsername(ctx context.Context, userID uint64, username string)
	InvalidateUser(ctx context.Context, userID uint64)
}

type Store struct {
	db    *gorm.DB
	cache Cache
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithCache returns a store that consults cache on reads and invalidates it
// on writes.
func (s *Store) WithCache(cache Cache) *Store {
	return &Store{db: s.db, cache: cache}
}

// UserSummary is the listing projection of a user row.
type UserSummary struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUser registers a new account. The username is checked before the
// insert; a taken name fails with ErrAlreadyExists and mutates nothing.
func (s *Store) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user := models.User{Username: username, PasswordHash: hash}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&cnt).Error; err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if cnt > 0 {
			return ErrAlreadyExists
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user and all dependent rows as one atomic unit.
func (s *Store) DeleteUser(ctx context.Context, userID uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&cnt).Error; err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if cnt == 0 {
			return ErrNotFound
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Stats{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateUser(ctx, userID)
	}
	return nil
}

// ListUsers returns all registered users ascending by username. An empty
// store yields an empty slice.
func (s *Store) ListUsers(ctx context.Context) ([]UserSummary, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt})
	}
	return out, nil
}

// ValidateCredentials checks a username/password pair. A missing user or a
// wrong password both report (0, false, nil); the error return is reserved
// for storage faults. The absent-user path still burns a bcrypt comparison
// so the two outcomes are not distinguishable by timing.
func (s *Store) ValidateCredentials(ctx context.Context, username, password string) (uint64, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.BurnCompare(password)
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return 0, false, nil
	}
	return user.ID, true, nil
}

// GetUsername resolves a user id to its username, or ErrNotFound.
func (s *Store) GetUsername(ctx context.Context, userID uint64) (string, error) {
	if s.cache != nil {
		if name, ok := s.cache.GetUsername(ctx, userID); ok {
			return name, nil
		}
	}
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "username").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lookup username: %w", err)
	}
	if s.cache != nil {
		s.cache.SetUsername(ctx, userID, user.Username)
	}
	return user.Username, nil
}

// SaveMessage appends one message row for the user and returns it with the
// assigned id and timestamp.
func (s *Store) SaveMessage(ctx context.Context, userID uint64, role, content string) (*models.Message, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	msg := models.Message{UserID: userID, Role: role, Content: content}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetMessages returns the user's history in ascending chronological order.
// With limit <= 0 the whole history is returned. With a positive limit the
// most recent N rows are fetched descending and reversed before return, so
// the caller always sees ascending order.
func (s *Store) GetMessages(ctx context.Context, userID uint64, limit int) ([]models.Message, error) {
	var msgs []models.Message

	if limit <= 0 {
		err := s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at ASC").Order("id ASC").
			Find(&msgs).Error
		if err != nil {
			return nil, err
		}
		return msgs, nil
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	// reverse to ASC (oldest -> newest)
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ClearMessages deletes the user's history. Profile and stats are untouched.
func (s *Store) ClearMessages(ctx context.Context, userID uint64) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Message{}).Error
}

// EnsureProfile materializes default profile and stats rows for the user if
// absent. It is idempotent; last_login is stamped only when the stats row is
// first created.
func (s *Store) EnsureProfile(ctx context.Context, userID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&cnt).Error; err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if cnt == 0 {
			return ErrNotFound
		}

		var profiles int64
		if err := tx.Model(&models.Profile{}).Where("user_id = ?", userID).Count(&profiles).Error; err != nil {
			return err
		}
		if profiles == 0 {
			p := models.Profile{UserID: userID, AvatarID: models.MinAvatarID, Theme: models.ThemeDark}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}

		var stats int64
		if err := tx.Model(&models.Stats{}).Where("user_id = ?", userID).Count(&stats).Error; err != nil {
			return err
		}
		if stats == 0 {
			now := time.Now()
			st := models.Stats{UserID: userID, LastLogin: &now}
			if err := tx.Create(&st).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAvatar returns the user's avatar id, creating the default profile first
// when missing.
func (s *Store) GetAvatar(ctx context.Context, userID uint64) (int, error) {
	if err := s.EnsureProfile(ctx, userID); err != nil {
		return 0, err
	}
	var p models.Profile
	if err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return 0, fmt.Errorf("load profile: %w", err)
	}
	return p.AvatarID, nil
}

// SetAvatar updates the avatar id. Out-of-range values are rejected before
// any write.
func (s *Store) SetAvatar(ctx context.Context, userID uint64, avatarID int) error {
	if !models.ValidAvatarID(avatarID) {
		return fmt.Errorf("%w: avatar id %d out of range", ErrValidation, avatarID)
	}
	if err := s.EnsureProfile(ctx, userID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("avatar_id", avatarID).Error; err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateUser(ctx, userID)
	}
	return nil
}

// GetTheme returns the user's theme preference, self-healing a missing row.
func (s *Store) GetTheme(ctx context.Context, userID uint64) (string, error) {
	if err := s.EnsureProfile(ctx, userID); err != nil {
		return "", err
	}
	var p models.Profile
	if err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}
	return p.Theme, nil
}

// SetTheme updates the theme preference. Unrecognized values are rejected
// before any write.
func (s *Store) SetTheme(ctx context.Context, userID uint64, theme string) error {
	if !models.ValidTheme(theme) {
		return fmt.Errorf("%w: unknown theme %q", ErrValidation, theme)
	}
	if err := s.EnsureProfile(ctx, userID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("theme", theme).Error; err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateUser(ctx, userID)
	}
	return nil
}

// GetStatsRow returns the raw stats counters, lazily initializing them.
func (s *Store) GetStatsRow(ctx context.Context, userID uint64) (*models.Stats, error) {
	if err := s.EnsureProfile(ctx, userID); err != nil {
		return nil, err
	}
	var st models.Stats
	if err := s.db.WithContext(ctx).First(&st, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return &st, nil
}

// GetUserCreatedAt returns the user's registration timestamp.
func (s *Store) GetUserCreatedAt(ctx context.Context, userID uint64) (time.Time, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "created_at").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("lookup user: %w", err)
	}
	return user.CreatedAt, nil
}

// RecordLogin stamps last_login to now.
func (s *Store) RecordLogin(ctx context.Context, userID uint64) error {
	if err := s.EnsureProfile(ctx, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Stats{}).
		Where("user_id = ?", userID).
		Update("last_login", time.Now()).Error
}

// IncrementMessageCount bumps total_messages by exactly one. The policy of
// when to call it (user-authored messages only) belongs to the caller.
func (s *Store) IncrementMessageCount(ctx context.Context, userID uint64) error {
	if err := s.EnsureProfile(ctx, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Stats{}).
		Where("user_id = ?", userID).
		Update("total_messages", gorm.Expr("total_messages + 1")).Error
}

// IncrementChatCount bumps total_chats by one.
func (s *Store) IncrementChatCount(ctx context.Context, userID uint64) error {
	if err := s.EnsureProfile(ctx, userID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.Stats{}).
		Where("user_id = ?", userID).
		Update("total_chats", gorm.Expr("total_chats + 1")).Error
}
