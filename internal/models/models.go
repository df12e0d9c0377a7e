// Package models contains the persisted domain records.
package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Avatar identifiers form a closed range; 1 is the default.
const (
	MinAvatarID = 1
	MaxAvatarID = 10
)

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

func (Message) TableName() string { return "messages" }

// Profile holds per-user presentation preferences, one row per user,
// materialized lazily on first access.
type Profile struct {
	UserID   uint64 `gorm:"primaryKey" json:"-"`
	User     User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AvatarID int    `gorm:"not null;default:1" json:"avatar_id"`
	Theme    string `gorm:"type:varchar(16);not null;default:dark" json:"theme"`
}

func (Profile) TableName() string { return "profiles" }

// Stats holds per-user usage counters, created alongside Profile.
type Stats struct {
	UserID        uint64     `gorm:"primaryKey" json:"-"`
	User          User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TotalMessages int64      `gorm:"not null;default:0" json:"total_messages"`
	TotalChats    int64      `gorm:"not null;default:0" json:"total_chats"`
	LastLogin     *time.Time `json:"last_login"`
}

func (Stats) TableName() string { return "stats" }

// ValidRole reports whether role is one of the two recognized values.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// ValidTheme reports whether theme is a recognized preference.
func ValidTheme(theme string) bool {
	return theme == ThemeDark || theme == ThemeLight
}

// ValidAvatarID reports whether id falls inside the closed avatar range.
func ValidAvatarID(id int) bool {
	return id >= MinAvatarID && id <= MaxAvatarID
}
