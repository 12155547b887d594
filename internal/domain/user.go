package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateEmail 仓库层唯一索引冲突
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrNotFound 更新/删除的目标行不存在
	ErrNotFound = errors.New("record not found")
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Image        string    `gorm:"size:512" json:"image"`
	Places       []string  `gorm:"-" json:"places"` // owned place ids, oldest first
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository 返回 (nil, nil) 表示未找到
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	AppendPlace(ctx context.Context, userID, placeID string) error
	RemovePlace(ctx context.Context, userID, placeID string) error
}
