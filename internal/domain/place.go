package domain

import (
	"context"
	"time"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Place struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:191;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Address     string    `gorm:"size:512;not null" json:"address"`
	Location    Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Image       string    `gorm:"size:512" json:"image"`
	Creator     string    `gorm:"size:36;index;not null" json:"creator"` // 所属用户 id
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaceRepository 返回 (nil, nil) 表示未找到
type PlaceRepository interface {
	Create(ctx context.Context, p *Place) error
	FindByID(ctx context.Context, id string) (*Place, error)
	FindByCreator(ctx context.Context, userID string) ([]Place, error)
	UpdateDetails(ctx context.Context, id, title, description string) error
	Delete(ctx context.Context, id string) error
}

// Store 聚合两个仓库；WithinTx 传入的 tx 绑定同一个事务，fn 返回错误或 panic 时整体回滚
type Store interface {
	Users() UserRepository
	Places() PlaceRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
