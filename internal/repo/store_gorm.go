package repo

import (
	"context"

	"gorm.io/gorm"

	"places-api/internal/domain"
)

// Models 需要自动迁移的表
func Models() []any {
	return []any{&domain.User{}, &domain.Place{}, &UserPlace{}}
}

// Store gorm 实现；db 可以是普通连接也可以是事务句柄
type Store struct {
	db     *gorm.DB
	users  *UserRepo
	places *PlaceRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, users: NewUserRepo(db), places: NewPlaceRepo(db)}
}

func (s *Store) Users() domain.UserRepository   { return s.users }
func (s *Store) Places() domain.PlaceRepository { return s.places }

// WithinTx gorm.Transaction：fn 返回错误或 panic 都会 Rollback
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

var _ domain.Store = (*Store)(nil)
