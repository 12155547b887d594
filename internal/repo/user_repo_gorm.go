package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"places-api/internal/domain"
)

// UserPlace 用户拥有的地点列表（自增 ID 保证顺序）
type UserPlace struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	UserID  string `gorm:"size:36;not null;uniqueIndex:uniq_user_place,priority:1"`
	PlaceID string `gorm:"size:36;not null;uniqueIndex:uniq_user_place,priority:2"`
}

func (UserPlace) TableName() string { return "user_places" }

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if err != nil && isDupKey(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	places, err := r.placeIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Places = places
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return users, nil
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	var links []UserPlace
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Order("id asc").Find(&links).Error; err != nil {
		return nil, err
	}
	byUser := make(map[string][]string, len(users))
	for _, l := range links {
		byUser[l.UserID] = append(byUser[l.UserID], l.PlaceID)
	}
	for i := range users {
		users[i].Places = byUser[users[i].ID]
		if users[i].Places == nil {
			users[i].Places = []string{}
		}
	}
	return users, nil
}

func (r *UserRepo) AppendPlace(ctx context.Context, userID, placeID string) error {
	return r.db.WithContext(ctx).Create(&UserPlace{UserID: userID, PlaceID: placeID}).Error
}

func (r *UserRepo) RemovePlace(ctx context.Context, userID, placeID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		Delete(&UserPlace{}).Error
}

func (r *UserRepo) placeIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&UserPlace{}).
		Where("user_id = ?", userID).
		Order("id asc").
		Pluck("place_id", &ids).Error
	return ids, err
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

var _ domain.UserRepository = (*UserRepo)(nil)
