package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"places-api/internal/domain"
)

type PlaceRepo struct{ db *gorm.DB }

func NewPlaceRepo(db *gorm.DB) *PlaceRepo { return &PlaceRepo{db: db} }

func (r *PlaceRepo) Create(ctx context.Context, p *domain.Place) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PlaceRepo) FindByID(ctx context.Context, id string) (*domain.Place, error) {
	var p domain.Place
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlaceRepo) FindByCreator(ctx context.Context, userID string) ([]domain.Place, error) {
	var ps []domain.Place
	err := r.db.WithContext(ctx).
		Where("creator = ?", userID).
		Order("created_at asc").
		Find(&ps).Error
	return ps, err
}

func (r *PlaceRepo) UpdateDetails(ctx context.Context, id, title, description string) error {
	res := r.db.WithContext(ctx).Model(&domain.Place{}).
		Where("id = ?", id).
		Updates(map[string]any{"title": title, "description": description})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("place %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PlaceRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Place{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("place %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var _ domain.PlaceRepository = (*PlaceRepo)(nil)
