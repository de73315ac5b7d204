package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
)

type ApartmentRepo struct{ db *gorm.DB }

func NewApartmentRepo(db *gorm.DB) *ApartmentRepo {
	return &ApartmentRepo{db: db}
}

func (r *ApartmentRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Apartment{})
}

func (r *ApartmentRepo) Create(ctx context.Context, a *domain.Apartment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApartmentRepo) ByID(ctx context.Context, id string) (*domain.Apartment, error) {
	var a domain.Apartment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApartmentRepo) List(ctx context.Context) ([]domain.Apartment, error) {
	var out []domain.Apartment
	err := r.db.WithContext(ctx).Order("number ASC").Find(&out).Error
	return out, err
}
