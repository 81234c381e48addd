package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tgo/chariott/internal/model"
)

type HotelRepository struct {
	db *gorm.DB
}

func NewHotelRepository(db *gorm.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

func (r *HotelRepository) Create(ctx context.Context, hotel *model.Hotel) error {
	return r.db.WithContext(ctx).Create(hotel).Error
}

func (r *HotelRepository) FindByID(ctx context.Context, id string) (*model.Hotel, error) {
	var hotel model.Hotel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&hotel).Error; err != nil {
		return nil, err
	}
	return &hotel, nil
}

func (r *HotelRepository) List(ctx context.Context) ([]model.Hotel, error) {
	var hotels []model.Hotel
	err := r.db.WithContext(ctx).Order("name ASC").Find(&hotels).Error
	return hotels, err
}

func (r *HotelRepository) Update(ctx context.Context, hotel *model.Hotel) error {
	return r.db.WithContext(ctx).Save(hotel).Error
}

func (r *HotelRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Hotel{})
	return result.RowsAffected > 0, result.Error
}
