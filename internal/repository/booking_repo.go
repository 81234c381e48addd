package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tgo/chariott/internal/model"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) List(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).Order("start_date ASC, id ASC").Find(&bookings).Error
	return bookings, err
}

// ListCurrent returns bookings whose stay contains now.
func (r *BookingRepository) ListCurrent(ctx context.Context, userID string, now time.Time) ([]model.Booking, error) {
	return r.find(ctx, "user_id = ? AND start_date <= ? AND end_date >= ?", userID, now, now)
}

func (r *BookingRepository) ListPast(ctx context.Context, userID string, now time.Time) ([]model.Booking, error) {
	return r.find(ctx, "user_id = ? AND end_date < ?", userID, now)
}

func (r *BookingRepository) ListFuture(ctx context.Context, userID string, now time.Time) ([]model.Booking, error) {
	return r.find(ctx, "user_id = ? AND start_date > ?", userID, now)
}

func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *BookingRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Booking{})
	return result.RowsAffected > 0, result.Error
}

func (r *BookingRepository) find(ctx context.Context, query string, args ...interface{}) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).Where(query, args...).Order("start_date ASC, id ASC").Find(&bookings).Error
	return bookings, err
}
