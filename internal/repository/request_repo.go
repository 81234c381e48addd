package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tgo/chariott/internal/model"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *model.ServiceRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) Update(ctx context.Context, req *model.ServiceRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *RequestRepository) ListByHotel(ctx context.Context, hotelID string, status model.RequestStatus) ([]model.ServiceRequest, error) {
	return r.listBy(ctx, "hotel_id", hotelID, status)
}

func (r *RequestRepository) ListByUser(ctx context.Context, userID string, status model.RequestStatus) ([]model.ServiceRequest, error) {
	return r.listBy(ctx, "user_id", userID, status)
}

func (r *RequestRepository) List(ctx context.Context, status model.RequestStatus, limit, offset int) ([]model.ServiceRequest, int64, error) {
	var reqs []model.ServiceRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ServiceRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Session(&gorm.Session{}).Order("time_issued DESC, id ASC").Limit(limit).Offset(offset).Find(&reqs).Error
	return reqs, total, err
}

func (r *RequestRepository) listBy(ctx context.Context, column, value string, status model.RequestStatus) ([]model.ServiceRequest, error) {
	var reqs []model.ServiceRequest
	query := r.db.WithContext(ctx).Where(column+" = ?", value)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("time_issued DESC, id ASC").Find(&reqs).Error
	return reqs, err
}
