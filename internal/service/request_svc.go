package service

import (
	"context"
	"strings"
	"time"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/repository"
)

const (
	DefaultRequestLimit = 50
	MaxRequestLimit     = 100
)

type RequestService struct {
	requests *repository.RequestRepository
	now      func() time.Time
}

func NewRequestService(requests *repository.RequestRepository) *RequestService {
	return &RequestService{requests: requests, now: time.Now}
}

type CreateServiceRequest struct {
	UserID     string           `json:"user_id" binding:"required"`
	HotelID    string           `json:"hotel_id" binding:"required"`
	Department model.Department `json:"department" binding:"required"`
	Task       string           `json:"task" binding:"required"`
}

type UpdateServiceRequest struct {
	Status        model.RequestStatus `json:"status" binding:"required"`
	TimeCompleted *time.Time          `json:"time_completed"`
}

func (s *RequestService) Create(ctx context.Context, req *CreateServiceRequest) (*model.ServiceRequest, error) {
	if !req.Department.Valid() {
		return nil, validationf("unknown department %q", req.Department)
	}
	if strings.TrimSpace(req.Task) == "" {
		return nil, validationf("task is required")
	}
	sr := &model.ServiceRequest{
		UserID:     req.UserID,
		HotelID:    req.HotelID,
		Department: req.Department,
		Task:       req.Task,
		Status:     model.RequestStatusPending,
		TimeIssued: normalizeTime(s.now()),
	}
	if err := s.requests.Create(ctx, sr); err != nil {
		return nil, upstream("create request", err)
	}
	return sr, nil
}

func (s *RequestService) Get(ctx context.Context, id string) (*model.ServiceRequest, error) {
	sr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("request", id, err)
	}
	return sr, nil
}

// Update changes the status. Moving to completed stamps time_completed,
// using the supplied time when present.
func (s *RequestService) Update(ctx context.Context, id string, req *UpdateServiceRequest) (*model.ServiceRequest, error) {
	if !req.Status.Valid() {
		return nil, validationf("unknown status %q", req.Status)
	}
	sr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sr.Status = req.Status
	if req.Status == model.RequestStatusCompleted {
		done := normalizeTime(s.now())
		if req.TimeCompleted != nil {
			done = normalizeTime(*req.TimeCompleted)
		}
		sr.TimeCompleted = &done
	} else {
		sr.TimeCompleted = nil
	}

	if err := s.requests.Update(ctx, sr); err != nil {
		return nil, upstream("update request", err)
	}
	return sr, nil
}

func parseStatus(status string) (model.RequestStatus, error) {
	st := model.RequestStatus(status)
	if st != "" && !st.Valid() {
		return "", validationf("unknown status %q", status)
	}
	return st, nil
}

func (s *RequestService) ListByHotel(ctx context.Context, hotelID, status string) ([]model.ServiceRequest, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	reqs, err := s.requests.ListByHotel(ctx, hotelID, st)
	if err != nil {
		return nil, upstream("list requests", err)
	}
	return reqs, nil
}

func (s *RequestService) ListByUser(ctx context.Context, userID, status string) ([]model.ServiceRequest, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	reqs, err := s.requests.ListByUser(ctx, userID, st)
	if err != nil {
		return nil, upstream("list requests", err)
	}
	return reqs, nil
}

func (s *RequestService) List(ctx context.Context, status string, limit, offset int) ([]model.ServiceRequest, int64, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, 0, err
	}
	if limit < 1 || limit > MaxRequestLimit {
		return nil, 0, validationf("limit must be between 1 and %d", MaxRequestLimit)
	}
	if offset < 0 {
		return nil, 0, validationf("offset cannot be negative")
	}
	reqs, total, err := s.requests.List(ctx, st, limit, offset)
	if err != nil {
		return nil, 0, upstream("list requests", err)
	}
	return reqs, total, nil
}
