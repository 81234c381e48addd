package service

import (
	"context"
	"strings"
	"time"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/repository"
)

type BookingService struct {
	bookings *repository.BookingRepository
	hotels   *repository.HotelRepository
	now      func() time.Time
}

func NewBookingService(bookings *repository.BookingRepository, hotels *repository.HotelRepository) *BookingService {
	return &BookingService{bookings: bookings, hotels: hotels, now: time.Now}
}

type CreateBookingRequest struct {
	UserID     string    `json:"user_id" binding:"required"`
	HotelID    string    `json:"hotel_id" binding:"required"`
	HotelName  string    `json:"hotel_name"`
	RoomNumber string    `json:"room_number" binding:"required"`
	StartDate  time.Time `json:"start_date" binding:"required"`
	EndDate    time.Time `json:"end_date" binding:"required"`
}

type UpdateBookingRequest struct {
	RoomNumber *string    `json:"room_number"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

// normalizeTime stores instants in UTC at second precision so comparisons
// behave the same on every database.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func checkStay(start, end time.Time) error {
	if !end.After(start) {
		return validationf("end_date must be after start_date")
	}
	return nil
}

func (s *BookingService) Create(ctx context.Context, req *CreateBookingRequest) (*model.Booking, error) {
	if strings.TrimSpace(req.RoomNumber) == "" {
		return nil, validationf("room_number is required")
	}
	start, end := normalizeTime(req.StartDate), normalizeTime(req.EndDate)
	if err := checkStay(start, end); err != nil {
		return nil, err
	}

	hotelName := req.HotelName
	if hotelName == "" {
		hotel, err := s.hotels.FindByID(ctx, req.HotelID)
		if err != nil {
			return nil, lookup("hotel", req.HotelID, err)
		}
		hotelName = hotel.Name
	}

	booking := &model.Booking{
		UserID:     req.UserID,
		HotelID:    req.HotelID,
		HotelName:  hotelName,
		RoomNumber: req.RoomNumber,
		StartDate:  start,
		EndDate:    end,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, upstream("create booking", err)
	}
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("booking", id, err)
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context) ([]model.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, upstream("list bookings", err)
	}
	return bookings, nil
}

func (s *BookingService) Current(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.window(s.bookings.ListCurrent(ctx, userID, normalizeTime(s.now())))
}

func (s *BookingService) Past(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.window(s.bookings.ListPast(ctx, userID, normalizeTime(s.now())))
}

func (s *BookingService) Future(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.window(s.bookings.ListFuture(ctx, userID, normalizeTime(s.now())))
}

func (s *BookingService) window(bookings []model.Booking, err error) ([]model.Booking, error) {
	if err != nil {
		return nil, upstream("list bookings", err)
	}
	return bookings, nil
}

func (s *BookingService) Update(ctx context.Context, id string, req *UpdateBookingRequest) (*model.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RoomNumber != nil {
		if strings.TrimSpace(*req.RoomNumber) == "" {
			return nil, validationf("room_number cannot be empty")
		}
		booking.RoomNumber = *req.RoomNumber
	}
	if req.StartDate != nil {
		booking.StartDate = normalizeTime(*req.StartDate)
	}
	if req.EndDate != nil {
		booking.EndDate = normalizeTime(*req.EndDate)
	}
	if err := checkStay(booking.StartDate, booking.EndDate); err != nil {
		return nil, err
	}
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, upstream("update booking", err)
	}
	return booking, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return upstream("delete booking", err)
	}
	if !deleted {
		return notFound("booking", id)
	}
	return nil
}
