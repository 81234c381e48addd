package service

import (
	"context"
	"strings"

	"github.com/tgo/chariott/internal/model"
	"github.com/tgo/chariott/internal/repository"
)

const maxEcoRating = 10

type HotelService struct {
	hotels *repository.HotelRepository
}

func NewHotelService(hotels *repository.HotelRepository) *HotelService {
	return &HotelService{hotels: hotels}
}

type CreateHotelRequest struct {
	ChainID                string                   `json:"chain_id"`
	Name                   string                   `json:"name" binding:"required"`
	EcoRating              int                      `json:"eco_rating"`
	Location               model.Location           `json:"location"`
	LocalCommunityProjects []model.CommunityProject `json:"local_community_projects"`
	Amenities              model.Amenities          `json:"amenities"`
}

// UpdateHotelRequest is a partial update; nil fields are left unchanged.
type UpdateHotelRequest struct {
	ChainID                *string                   `json:"chain_id"`
	Name                   *string                   `json:"name"`
	EcoRating              *int                      `json:"eco_rating"`
	Location               *model.Location           `json:"location"`
	LocalCommunityProjects *[]model.CommunityProject `json:"local_community_projects"`
	Amenities              *model.Amenities          `json:"amenities"`
}

func validEcoRating(r int) error {
	if r < 0 || r > maxEcoRating {
		return validationf("eco_rating must be between 0 and %d", maxEcoRating)
	}
	return nil
}

func (s *HotelService) Create(ctx context.Context, req *CreateHotelRequest) (*model.Hotel, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, validationf("name is required")
	}
	if err := validEcoRating(req.EcoRating); err != nil {
		return nil, err
	}
	projects := req.LocalCommunityProjects
	if projects == nil {
		projects = []model.CommunityProject{}
	}
	hotel := &model.Hotel{
		ChainID:                req.ChainID,
		Name:                   req.Name,
		EcoRating:              req.EcoRating,
		Location:               req.Location,
		LocalCommunityProjects: projects,
		Amenities:              req.Amenities,
	}
	if err := s.hotels.Create(ctx, hotel); err != nil {
		return nil, upstream("create hotel", err)
	}
	return hotel, nil
}

func (s *HotelService) Get(ctx context.Context, id string) (*model.Hotel, error) {
	hotel, err := s.hotels.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("hotel", id, err)
	}
	return hotel, nil
}

func (s *HotelService) List(ctx context.Context) ([]model.Hotel, error) {
	hotels, err := s.hotels.List(ctx)
	if err != nil {
		return nil, upstream("list hotels", err)
	}
	return hotels, nil
}

func (s *HotelService) Update(ctx context.Context, id string, req *UpdateHotelRequest) (*model.Hotel, error) {
	hotel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ChainID != nil {
		hotel.ChainID = *req.ChainID
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, validationf("name cannot be empty")
		}
		hotel.Name = *req.Name
	}
	if req.EcoRating != nil {
		if err := validEcoRating(*req.EcoRating); err != nil {
			return nil, err
		}
		hotel.EcoRating = *req.EcoRating
	}
	if req.Location != nil {
		hotel.Location = *req.Location
	}
	if req.LocalCommunityProjects != nil {
		hotel.LocalCommunityProjects = *req.LocalCommunityProjects
	}
	if req.Amenities != nil {
		hotel.Amenities = *req.Amenities
	}

	if err := s.hotels.Update(ctx, hotel); err != nil {
		return nil, upstream("update hotel", err)
	}
	return hotel, nil
}

func (s *HotelService) Delete(ctx context.Context, id string) error {
	deleted, err := s.hotels.Delete(ctx, id)
	if err != nil {
		return upstream("delete hotel", err)
	}
	if !deleted {
		return notFound("hotel", id)
	}
	return nil
}
