package model

type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type CommunityProject struct {
	ImageURL    string `json:"image_url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Amenities struct {
	Breakfast     bool `json:"breakfast"`
	Bar           bool `json:"bar"`
	RoomService   bool `json:"room_service"`
	PetFriendly   bool `json:"pet_friendly"`
	FrontDesk24x7 bool `json:"front_desk_24_7"`
	Parking       bool `json:"parking"`
}

type Hotel struct {
	BaseModel
	ChainID                string             `gorm:"size:255;index" json:"chain_id,omitempty"`
	Name                   string             `gorm:"size:255;not null" json:"name"`
	EcoRating              int                `gorm:"not null" json:"eco_rating"`
	Location               Location           `gorm:"type:text;serializer:json" json:"location"`
	LocalCommunityProjects []CommunityProject `gorm:"type:text;serializer:json" json:"local_community_projects"`
	Amenities              Amenities          `gorm:"type:text;serializer:json" json:"amenities"`
}

func (Hotel) TableName() string {
	return "hotels"
}
