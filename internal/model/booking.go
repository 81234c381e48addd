package model

import "time"

type Booking struct {
	BaseModel
	UserID     string    `gorm:"size:255;not null;index" json:"user_id"`
	HotelID    string    `gorm:"size:64;not null;index" json:"hotel_id"`
	HotelName  string    `gorm:"size:255" json:"hotel_name"`
	RoomNumber string    `gorm:"size:50;not null" json:"room_number"`
	StartDate  time.Time `gorm:"not null;index" json:"start_date"`
	EndDate    time.Time `gorm:"not null;index" json:"end_date"`
}

func (Booking) TableName() string {
	return "bookings"
}
