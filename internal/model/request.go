package model

import "time"

type Department string

const (
	DepartmentReception    Department = "reception"
	DepartmentHousekeeping Department = "housekeeping"
	DepartmentMaintenance  Department = "maintenance"
)

func (d Department) Valid() bool {
	switch d {
	case DepartmentReception, DepartmentHousekeeping, DepartmentMaintenance:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusCompleted:
		return true
	}
	return false
}

// ServiceRequest is a guest's housekeeping/maintenance/reception ticket.
type ServiceRequest struct {
	BaseModel
	UserID        string        `gorm:"size:255;not null;index" json:"user_id"`
	HotelID       string        `gorm:"size:64;not null;index" json:"hotel_id"`
	Department    Department    `gorm:"size:50;not null" json:"department"`
	Task          string        `gorm:"type:text;not null" json:"task"`
	Status        RequestStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	TimeIssued    time.Time     `gorm:"not null" json:"time_issued"`
	TimeCompleted *time.Time    `json:"time_completed,omitempty"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}
