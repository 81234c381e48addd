package model

type UserType string

const (
	UserTypeNormal UserType = "normal"
	UserTypeStaff  UserType = "staff"
)

type StaffType string

const (
	StaffTypeHousekeeping StaffType = "housekeeping"
	StaffTypeMaintenance  StaffType = "maintenance"
	StaffTypeReception    StaffType = "reception"
	StaffTypeManager      StaffType = "manager"
)

func (t StaffType) Valid() bool {
	switch t {
	case StaffTypeHousekeeping, StaffTypeMaintenance, StaffTypeReception, StaffTypeManager:
		return true
	}
	return false
}

// User is unique by email. Other records reference User.ID as user_id.
type User struct {
	BaseModel
	Email              string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName          string    `gorm:"size:100" json:"first_name"`
	LastName           string    `gorm:"size:100" json:"last_name"`
	PasswordHash       string    `gorm:"size:255;not null" json:"-"`
	UserType           UserType  `gorm:"size:20;not null;index" json:"user_type"`
	StaffType          StaffType `gorm:"size:50" json:"staff_type,omitempty"`
	InteractionCounter int64     `gorm:"default:0" json:"interaction_counter"`
	Preferences        JSONMap   `gorm:"type:text" json:"preferences,omitempty"`
}

func (User) TableName() string {
	return "users"
}
