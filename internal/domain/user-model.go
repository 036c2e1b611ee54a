package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

type UserStatus string

const (
	UserStatusWorking UserStatus = "WORKING"
	UserStatusRetired UserStatus = "RETIRED"
	UserStatusExpired UserStatus = "EXPIRED" // deceased
)

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleRegular UserRole = "REGULAR"
)

type CommitteeType string

const (
	CommitteeNone     CommitteeType = "NONE"
	CommitteeState    CommitteeType = "STATE"
	CommitteeDistrict CommitteeType = "DISTRICT"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleRegular
}

func (c CommitteeType) Valid() bool {
	switch c {
	case CommitteeNone, CommitteeState, CommitteeDistrict:
		return true
	}
	return false
}

type User struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	MembershipID *uint      `gorm:"uniqueIndex" json:"membership_id,omitempty"`
	Name         string     `gorm:"type:varchar(150);not null" json:"name"`
	Gender       string     `gorm:"type:varchar(20)" json:"gender,omitempty"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	PasswordHash string     `json:"-"`

	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:PENDING;index" json:"verification_status"`
	UserStatus         UserStatus         `gorm:"type:varchar(20);not null;default:WORKING" json:"user_status"`
	UserRole           UserRole           `gorm:"type:varchar(20);not null;default:REGULAR" json:"user_role"`

	// employment
	Designation       string `json:"designation"`
	Department        string `json:"department"`
	WorkDistrict      string `json:"work_district"`
	OfficeAddress     string `gorm:"type:text" json:"office_address"`
	RetiredDepartment string `json:"retired_department,omitempty"`

	// personal
	PersonalAddress string `gorm:"type:text" json:"personal_address"`
	HomeDistrict    string `json:"home_district"`
	PhoneNumber     string `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	MobileNumber    string `gorm:"type:varchar(20)" json:"mobile_number"`
	PhotoURL        string `gorm:"type:text" json:"photo_url,omitempty"`

	// committee, admin-owned
	CommitteeType    CommitteeType `gorm:"type:varchar(20);not null;default:NONE;index" json:"committee_type"`
	PositionState    string        `json:"position_state,omitempty"`
	PositionDistrict string        `json:"position_district,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.UserRole == RoleAdmin
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
