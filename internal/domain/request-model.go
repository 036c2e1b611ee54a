package domain

import (
	"time"

	"gorm.io/gorm"
)

type RequestType string

const (
	RequestTransfer   RequestType = "TRANSFER"
	RequestPromotion  RequestType = "PROMOTION"
	RequestRetirement RequestType = "RETIREMENT"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestTransfer, RequestPromotion, RequestRetirement:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestVerified RequestStatus = "VERIFIED"
	RequestRejected RequestStatus = "REJECTED"
)

// VisibilityWindow is how long an approved request or an obituary stays on display.
const VisibilityWindow = 7 * 24 * time.Hour

type PromotionTransferRequest struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       string        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	MembershipID uint          `gorm:"not null;index" json:"membership_id"`
	RequestType  RequestType   `gorm:"type:varchar(20);not null" json:"request_type"`
	Status       RequestStatus `gorm:"type:varchar(20);not null;default:PENDING;index" json:"status"`

	OldPosition      string `json:"old_position,omitempty"`
	NewPosition      string `json:"new_position,omitempty"`
	OldWorkDistrict  string `json:"old_work_district,omitempty"`
	NewWorkDistrict  string `json:"new_work_district,omitempty"`
	OldOfficeAddress string `gorm:"type:text" json:"old_office_address,omitempty"`
	NewOfficeAddress string `gorm:"type:text" json:"new_office_address,omitempty"`

	RetirementDate *time.Time `json:"retirement_date,omitempty"`

	AdminComments string     `gorm:"type:text" json:"admin_comments,omitempty"`
	DecidedBy     *string    `gorm:"type:varchar(36)" json:"decided_by,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	ShowAgain     bool       `gorm:"not null;default:true" json:"show_again"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
