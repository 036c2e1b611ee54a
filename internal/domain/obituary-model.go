package domain

import "time"

type Obituary struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	MembershipID   uint      `gorm:"not null;uniqueIndex" json:"membership_id"`
	DateOfDeath    time.Time `gorm:"not null" json:"date_of_death"`
	AdditionalNote string    `gorm:"type:text" json:"additional_note,omitempty"`
	ExpiryDate     time.Time `gorm:"not null;index" json:"expiry_date"`
	CreatedBy      string    `gorm:"type:varchar(36)" json:"created_by"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SecurityQuestion struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     string `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Question   string `gorm:"type:text;not null" json:"question"`
	AnswerHash string `gorm:"not null" json:"-"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MembershipCounter holds the last allocated membership id.
type MembershipCounter struct {
	Name  string `gorm:"primaryKey;type:varchar(50)"`
	Value uint   `gorm:"not null;default:0"`
}

const MembershipCounterName = "membership"
