package dto

type CreateChangeRequest struct {
	RequestType      string `json:"request_type" validate:"required" example:"TRANSFER"`
	NewPosition      string `json:"new_position" validate:"omitempty,max=150"`
	NewWorkDistrict  string `json:"new_work_district" validate:"omitempty,max=100"`
	NewOfficeAddress string `json:"new_office_address" validate:"omitempty,max=500"`
	RetirementDate   string `json:"retirement_date" example:"2026-03-31"`
}

type DismissRequest struct {
	RequestID uint `json:"request_id" validate:"required"`
}

type DecideRequest struct {
	RequestID     uint   `json:"request_id" validate:"required"`
	Status        string `json:"status" validate:"required" example:"VERIFIED"`
	AdminComments string `json:"admin_comments" validate:"max=2000" example:"ok"`
}

type CreateObituaryRequest struct {
	MembershipID   uint   `json:"membership_id" validate:"required"`
	DateOfDeath    string `json:"date_of_death" validate:"required" example:"2026-01-15"`
	AdditionalNote string `json:"additional_note" validate:"max=2000"`
}

type ObituaryResponse struct {
	ID             uint   `json:"id"`
	MembershipID   uint   `json:"membership_id"`
	Name           string `json:"name"`
	Designation    string `json:"designation"`
	PhotoURL       string `json:"photo_url,omitempty"`
	DateOfDeath    string `json:"date_of_death"`
	AdditionalNote string `json:"additional_note,omitempty"`
	ExpiryDate     string `json:"expiry_date"`
}
