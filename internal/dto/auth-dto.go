package dto

import "github.com/SundayYogurt/member_service/internal/domain"

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required,max=150"`
	Gender          string `json:"gender" validate:"omitempty,max=20"`
	DateOfBirth     string `json:"date_of_birth" validate:"omitempty" example:"1980-04-21"`
	Designation     string `json:"designation" validate:"required,max=150"`
	Department      string `json:"department" validate:"required,max=150"`
	WorkDistrict    string `json:"work_district" validate:"required,max=100"`
	OfficeAddress   string `json:"office_address" validate:"required,max=500"`
	PersonalAddress string `json:"personal_address" validate:"omitempty,max=500"`
	HomeDistrict    string `json:"home_district" validate:"omitempty,max=100"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,max=20"`
	MobileNumber    string `json:"mobile_number" validate:"required,min=7,max=20"`
}

type CheckUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CheckUserResponse struct {
	Exists             bool   `json:"exists"`
	VerificationStatus string `json:"verification_status"`
	HasPassword        bool   `json:"has_password"`
	SecurityQuestion   string `json:"security_question,omitempty"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user"`
}

type SetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Question string `json:"security_question" validate:"required,max=255"`
	Answer   string `json:"security_answer" validate:"required,max=255"`
}

type ForgotPasswordVerifyRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Answer string `json:"security_answer" validate:"required"`
}

type ForgotPasswordVerifyResponse struct {
	ResetToken string `json:"reset_token"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}
