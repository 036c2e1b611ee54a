package dto

type SetVerificationRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status" validate:"required" example:"VERIFIED"`
}

type ListUsersQuery struct {
	Status string `query:"status"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}
