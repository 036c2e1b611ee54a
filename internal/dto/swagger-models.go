package dto

// ===== Common responses =====

type APIError struct {
	Error string `json:"error" example:"invalid input"`
}

type APISuccessString struct {
	Data string `json:"data" example:"ok"`
}

type APISuccessAny struct {
	Data interface{} `json:"data"`
}

type APISuccessLogin struct {
	Data LoginResponse `json:"data"`
}
