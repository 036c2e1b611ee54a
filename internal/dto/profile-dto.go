package dto

// UpdateUserProfile holds the fields a verified member may edit on their own record.
type UpdateUserProfile struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Gender          *string `json:"gender,omitempty" validate:"omitempty,max=20"`
	DateOfBirth     *string `json:"date_of_birth,omitempty"`
	Department      *string `json:"department,omitempty" validate:"omitempty,min=1,max=150"`
	OfficeAddress   *string `json:"office_address,omitempty" validate:"omitempty,min=1,max=500"`
	PersonalAddress *string `json:"personal_address,omitempty" validate:"omitempty,max=500"`
	HomeDistrict    *string `json:"home_district,omitempty" validate:"omitempty,max=100"`
	PhoneNumber     *string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	MobileNumber    *string `json:"mobile_number,omitempty" validate:"omitempty,min=7,max=20"`
}

// AdminUpdateUser is the administrator's patch: every profile field plus committee and role.
type AdminUpdateUser struct {
	UpdateUserProfile
	Designation      *string `json:"designation,omitempty" validate:"omitempty,min=1,max=150"`
	WorkDistrict     *string `json:"work_district,omitempty" validate:"omitempty,min=1,max=100"`
	CommitteeType    *string `json:"committee_type,omitempty" validate:"omitempty,oneof=NONE STATE DISTRICT"`
	PositionState    *string `json:"position_state,omitempty" validate:"omitempty,max=100"`
	PositionDistrict *string `json:"position_district,omitempty" validate:"omitempty,max=100"`
	UserRole         *string `json:"user_role,omitempty" validate:"omitempty,oneof=ADMIN REGULAR"`
}

type CommitteeQuery struct {
	Type     string `query:"type" validate:"required,oneof=STATE DISTRICT"`
	District string `query:"district"`
}

type CommitteeMemberResponse struct {
	MembershipID     uint   `json:"membership_id"`
	Name             string `json:"name"`
	Designation      string `json:"designation"`
	CommitteeType    string `json:"committee_type"`
	PositionState    string `json:"position_state,omitempty"`
	PositionDistrict string `json:"position_district,omitempty"`
	MobileNumber     string `json:"mobile_number"`
	PhotoURL         string `json:"photo_url,omitempty"`
}
