package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/dto"
	"github.com/SundayYogurt/member_service/internal/events"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/interfaces"
	"github.com/SundayYogurt/member_service/internal/repository"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/SundayYogurt/member_service/pkg/utils"
	"go.uber.org/zap"
)

const (
	PhotoFolder   = "members/photos"
	PhotoMaxBytes = 5 * 1024 * 1024
	PhotoMaxWidth = 800
	photoQuality  = 85
	minPassword   = 8
)

var photoExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type UserService interface {
	// Auth
	Register(input dto.RegisterRequest) (*domain.User, error)
	CheckUser(input dto.CheckUserRequest) (*dto.CheckUserResponse, error)
	SetPassword(input dto.SetPasswordRequest) error
	Login(input dto.UserLogin) (*domain.User, string, error)
	ForgotPasswordVerify(input dto.ForgotPasswordVerifyRequest) (string, error)
	ForgotPasswordReset(input dto.ResetPasswordRequest) error

	// Profile
	UpdateOwnProfile(user *domain.User, input dto.UpdateUserProfile) (*domain.User, error)
	UploadPhoto(ctx context.Context, user *domain.User, filename string, data []byte) (*domain.User, error)

	// Directory
	ListCommittee(q dto.CommitteeQuery) ([]dto.CommitteeMemberResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	auth      helper.Auth
	uploader  interfaces.Uploader
	publisher *events.Publisher
	log       *zap.Logger
}

func NewUserService(
	repo repository.UserRepository,
	auth helper.Auth,
	uploader interfaces.Uploader,
	publisher *events.Publisher,
	log *zap.Logger,
) UserService {
	return &userService{
		repo:      repo,
		auth:      auth,
		uploader:  uploader,
		publisher: publisher,
		log:       log,
	}
}

// AUTH
func (u *userService) Register(input dto.RegisterRequest) (*domain.User, error) {
	email := helper.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, xerrors.ErrInvalidInput
	}

	newUser := &domain.User{
		Email:              email,
		Name:               name,
		Gender:             strings.TrimSpace(input.Gender),
		Designation:        strings.TrimSpace(input.Designation),
		Department:         strings.TrimSpace(input.Department),
		WorkDistrict:       strings.TrimSpace(input.WorkDistrict),
		OfficeAddress:      strings.TrimSpace(input.OfficeAddress),
		PersonalAddress:    strings.TrimSpace(input.PersonalAddress),
		HomeDistrict:       strings.TrimSpace(input.HomeDistrict),
		PhoneNumber:        strings.TrimSpace(input.PhoneNumber),
		MobileNumber:       strings.TrimSpace(input.MobileNumber),
		VerificationStatus: domain.VerificationPending,
		UserStatus:         domain.UserStatusWorking,
		UserRole:           domain.RoleRegular,
		CommitteeType:      domain.CommitteeNone,
	}
	if input.DateOfBirth != "" {
		dob, err := helper.ParseDate(input.DateOfBirth)
		if err != nil {
			return nil, err
		}
		newUser.DateOfBirth = &dob
	}

	usr, err := u.repo.CreateUser(newUser)
	if err != nil {
		return nil, err
	}

	u.log.Info("user registered", zap.String("user_id", usr.ID))
	u.publisher.Publish(events.TypeUserRegistered, events.UserRegistered{
		UserID: usr.ID,
		Email:  usr.Email,
		Name:   usr.Name,
	})
	return usr, nil
}

func (u *userService) CheckUser(input dto.CheckUserRequest) (*dto.CheckUserResponse, error) {
	user, err := u.repo.FindUserByEmail(helper.NormalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}

	resp := &dto.CheckUserResponse{
		Exists:             true,
		VerificationStatus: string(user.VerificationStatus),
		HasPassword:        user.HasPassword(),
	}
	if resp.HasPassword {
		q, err := u.repo.FindSecurityQuestion(user.ID)
		switch {
		case err == nil:
			resp.SecurityQuestion = q.Question
		case xerrors.KindOf(err) != xerrors.KindNotFound:
			return nil, err
		}
	}
	return resp, nil
}

func (u *userService) SetPassword(input dto.SetPasswordRequest) error {
	if len(input.Password) < minPassword {
		return xerrors.ErrWeakPassword
	}
	question := strings.TrimSpace(input.Question)
	answer := normalizeAnswer(input.Answer)
	if question == "" || answer == "" {
		return xerrors.ErrInvalidInput
	}

	user, err := u.repo.FindUserByEmail(helper.NormalizeEmail(input.Email))
	if err != nil {
		return err
	}
	if user.VerificationStatus != domain.VerificationVerified {
		return xerrors.ErrAwaitingApproval
	}
	if user.HasPassword() {
		return xerrors.ErrPasswordAlreadySet
	}

	passwordHash, err := u.auth.HashPassword(input.Password)
	if err != nil {
		return err
	}
	answerHash, err := u.auth.HashPassword(answer)
	if err != nil {
		return err
	}

	return u.repo.SetPasswordWithQuestion(user.ID, passwordHash, &domain.SecurityQuestion{
		Question:   question,
		AnswerHash: answerHash,
	})
}

func (u *userService) Login(input dto.UserLogin) (*domain.User, string, error) {
	email := helper.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, "", xerrors.ErrInvalidCredentials
	}

	user, err := u.repo.FindUserByEmail(email)
	if err != nil {
		if xerrors.KindOf(err) == xerrors.KindNotFound {
			return nil, "", xerrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.auth.VerifyPassword(input.Password, user.PasswordHash); err != nil {
		return nil, "", err
	}
	if user.VerificationStatus != domain.VerificationVerified || user.MembershipID == nil {
		return nil, "", xerrors.ErrNotVerified
	}

	token, err := u.auth.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *userService) ForgotPasswordVerify(input dto.ForgotPasswordVerifyRequest) (string, error) {
	user, err := u.repo.FindUserByEmail(helper.NormalizeEmail(input.Email))
	if err != nil {
		return "", err
	}
	if user.VerificationStatus != domain.VerificationVerified {
		return "", xerrors.ErrAwaitingApproval
	}

	q, err := u.repo.FindSecurityQuestion(user.ID)
	if err != nil {
		return "", err
	}
	if err := u.auth.VerifyPassword(normalizeAnswer(input.Answer), q.AnswerHash); err != nil {
		return "", xerrors.ErrWrongAnswer
	}

	return u.auth.GenerateResetToken(user)
}

func (u *userService) ForgotPasswordReset(input dto.ResetPasswordRequest) error {
	claims, err := u.auth.VerifyResetToken(input.Token)
	if err != nil {
		return err
	}
	if len(input.NewPassword) < minPassword {
		return xerrors.ErrWeakPassword
	}

	user, err := u.repo.FindUserById(claims.UserID)
	if err != nil {
		if xerrors.KindOf(err) == xerrors.KindNotFound {
			return xerrors.ErrInvalidToken
		}
		return err
	}
	if user.Email != claims.Email {
		return xerrors.ErrInvalidToken
	}

	hash, err := u.auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	if err := u.repo.UpdateFields(user.ID, map[string]any{"password_hash": hash}); err != nil {
		return err
	}
	u.log.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

// PROFILE
func (u *userService) UpdateOwnProfile(user *domain.User, input dto.UpdateUserProfile) (*domain.User, error) {
	fields, err := profileFields(input)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := u.repo.UpdateFields(user.ID, fields); err != nil {
			return nil, err
		}
	}
	return u.repo.FindUserById(user.ID)
}

func (u *userService) UploadPhoto(ctx context.Context, user *domain.User, filename string, data []byte) (*domain.User, error) {
	if !photoExts[strings.ToLower(filepath.Ext(filename))] {
		return nil, xerrors.ErrUnsupportedImage
	}
	if len(data) > PhotoMaxBytes {
		return nil, xerrors.ErrImageTooLarge
	}
	if u.uploader == nil {
		u.log.Error("photo upload attempted without an uploader", zap.String("user_id", user.ID))
		return nil, xerrors.ErrUploadsDisabled
	}

	jpg, err := utils.NormalizeToJPG(data, PhotoMaxWidth, photoQuality)
	if err != nil {
		return nil, xerrors.ErrUnsupportedImage
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	url, err := u.uploader.UploadBytes(ctx, PhotoFolder, user.ID, jpg)
	if err != nil {
		return nil, err
	}
	if err := u.repo.UpdateFields(user.ID, map[string]any{"photo_url": url}); err != nil {
		return nil, err
	}
	return u.repo.FindUserById(user.ID)
}

func (u *userService) ListCommittee(q dto.CommitteeQuery) ([]dto.CommitteeMemberResponse, error) {
	committee := domain.CommitteeType(strings.ToUpper(strings.TrimSpace(q.Type)))
	if committee != domain.CommitteeState && committee != domain.CommitteeDistrict {
		return nil, xerrors.Invalid("type must be one of [STATE DISTRICT]")
	}

	users, err := u.repo.ListCommittee(committee, strings.TrimSpace(q.District))
	if err != nil {
		return nil, err
	}

	out := make([]dto.CommitteeMemberResponse, 0, len(users))
	for _, usr := range users {
		var membershipID uint
		if usr.MembershipID != nil {
			membershipID = *usr.MembershipID
		}
		out = append(out, dto.CommitteeMemberResponse{
			MembershipID:     membershipID,
			Name:             usr.Name,
			Designation:      usr.Designation,
			CommitteeType:    string(usr.CommitteeType),
			PositionState:    usr.PositionState,
			PositionDistrict: usr.PositionDistrict,
			MobileNumber:     usr.MobileNumber,
			PhotoURL:         usr.PhotoURL,
		})
	}
	return out, nil
}

// profileFields turns the self-editable patch into column updates.
func profileFields(input dto.UpdateUserProfile) (map[string]any, error) {
	fields := map[string]any{}
	setTrimmed(fields, "name", input.Name)
	setTrimmed(fields, "gender", input.Gender)
	setTrimmed(fields, "department", input.Department)
	setTrimmed(fields, "office_address", input.OfficeAddress)
	setTrimmed(fields, "personal_address", input.PersonalAddress)
	setTrimmed(fields, "home_district", input.HomeDistrict)
	setTrimmed(fields, "phone_number", input.PhoneNumber)
	setTrimmed(fields, "mobile_number", input.MobileNumber)

	if name, ok := fields["name"]; ok && name == "" {
		return nil, xerrors.Invalid("name cannot be empty")
	}
	if input.DateOfBirth != nil {
		dob, err := helper.ParseDate(*input.DateOfBirth)
		if err != nil {
			return nil, err
		}
		fields["date_of_birth"] = dob
	}
	return fields, nil
}

func setTrimmed(fields map[string]any, column string, v *string) {
	if v != nil {
		fields[column] = strings.TrimSpace(*v)
	}
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
