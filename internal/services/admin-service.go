package services

import (
	"strings"

	"github.com/SundayYogurt/member_service/internal/cache"
	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/dto"
	"github.com/SundayYogurt/member_service/internal/events"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/repository"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AdminService interface {
	// Verification
	SetVerification(admin *domain.User, input dto.SetVerificationRequest) (*domain.User, error)
	ListUsers(q dto.ListUsersQuery) ([]domain.User, int64, error)

	// Profile & role
	AdminUpdateUser(admin *domain.User, email string, input dto.AdminUpdateUser) (*domain.User, error)
}

type adminService struct {
	repo      repository.UserRepository
	roles     *cache.RoleCache
	publisher *events.Publisher
	log       *zap.Logger
}

func NewAdminService(
	repo repository.UserRepository,
	roles *cache.RoleCache,
	publisher *events.Publisher,
	log *zap.Logger,
) AdminService {
	return &adminService{
		repo:      repo,
		roles:     roles,
		publisher: publisher,
		log:       log,
	}
}

// SetVerification moves a PENDING user to VERIFIED (assigning the next
// membership id) or REJECTED.
func (a *adminService) SetVerification(admin *domain.User, input dto.SetVerificationRequest) (*domain.User, error) {
	status := domain.VerificationStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
	if status != domain.VerificationVerified && status != domain.VerificationRejected {
		return nil, xerrors.ErrInvalidStatus
	}

	user, err := a.repo.FindUserByEmail(helper.NormalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user.MembershipID != nil {
		return nil, xerrors.ErrAlreadyVerified
	}
	if user.VerificationStatus != domain.VerificationPending {
		return nil, xerrors.ErrNotPending
	}

	switch status {
	case domain.VerificationVerified:
		membershipID, err := a.repo.Verify(user.ID, admin.ID)
		if err != nil {
			return nil, err
		}
		a.log.Info("user verified",
			zap.String("user_id", user.ID),
			zap.Uint("membership_id", membershipID),
			zap.String("admin_id", admin.ID),
		)
		a.publisher.Publish(events.TypeUserVerified, events.UserVerified{
			UserID:       user.ID,
			Email:        user.Email,
			Name:         user.Name,
			MembershipID: membershipID,
		})
	case domain.VerificationRejected:
		if err := a.repo.Reject(user.ID, admin.ID); err != nil {
			return nil, err
		}
		a.log.Info("user rejected", zap.String("user_id", user.ID), zap.String("admin_id", admin.ID))
		a.publisher.Publish(events.TypeUserRejected, events.UserRejected{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		})
	}

	return a.repo.FindUserById(user.ID)
}

func (a *adminService) ListUsers(q dto.ListUsersQuery) ([]domain.User, int64, error) {
	status := domain.VerificationStatus(strings.ToUpper(strings.TrimSpace(q.Status)))
	if status != "" && !status.Valid() {
		return nil, 0, xerrors.ErrInvalidStatus
	}
	limit, offset := page(q.Limit, q.Offset)
	return a.repo.ListByStatus(status, limit, offset)
}

func (a *adminService) AdminUpdateUser(admin *domain.User, email string, input dto.AdminUpdateUser) (*domain.User, error) {
	user, err := a.repo.FindUserByEmail(helper.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	fields, err := profileFields(input.UpdateUserProfile)
	if err != nil {
		return nil, err
	}
	setTrimmed(fields, "designation", input.Designation)
	setTrimmed(fields, "work_district", input.WorkDistrict)
	setTrimmed(fields, "position_state", input.PositionState)
	setTrimmed(fields, "position_district", input.PositionDistrict)

	if input.CommitteeType != nil {
		ct := domain.CommitteeType(strings.ToUpper(strings.TrimSpace(*input.CommitteeType)))
		if !ct.Valid() {
			return nil, xerrors.Invalid("committee_type must be one of [NONE STATE DISTRICT]")
		}
		fields["committee_type"] = ct
		if ct == domain.CommitteeNone {
			fields["position_state"] = ""
			fields["position_district"] = ""
		}
	}

	roleChanged := false
	if input.UserRole != nil {
		role := domain.UserRole(strings.ToUpper(strings.TrimSpace(*input.UserRole)))
		if !role.Valid() {
			return nil, xerrors.Invalid("user_role must be one of [ADMIN REGULAR]")
		}
		if user.ID == admin.ID && role != domain.RoleAdmin {
			return nil, xerrors.Invalid("administrators cannot remove their own admin role")
		}
		fields["user_role"] = role
		roleChanged = role != user.UserRole
	}

	if err := a.repo.AdminUpdate(user.ID, admin.ID, fields); err != nil {
		return nil, err
	}
	if roleChanged && a.roles != nil {
		a.roles.Invalidate(user.ID)
	}

	return a.repo.FindUserById(user.ID)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
