package services

import (
	"strings"
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/dto"
	"github.com/SundayYogurt/member_service/internal/events"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/repository"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"go.uber.org/zap"
)

type RequestService interface {
	// Member
	CreateRequest(user *domain.User, input dto.CreateChangeRequest) (*domain.PromotionTransferRequest, error)
	LatestForUser(user *domain.User) (*domain.PromotionTransferRequest, error)
	DismissRequest(user *domain.User, input dto.DismissRequest) error

	// Admin
	ListPending(limit, offset int) ([]domain.PromotionTransferRequest, error)
	DecideRequest(admin *domain.User, input dto.DecideRequest) (*domain.PromotionTransferRequest, error)

	// Obituaries
	CreateObituary(admin *domain.User, input dto.CreateObituaryRequest) (*domain.Obituary, error)
	ListObituaries(activeOnly bool) ([]dto.ObituaryResponse, error)
}

type requestService struct {
	repo      repository.RequestRepository
	obitRepo  repository.ObituaryRepository
	userRepo  repository.UserRepository
	publisher *events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewRequestService(
	repo repository.RequestRepository,
	obitRepo repository.ObituaryRepository,
	userRepo repository.UserRepository,
	publisher *events.Publisher,
	log *zap.Logger,
) RequestService {
	return &requestService{
		repo:      repo,
		obitRepo:  obitRepo,
		userRepo:  userRepo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *requestService) CreateRequest(user *domain.User, input dto.CreateChangeRequest) (*domain.PromotionTransferRequest, error) {
	if user.MembershipID == nil {
		return nil, xerrors.ErrUnauthorized
	}
	if user.UserStatus != domain.UserStatusWorking {
		return nil, xerrors.ErrNotWorking
	}

	reqType := domain.RequestType(strings.ToUpper(strings.TrimSpace(input.RequestType)))
	if !reqType.Valid() {
		return nil, xerrors.ErrInvalidRequestType
	}

	// a pending request outranks the per-type field errors below; CreateIfNoPending
	// repeats the check inside its transaction for concurrent submissions
	latest, err := s.repo.FindLatestByMembershipID(*user.MembershipID)
	switch {
	case err == nil && latest.Status == domain.RequestPending:
		return nil, xerrors.ErrPendingRequestExists
	case err != nil && xerrors.KindOf(err) != xerrors.KindNotFound:
		return nil, err
	}

	newPosition := strings.TrimSpace(input.NewPosition)
	newDistrict := strings.TrimSpace(input.NewWorkDistrict)
	newOffice := strings.TrimSpace(input.NewOfficeAddress)

	req := &domain.PromotionTransferRequest{
		UserID:           user.ID,
		MembershipID:     *user.MembershipID,
		RequestType:      reqType,
		OldPosition:      user.Designation,
		OldWorkDistrict:  user.WorkDistrict,
		OldOfficeAddress: user.OfficeAddress,
	}

	switch reqType {
	case domain.RequestPromotion:
		if newPosition != "" && strings.EqualFold(newPosition, user.Designation) {
			return nil, xerrors.ErrSamePosition
		}
		if newPosition == "" {
			return nil, xerrors.Invalid("new_position is required")
		}
		req.NewPosition = newPosition
	case domain.RequestTransfer:
		if newDistrict != "" && strings.EqualFold(newDistrict, user.WorkDistrict) {
			return nil, xerrors.ErrSameDistrict
		}
		if newDistrict == "" {
			return nil, xerrors.Invalid("new_work_district is required")
		}
		if newOffice == "" {
			return nil, xerrors.Invalid("new_office_address is required")
		}
		req.NewWorkDistrict = newDistrict
		req.NewOfficeAddress = newOffice
	case domain.RequestRetirement:
		if strings.TrimSpace(input.RetirementDate) == "" {
			return nil, xerrors.Invalid("retirement_date is required")
		}
		date, err := helper.ParseDate(input.RetirementDate)
		if err != nil {
			return nil, err
		}
		req.RetirementDate = &date
	}

	if err := s.repo.CreateIfNoPending(req); err != nil {
		return nil, err
	}
	s.log.Info("request created",
		zap.Uint("request_id", req.ID),
		zap.Uint("membership_id", req.MembershipID),
		zap.String("type", string(req.RequestType)),
	)
	return req, nil
}

func (s *requestService) LatestForUser(user *domain.User) (*domain.PromotionTransferRequest, error) {
	if user.MembershipID == nil {
		return nil, xerrors.ErrRequestNotFound
	}
	return s.repo.FindLatestByMembershipID(*user.MembershipID)
}

func (s *requestService) DismissRequest(user *domain.User, input dto.DismissRequest) error {
	if user.MembershipID == nil {
		return xerrors.ErrNotRequestOwner
	}
	return s.repo.HideNotification(input.RequestID, *user.MembershipID)
}

func (s *requestService) ListPending(limit, offset int) ([]domain.PromotionTransferRequest, error) {
	limit, offset = page(limit, offset)
	return s.repo.ListPending(limit, offset)
}

// DecideRequest approves or rejects a PENDING request. Approval writes the
// requested change onto the member in the same transaction.
func (s *requestService) DecideRequest(admin *domain.User, input dto.DecideRequest) (*domain.PromotionTransferRequest, error) {
	existing, err := s.repo.FindByID(input.RequestID)
	if err != nil {
		return nil, err
	}

	status := domain.RequestStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
	if status != domain.RequestVerified && status != domain.RequestRejected {
		return nil, xerrors.ErrInvalidStatus
	}
	if existing.Status != domain.RequestPending {
		return nil, xerrors.ErrRequestDecided
	}

	comments := strings.TrimSpace(input.AdminComments)

	var decided *domain.PromotionTransferRequest
	if status == domain.RequestVerified {
		decided, err = s.repo.Approve(existing.ID, admin.ID, comments, s.now())
	} else {
		decided, err = s.repo.Reject(existing.ID, admin.ID, comments)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("request decided",
		zap.Uint("request_id", decided.ID),
		zap.String("status", string(decided.Status)),
		zap.String("admin_id", admin.ID),
	)

	evt := events.RequestDecided{
		RequestID:     decided.ID,
		MembershipID:  decided.MembershipID,
		RequestType:   string(decided.RequestType),
		Status:        string(decided.Status),
		AdminComments: decided.AdminComments,
	}
	if member, err := s.userRepo.FindUserById(decided.UserID); err == nil {
		evt.Email = member.Email
		evt.Name = member.Name
	}
	s.publisher.Publish(events.TypeRequestDecided, evt)

	return decided, nil
}

func (s *requestService) CreateObituary(admin *domain.User, input dto.CreateObituaryRequest) (*domain.Obituary, error) {
	member, err := s.userRepo.FindByMembershipID(input.MembershipID)
	if err != nil {
		if xerrors.KindOf(err) == xerrors.KindNotFound {
			return nil, xerrors.ErrMemberNotFound
		}
		return nil, err
	}

	dateOfDeath, err := helper.ParseDate(input.DateOfDeath)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if dateOfDeath.After(now) {
		return nil, xerrors.ErrFutureDateOfDeath
	}

	ob := &domain.Obituary{
		UserID:         member.ID,
		MembershipID:   input.MembershipID,
		DateOfDeath:    dateOfDeath,
		AdditionalNote: strings.TrimSpace(input.AdditionalNote),
		ExpiryDate:     now.Add(domain.VisibilityWindow),
		CreatedBy:      admin.ID,
	}
	if err := s.obitRepo.Create(ob); err != nil {
		return nil, err
	}

	s.log.Info("obituary created",
		zap.Uint("membership_id", ob.MembershipID),
		zap.String("admin_id", admin.ID),
	)
	s.publisher.Publish(events.TypeObituaryCreated, events.ObituaryCreated{
		MembershipID: ob.MembershipID,
		Name:         member.Name,
		DateOfDeath:  dateOfDeath.Format(helper.DateLayout),
	})
	return ob, nil
}

// ListObituaries returns every obituary, or only those still inside their
// display window when activeOnly is set.
func (s *requestService) ListObituaries(activeOnly bool) ([]dto.ObituaryResponse, error) {
	var at *time.Time
	if activeOnly {
		now := s.now()
		at = &now
	}

	obits, err := s.obitRepo.List(at)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ObituaryResponse, 0, len(obits))
	for _, ob := range obits {
		resp := dto.ObituaryResponse{
			ID:             ob.ID,
			MembershipID:   ob.MembershipID,
			DateOfDeath:    ob.DateOfDeath.Format(helper.DateLayout),
			AdditionalNote: ob.AdditionalNote,
			ExpiryDate:     ob.ExpiryDate.Format(helper.DateLayout),
		}
		if ob.User != nil {
			resp.Name = ob.User.Name
			resp.Designation = ob.User.Designation
			resp.PhotoURL = ob.User.PhotoURL
		}
		out = append(out, resp)
	}
	return out, nil
}
