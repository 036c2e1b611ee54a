package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"gorm.io/gorm"
)

type RequestRepository interface {
	CreateIfNoPending(req *domain.PromotionTransferRequest) error
	FindByID(id uint) (*domain.PromotionTransferRequest, error)
	FindLatestByMembershipID(membershipID uint) (*domain.PromotionTransferRequest, error)
	ListPending(limit, offset int) ([]domain.PromotionTransferRequest, error)

	Approve(id uint, adminID string, comments string, now time.Time) (*domain.PromotionTransferRequest, error)
	Reject(id uint, adminID string, comments string) (*domain.PromotionTransferRequest, error)
	HideNotification(id uint, membershipID uint) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// CreateIfNoPending inserts req unless the member already has a PENDING request.
func (r *requestRepository) CreateIfNoPending(req *domain.PromotionTransferRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		err := tx.Model(&domain.PromotionTransferRequest{}).
			Where("membership_id = ? AND status = ?", req.MembershipID, domain.RequestPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return xerrors.ErrPendingRequestExists
		}
		req.Status = domain.RequestPending
		req.ShowAgain = true
		return tx.Create(req).Error
	})
}

func (r *requestRepository) FindByID(id uint) (*domain.PromotionTransferRequest, error) {
	var req domain.PromotionTransferRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerrors.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindLatestByMembershipID(membershipID uint) (*domain.PromotionTransferRequest, error) {
	var req domain.PromotionTransferRequest
	err := r.db.
		Where("membership_id = ?", membershipID).
		Order("created_at DESC, id DESC").
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerrors.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) ListPending(limit, offset int) ([]domain.PromotionTransferRequest, error) {
	var reqs []domain.PromotionTransferRequest

	err := r.db.Preload("User").Where("status = ?", domain.RequestPending).Order("created_at ASC").Limit(limit).Offset(offset).Find(&reqs).Error

	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// Approve marks a PENDING request VERIFIED and writes its change onto the owning
// user in the same transaction.
func (r *requestRepository) Approve(id uint, adminID string, comments string, now time.Time) (*domain.PromotionTransferRequest, error) {
	var req domain.PromotionTransferRequest
	expiry := now.Add(domain.VisibilityWindow)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := decide(tx, &req, id, map[string]any{
			"status":         domain.RequestVerified,
			"admin_comments": comments,
			"decided_by":     adminID,
			"approved_at":    now,
			"expiry_date":    expiry,
		}); err != nil {
			return err
		}

		var user domain.User
		if err := tx.First(&user, "id = ?", req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return xerrors.ErrMemberNotFound
			}
			return err
		}

		fields := map[string]any{}
		switch req.RequestType {
		case domain.RequestRetirement:
			fields["user_status"] = domain.UserStatusRetired
			fields["retired_department"] = user.Department
		case domain.RequestPromotion:
			fields["designation"] = req.NewPosition
		case domain.RequestTransfer:
			fields["work_district"] = req.NewWorkDistrict
			fields["office_address"] = req.NewOfficeAddress
		default:
			return xerrors.ErrInvalidRequestType
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", user.ID).Updates(fields).Error; err != nil {
			return err
		}

		return writeAudit(tx, adminID, domain.AuditDecideRequest, "promotion_transfer_request",
			fmt.Sprint(id), string(domain.RequestVerified))
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) Reject(id uint, adminID string, comments string) (*domain.PromotionTransferRequest, error) {
	var req domain.PromotionTransferRequest

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := decide(tx, &req, id, map[string]any{
			"status":         domain.RequestRejected,
			"admin_comments": comments,
			"decided_by":     adminID,
		}); err != nil {
			return err
		}
		return writeAudit(tx, adminID, domain.AuditDecideRequest, "promotion_transfer_request",
			fmt.Sprint(id), string(domain.RequestRejected))
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// decide applies fields to a PENDING request and reloads it into req.
func decide(tx *gorm.DB, req *domain.PromotionTransferRequest, id uint, fields map[string]any) error {
	if err := tx.First(req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xerrors.ErrRequestNotFound
		}
		return err
	}
	if req.Status != domain.RequestPending {
		return xerrors.ErrRequestDecided
	}

	res := tx.Model(&domain.PromotionTransferRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestPending).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return xerrors.ErrRequestDecided
	}
	return tx.First(req, id).Error
}

func (r *requestRepository) HideNotification(id uint, membershipID uint) error {
	req, err := r.FindByID(id)
	if err != nil {
		return err
	}
	if req.MembershipID != membershipID {
		return xerrors.ErrNotRequestOwner
	}
	if !req.ShowAgain {
		return nil
	}
	return r.db.Model(&domain.PromotionTransferRequest{}).
		Where("id = ? AND membership_id = ?", id, membershipID).
		Update("show_again", false).Error
}
