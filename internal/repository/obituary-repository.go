package repository

import (
	"fmt"
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"gorm.io/gorm"
)

type ObituaryRepository interface {
	Create(ob *domain.Obituary) error
	List(activeAt *time.Time) ([]domain.Obituary, error)
}

type obituaryRepository struct {
	db *gorm.DB
}

func NewObituaryRepository(db *gorm.DB) ObituaryRepository {
	return &obituaryRepository{db: db}
}

// Create inserts the obituary and marks its member EXPIRED in one transaction.
func (o *obituaryRepository) Create(ob *domain.Obituary) error {
	return o.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&domain.Obituary{}).Where("membership_id = ?", ob.MembershipID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return xerrors.ErrObituaryExists
		}

		if err := tx.Create(ob).Error; err != nil {
			if helper.IsDuplicateKey(err) {
				return xerrors.ErrObituaryExists
			}
			return err
		}

		res := tx.Model(&domain.User{}).
			Where("id = ? AND membership_id = ?", ob.UserID, ob.MembershipID).
			Update("user_status", domain.UserStatusExpired)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return xerrors.ErrMemberNotFound
		}

		return writeAudit(tx, ob.CreatedBy, domain.AuditCreateObituary, "obituary",
			fmt.Sprint(ob.ID), fmt.Sprintf("membership_id=%d", ob.MembershipID))
	})
}

// List returns obituaries newest first; with activeAt set, only those still on display.
func (o *obituaryRepository) List(activeAt *time.Time) ([]domain.Obituary, error) {
	var obits []domain.Obituary
	q := o.db.Preload("User")
	if activeAt != nil {
		q = q.Where("expiry_date > ?", *activeAt)
	}
	if err := q.Order("date_of_death DESC, id DESC").Find(&obits).Error; err != nil {
		return nil, err
	}
	return obits, nil
}
