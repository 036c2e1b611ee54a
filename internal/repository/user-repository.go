package repository

import (
	"errors"
	"fmt"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(user *domain.User) (*domain.User, error)
	FindUserByEmail(email string) (*domain.User, error)
	FindUserById(userID string) (*domain.User, error)
	FindByMembershipID(membershipID uint) (*domain.User, error)
	FindVerifiedByIDAndMembership(userID string, membershipID uint) (*domain.User, error)
	GetRole(userID string) (domain.UserRole, error)
	ListByStatus(status domain.VerificationStatus, limit, offset int) ([]domain.User, int64, error)
	ListCommittee(committee domain.CommitteeType, district string) ([]domain.User, error)

	UpdateFields(userID string, fields map[string]any) error
	AdminUpdate(userID string, adminID string, fields map[string]any) error

	// verification
	EnsureMembershipCounter() error
	Verify(userID string, adminID string) (uint, error)
	Reject(userID string, adminID string) error

	// credentials
	SetPasswordWithQuestion(userID string, passwordHash string, q *domain.SecurityQuestion) error
	FindSecurityQuestion(userID string) (*domain.SecurityQuestion, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}

	if err := r.db.Create(user).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, xerrors.ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (r *userRepository) FindUserByEmail(email string) (*domain.User, error) {
	return r.findOne("email = ?", email)
}

func (r *userRepository) FindUserById(userID string) (*domain.User, error) {
	return r.findOne("id = ?", userID)
}

func (r *userRepository) FindByMembershipID(membershipID uint) (*domain.User, error) {
	return r.findOne("membership_id = ?", membershipID)
}

// FindVerifiedByIDAndMembership re-validates a session subject against current state.
func (r *userRepository) FindVerifiedByIDAndMembership(userID string, membershipID uint) (*domain.User, error) {
	return r.findOne(
		"id = ? AND membership_id = ? AND verification_status = ?",
		userID, membershipID, domain.VerificationVerified,
	)
}

func (r *userRepository) findOne(query string, args ...any) (*domain.User, error) {
	user := &domain.User{}
	if err := r.db.Where(query, args...).First(user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetRole(userID string) (domain.UserRole, error) {
	var role string
	err := r.db.Model(&domain.User{}).
		Select("user_role").
		Where("id = ?", userID).
		Limit(1).
		Scan(&role).Error
	if err != nil {
		return "", fmt.Errorf("get role: %w", err)
	}
	if role == "" {
		return "", xerrors.ErrUserNotFound
	}
	return domain.UserRole(role), nil
}

func (r *userRepository) ListByStatus(status domain.VerificationStatus, limit, offset int) ([]domain.User, int64, error) {
	var (
		users []domain.User
		total int64
	)
	q := r.db.Model(&domain.User{})
	if status != "" {
		q = q.Where("verification_status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at ASC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) ListCommittee(committee domain.CommitteeType, district string) ([]domain.User, error) {
	var users []domain.User
	q := r.db.
		Where("committee_type = ? AND verification_status = ? AND user_status <> ?",
			committee, domain.VerificationVerified, domain.UserStatusExpired)
	if district != "" {
		q = q.Where("position_district = ?", district)
	}
	if err := q.Order("membership_id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateFields(userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.Model(&domain.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) AdminUpdate(userID string, adminID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).Where("id = ?", userID).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return xerrors.ErrUserNotFound
		}
		return writeAudit(tx, adminID, domain.AuditEditUser, "user", userID, fmt.Sprintf("fields=%d", len(fields)))
	})
}

// EnsureMembershipCounter creates the counter row and lifts it to the highest
// membership id ever assigned, soft-deleted users included.
func (r *userRepository) EnsureMembershipCounter() error {
	var highest uint
	err := r.db.Unscoped().
		Model(&domain.User{}).
		Select("COALESCE(MAX(membership_id), 0)").
		Scan(&highest).Error
	if err != nil {
		return fmt.Errorf("read max membership id: %w", err)
	}

	counter := domain.MembershipCounter{Name: domain.MembershipCounterName, Value: highest}
	if err := r.db.Where("name = ?", counter.Name).FirstOrCreate(&counter).Error; err != nil {
		return fmt.Errorf("seed membership counter: %w", err)
	}
	return r.db.Model(&domain.MembershipCounter{}).
		Where("name = ? AND value < ?", counter.Name, highest).
		Update("value", highest).Error
}

// Verify moves a PENDING user to VERIFIED and assigns the next membership id.
// The counter increment locks the counter row until commit, so concurrent
// verifications are serialized and never share an id.
func (r *userRepository) Verify(userID string, adminID string) (uint, error) {
	var assigned uint

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.MembershipCounter{}).
			Where("name = ?", domain.MembershipCounterName).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("membership counter is not initialised")
		}

		var counter domain.MembershipCounter
		if err := tx.First(&counter, "name = ?", domain.MembershipCounterName).Error; err != nil {
			return err
		}
		assigned = counter.Value

		res = tx.Model(&domain.User{}).
			Where("id = ? AND verification_status = ? AND membership_id IS NULL", userID, domain.VerificationPending).
			Updates(map[string]any{
				"membership_id":       assigned,
				"verification_status": domain.VerificationVerified,
			})
		if res.Error != nil {
			if helper.IsDuplicateKey(res.Error) {
				return xerrors.ErrAlreadyVerified
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return xerrors.ErrNotPending
		}

		return writeAudit(tx, adminID, domain.AuditVerifyUser, "user", userID,
			fmt.Sprintf("%s membership_id=%d", domain.VerificationVerified, assigned))
	})
	if err != nil {
		return 0, err
	}
	return assigned, nil
}

func (r *userRepository) Reject(userID string, adminID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).
			Where("id = ? AND verification_status = ? AND membership_id IS NULL", userID, domain.VerificationPending).
			Update("verification_status", domain.VerificationRejected)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return xerrors.ErrNotPending
		}
		return writeAudit(tx, adminID, domain.AuditVerifyUser, "user", userID, string(domain.VerificationRejected))
	})
}

// SetPasswordWithQuestion stores the first password and the security question together.
func (r *userRepository) SetPasswordWithQuestion(userID string, passwordHash string, q *domain.SecurityQuestion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).
			Where("id = ? AND (password_hash = '' OR password_hash IS NULL)", userID).
			Update("password_hash", passwordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return xerrors.ErrPasswordAlreadySet
		}

		q.UserID = userID
		if err := tx.Create(q).Error; err != nil {
			if helper.IsDuplicateKey(err) {
				return xerrors.ErrPasswordAlreadySet
			}
			return err
		}
		return nil
	})
}

func (r *userRepository) FindSecurityQuestion(userID string) (*domain.SecurityQuestion, error) {
	var q domain.SecurityQuestion
	if err := r.db.Where("user_id = ?", userID).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerrors.ErrNoSecurityQuestion
		}
		return nil, err
	}
	return &q, nil
}
