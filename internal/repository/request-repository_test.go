package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/testutil"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var decidedAt = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func seedMember(t *testing.T, db *gorm.DB, membershipID uint) *domain.User {
	t.Helper()
	return testutil.SeedUser(t, db, domain.User{
		Email:        fmt.Sprintf("member%d@example.org", membershipID),
		MembershipID: testutil.UintPtr(membershipID),
	})
}

func newRequest(u *domain.User, typ domain.RequestType) *domain.PromotionTransferRequest {
	req := &domain.PromotionTransferRequest{
		UserID:       u.ID,
		MembershipID: *u.MembershipID,
		RequestType:  typ,
	}
	switch typ {
	case domain.RequestPromotion:
		req.OldPosition = u.Designation
		req.NewPosition = "Executive Engineer"
	case domain.RequestTransfer:
		req.OldWorkDistrict = u.WorkDistrict
		req.NewWorkDistrict = "South"
		req.OldOfficeAddress = u.OfficeAddress
		req.NewOfficeAddress = "9 Harbour Road"
	case domain.RequestRetirement:
		d := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
		req.RetirementDate = &d
	}
	return req
}

func TestCreateIfNoPending(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	u := seedMember(t, db, 1)

	first := newRequest(u, domain.RequestPromotion)
	require.NoError(t, repo.CreateIfNoPending(first))
	assert.Equal(t, domain.RequestPending, first.Status)
	assert.True(t, first.ShowAgain)

	err := repo.CreateIfNoPending(newRequest(u, domain.RequestTransfer))
	assert.ErrorIs(t, err, xerrors.ErrPendingRequestExists)

	// once decided, a new request may be filed
	_, err = repo.Reject(first.ID, "admin", "no")
	require.NoError(t, err)
	require.NoError(t, repo.CreateIfNoPending(newRequest(u, domain.RequestTransfer)))

	latest, err := repo.FindLatestByMembershipID(1)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestTransfer, latest.RequestType)

	_, err = repo.FindLatestByMembershipID(99)
	assert.ErrorIs(t, err, xerrors.ErrRequestNotFound)
}

func TestApproveWritesBackToUser(t *testing.T) {
	tests := []struct {
		typ   domain.RequestType
		check func(t *testing.T, before, after *domain.User)
	}{
		{domain.RequestPromotion, func(t *testing.T, before, after *domain.User) {
			assert.Equal(t, "Executive Engineer", after.Designation)
			assert.Equal(t, before.WorkDistrict, after.WorkDistrict)
			assert.Equal(t, before.OfficeAddress, after.OfficeAddress)
			assert.Equal(t, domain.UserStatusWorking, after.UserStatus)
		}},
		{domain.RequestTransfer, func(t *testing.T, before, after *domain.User) {
			assert.Equal(t, "South", after.WorkDistrict)
			assert.Equal(t, "9 Harbour Road", after.OfficeAddress)
			assert.Equal(t, before.Designation, after.Designation)
			assert.Equal(t, domain.UserStatusWorking, after.UserStatus)
		}},
		{domain.RequestRetirement, func(t *testing.T, before, after *domain.User) {
			assert.Equal(t, domain.UserStatusRetired, after.UserStatus)
			assert.Equal(t, before.Department, after.RetiredDepartment)
			assert.Equal(t, before.Designation, after.Designation)
			assert.Equal(t, before.WorkDistrict, after.WorkDistrict)
			assert.Equal(t, before.OfficeAddress, after.OfficeAddress)
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			db := testutil.NewDB(t)
			repo := NewRequestRepository(db)
			users := NewUserRepository(db)
			u := seedMember(t, db, 1)
			require.NotEmpty(t, u.Designation)
			require.NotEmpty(t, u.WorkDistrict)
			require.NotEmpty(t, u.OfficeAddress)

			req := newRequest(u, tt.typ)
			require.NoError(t, repo.CreateIfNoPending(req))

			decided, err := repo.Approve(req.ID, "admin-1", "approved", decidedAt)
			require.NoError(t, err)
			assert.Equal(t, domain.RequestVerified, decided.Status)
			assert.Equal(t, "approved", decided.AdminComments)
			require.NotNil(t, decided.DecidedBy)
			assert.Equal(t, "admin-1", *decided.DecidedBy)
			require.NotNil(t, decided.ApprovedAt)
			assert.True(t, decided.ApprovedAt.Equal(decidedAt))
			require.NotNil(t, decided.ExpiryDate)
			assert.True(t, decided.ExpiryDate.Equal(decidedAt.Add(domain.VisibilityWindow)))

			after, err := users.FindUserById(u.ID)
			require.NoError(t, err)
			tt.check(t, u, after)
		})
	}
}

func TestRejectLeavesUserUnchanged(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	users := NewUserRepository(db)
	u := seedMember(t, db, 1)

	req := newRequest(u, domain.RequestPromotion)
	require.NoError(t, repo.CreateIfNoPending(req))

	decided, err := repo.Reject(req.ID, "admin-1", "missing documents")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, decided.Status)
	assert.Nil(t, decided.ExpiryDate)

	after, err := users.FindUserById(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Designation, after.Designation)
}

func TestDecideTwice(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	u := seedMember(t, db, 1)

	req := newRequest(u, domain.RequestPromotion)
	require.NoError(t, repo.CreateIfNoPending(req))
	_, err := repo.Approve(req.ID, "admin-1", "", decidedAt)
	require.NoError(t, err)

	_, err = repo.Approve(req.ID, "admin-1", "", decidedAt)
	assert.ErrorIs(t, err, xerrors.ErrRequestDecided)
	_, err = repo.Reject(req.ID, "admin-1", "")
	assert.ErrorIs(t, err, xerrors.ErrRequestDecided)
	_, err = repo.Reject(404, "admin-1", "")
	assert.ErrorIs(t, err, xerrors.ErrRequestNotFound)

	var audits int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Where("action = ?", domain.AuditDecideRequest).Count(&audits).Error)
	assert.Equal(t, int64(1), audits)
}

func TestListPendingPreloadsUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	a := seedMember(t, db, 1)
	b := seedMember(t, db, 2)

	ra := newRequest(a, domain.RequestPromotion)
	require.NoError(t, repo.CreateIfNoPending(ra))
	require.NoError(t, repo.CreateIfNoPending(newRequest(b, domain.RequestTransfer)))
	_, err := repo.Approve(ra.ID, "admin", "", decidedAt)
	require.NoError(t, err)

	pending, err := repo.ListPending(50, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].User)
	assert.Equal(t, b.Email, pending[0].User.Email)
}

func TestHideNotification(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepository(db)
	u := seedMember(t, db, 1)
	seedMember(t, db, 2)

	req := newRequest(u, domain.RequestPromotion)
	require.NoError(t, repo.CreateIfNoPending(req))

	assert.ErrorIs(t, repo.HideNotification(req.ID, 2), xerrors.ErrNotRequestOwner)
	assert.ErrorIs(t, repo.HideNotification(999, 1), xerrors.ErrRequestNotFound)

	require.NoError(t, repo.HideNotification(req.ID, 1))
	require.NoError(t, repo.HideNotification(req.ID, 1))

	got, err := repo.FindByID(req.ID)
	require.NoError(t, err)
	assert.False(t, got.ShowAgain)
}
