package services

import (
	"testing"
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/dto"
	"github.com/SundayYogurt/member_service/internal/events"
	"github.com/SundayYogurt/member_service/internal/testutil"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestGuards(t *testing.T) {
	f := newFixture(t)
	member := testutil.SeedUser(t, f.db, domain.User{Email: "m@example.org", MembershipID: testutil.UintPtr(2)})
	retired := testutil.SeedUser(t, f.db, domain.User{
		Email: "r@example.org", MembershipID: testutil.UintPtr(3), UserStatus: domain.UserStatusRetired,
	})

	tests := []struct {
		name  string
		user  *domain.User
		input dto.CreateChangeRequest
		want  error
	}{
		{"retired member", retired, dto.CreateChangeRequest{RequestType: "PROMOTION", NewPosition: "Chief"}, xerrors.ErrNotWorking},
		{"unknown type", member, dto.CreateChangeRequest{RequestType: "DEMOTION"}, xerrors.ErrInvalidRequestType},
		{"same position", member, dto.CreateChangeRequest{RequestType: "PROMOTION", NewPosition: "assistant engineer"}, xerrors.ErrSamePosition},
		{"same district", member, dto.CreateChangeRequest{RequestType: "TRANSFER", NewWorkDistrict: "North", NewOfficeAddress: "x"}, xerrors.ErrSameDistrict},
		{"bad retirement date", member, dto.CreateChangeRequest{RequestType: "RETIREMENT", RetirementDate: "30-06-2026"}, xerrors.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.requests.CreateRequest(tt.user, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	for _, input := range []dto.CreateChangeRequest{
		{RequestType: "PROMOTION"},
		{RequestType: "TRANSFER", NewWorkDistrict: "South"},
		{RequestType: "RETIREMENT"},
	} {
		_, err := f.requests.CreateRequest(member, input)
		assert.Equal(t, xerrors.KindInvalid, xerrors.KindOf(err), input.RequestType)
	}
}

func TestCreateRequestOnePending(t *testing.T) {
	f := newFixture(t)
	member := testutil.SeedUser(t, f.db, domain.User{Email: "m@example.org", MembershipID: testutil.UintPtr(2)})

	req, err := f.requests.CreateRequest(member, dto.CreateChangeRequest{
		RequestType: "transfer", NewWorkDistrict: "South", NewOfficeAddress: "9 Harbour Road",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestTransfer, req.RequestType)
	assert.Equal(t, "North", req.OldWorkDistrict)

	// the pending check runs before field validation
	_, err = f.requests.CreateRequest(member, dto.CreateChangeRequest{RequestType: "PROMOTION"})
	assert.ErrorIs(t, err, xerrors.ErrPendingRequestExists)

	latest, err := f.requests.LatestForUser(member)
	require.NoError(t, err)
	assert.Equal(t, req.ID, latest.ID)
}

func TestDecideRequestApprove(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAdmin(t)
	member := testutil.SeedUser(t, f.db, domain.User{Email: "m@example.org", MembershipID: testutil.UintPtr(2)})

	req, err := f.requests.CreateRequest(member, dto.CreateChangeRequest{RequestType: "PROMOTION", NewPosition: "Executive Engineer"})
	require.NoError(t, err)

	_, err = f.requests.DecideRequest(admin, dto.DecideRequest{RequestID: req.ID, Status: "PENDING"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidStatus)
	_, err = f.requests.DecideRequest(admin, dto.DecideRequest{RequestID: 999, Status: "VERIFIED"})
	assert.ErrorIs(t, err, xerrors.ErrRequestNotFound)

	decided, err := f.requests.DecideRequest(admin, dto.DecideRequest{RequestID: req.ID, Status: "verified", AdminComments: " congrats "})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestVerified, decided.Status)
	assert.Equal(t, "congrats", decided.AdminComments)
	require.NotNil(t, decided.ExpiryDate)
	assert.True(t, decided.ExpiryDate.Equal(testNow.Add(domain.VisibilityWindow)))

	assert.Equal(t, "Executive Engineer", f.reload(t, member.ID).Designation)
	assert.Equal(t, []string{events.TypeRequestDecided}, f.producer.Keys())

	_, err = f.requests.DecideRequest(admin, dto.DecideRequest{RequestID: req.ID, Status: "REJECTED"})
	assert.ErrorIs(t, err, xerrors.ErrRequestDecided)

	env, err := events.Decode(f.producer.Messages[0].Value)
	require.NoError(t, err)
	assert.Contains(t, string(env.Payload), `"email":"m@example.org"`)
}

func TestDecideRequestRejectThenResubmit(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAdmin(t)
	member := testutil.SeedUser(t, f.db, domain.User{Email: "m@example.org", MembershipID: testutil.UintPtr(2)})

	req, err := f.requests.CreateRequest(member, dto.CreateChangeRequest{RequestType: "RETIREMENT", RetirementDate: "2026-06-30"})
	require.NoError(t, err)

	_, err = f.requests.DecideRequest(admin, dto.DecideRequest{RequestID: req.ID, Status: "REJECTED", AdminComments: "too early"})
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusWorking, f.reload(t, member.ID).UserStatus)

	_, err = f.requests.CreateRequest(member, dto.CreateChangeRequest{RequestType: "RETIREMENT", RetirementDate: "2026-09-30"})
	assert.NoError(t, err)
}

func TestDismissRequest(t *testing.T) {
	f := newFixture(t)
	member := testutil.SeedUser(t, f.db, domain.User{Email: "m@example.org", MembershipID: testutil.UintPtr(2)})
	other := testutil.SeedUser(t, f.db, domain.User{Email: "o@example.org", MembershipID: testutil.UintPtr(3)})

	req, err := f.requests.CreateRequest(member, dto.CreateChangeRequest{RequestType: "PROMOTION", NewPosition: "Chief"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.requests.DismissRequest(other, dto.DismissRequest{RequestID: req.ID}), xerrors.ErrNotRequestOwner)
	require.NoError(t, f.requests.DismissRequest(member, dto.DismissRequest{RequestID: req.ID}))

	latest, err := f.requests.LatestForUser(member)
	require.NoError(t, err)
	assert.False(t, latest.ShowAgain)
}

func TestCreateObituary(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAdmin(t)
	member := testutil.SeedUser(t, f.db, domain.User{Email: "m@example.org", Name: "K. Menon", MembershipID: testutil.UintPtr(2)})

	_, err := f.requests.CreateObituary(admin, dto.CreateObituaryRequest{MembershipID: 77, DateOfDeath: "2026-05-01"})
	assert.ErrorIs(t, err, xerrors.ErrMemberNotFound)
	_, err = f.requests.CreateObituary(admin, dto.CreateObituaryRequest{MembershipID: 2, DateOfDeath: "2026-06-01"})
	assert.ErrorIs(t, err, xerrors.ErrFutureDateOfDeath)
	_, err = f.requests.CreateObituary(admin, dto.CreateObituaryRequest{MembershipID: 2, DateOfDeath: "May 1"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidDate)

	ob, err := f.requests.CreateObituary(admin, dto.CreateObituaryRequest{MembershipID: 2, DateOfDeath: "2026-05-01", AdditionalNote: "Rest in peace"})
	require.NoError(t, err)
	assert.True(t, ob.ExpiryDate.Equal(testNow.Add(domain.VisibilityWindow)))
	assert.Equal(t, domain.UserStatusExpired, f.reload(t, member.ID).UserStatus)
	assert.Equal(t, []string{events.TypeObituaryCreated}, f.producer.Keys())

	_, err = f.requests.CreateObituary(admin, dto.CreateObituaryRequest{MembershipID: 2, DateOfDeath: "2026-05-01"})
	assert.ErrorIs(t, err, xerrors.ErrObituaryExists)

	active, err := f.requests.ListObituaries(true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "K. Menon", active[0].Name)
	assert.Equal(t, "2026-05-01", active[0].DateOfDeath)
	assert.Equal(t, "2026-05-17", active[0].ExpiryDate)

	// a week later the obituary leaves the public list but stays in the admin one
	f.requests.(*requestService).now = testutil.FixedClock(testNow.Add(domain.VisibilityWindow + time.Minute))
	active, err = f.requests.ListObituaries(true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.requests.ListObituaries(false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
