package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/SundayYogurt/member_service/internal/cache"
	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/events"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/repository"
	"github.com/SundayYogurt/member_service/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	auth     helper.Auth
	producer *testutil.RecordingProducer
	uploader *testutil.FakeUploader
	userRepo repository.UserRepository
	roles    *cache.RoleCache
	users    UserService
	admin    AdminService
	requests RequestService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	log := zap.NewNop()
	f := &fixture{
		db:       db,
		auth:     helper.SetupAuth("test-secret"),
		producer: &testutil.RecordingProducer{},
		uploader: &testutil.FakeUploader{URL: "https://cdn.example.org/members/photos/u.jpg"},
		userRepo: repository.NewUserRepository(db),
	}
	publisher := events.NewPublisher(f.producer, log)
	f.roles = cache.NewRoleCache(cache.DefaultRoleCapacity, cache.DefaultRoleTTL, f.userRepo.GetRole)

	f.users = NewUserService(f.userRepo, f.auth, f.uploader, publisher, log)
	f.admin = NewAdminService(f.userRepo, f.roles, publisher, log)
	f.requests = NewRequestService(
		repository.NewRequestRepository(db),
		repository.NewObituaryRepository(db),
		f.userRepo,
		publisher,
		log,
	)
	f.requests.(*requestService).now = testutil.FixedClock(testNow)
	return f
}

// seedAdmin inserts a verified administrator.
func (f *fixture) seedAdmin(t *testing.T) *domain.User {
	t.Helper()
	return testutil.SeedUser(t, f.db, domain.User{
		Email:        "admin@example.org",
		Name:         "Admin",
		UserRole:     domain.RoleAdmin,
		MembershipID: testutil.UintPtr(1),
	})
}

func (f *fixture) reload(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := f.userRepo.FindUserById(id)
	require.NoError(t, err)
	return u
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
