// Package testutil provides the in-memory database and fakes shared by the
// package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database with the membership
// counter seeded at zero. It is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every query must share the one in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(domain.MigrateModels...))
	require.NoError(t, db.Create(&domain.MembershipCounter{Name: domain.MembershipCounterName}).Error)
	return db
}

// SeedUser inserts u, filling unset fields with a working REGULAR member.
// A non-nil MembershipID makes the user VERIFIED and advances the counter.
func SeedUser(t *testing.T, db *gorm.DB, u domain.User) *domain.User {
	t.Helper()

	if u.Name == "" {
		u.Name = "Test Member"
	}
	if u.Designation == "" {
		u.Designation = "Assistant Engineer"
	}
	if u.Department == "" {
		u.Department = "Public Works"
	}
	if u.WorkDistrict == "" {
		u.WorkDistrict = "North"
	}
	if u.OfficeAddress == "" {
		u.OfficeAddress = "1 Main Road"
	}
	if u.MobileNumber == "" {
		u.MobileNumber = "9000000000"
	}
	if u.UserStatus == "" {
		u.UserStatus = domain.UserStatusWorking
	}
	if u.UserRole == "" {
		u.UserRole = domain.RoleRegular
	}
	if u.CommitteeType == "" {
		u.CommitteeType = domain.CommitteeNone
	}
	if u.VerificationStatus == "" {
		u.VerificationStatus = domain.VerificationPending
		if u.MembershipID != nil {
			u.VerificationStatus = domain.VerificationVerified
		}
	}

	require.NoError(t, db.Create(&u).Error)
	if u.MembershipID != nil {
		require.NoError(t, db.Model(&domain.MembershipCounter{}).
			Where("name = ? AND value < ?", domain.MembershipCounterName, *u.MembershipID).
			Update("value", *u.MembershipID).Error)
	}
	return &u
}

func UintPtr(v uint) *uint { return &v }

func StrPtr(v string) *string { return &v }

// FixedClock returns a clock that always reads at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

type Message struct {
	Key   []byte
	Value []byte
}

// RecordingProducer captures published messages.
type RecordingProducer struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (p *RecordingProducer) PublishMessage(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, Message{Key: key, Value: value})
	return nil
}

// Keys returns the message keys in publish order.
func (p *RecordingProducer) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Messages))
	for _, m := range p.Messages {
		out = append(out, string(m.Key))
	}
	return out
}

// FakeUploader remembers the last upload and returns a fixed URL.
type FakeUploader struct {
	URL      string
	Err      error
	Folder   string
	Filename string
	Data     []byte
}

func (u *FakeUploader) UploadBytes(_ context.Context, folder string, filename string, b []byte) (string, error) {
	if u.Err != nil {
		return "", u.Err
	}
	u.Folder = folder
	u.Filename = filename
	u.Data = b
	return u.URL, nil
}
