// Package events defines the domain events published on the member topic and
// the envelope they travel in.
package events

import (
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/SundayYogurt/member_service/internal/interfaces"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	TypeUserRegistered  = "user.registered"
	TypeUserVerified    = "user.verified"
	TypeUserRejected    = "user.rejected"
	TypeRequestDecided  = "request.decided"
	TypeObituaryCreated = "obituary.created"
)

type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type UserRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type UserVerified struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	MembershipID uint   `json:"membership_id"`
}

type UserRejected struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type RequestDecided struct {
	RequestID     uint   `json:"request_id"`
	MembershipID  uint   `json:"membership_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	RequestType   string `json:"request_type"`
	Status        string `json:"status"`
	AdminComments string `json:"admin_comments,omitempty"`
}

type ObituaryCreated struct {
	MembershipID uint   `json:"membership_id"`
	Name         string `json:"name"`
	DateOfDeath  string `json:"date_of_death"`
}

// Encode wraps payload in a new envelope with a ULID event id.
func Encode(eventType string, payload any, at time.Time) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	id, err := ulid.New(ulid.Timestamp(at), rand.Reader)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		EventID:    id.String(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		Payload:    raw,
	})
}

func Decode(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Publisher sends events after the originating transaction has committed.
// Failures are logged and swallowed; a nil producer disables publishing.
type Publisher struct {
	producer interfaces.ProducerHandler
	log      *zap.Logger
	now      func() time.Time
}

func NewPublisher(producer interfaces.ProducerHandler, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{producer: producer, log: log, now: time.Now}
}

func (p *Publisher) Publish(eventType string, payload any) {
	if p == nil || p.producer == nil {
		return
	}
	body, err := Encode(eventType, payload, p.now())
	if err != nil {
		p.log.Warn("encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := p.producer.PublishMessage([]byte(eventType), body); err != nil {
		p.log.Warn("publish event", zap.String("type", eventType), zap.Error(err))
	}
}
