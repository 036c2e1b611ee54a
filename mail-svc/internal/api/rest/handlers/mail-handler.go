package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SundayYogurt/member_service/internal/events"
	"go.uber.org/zap"
)

// Mailer is the part of the mail service the handler drives.
type Mailer interface {
	SendVerified(to, name string, membershipID uint) error
	SendRejected(to, name string) error
	SendRequestDecided(to, name, requestType, status, comments string) error
}

type MailHandler struct {
	mailer Mailer
	log    *zap.Logger
}

func NewMailHandler(mailer Mailer, log *zap.Logger) *MailHandler {
	return &MailHandler{mailer: mailer, log: log}
}

// HandleMessage sends the mail matching the event type. Event types that need
// no mail are acknowledged without error.
func (h *MailHandler) HandleMessage(_ context.Context, _, value []byte) error {
	env, err := events.Decode(value)
	if err != nil {
		return fmt.Errorf("invalid event envelope: %w", err)
	}
	log := h.log.With(zap.String("event_id", env.EventID), zap.String("type", env.Type))

	switch env.Type {
	case events.TypeUserVerified:
		var p events.UserVerified
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return h.mailer.SendVerified(p.Email, p.Name, p.MembershipID)

	case events.TypeUserRejected:
		var p events.UserRejected
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		return h.mailer.SendRejected(p.Email, p.Name)

	case events.TypeRequestDecided:
		var p events.RequestDecided
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		if p.Email == "" {
			log.Warn("request decision without recipient")
			return nil
		}
		return h.mailer.SendRequestDecided(p.Email, p.Name, p.RequestType, p.Status, p.AdminComments)

	default:
		log.Debug("event ignored")
		return nil
	}
}
