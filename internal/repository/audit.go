package repository

import (
	"github.com/SundayYogurt/member_service/internal/domain"
	"gorm.io/gorm"
)

func writeAudit(tx *gorm.DB, actorID, action, entity, entityID, note string) error {
	entry := &domain.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	}
	if note != "" {
		entry.Note = &note
	}
	return tx.Create(entry).Error
}
