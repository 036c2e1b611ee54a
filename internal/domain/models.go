package domain

// MigrateModels lists every table managed by AutoMigrate, parents first.
var MigrateModels = []any{
	&User{},
	&PromotionTransferRequest{},
	&Obituary{},
	&SecurityQuestion{},
	&MembershipCounter{},
	&AuditLog{},
}
