// @title Member Service API
// @version 1.0
// @description Registration, verification, profile, change-request and obituary endpoints.
// @host localhost:3000
// @BasePath /
// @schemes http
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <JWT>; web clients use the access_token cookie instead

package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SundayYogurt/member_service/config"
	"github.com/SundayYogurt/member_service/infra/queue"
	"github.com/SundayYogurt/member_service/internal/api/rest/handlers"
	"github.com/SundayYogurt/member_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/member_service/internal/cache"
	"github.com/SundayYogurt/member_service/internal/domain"
	"github.com/SundayYogurt/member_service/internal/events"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/helper/utils"
	"github.com/SundayYogurt/member_service/internal/interfaces"
	"github.com/SundayYogurt/member_service/internal/repository"
	"github.com/SundayYogurt/member_service/internal/services"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/SundayYogurt/member_service/pkg/cloudinary"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrateLockID serializes AutoMigrate across replicas on postgres.
const migrateLockID int64 = 20260222

// AppDeps is everything NewApp needs; StartServer builds it from config.
type AppDeps struct {
	DB              *gorm.DB
	Auth            helper.Auth
	Producer        interfaces.ProducerHandler
	Uploader        interfaces.Uploader
	Log             *zap.Logger
	AllowOrigins    string
	CookieSecure    bool
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func StartServer(cfg config.Config, log *zap.Logger) error {
	// ---------- DB ----------
	db, err := OpenDatabase(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return fmt.Errorf("database connection error: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DBDriver))

	if err := Migrate(db, cfg.DBDriver); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	log.Info("migration successful")

	userRepo := repository.NewUserRepository(db)
	if err := userRepo.EnsureMembershipCounter(); err != nil {
		return err
	}
	if err := SeedAdmin(userRepo, cfg.SeedAdminEmail, cfg.SeedAdminName, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	// ---------- Infra ----------
	deps := AppDeps{
		DB:              db,
		Auth:            helper.SetupAuth(cfg.AccessSecret),
		Log:             log,
		AllowOrigins:    cfg.BaseURL,
		CookieSecure:    cfg.CookieSecure,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}

	if producer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword, log); producer != nil {
		defer producer.Close()
		deps.Producer = producer
		log.Info("kafka producer ready", zap.String("topic", cfg.KafkaTopic))
	} else {
		log.Warn("KAFKA_BROKER not set, domain events are disabled")
	}

	if cld, err := cloudinary.New(cfg.CloudinaryUrl); err != nil {
		log.Warn("cloudinary disabled, photo uploads return 503", zap.Error(err))
	} else {
		deps.Uploader = cloudinary.NewCloudinaryUploader(cld)
	}

	app := NewApp(deps)

	// ---------- Listen ----------
	log.Info("listening", zap.String("addr", cfg.ServerPort))
	return app.Listen(cfg.ServerPort)
}

// NewApp wires repositories, services and handlers into a Fiber app.
func NewApp(d AppDeps) *fiber.App {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "member-service",
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	// credentials are only allowed for an explicit origin list
	origins := strings.TrimSpace(d.AllowOrigins)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Content-Type, Accept, Authorization, X-Client-Type",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: origins != "" && origins != "*",
	}))

	RegisterSwagger(app)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(d.DB)
	requestRepo := repository.NewRequestRepository(d.DB)
	obituaryRepo := repository.NewObituaryRepository(d.DB)

	// ---------- Caches ----------
	roles := cache.NewRoleCache(cache.DefaultRoleCapacity, cache.DefaultRoleTTL, userRepo.GetRole)

	// ---------- Services ----------
	publisher := events.NewPublisher(d.Producer, log)
	userSvc := services.NewUserService(userRepo, d.Auth, d.Uploader, publisher, log)
	adminSvc := services.NewAdminService(userRepo, roles, publisher, log)
	requestSvc := services.NewRequestService(requestRepo, obituaryRepo, userRepo, publisher, log)

	// ---------- Page gate ----------
	app.Use(middleware.PageGate(d.Auth, roles, log))
	for _, page := range middleware.ProtectedPages {
		app.Get(page, pageAllowed)
		app.Get(page+"/*", pageAllowed)
	}

	// ---------- API ----------
	api := app.Group("/api", middleware.RateLimit(d.RateLimitMax, d.RateLimitWindow, log))

	guards := handlers.Guards{
		Verified: middleware.RequireVerified(d.Auth, userRepo),
		Admin:    middleware.AdminOnly(),
	}
	handlers.NewAuthHandler(userSvc, guards, d.CookieSecure, log).SetupRoutes(api)
	handlers.NewUserHandler(userSvc, requestSvc, guards, log).SetupRoutes(api)
	handlers.NewAdminHandler(adminSvc, requestSvc, guards, log).SetupRoutes(api)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}

func pageAllowed(ctx *fiber.Ctx) error {
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"page": ctx.Path()})
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.ResponseError(ctx, fe.Code, fe.Message)
		}
		return utils.ResponseFromError(ctx, log, err)
	}
}

func OpenDatabase(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(zap.NewStdLog(log), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// one connection: sqlite has a single writer and the pragma is per connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates every table. On postgres it holds an advisory
// lock so concurrent replicas do not migrate at the same time.
func Migrate(db *gorm.DB, driver string) error {
	if driver == "postgres" {
		if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
			return fmt.Errorf("migration lock error: %w", err)
		}
		defer db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID)
	}
	return db.AutoMigrate(domain.MigrateModels...)
}

// SeedAdmin creates a verified administrator for email when none exists yet.
// The administrator then chooses a password through the set-password flow.
func SeedAdmin(repo repository.UserRepository, email, name string, log *zap.Logger) error {
	email = helper.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	_, err := repo.FindUserByEmail(email)
	if err == nil {
		return nil
	}
	if xerrors.KindOf(err) != xerrors.KindNotFound {
		return err
	}

	admin, err := repo.CreateUser(&domain.User{
		Email:              email,
		Name:               name,
		VerificationStatus: domain.VerificationPending,
		UserStatus:         domain.UserStatusWorking,
		UserRole:           domain.RoleAdmin,
		CommitteeType:      domain.CommitteeNone,
	})
	if err != nil {
		return err
	}
	membershipID, err := repo.Verify(admin.ID, "system")
	if err != nil {
		return err
	}
	log.Info("seeded administrator", zap.String("email", email), zap.Uint("membership_id", membershipID))
	return nil
}
