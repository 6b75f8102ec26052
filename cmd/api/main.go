package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "innoclub/internal/common/api"
	"innoclub/internal/config"
	"innoclub/internal/database"
	"innoclub/internal/features/application"
	"innoclub/internal/features/audit"
	"innoclub/internal/features/document"
	"innoclub/internal/features/file"
	"innoclub/internal/features/notification"
	"innoclub/internal/features/requirement"
	"innoclub/internal/features/system"
	"innoclub/internal/features/user"
	"innoclub/internal/logger"
	"innoclub/internal/middleware"
	"innoclub/internal/sweeper"
	"innoclub/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             50 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := err.Error()
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			// Unexpected errors are logged server-side only
			if code == fiber.StatusInternalServerError {
				logger.Error("unhandled request error",
					zap.String("path", c.Path()), zap.Error(err))
				msg = "Internal Server Error"
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   msg,
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	fileRepo file.FileRepository,
	docRepo document.DocumentRepository,
	appRepo application.ApplicationRepository,
	notificationRepo notification.NotificationRepository,
	userRepo user.UserRepository,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				ensure := map[string]func(context.Context) error{
					"files":         fileRepo.EnsureIndexes,
					"documents":     docRepo.EnsureIndexes,
					"applications":  appRepo.EnsureIndexes,
					"notifications": notificationRepo.EnsureIndexes,
					"users":         userRepo.EnsureIndexes,
				}
				for name, fn := range ensure {
					if err := fn(ctx); err != nil {
						logger.Error("failed to ensure indexes",
							zap.String("collection", name), zap.Error(err))
					}
				}
			}()
			return nil
		},
	})
}

// StartSweeper runs the hourly staging directory sweep for the file store.
func StartSweeper(lc fx.Lifecycle, s *sweeper.StagingSweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop()
		},
	})
}

// @title           Innovation Club API
// @version         1.0
// @description     File registry and application document review service.

// @host            localhost:3007
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			file.NewFileRepository,
			document.NewDocumentRepository,
			application.NewApplicationRepository,
			notification.NewNotificationRepository,
			audit.NewAuditRepository,
			user.NewUserRepository,

			// Initialize Service
			file.NewFileService,
			document.NewDocumentService,
			application.NewApplicationService,
			notification.NewNotificationService,
			audit.NewAuditService,
			sweeper.NewStagingSweeper,

			// Initialize Controller
			file.NewFileController,
			document.NewDocumentController,
			application.NewApplicationController,
			notification.NewNotificationController,

			// Initialize API Routes
			AsRoute(file.NewFileApi),
			AsRoute(document.NewDocumentApi),
			AsRoute(application.NewApplicationApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(requirement.NewRequirementApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartSweeper,
			InitializeIndexes,
		),
	)

	app.Run()
}
