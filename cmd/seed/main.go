package main

import (
	"context"

	"innoclub/internal/config"
	"innoclub/internal/database"
	"innoclub/internal/features/user"
	"innoclub/internal/logger"
	"innoclub/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Roles    []string
}

var seedUsers = []seedUser{
	{Name: "Admin", Email: "admin@innoclub.local", Password: "admin1234", Roles: []string{"admin"}},
	{Name: "سارا محمدی", Email: "sara@example.com", Password: "applicant1", Roles: []string{"applicant"}},
	{Name: "علی رضایی", Email: "ali@example.com", Password: "applicant2", Roles: []string{"applicant"}},
}

// Seed upserts the development users and prints a bearer token for each so
// the API is usable immediately after a fresh database start.
func Seed(
	lc fx.Lifecycle,
	userRepo user.UserRepository,
	cfg *config.Config,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				utils.SetSecret(cfg.JWTSecret)
				logger.Info("Seeding users...")

				if err := userRepo.EnsureIndexes(ctx); err != nil {
					logger.Warn("Failed to ensure user indexes", zap.Error(err))
				}

				for _, su := range seedUsers {
					hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
					if err != nil {
						logger.Error("Failed to hash password", zap.String("email", su.Email), zap.Error(err))
						continue
					}

					u := &user.User{
						Name:     su.Name,
						Email:    su.Email,
						Password: string(hash),
						Roles:    su.Roles,
						Status:   "active",
					}
					if err := userRepo.UpsertByEmail(ctx, u); err != nil {
						logger.Error("Failed to seed user", zap.String("email", su.Email), zap.Error(err))
						continue
					}

					saved, err := userRepo.FindByEmail(ctx, su.Email)
					if err != nil {
						logger.Error("Failed to reload seeded user", zap.String("email", su.Email), zap.Error(err))
						continue
					}

					token, err := utils.GenerateToken(saved.ID, saved.Name, saved.Email, saved.Roles)
					if err != nil {
						logger.Error("Failed to generate token", zap.String("email", su.Email), zap.Error(err))
						continue
					}

					logger.Info("User seeded",
						zap.String("email", saved.Email),
						zap.Strings("roles", saved.Roles),
						zap.String("token", token),
					)
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			user.NewUserRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
