package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"billed/internal/api"
	"billed/internal/api/handler"
	"billed/internal/app/service"
	"billed/internal/common/security"
	"billed/internal/domain/model"
	"billed/internal/domain/repository"
	"billed/internal/platform/config"
	"billed/internal/platform/database"
	"billed/internal/platform/kv"
	"billed/internal/platform/logger"
	"billed/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "billed",
		Short: "Employee expense reports",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCommand(), newMigrateCommand(), newAddUserCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*zap.Logger, error) {
	config.Load()
	log, err := logger.New(config.AppConfig.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	security.InitJWT()
	return log, nil
}

// openRepositories connects the configured storage driver. The returned
// function releases it.
func openRepositories(log *zap.Logger) (repository.UserRepository, repository.BillRepository, func(), error) {
	switch config.AppConfig.StorageDriver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on exit")
		mem := repository.NewMemoryStore()
		return mem.Users(), mem.Bills(), func() {}, nil
	case config.DriverPostgres:
		if err := database.Connect(log); err != nil {
			return nil, nil, nil, err
		}
		return repository.NewPgUserRepository(database.DB), repository.NewPgBillRepository(database.DB),
			func() { database.Close(log) }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown storage driver %q", config.AppConfig.StorageDriver)
}

func openSessions(log *zap.Logger) (storage.Provider, func(), error) {
	switch config.AppConfig.SessionDriver {
	case config.DriverMemory:
		return storage.NewMemoryProvider(), func() {}, nil
	case config.DriverRedis:
		if err := kv.ConnectRedis(log); err != nil {
			return nil, nil, err
		}
		return storage.NewRedisProvider(kv.RDB, config.AppConfig.SessionTTL), func() { kv.CloseRedis(log) }, nil
	}
	return nil, nil, fmt.Errorf("unknown session driver %q", config.AppConfig.SessionDriver)
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			userRepo, billRepo, closeRepos, err := openRepositories(log)
			if err != nil {
				return err
			}
			defer closeRepos()
			if config.AppConfig.StorageDriver == config.DriverPostgres {
				if err := database.Migrate(cmd.Context(), database.DB); err != nil {
					return err
				}
			}

			sessions, closeSessions, err := openSessions(log)
			if err != nil {
				return err
			}
			defer closeSessions()

			authService := service.NewAuthService(userRepo, log)
			billService := service.NewBillService(billRepo, config.AppConfig.PublicBaseURL, log)

			router := api.NewRouter(api.Deps{
				AuthService: authService,
				BillService: billService,
				Sessions:    sessions,
				Pages: handler.PageConfig{
					MaxUploadBytes: config.AppConfig.MaxUploadBytes,
					DefaultPct:     config.AppConfig.DefaultPct,
					SessionTTL:     config.AppConfig.SessionTTL,
					SecureCookie:   strings.HasPrefix(config.AppConfig.PublicBaseURL, "https://"),
				},
				Logger: log,
			})

			server := &http.Server{
				Addr:         ":" + config.AppConfig.APIPort,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("server starting", zap.String("port", config.AppConfig.APIPort))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("listening on %s: %w", config.AppConfig.APIPort, err)
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			log.Info("server stopped gracefully")
			return nil
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := database.Connect(log); err != nil {
				return err
			}
			defer database.Close(log)
			if err := database.Migrate(cmd.Context(), database.DB); err != nil {
				return err
			}
			log.Info("schema applied")
			return nil
		},
	}
}

func newAddUserCommand() *cobra.Command {
	var (
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "adduser EMAIL",
		Short: "Create an employee or admin account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			userRepo, _, closeRepos, err := openRepositories(log)
			if err != nil {
				return err
			}
			defer closeRepos()

			userType := model.UserTypeEmployee
			if admin {
				userType = model.UserTypeAdmin
			}
			resp, err := service.NewAuthService(userRepo, log).Signup(cmd.Context(), service.SignupRequest{
				Email:    args[0],
				Password: password,
				Type:     userType,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", resp.User.Type, resp.User.Email, resp.User.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&admin, "admin", false, "create an admin account")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
