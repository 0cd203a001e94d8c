package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sudoneoox/Picton/internals/configs"
	database "github.com/sudoneoox/Picton/internals/databases"
	approvalService "github.com/sudoneoox/Picton/internals/features/forms/approvals/service"
	"github.com/sudoneoox/Picton/internals/features/forms/documents"
	submissionService "github.com/sudoneoox/Picton/internals/features/forms/submissions/service"
	templateService "github.com/sudoneoox/Picton/internals/features/forms/templates/service"
	notificationService "github.com/sudoneoox/Picton/internals/features/home/notifications/service"
	delegationScheduler "github.com/sudoneoox/Picton/internals/features/organization/delegations/scheduler"
	delegationService "github.com/sudoneoox/Picton/internals/features/organization/delegations/service"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
	authScheduler "github.com/sudoneoox/Picton/internals/features/users/auth/scheduler"
	authService "github.com/sudoneoox/Picton/internals/features/users/auth/service"
	signatureService "github.com/sudoneoox/Picton/internals/features/users/signature/service"
	userService "github.com/sudoneoox/Picton/internals/features/users/user/service"
	"github.com/sudoneoox/Picton/internals/helpers/storage"
	"github.com/sudoneoox/Picton/internals/middlewares"
	"github.com/sudoneoox/Picton/internals/middlewares/logger"
	routes "github.com/sudoneoox/Picton/internals/route"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Run migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	started := time.Now()
	cfg, db, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()
	log := zap.L().Named("serve")

	if migrate {
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
	}
	if err := database.Ping(db); err != nil {
		return err
	}

	store, err := storage.New(cfg)
	if err != nil {
		return err
	}

	// notifications outlive request contexts and drain on shutdown
	dispatcher := notificationService.NewDispatcher(db, cfg.NotificationWorkers, cfg.NotificationBuffer)
	dispatcher.Start(context.WithoutCancel(ctx))
	defer func() {
		if err := dispatcher.Close(); err != nil {
			log.Warn("notification dispatcher closed with error", zap.Error(err))
		}
	}()

	users := userService.New(db)
	dir := unitService.NewDirectory(db)
	reg := delegationService.NewRegistry(db, dir, dispatcher)
	wf := templateService.NewWorkflows(db)
	engine := approvalService.NewEngine(db, dir, reg, wf)
	life := submissionService.New(db, engine, documents.NewTemplateRenderer(cfg.DocumentTemplateDir), store, dispatcher)
	auth := authService.New(db, users, cfg.JWTSecret, cfg.JWTTTL)

	cr, err := delegationScheduler.StartExpiryScheduler(ctx, reg, cfg.DelegationExpirySpec)
	if err != nil {
		return err
	}
	defer cr.Stop()
	if err := authScheduler.RegisterBlacklistCleanup(ctx, cr, auth); err != nil {
		return err
	}

	app := newApp(cfg)
	if local, ok := store.(*storage.LocalStore); ok {
		app.Static("/media", local.Root)
	}
	routes.SetupRoutes(app, routes.Deps{
		DB:         db,
		JWTSecret:  cfg.JWTSecret,
		StartedAt:  started,
		Auth:       auth,
		Users:      users,
		Directory:  dir,
		Registry:   reg,
		Workflows:  wf,
		Engine:     engine,
		Lifecycle:  life,
		Inbox:      notificationService.NewInbox(db),
		Signatures: signatureService.New(db, store),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		errCh <- app.Listen("0.0.0.0:" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newApp(cfg configs.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		BodyLimit:             4 * 1024 * 1024,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				zap.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "message": strings.TrimSpace(err.Error())})
		},
	})

	app.Use(middlewares.RecoveryMiddleware())
	app.Use(middlewares.RequestID())
	app.Use(logger.LoggerMiddleware())
	app.Use(middlewares.CorsMiddleware(cfg.CorsOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use("/api", middlewares.GlobalRateLimiter())
	return app
}
