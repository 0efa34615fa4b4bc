package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"refdesk/core/config"
	"refdesk/core/database"
	"refdesk/core/loader"
	"refdesk/core/logger"
	"refdesk/core/middleware/auth"
	"refdesk/core/middleware/rayid"
	"refdesk/core/middleware/scope"
	"refdesk/core/storage"
	"refdesk/core/store"

	"refdesk/feature/feeds"
	"refdesk/feature/feeds/ingest"
	"refdesk/feature/records"
	recsync "refdesk/feature/records/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the record store. Unlike the optional archive
		// storage below, the server is useless without it.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to record store", zap.Error(err))
		}
		if missing := database.MissingTables(db, append(recsync.Tables(), feeds.Table)); len(missing) > 0 {
			logg.Warn("Record store schema is incomplete", zap.Strings("missing_tables", missing))
		}
		st := store.NewGormStore(db)

		// 4. Optional archive storage for raw feed bodies
		var archiver ingest.Archiver
		if cfg.Storage.Enabled() {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Warn("Feed archive storage unavailable", zap.Error(err))
			} else {
				archiver = ingest.NewBucketArchiver(client, cfg.Storage.Bucket)
				logg.Info("Feed archiving enabled", zap.String("bucket", cfg.Storage.Bucket))
			}
		}

		syncer := ingest.NewSyncer(st, cfg.Ingest, archiver, logg)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Request logging with Zap + RayID
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth, then the per-request account scope every store call uses
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
		app.Use(scope.New())

		// 6. Load Features
		mgr := loader.NewManager()
		mgr.Register(records.NewFeature(st, logg))
		mgr.Register(feeds.NewFeature(st, syncer, logg))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Periodic feed sync when configured
		var scheduler *ingest.Scheduler
		if cfg.Ingest.SyncSchedule != "" {
			scheduler = ingest.NewScheduler(syncer, st, logg)
			if err := scheduler.Start(cfg.Ingest.SyncSchedule); err != nil {
				logg.Fatal("Failed to start sync scheduler", zap.Error(err))
			}
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if scheduler != nil {
			scheduler.Stop()
		}
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
