package cmd

import (
	"fmt"
	"os"

	"github.com/AlexHayrapetyan/RestoBook/config"
	"github.com/AlexHayrapetyan/RestoBook/hub"
	"github.com/AlexHayrapetyan/RestoBook/metrics"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/queue"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	autoMigrate bool

	rootCmd = &cobra.Command{
		Use:   "restobook",
		Short: "RestoBook table reservation server",
		Long: `RestoBook serves the reservation API, sweeps finished reservations
and sends confirmation and reminder emails.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&autoMigrate, "migrate", true, "run AutoMigrate before the command")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, sweepCmd)
}

// Execute -> entry point dari main
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is everything a command needs, built once from the environment.
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	rdb      *redis.Client
	registry *prometheus.Registry
	svcs     *services.Services
}

func bootstrap(clock services.Clock) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	utils.InitLogger()
	utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)
	utils.SetJWTSecret(cfg.JWTSecret, cfg.SessionTTL)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if autoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		utils.InfoLogger.Info("AutoMigrate completed.")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	var locker services.TableLocker
	if rdb != nil {
		locker = services.NewRedisLocker(rdb)
		utils.InfoLogger.Infof("Using redis at %s for table locks and rate limiting", cfg.Redis.Addr)
	} else {
		locker = services.NewLocalLocker()
	}

	var publisher services.EventPublisher = services.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitMQURL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	h := hub.New()
	h.OnChange = m.SocketDelta

	svcs := services.New(services.Options{
		DB:            db,
		Clock:         clock,
		Location:      cfg.Timezone,
		Mailer:        services.NewMailer(cfg.Mail),
		Publisher:     publisher,
		Locker:        locker,
		Hub:           h,
		Metrics:       m,
		SweepInterval: cfg.SweepInterval,
	})

	return &app{cfg: cfg, db: db, rdb: rdb, registry: registry, svcs: svcs}, nil
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
