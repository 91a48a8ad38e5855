package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/config"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/models"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/notify"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/routes"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/services"
	"github.com/ManishKumarCs/Onboarding-Management-System-sub000/storage"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "server configuration file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log := mustMakeLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	db, err := config.ConnectDB(cfg)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskUpdate{},
		&models.TaskReview{},
		&models.TaskAttachment{},
		&models.TaskAudit{},
		&models.Notification{},
	); err != nil {
		return err
	}

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	svc := services.NewTaskService(db, log, notify.NewDBNotifier(db, log), files)

	if cfg.OverdueSweep != "" {
		sweeper, err := services.StartOverdueSweep(db, log, cfg.OverdueSweep)
		if err != nil {
			return err
		}
		defer sweeper.Stop()
		log.Info("overdue sweep enabled", "schedule", cfg.OverdueSweep)
	}

	r := routes.SetupRouter(db, svc)

	log.Info("starting server", "address", cfg.Address)
	return r.Run(cfg.Address)
}

func mustMakeLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "DEBUG":
		l = slog.LevelDebug
	case "INFO":
		l = slog.LevelInfo
	case "ERROR":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
