package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/telegram"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/attendance-backend-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewMongoDB(ctx, cfg.Database.URI, cfg.Database.Name, cfg.Database.Timeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			slog.Warn("Failed to close MongoDB connection", "error", err)
		}
	}()
	slog.Info("Connected to MongoDB", "database", cfg.Database.Name)

	if err := db.EnsureIndexes(ctx); err != nil {
		slog.Warn("Failed to ensure indexes", "error", err)
	}

	employeeRepo := mongodb.NewEmployeeRepository(db)
	attendanceRepo := mongodb.NewAttendanceRepository(db)
	leaveRequestRepo := mongodb.NewLeaveRequestRepository(db)

	seeder := employeeService.NewSeeder(employeeRepo, employeeService.SeedConfig{
		EmpID:    cfg.Admin.EmpID,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
	})
	if _, err := seeder.EnsureBoss(ctx); err != nil {
		slog.Error("Failed to seed boss account", "error", err)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		slog.Error("Failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		slog.Error("Failed to initialize local storage", "error", err)
		os.Exit(1)
	}

	var sink notification.Sink
	if cfg.Telegram.Enabled() {
		bot, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		if err != nil {
			slog.Warn("Telegram notifications disabled", "error", err)
		} else {
			sink = bot
		}
	}

	hub := sse.NewHub()
	notifier := notificationService.NewNotificationService(hub, sink, notificationService.Config{})
	fileSvc := file.NewFileService(fileStorage)

	authSvc := serviceAuth.NewAuthService(employeeRepo, JWTService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, fileSvc, notifier, attendanceService.Config{
		LateAfterHour:   cfg.Attendance.LateAfterHour,
		LateAfterMinute: cfg.Attendance.LateAfterMinute,
		Location:        time.Local,
	})
	leaveSvc := leave.NewLeaveService(leaveRequestRepo, employeeRepo, notifier)
	dashboardSvc := dashboardService.NewDashboardService(employeeRepo, attendanceRepo, leaveRequestRepo, time.Local)
	reportSvc := reportService.NewReportService(attendanceRepo, time.Local)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         log,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			UploadsDir:     fileStorage.BasePath(),
		},
		JWTService,
		appHTTP.Handlers{
			Auth:         appHTTP.NewAuthHandler(authSvc),
			Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
			Leave:        appHTTP.NewLeaveHandler(leaveSvc),
			Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
			Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
			Report:       appHTTP.NewReportHandler(reportSvc),
			File:         appHTTP.NewFileHandler(fileSvc),
			Notification: appHTTP.NewNotificationHandler(JWTService, hub),
		},
	)

	scheduler := cron.NewScheduler()
	cron.NewPhotoJobs(fileStorage, cfg.Storage.PhotoRetention, cfg.Storage.PhotoCleanupHour, cfg.Storage.PhotoCleanupMinute).RegisterJobs(scheduler)
	cron.NewAuthJobs(JWTService).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open event streams end only when their hub channel closes
	server.RegisterOnShutdown(func() {
		notifier.Broadcast("shutdown", map[string]string{"message": "server is shutting down"})
		hub.Close()
	})

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)

		scheduler.Stop()
		notifier.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
