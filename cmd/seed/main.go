package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(cfg.App.LogLevel, cfg.App.Env))

	ctx := context.Background()
	db, err := database.NewMongoDB(ctx, cfg.Database.URI, cfg.Database.Name, cfg.Database.Timeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer db.Close(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		slog.Warn("Failed to ensure indexes", "error", err)
	}

	seeder := employeeService.NewSeeder(mongodb.NewEmployeeRepository(db), employeeService.SeedConfig{
		EmpID:    cfg.Admin.EmpID,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
	})

	created, err := seeder.EnsureBoss(ctx)
	if err != nil {
		slog.Error("Failed to seed boss account", "error", err)
		db.Close(ctx)
		os.Exit(1)
	}
	if created {
		fmt.Printf("Boss account %s created\n", cfg.Admin.EmpID)
		return
	}
	fmt.Printf("Boss account %s already exists\n", cfg.Admin.EmpID)
}
