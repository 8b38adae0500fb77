package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/mofad-hr/leave-portal/internal/api/http"
	"github.com/mofad-hr/leave-portal/internal/application/audit"
	"github.com/mofad-hr/leave-portal/internal/application/delegation"
	"github.com/mofad-hr/leave-portal/internal/application/escalation"
	"github.com/mofad-hr/leave-portal/internal/application/leave"
	"github.com/mofad-hr/leave-portal/internal/application/routing"
	"github.com/mofad-hr/leave-portal/internal/application/staff"
	"github.com/mofad-hr/leave-portal/internal/application/workflow"
	"github.com/mofad-hr/leave-portal/internal/config"
	"github.com/mofad-hr/leave-portal/internal/infrastructure/postgres"
	"github.com/mofad-hr/leave-portal/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	leaveRepo := postgres.NewLeaveRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	staffRepo := postgres.NewStaffRepository(pool)
	workflowRepo := postgres.NewWorkflowRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	delegationRepo := postgres.NewDelegationRepository(pool)

	// infrastructure
	sseHub := sse.NewHub()

	// services
	auditSvc := audit.NewService(auditRepo, logger, cfg.AuditSigningKey)
	routingSvc := routing.NewService(workflowRepo, logger)
	workflowSvc := workflow.NewService(workflowRepo, logger)
	staffSvc := staff.NewService(staffRepo, logger)
	leaveSvc := leave.NewService(leaveRepo, balanceRepo, staffRepo, routingSvc, auditSvc, sseHub, logger)
	delegationSvc := delegation.NewService(delegationRepo, leaveSvc, staffRepo, auditSvc, sseHub, logger)
	escalationSvc := escalation.NewService(leaveRepo, leaveSvc, sseHub, logger)

	// API server
	apiServer := httpapi.NewServer(leaveSvc, workflowSvc, staffSvc, delegationSvc, auditSvc, sseHub)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background escalation sweep
	go func() {
		ticker := time.NewTicker(cfg.EscalationInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := escalationSvc.Run(context.Background(), cfg.EscalationBatch); err != nil {
				logger.Warn().Err(err).Msg("escalation sweep failed")
			}
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
	sseHub.Stop()
}
