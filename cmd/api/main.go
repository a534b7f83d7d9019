package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/worklane/workforce-backend-go/internal/config"
	appHTTP "github.com/worklane/workforce-backend-go/internal/handler/http"
	"github.com/worklane/workforce-backend-go/internal/pkg/cron"
	"github.com/worklane/workforce-backend-go/internal/pkg/database"
	"github.com/worklane/workforce-backend-go/internal/pkg/jwt"
	"github.com/worklane/workforce-backend-go/internal/pkg/sse"
	"github.com/worklane/workforce-backend-go/internal/repository/postgresql"
	approvalService "github.com/worklane/workforce-backend-go/internal/service/approval"
	attendanceService "github.com/worklane/workforce-backend-go/internal/service/attendance"
	authService "github.com/worklane/workforce-backend-go/internal/service/auth"
	notificationService "github.com/worklane/workforce-backend-go/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	subjectRepo := postgresql.NewSubjectRepository(db)
	organizationRepo := postgresql.NewOrganizationRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	approvalRepo := postgresql.NewApprovalRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	hub := sse.NewHub()

	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.DefaultConfig())
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		subjectRepo,
		organizationRepo,
		userRepo,
		notificationSvc,
		cfg.Attendance,
	)
	approvalSvc := approvalService.NewApprovalService(approvalRepo, subjectRepo, userRepo, notificationSvc)
	authSvc := authService.NewAuthService(userRepo, refreshTokenRepo, jwtService, db)

	authHandler := appHTTP.NewAuthHandler(authSvc, jwtService)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	approvalHandler := appHTTP.NewApprovalHandler(approvalSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc, jwtService)

	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		authHandler,
		attendanceHandler,
		approvalHandler,
		notificationHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceRepo, subjectRepo, userRepo, notificationSvc, cfg.Attendance).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")
	scheduler.Stop()
	notificationSvc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Println("Shutdown error:", err)
	}
}
