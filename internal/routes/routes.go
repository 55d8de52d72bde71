package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brightpaws/dogtrainer-api/internal/audit"
	"github.com/brightpaws/dogtrainer-api/internal/cache"
	"github.com/brightpaws/dogtrainer-api/internal/clock"
	"github.com/brightpaws/dogtrainer-api/internal/config"
	"github.com/brightpaws/dogtrainer-api/internal/handlers"
	infraRepo "github.com/brightpaws/dogtrainer-api/internal/infra/repository"
	"github.com/brightpaws/dogtrainer-api/internal/middleware"
	"github.com/brightpaws/dogtrainer-api/internal/models"
	ucSession "github.com/brightpaws/dogtrainer-api/internal/usecase/session"
	ucSignup "github.com/brightpaws/dogtrainer-api/internal/usecase/signup"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	logger *zap.Logger,
	rdb *cache.Client,
) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	sessionRepo := infraRepo.NewSessionGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	clk := clock.System()

	// ======================================================
	// USE CASES — SESSIONS
	// ======================================================
	createSessionUC := ucSession.NewCreateSession(sessionRepo, clk, auditDispatcher)
	generateSessionsUC := ucSession.NewGenerateSessions(sessionRepo, auditDispatcher)
	startSessionUC := ucSession.NewStartSession(sessionRepo, clk, auditDispatcher)
	completeSessionUC := ucSession.NewCompleteSession(sessionRepo, clk, auditDispatcher)
	cancelSessionUC := ucSession.NewCancelSession(sessionRepo, clk, auditDispatcher)

	// ======================================================
	// USE CASES — SIGNUPS & WAITLIST
	// ======================================================
	promoter := ucSignup.NewPromoter(clk, cfg.WaitlistResponseWindow)

	requestSignupUC := ucSignup.NewRequestSignup(sessionRepo, clk, auditDispatcher)
	approveSignupUC := ucSignup.NewApproveSignup(sessionRepo, clk, auditDispatcher)
	rejectSignupUC := ucSignup.NewRejectSignup(sessionRepo, auditDispatcher)
	cancelSignupUC := ucSignup.NewCancelSignup(sessionRepo, clk, auditDispatcher, promoter)
	claimSpotUC := ucSignup.NewClaimSpot(sessionRepo, clk, auditDispatcher)
	withdrawUC := ucSignup.NewWithdrawWaitlist(sessionRepo, auditDispatcher, promoter)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	dogHandler := handlers.NewDogHandler(db, auditDispatcher)
	scheduleHandler := handlers.NewScheduleHandler(db, auditDispatcher, generateSessionsUC)

	sessionHandler := handlers.NewSessionHandler(
		db,
		createSessionUC,
		startSessionUC,
		completeSessionUC,
		cancelSessionUC,
	)

	signupHandler := handlers.NewSignupHandler(
		db,
		requestSignupUC,
		approveSignupUC,
		rejectSignupUC,
		cancelSignupUC,
	)

	waitlistHandler := handlers.NewWaitlistHandler(db, claimSpotUC, withdrawUC)

	exportHandler := handlers.NewExportHandler(db)
	publicHandler := handlers.NewPublicHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		publicAPI.Use(middleware.RateLimit(rdb, 60, time.Minute))
		{
			publicAPI.GET("/sessions", publicHandler.ListOpenSessions)
			publicAPI.GET("/sessions/:id", publicHandler.GetSession)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.PATCH("/me", meHandler.UpdateMe)

			secured.GET("/me/audit-logs", auditLogsHandler.List)

			// ------------------------------
			// OWNER — DOGS
			// ------------------------------
			owner := secured.Group("/")
			owner.Use(middleware.RequireRole(models.RoleOwner))
			{
				owner.POST("/me/dogs", dogHandler.Create)
				owner.GET("/me/dogs", dogHandler.List)
				owner.GET("/me/dogs/:id", dogHandler.Get)
				owner.PATCH("/me/dogs/:id", dogHandler.Update)
				owner.DELETE("/me/dogs/:id", dogHandler.Delete)

				// ------------------------------
				// OWNER — SIGNUPS & WAITLIST
				// ------------------------------
				owner.POST("/me/signups", signupHandler.Request)
				owner.GET("/me/signups", signupHandler.ListMine)

				owner.GET("/me/waitlist", waitlistHandler.ListMine)
				owner.POST("/me/waitlist/:id/claim", waitlistHandler.Claim)
				owner.DELETE("/me/waitlist/:id", waitlistHandler.Withdraw)
			}

			// Cancellation is shared: owners cancel their own signups,
			// trainers cancel any signup on their sessions.
			secured.PATCH("/me/signups/:id/cancel", signupHandler.Cancel)

			// ------------------------------
			// TRAINER — SCHEDULES & SESSIONS
			// ------------------------------
			trainer := secured.Group("/")
			trainer.Use(middleware.RequireRole(models.RoleTrainer))
			{
				trainer.POST("/me/schedules", scheduleHandler.Create)
				trainer.GET("/me/schedules", scheduleHandler.List)
				trainer.GET("/me/schedules/:id", scheduleHandler.Get)
				trainer.PATCH("/me/schedules/:id", scheduleHandler.Update)
				trainer.DELETE("/me/schedules/:id", scheduleHandler.Delete)
				trainer.POST("/me/schedules/:id/generate", scheduleHandler.Generate)

				trainer.POST("/me/sessions", sessionHandler.Create)
				trainer.GET("/me/sessions", sessionHandler.List)
				trainer.GET("/me/sessions/:id", sessionHandler.Get)
				trainer.PATCH("/me/sessions/:id", sessionHandler.Update)
				trainer.DELETE("/me/sessions/:id", sessionHandler.Delete)
				trainer.GET("/me/sessions/:id/signups", sessionHandler.ListSignups)
				trainer.GET("/me/sessions/:id/waitlist", sessionHandler.ListWaitlist)
				trainer.PATCH("/me/sessions/:id/start", sessionHandler.Start)
				trainer.PATCH("/me/sessions/:id/complete", sessionHandler.Complete)
				trainer.PATCH("/me/sessions/:id/cancel", sessionHandler.Cancel)

				trainer.PATCH("/me/signups/:id/approve", signupHandler.Approve)
				trainer.PATCH("/me/signups/:id/reject", signupHandler.Reject)

				trainer.GET("/me/export/calendar.ics", exportHandler.Calendar)
				trainer.GET("/me/sessions/:id/roster.xlsx", exportHandler.Roster)
			}
		}
	}
}
