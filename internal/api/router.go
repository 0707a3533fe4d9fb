package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/foreningshub/backend/internal/app"
	iauth "github.com/foreningshub/backend/internal/auth"
	"github.com/foreningshub/backend/internal/handlers"
	"github.com/foreningshub/backend/internal/middleware"
	"github.com/foreningshub/backend/internal/services"
	"github.com/foreningshub/backend/internal/store"
	"github.com/foreningshub/backend/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	st, err := store.NewGormStore(db)
	if err != nil {
		return nil, err
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, err
	}

	authSvc, err := services.NewAuthService(db)
	if err != nil {
		return nil, err
	}
	associationSvc, err := services.NewAssociationService(db)
	if err != nil {
		return nil, err
	}
	memberSvc, err := services.NewMemberService(db)
	if err != nil {
		return nil, err
	}
	invitationSvc, err := services.NewInvitationService(st,
		services.WithInviteExpiry(cfg.Invitations.Expiry),
		services.WithInviteTokenSize(cfg.Invitations.TokenSize),
		services.WithInviteBaseURL(cfg.Server.BaseURL),
		services.WithInviteMailer(mailer),
	)
	if err != nil {
		return nil, err
	}
	acceptanceSvc, err := services.NewAcceptanceService(st, invitationSvc)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(authSvc, jwt)
	associationHandler := handlers.NewAssociationHandler(associationSvc)
	memberHandler := handlers.NewMemberHandler(memberSvc)
	invitationHandler := handlers.NewInvitationHandler(invitationSvc)
	acceptanceHandler := handlers.NewAcceptanceHandler(acceptanceSvc)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Public invitation routes; the token is the credential.
	r.GET("/api/invitations/:token", acceptanceHandler.Lookup)
	r.POST("/api/invitations/:token/accept", acceptanceHandler.Accept)

	// Protected routes
	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)

	associations := api.Group("/associations")
	{
		associations.POST("", associationHandler.Create)
		associations.GET("", associationHandler.List)
		associations.GET("/:id", associationHandler.Get)
		associations.PATCH("/:id", associationHandler.Update)

		associations.POST("/:id/members", memberHandler.Create)
		associations.GET("/:id/members", memberHandler.List)

		associations.POST("/:id/invitations", invitationHandler.Create)
		associations.GET("/:id/invitations", invitationHandler.List)
		associations.POST("/:id/invitations/import/preview", invitationHandler.ImportPreview)
		associations.POST("/:id/invitations/import", invitationHandler.ImportCommit)
	}

	members := api.Group("/members")
	{
		members.GET("/:memberID", memberHandler.Get)
		members.PATCH("/:memberID", memberHandler.Update)
		members.DELETE("/:memberID", memberHandler.Delete)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
