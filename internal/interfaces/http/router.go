package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	apikeyusecases "mcprouter/internal/application/apikey/usecases"
	serverentryusecases "mcprouter/internal/application/serverentry/usecases"
	userusecases "mcprouter/internal/application/user/usecases"
	"mcprouter/internal/infrastructure/auth"
	"mcprouter/internal/infrastructure/cache"
	"mcprouter/internal/infrastructure/config"
	"mcprouter/internal/infrastructure/email"
	"mcprouter/internal/infrastructure/ratelimit"
	"mcprouter/internal/infrastructure/repository"
	"mcprouter/internal/interfaces/http/handlers"
	"mcprouter/internal/interfaces/http/middleware"
	"mcprouter/internal/interfaces/http/routes"
	"mcprouter/internal/shared/logger"
	"mcprouter/internal/shared/services/markdown"
)

// Router wires the repositories, use cases, and handlers into a gin
// engine.
type Router struct {
	engine *gin.Engine
}

// NewRouter builds the full HTTP surface from its infrastructure
// dependencies.
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Router, error) {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Infrastructure services
	webAuthnService, err := auth.NewWebAuthnService(cfg.WebAuthn)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebAuthn service: %w", err)
	}
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes, cfg.Auth.JWT.RefreshExpDays)
	emailService := email.NewSMTPEmailService(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		BaseURL:     cfg.Email.BaseURL,
	})
	challengeStore := cache.NewChallengeStoreWithTTL(redisClient, cfg.Auth.ChallengeTTL())
	tokenStore := cache.NewVerificationTokenStore(redisClient)
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient)
	markdownRenderer := markdown.NewRenderer()

	// Repositories
	userRepo := repository.NewUserRepository(db, log)
	credentialRepo := repository.NewPasskeyCredentialRepository(db, log)
	keyRepo := repository.NewAPIKeyRepository(db, log)
	entryRepo := repository.NewServerEntryRepository(db, log)

	// Use cases
	sendVerification := userusecases.NewSendVerificationEmailUseCase(
		userRepo, tokenStore, emailService,
		cfg.Auth.VerificationTokenExpiry(), cfg.Auth.VerificationResendCooldown(), log)
	verifyEmail := userusecases.NewVerifyEmailUseCase(userRepo, tokenStore, log)
	beginRegistration := userusecases.NewBeginRegistrationUseCase(userRepo, credentialRepo, webAuthnService, challengeStore, log)
	finishRegistration := userusecases.NewFinishRegistrationUseCase(userRepo, credentialRepo, webAuthnService, challengeStore, sendVerification, log)
	beginAuthentication := userusecases.NewBeginAuthenticationUseCase(userRepo, credentialRepo, webAuthnService, challengeStore, log)
	finishAuthentication := userusecases.NewFinishAuthenticationUseCase(userRepo, credentialRepo, webAuthnService, challengeStore, jwtService, log)
	refreshSession := userusecases.NewRefreshSessionUseCase(userRepo, jwtService, log)
	listPasskeys := userusecases.NewListPasskeysUseCase(credentialRepo, log)
	deletePasskey := userusecases.NewDeletePasskeyUseCase(credentialRepo, log)

	createKey := apikeyusecases.NewCreateKeyUseCase(keyRepo, log)
	listKeys := apikeyusecases.NewListKeysUseCase(keyRepo, log)
	deleteKey := apikeyusecases.NewDeleteKeyUseCase(keyRepo, log)
	resolveSession := apikeyusecases.NewResolveSessionUseCase(keyRepo, userRepo, log)

	createEntry := serverentryusecases.NewCreateEntryUseCase(entryRepo, markdownRenderer, log)
	listEntries := serverentryusecases.NewListEntriesUseCase(entryRepo, log)
	deleteEntry := serverentryusecases.NewDeleteEntryUseCase(entryRepo, log)

	// Handlers and middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, userRepo, log)
	webAuthnHandler := handlers.NewWebAuthnHandler(beginRegistration, finishRegistration, beginAuthentication, finishAuthentication, refreshSession, log)
	mcpSessionHandler := handlers.NewMCPSessionHandler(resolveSession, log)
	keyHandler := handlers.NewKeyHandler(createKey, listKeys, deleteKey, log)
	userHandler := handlers.NewUserHandler(listPasskeys, deletePasskey, sendVerification, verifyEmail, log)
	serverEntryHandler := handlers.NewServerEntryHandler(createEntry, listEntries, deleteEntry, log)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS(cfg.WebAuthn.RPOrigins))
	engine.Use(middleware.Logger(log))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	routes.SetupAuthRoutes(engine, &routes.AuthRouteConfig{
		WebAuthnHandler:   webAuthnHandler,
		MCPSessionHandler: mcpSessionHandler,
		UserHandler:       userHandler,
		AuthMiddleware:    authMiddleware,
		RateLimiter:       rateLimiter,
		Logger:            log,
	})
	routes.SetupKeyRoutes(engine, &routes.KeyRouteConfig{
		KeyHandler:     keyHandler,
		AuthMiddleware: authMiddleware,
	})
	routes.SetupUserRoutes(engine, &routes.UserRouteConfig{
		UserHandler:    userHandler,
		AuthMiddleware: authMiddleware,
	})
	routes.SetupServerRoutes(engine, &routes.ServerRouteConfig{
		ServerEntryHandler: serverEntryHandler,
		AuthMiddleware:     authMiddleware,
	})

	return &Router{engine: engine}, nil
}

// Engine returns the configured gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
