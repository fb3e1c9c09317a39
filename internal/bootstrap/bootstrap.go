package bootstrap

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appControllers "github.com/mosc/eventadmin/internal/app/controllers"
	appMigrations "github.com/mosc/eventadmin/internal/app/migrations"
	appRepos "github.com/mosc/eventadmin/internal/app/repositories"
	appRoutes "github.com/mosc/eventadmin/internal/app/routes"
	appServices "github.com/mosc/eventadmin/internal/app/services"
	"github.com/mosc/eventadmin/internal/config"
	"github.com/mosc/eventadmin/internal/db"
	appMiddleware "github.com/mosc/eventadmin/internal/middleware"
	pkgAuth "github.com/mosc/eventadmin/internal/pkg/auth"
	"github.com/mosc/eventadmin/internal/pkg/backend"
	"github.com/mosc/eventadmin/internal/pkg/email"
	"github.com/mosc/eventadmin/internal/pkg/filestorage"
	"github.com/mosc/eventadmin/internal/pkg/logger"
	"github.com/mosc/eventadmin/internal/pkg/supervisor"
	"github.com/mosc/eventadmin/internal/pkg/websocket"
	"github.com/mosc/eventadmin/internal/seed"
)

// GalleryURLPrefix is where gallery photos are served from.
const GalleryURLPrefix = "/photos"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Backend *backend.Client
	Repos   *appRepos.Repositories
	DBPool  *pgxpool.Pool // nil when the in-memory store is used

	Tree      *supervisor.Tree
	Hub       *websocket.Hub
	Scheduler *appServices.PollScheduler
	Monitor   *appServices.CampaignMonitor

	MediaService     appServices.MediaService
	SponsorService   appServices.SponsorService
	PollService      appServices.PollService
	WhatsAppService  appServices.WhatsAppService
	SettingsService  appServices.WhatsAppSettingsService
	CampaignService  appServices.CampaignService
	TemplateService  appServices.TemplateService
	CommitteeService appServices.CommitteeService
	ProfileService   appServices.UserProfileService
	GalleryService   appServices.GalleryService

	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware
	GalleryStorage *filestorage.LocalStorage
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "eventadmin",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies migrations. It returns a
// nil pool when the database is disabled; campaigns then live in memory.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	if !cfg.Database.Enabled {
		lgr.Warn().Msg("Database disabled, campaigns and templates are kept in memory")
		return nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsPath
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// BuildDependencies initializes the backend client, stores, services,
// supervised workers and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, DBPool: dbPool}

	if dbPool != nil {
		deps.Repos = appRepos.NewRepositories(dbPool)
	} else {
		deps.Repos = appRepos.NewMemoryRepositories()
	}
	if err := seed.CreateDefaultData(ctx, deps.Repos.Templates, cfg.Backend.TenantID, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	deps.Backend = backend.NewClient(backend.Config{
		BaseURL:  cfg.Backend.BaseURL,
		TenantID: cfg.Backend.TenantID,
		Username: cfg.Backend.Username,
		Password: cfg.Backend.Password,
		Timeout:  cfg.Backend.Timeout,
	})

	var err error
	deps.GalleryStorage, err = filestorage.NewLocalStorage(filepath.Join(cfg.Server.StoragePath, "gallery"), GalleryURLPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gallery storage: %w", err)
	}

	// Supervised workers
	deps.Tree = supervisor.NewTree(logger.Component("supervisor"), supervisor.DefaultTreeConfig())
	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	deps.Tree.AddMessagingService(deps.Hub)

	messaging := appServices.MessagingConfig{
		CostPerMessage:        cfg.Messaging.CostPerMessage,
		MessagesPerMinute:     cfg.Messaging.MessagesPerMinute,
		MarketingRecipientCap: cfg.Messaging.MarketingRecipientCap,
		PollInterval:          cfg.Messaging.ProgressPollInterval,
		MonitorTimeout:        cfg.Messaging.ProgressMonitorTimeout,
	}
	mailer := email.NewEmailService(email.Config{
		APIKey:   cfg.Email.ResendAPIKey,
		From:     cfg.Email.From,
		NotifyTo: email.ParseRecipients(cfg.Email.NotifyTo),
		AppURL:   cfg.Server.AppURL,
	}, logger.Component("email"))

	// Services
	deps.MediaService = appServices.NewMediaService(deps.Backend)
	deps.SponsorService = appServices.NewSponsorService(deps.Backend)
	deps.PollService = appServices.NewPollService(deps.Backend)
	deps.WhatsAppService = appServices.NewWhatsAppService(deps.Backend)
	deps.SettingsService = appServices.NewWhatsAppSettingsService(deps.Backend)
	deps.TemplateService = appServices.NewTemplateService(deps.Repos.Templates, cfg.Backend.TenantID)
	deps.CommitteeService = appServices.NewCommitteeService(deps.Backend)
	deps.ProfileService = appServices.NewUserProfileService(deps.Backend)
	deps.GalleryService = appServices.NewGalleryService(deps.GalleryStorage)

	deps.Monitor = appServices.NewCampaignMonitor(
		deps.Repos.Campaigns,
		deps.WhatsAppService,
		deps.Hub,
		mailer,
		deps.Tree,
		messaging,
		logger.Component("campaign-monitor"),
	)
	deps.CampaignService = appServices.NewCampaignService(
		deps.Repos.Campaigns,
		deps.WhatsAppService,
		deps.Monitor,
		cfg.Backend.TenantID,
		messaging,
		logger.Component("campaigns"),
	)

	if cfg.Scheduler.Enabled {
		deps.Scheduler = appServices.NewPollScheduler(
			deps.PollService,
			cfg.Scheduler.PollInterval,
			logger.Component("poll-scheduler"),
		)
		deps.Tree.AddSchedulingService(deps.Scheduler)
	} else {
		lgr.Warn().Msg("Poll scheduler disabled")
	}

	// Auth
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.Auth.SessionSecret,
		SessionTTL:  cfg.Auth.SessionTTL,
		TokenIssuer: cfg.Auth.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	authenticator := pkgAuth.NewAuthenticator(cfg.Auth.AdminEmail, cfg.Auth.AdminPasswordHash)
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPasswordHash == "" {
		lgr.Warn().Msg("No admin account configured, sign-in will always fail")
	}

	templates, err := appControllers.LoadTemplates(cfg.Server.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates from %s: %w", cfg.Server.TemplatesPath, err)
	}

	uploads := appControllers.NewUploadController(deps.Backend)
	var dbPinger appControllers.Pinger
	if dbPool != nil {
		dbPinger = dbPool
	}
	deps.Controllers = appRoutes.Controllers{
		Pages: appControllers.NewPageController(templates, deps.GalleryService, authenticator, deps.JWTService, appControllers.PageConfig{
			ContentPath:   cfg.Server.ContentPath,
			SecureCookies: cfg.IsProduction(),
		}),
		Proxy:       appControllers.NewProxyController(deps.Backend, uploads),
		Media:       appControllers.NewMediaController(deps.MediaService),
		Sponsors:    appControllers.NewSponsorController(deps.SponsorService),
		Polls:       appControllers.NewPollController(deps.PollService, deps.Scheduler),
		WhatsApp:    appControllers.NewWhatsAppController(deps.WhatsAppService),
		Settings:    appControllers.NewWhatsAppSettingsController(deps.SettingsService),
		Campaigns:   appControllers.NewCampaignController(deps.CampaignService),
		Templates:   appControllers.NewTemplateController(deps.TemplateService),
		Committee:   appControllers.NewCommitteeController(deps.CommitteeService),
		Profiles:    appControllers.NewUserProfileController(deps.ProfileService),
		Gallery:     appControllers.NewGalleryController(deps.GalleryService),
		System:      appControllers.NewSystemController(deps.Backend, dbPinger),
		CampaignsWS: websocket.NewHandler(deps.Hub, deps.CampaignService, cfg.Server.AppURL, logger.Component("websocket")),
	}

	return deps, nil
}

// StartWorkers runs the supervisor tree and picks up campaigns that were
// still sending or scheduled when the process last stopped.
func StartWorkers(ctx context.Context, cfg *config.Config, deps *Dependencies) <-chan error {
	done := deps.Tree.ServeBackground(ctx)
	if err := deps.Monitor.Resume(ctx, cfg.Backend.TenantID); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to resume campaign monitors")
	}
	return done
}

// csrfKey returns the configured 32-byte CSRF key, deriving one from the
// session secret when none is set.
func csrfKey(cfg *config.Config) []byte {
	if len(cfg.Auth.CSRFKey) == 32 {
		return []byte(cfg.Auth.CSRFKey)
	}
	sum := sha256.Sum256([]byte("csrf:" + cfg.Auth.SessionSecret))
	return sum[:]
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}
	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.AccessLog(logger.Component("http")),
		appMiddleware.SecurityHeaders(),
	)

	appRoutes.SetupSwagger(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ping", deps.Controllers.System.Ping)
	router.Static(GalleryURLPrefix, deps.GalleryStorage.BasePath())

	appRoutes.SetupRouter(router, deps.Controllers, appRoutes.Guards{
		Auth:      deps.AuthMiddleware,
		CSRF:      appMiddleware.CSRF(csrfKey(cfg), cfg.IsProduction()),
		CORS:      appMiddleware.CORS([]string{cfg.Server.AppURL}),
		RateLimit: appMiddleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		// Ten attempts per window per IP, whatever the API limit is.
		SignInLimit: appMiddleware.RateLimit(10, cfg.RateLimit.Window),
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "path": c.Request.URL.Path})
	})

	return router
}
