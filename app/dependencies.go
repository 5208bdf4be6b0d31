package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/coffee-shop/auth0"
	"github.com/upb/coffee-shop/config"
	"github.com/upb/coffee-shop/middleware"
	"github.com/upb/coffee-shop/repositories"
	"github.com/upb/coffee-shop/repositories/postgres"
	"github.com/upb/coffee-shop/services/drinks"
	"go.uber.org/zap"
)

// errAuthNotConfigured is returned for every token when no tenant domain is set
var errAuthNotConfigured = errors.New("authentication not configured")

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Drinks    repositories.DrinkRepository
	TxManager repositories.TransactionManager

	// Services
	DrinkService *drinks.Service

	// Auth
	KeySetFetcher  *auth0.HTTPKeySetFetcher
	Verifier       auth0.TokenVerifier
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies opens the database and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesFromFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromFactory wires dependencies over an already opened database
func NewDependenciesFromFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initServices()

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase prepares the drinks schema
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if err := d.RepoFactory.Prepare(ctx, cfg.Database.ResetOnStart); err != nil {
		return err
	}

	d.Logger.Info("database ready",
		zap.String("connection", cfg.Database.LogString()),
		zap.Bool("reset", cfg.Database.ResetOnStart))
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Drinks = repos.Drinks
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices() {
	d.DrinkService = drinks.NewService(d.Drinks, d.TxManager, d.Logger.Named("drinks"))
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	var opts []auth0.GuardOption
	if cfg.Auth0.ExposeVerifierErrors {
		opts = append(opts, auth0.WithVerifierDiagnostics(true))
	}
	authLogger := d.Logger.Named("auth0")

	if cfg.Auth0.Domain == "" {
		d.Logger.Warn("auth0 not configured, protected routes will reject every token")
		d.Verifier = rejectAllVerifier{}
		d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, authLogger, opts...)
		return nil
	}

	d.KeySetFetcher = auth0.NewHTTPKeySetFetcher(auth0.FetcherConfig{
		Domain:      cfg.Auth0.Domain,
		CacheTTL:    cfg.Auth0.JWKSCacheTTL,
		HTTPTimeout: cfg.Auth0.HTTPTimeout,
	})
	verifier, err := auth0.NewVerifier(auth0.Config{
		Domain:     cfg.Auth0.Domain,
		Audience:   cfg.Auth0.Audience,
		Algorithms: cfg.Auth0.Algorithms,
	}, d.KeySetFetcher)
	if err != nil {
		return err
	}

	d.Verifier = verifier
	d.AuthMiddleware = middleware.NewAuthMiddleware(verifier, authLogger, opts...)
	d.Logger.Info("auth0 verifier initialized",
		zap.String("jwks_url", d.KeySetFetcher.URL()),
		zap.String("audience", cfg.Auth0.Audience),
		zap.Duration("jwks_cache_ttl", cfg.Auth0.JWKSCacheTTL))
	return nil
}

// rejectAllVerifier rejects all tokens (used when Auth0 is not configured)
type rejectAllVerifier struct{}

func (rejectAllVerifier) Verify(context.Context, string) (*auth0.Claims, error) {
	return nil, errAuthNotConfigured
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	return errors.Join(errs...)
}
