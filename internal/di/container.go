// Package di provides dependency injection configuration for the PackZen
// client engine. Process-wide pieces (config, logger, gateway, refresh gate)
// live in the container; per-trip pieces are built by OpenTrip.
package di

import (
	"github.com/samber/do/v2"

	"github.com/packzen/packzen-client/internal/config"
	"github.com/packzen/packzen-client/internal/gateway"
	"github.com/packzen/packzen-client/internal/logger"
	"github.com/packzen/packzen-client/internal/ratelimit"
)

// ConfigPath is the config file location the container loads from.
// Set it before the first invoke; empty means defaults plus environment.
var ConfigPath string

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, ProvideConfig)
	do.Provide(injector, ProvideLogger)

	// Backend access
	do.Provide(injector, ProvideGatewayClient)
	do.Provide(injector, ProvideRefreshGate)

	return injector
}

// ProvideConfig provides the engine configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load(ConfigPath)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
	})

	log.Info("Starting PackZen engine",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"server_url", cfg.Server.URL,
	)

	return log, nil
}

// ProvideGatewayClient provides the authenticated backend client.
func ProvideGatewayClient(i do.Injector) (*gateway.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return gateway.New(cfg.Server, log.Logger)
}

// ProvideRefreshGate provides the shared per-trip silent refresh gate.
func ProvideRefreshGate(i do.Injector) (*ratelimit.IntervalGate, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.NewIntervalGate(cfg.Sync.RefreshMinInterval), nil
}
