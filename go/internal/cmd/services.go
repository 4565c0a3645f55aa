package main

import (
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"

	"github.com/mpeters/draftwire/go/internal/draft/catalog"
	"github.com/mpeters/draftwire/go/internal/draft/claim"
	"github.com/mpeters/draftwire/go/internal/draft/gateway"
	"github.com/mpeters/draftwire/go/internal/draft/outbox"
	"github.com/mpeters/draftwire/go/internal/draft/session"
	"github.com/mpeters/draftwire/go/internal/draft/sweeper"
)

// Services holds the fully wired draft coordinator.
type Services struct {
	Sessions *session.App
	Claims   *claim.App
	Catalog  *catalog.App
	Sweeper  *sweeper.Sweeper
	Runner   *sweeper.Runner
	Outbox   *outbox.Repository
	Gateway  *gateway.Service
}

// setupServices wires the dependency chain: repository layer, app layer,
// sweeper, gateway. nc may be nil when NATS is disabled.
func setupServices(database *sql.DB, cfg *Config, nc *nats.Conn) (*Services, error) {
	// Sessions
	sessionRepo := session.NewRepository(database)
	sessionApp := session.NewApp(sessionRepo)

	// Catalog
	catalogRepo := catalog.NewRepository(database)
	catalogApp := catalog.NewApp(catalogRepo)

	// Claims
	claimRepo := claim.NewRepository(database)
	claimApp := claim.NewApp(claimRepo)

	// Sweeper over the real apps with the real clock
	sw := sweeper.NewSweeper(
		sessionApp,
		claimApp,
		catalogApp,
		sweeper.LowestOrdinal{},
		clockwork.NewRealClock(),
	)
	runner := sweeper.NewRunner(sw, sweeper.RunnerConfig{
		BatchSize:  cfg.Sweeper.BatchSize,
		NumWorkers: cfg.Sweeper.NumWorkers,
	})

	gatewayService, err := gateway.NewService(sessionApp, claimApp, catalogApp, sw, nc)
	if err != nil {
		return nil, fmt.Errorf("setup gateway: %w", err)
	}

	return &Services{
		Sessions: sessionApp,
		Claims:   claimApp,
		Catalog:  catalogApp,
		Sweeper:  sw,
		Runner:   runner,
		Outbox:   outbox.NewRepository(database),
		Gateway:  gatewayService,
	}, nil
}
