package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mpeters/draftwire/go/internal/draft/catalog"
	"github.com/mpeters/draftwire/go/internal/draft/claim"
	"github.com/mpeters/draftwire/go/internal/draft/session"
	"github.com/mpeters/draftwire/go/internal/draft/sweeper"
)

// Service wires the gateway handlers, the WebSocket connection manager, and
// the JetStream event consumer together.
type Service struct {
	connectionManager *ConnectionManager
	eventConsumer     *EventConsumer

	sessionHandler   *SessionHandler
	stateHandler     *StateHandler
	claimHandler     *ClaimHandler
	webSocketHandler *WebSocketHandler
}

// NewService creates a gateway service over the draft apps and a NATS
// connection. Pass a nil NATS connection to run without live events
// (clients fall back to polling state).
func NewService(
	sessions *session.App,
	claims *claim.App,
	cat *catalog.App,
	sw *sweeper.Sweeper,
	nc *nats.Conn,
) (*Service, error) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	provider := NewSessionStateProvider(sessions, claims, cat)

	svc := &Service{
		connectionManager: cm,
		sessionHandler:    NewSessionHandler(sessions),
		stateHandler:      NewStateHandler(provider),
		claimHandler:      NewClaimHandler(claims, sw),
		webSocketHandler:  NewWebSocketHandler(cm),
	}

	if nc != nil {
		consumer, err := NewEventConsumer(nc, cm)
		if err != nil {
			return nil, fmt.Errorf("create event consumer: %w", err)
		}
		svc.eventConsumer = consumer
	}

	return svc, nil
}

// Start runs the connection manager and event consumer until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	go s.connectionManager.Start(ctx)

	if s.eventConsumer != nil {
		if err := s.eventConsumer.Start(ctx); err != nil {
			return fmt.Errorf("start event consumer: %w", err)
		}
	} else {
		log.Warn().Msg("gateway running without event consumer, WebSocket clients get no live events")
	}

	return nil
}

// RegisterRoutes attaches all gateway endpoints to mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", s.sessionHandler.HandleCreateSession)
	mux.HandleFunc("/api/sessions/active", s.stateHandler.HandleActiveSessions)
	mux.HandleFunc("/api/sessions/", s.routeSessionSubpath)
	mux.HandleFunc("/ws/draft", s.webSocketHandler.HandleDraftWebSocket)
	mux.HandleFunc("/ws/stats", s.webSocketHandler.HandleConnectionStats)
}

// routeSessionSubpath dispatches /api/sessions/{id}/<action> by suffix.
func (s *Service) routeSessionSubpath(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/claims"):
		s.claimHandler.HandleSubmitClaim(w, r)
	case strings.HasSuffix(r.URL.Path, "/sweep"):
		s.claimHandler.HandleSweep(w, r)
	case strings.HasSuffix(r.URL.Path, "/state"):
		s.stateHandler.HandleSessionState(w, r)
	case strings.HasSuffix(r.URL.Path, "/activate"):
		s.sessionHandler.HandleActivateSession(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}
