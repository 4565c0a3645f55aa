package outbox

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// ListenerConfig holds LISTEN/NOTIFY configuration.
type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	PingInterval     time.Duration
	BatchSize        int32
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel:    "draft_outbox_events",
		FallbackInterval: 30 * time.Second,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// Listener wakes the relay as soon as Postgres signals a new outbox row,
// with a periodic fallback poll covering dropped notifications.
type Listener struct {
	repo      *Repository
	listener  *pq.Listener
	publisher Publisher
	cfg       ListenerConfig
}

func NewListener(repo *Repository, publisher Publisher, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		return nil, err
	}

	return &Listener{
		repo:      repo,
		listener:  l,
		publisher: publisher,
		cfg:       cfg,
	}, nil
}

// Run blocks until ctx is cancelled, draining the outbox whenever notified.
func (l *Listener) Run(ctx context.Context) error {
	defer l.listener.Close()

	// Drain anything that landed while we were down.
	l.drain(ctx)

	fallback := time.NewTicker(l.cfg.FallbackInterval)
	defer fallback.Stop()
	ping := time.NewTicker(l.cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-l.listener.Notify:
			if n != nil {
				log.Debug().Str("channel", n.Channel).Msg("outbox notification received")
			}
			l.drain(ctx)
		case <-fallback.C:
			l.drain(ctx)
		case <-ping.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("listener ping failed")
			}
		}
	}
}

func (l *Listener) drain(ctx context.Context) {
	for {
		events, err := l.repo.FetchUnsent(ctx, l.cfg.BatchSize)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch unsent outbox events")
			return
		}
		if len(events) == 0 {
			return
		}
		for _, ev := range events {
			if err := l.publisher.Publish(ctx, ev); err != nil {
				log.Error().Err(err).Str("event_id", ev.ID.String()).Msg("failed to publish outbox event")
				return
			}
			if err := l.repo.MarkSent(ctx, ev.ID, time.Now()); err != nil {
				log.Error().Err(err).Str("event_id", ev.ID.String()).Msg("failed to mark outbox event sent")
				return
			}
		}
		if int32(len(events)) < l.cfg.BatchSize {
			return
		}
	}
}
