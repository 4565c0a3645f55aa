package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds polling configuration for the outbox worker.
type Config struct {
	PollInterval time.Duration
	BatchSize    int32
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		BatchSize:    100,
	}
}

// Worker drains the outbox table to the publisher on a fixed cadence.
// Publishing is at-least-once: a crash between Publish and MarkSent
// redelivers the event, which subscribers already tolerate.
type Worker struct {
	repo      *Repository
	publisher Publisher
	config    Config

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(repo *Repository, publisher Publisher, cfg Config) *Worker {
	return &Worker{
		repo:      repo,
		publisher: publisher,
		config:    cfg,
		stopChan:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int32("batch_size", w.config.BatchSize).
		Msg("outbox worker started")
	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on start
	w.processOutbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	events, err := w.repo.FetchUnsent(ctx, w.config.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch unsent outbox events")
		return
	}
	if len(events) == 0 {
		return
	}

	for _, ev := range events {
		if err := w.publisher.Publish(ctx, ev); err != nil {
			log.Error().
				Err(err).
				Str("event_id", ev.ID.String()).
				Str("event_type", ev.EventType).
				Msg("failed to publish outbox event")
			// Leave unsent; next cycle retries in order.
			return
		}
		if err := w.repo.MarkSent(ctx, ev.ID, time.Now()); err != nil {
			log.Error().
				Err(err).
				Str("event_id", ev.ID.String()).
				Msg("failed to mark outbox event sent")
			return
		}
	}

	log.Debug().Int("count", len(events)).Msg("relayed outbox events")
}
