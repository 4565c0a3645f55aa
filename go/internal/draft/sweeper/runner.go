package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const idlePollDuration = 5 * time.Second

// RunnerConfig holds scheduling configuration for the server-side sweep.
type RunnerConfig struct {
	BatchSize  int32
	NumWorkers int
}

func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		BatchSize:  25,
		NumWorkers: 4,
	}
}

// Runner is the server-side scheduled sweep: it sleeps until the soonest
// turn deadline, then fans due sessions out to a worker pool. Client sweep
// requests remain welcome; the commit path makes redundant sweeps no-ops,
// the runner just guarantees a sweep happens even with no clients connected.
type Runner struct {
	sweeper  *Sweeper
	config   RunnerConfig
	wakeCh   chan struct{}
	workCh   chan uuid.UUID
	instance string

	// Track in-flight work to prevent duplicate processing
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

func NewRunner(sweeper *Sweeper, cfg RunnerConfig) *Runner {
	return &Runner{
		sweeper:  sweeper,
		config:   cfg,
		wakeCh:   make(chan struct{}, 1),
		workCh:   make(chan uuid.UUID, cfg.NumWorkers*2),
		instance: uuid.New().String()[:8], // short ID for logging
		inFlight: make(map[uuid.UUID]bool),
	}
}

// Wake nudges the scheduler to re-evaluate deadlines, e.g. after a commit
// armed a sooner one.
func (r *Runner) Wake() {
	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled, sleeping until the next deadline and
// firing sweeps.
func (r *Runner) Run(ctx context.Context) error {
	log.Info().Str("instance", r.instance).Int("workers", r.config.NumWorkers).Msg("sweep runner started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer func() {
		cancelWorkers()
		close(r.workCh)
		wg.Wait()
		log.Info().Str("instance", r.instance).Msg("sweep runner stopped")
	}()

	for i := 0; i < r.config.NumWorkers; i++ {
		wg.Add(1)
		go r.worker(workerCtx, &wg, i)
	}

	clock := r.sweeper.clock
	timer := clock.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		select {
		case <-r.wakeCh:
		default:
		}

		nd, err := r.sweeper.sessions.NextDeadline(ctx)
		if err != nil {
			log.Error().Err(err).Str("instance", r.instance).Msg("error fetching next deadline")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if nd == nil {
			// No turn clock running anywhere; idle until woken or polled.
			timer.Reset(idlePollDuration)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			case <-r.wakeCh:
				continue
			}
		}

		if wait := nd.Deadline.Sub(clock.Now()); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
			case <-ctx.Done():
				return nil
			case <-r.wakeCh:
				continue
			}
		}

		due, err := r.sweeper.sessions.ListDueSessions(ctx, clock.Now(), r.config.BatchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", r.instance).Msg("error fetching due sessions")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		for _, d := range due {
			r.inFlightMu.Lock()
			if r.inFlight[d.SessionID] {
				r.inFlightMu.Unlock()
				continue
			}
			r.inFlight[d.SessionID] = true
			r.inFlightMu.Unlock()

			select {
			case <-ctx.Done():
				r.inFlightMu.Lock()
				delete(r.inFlight, d.SessionID)
				r.inFlightMu.Unlock()
				return nil
			case r.workCh <- d.SessionID:
			}
		}

		if len(due) == 0 {
			// Deadline fired but nothing due yet (clock skew); back off a
			// beat instead of spinning.
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
			case <-ctx.Done():
				return nil
			case <-r.wakeCh:
			}
		}
	}
}

// worker drains session sweeps from the work channel.
func (r *Runner) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case sessionID, ok := <-r.workCh:
			if !ok {
				return
			}

			advanced, err := r.sweeper.SweepSession(ctx, sessionID)
			if err != nil {
				log.Error().
					Err(err).
					Str("session_id", sessionID.String()).
					Str("instance", r.instance).
					Int("worker_id", workerID).
					Msg("sweep failed, retrying next cycle")
			} else if advanced {
				log.Debug().
					Str("session_id", sessionID.String()).
					Int("worker_id", workerID).
					Msg("sweep advanced turn")
			}

			r.inFlightMu.Lock()
			delete(r.inFlight, sessionID)
			r.inFlightMu.Unlock()
		}
	}
}
