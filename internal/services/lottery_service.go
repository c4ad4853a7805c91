package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/logger"

	"prizedraw/internal/config"
	"prizedraw/internal/engine"
	"prizedraw/internal/metrics"
	"prizedraw/internal/models"
)

// ErrNothingToDraw is returned when arming without participants or prizes.
var ErrNothingToDraw = errors.New("load participants and add at least one prize before starting the draw")

// PrizeResult groups one prize's drawn participants for display.
type PrizeResult struct {
	Prize   models.Prize     `json:"prize"`
	Winners []models.Winner  `json:"winners"`
	Backups []models.Winner  `json:"backups"`
	Fill    models.PrizeFill `json:"fill"`
}

// DrawView is a read-only picture of the session for presentation.
type DrawView struct {
	State        models.DrawState `json:"state"`
	Countdown    int              `json:"countdown"`
	Participants int              `json:"participants"`
	Prizes       int              `json:"prizes"`
	Results      []PrizeResult    `json:"results,omitempty"`
	DrawnAt      *time.Time       `json:"drawnAt,omitempty"`
}

// LotteryService owns the single draw session. It serializes calls coming from
// HTTP handlers and the countdown clock onto the engine, which is not safe for concurrent use.
type LotteryService struct {
	mu        sync.RWMutex
	pool      *engine.Pool
	registry  *engine.Registry
	ledger    *engine.Ledger
	scheduler *engine.Scheduler
	metrics   *metrics.Collector

	defaultBackups int
	seed           int64
	// armed wakes the countdown clock so the first tick lands a full interval after arming.
	armed chan struct{}
}

// NewLotteryService creates a service for one draw session.
func NewLotteryService(cfg config.Config, collector *metrics.Collector) *LotteryService {
	if collector == nil {
		collector = metrics.NewCollector("")
	}
	s := &LotteryService{
		pool:           engine.NewPool(),
		registry:       engine.NewRegistry(),
		ledger:         engine.NewLedger(),
		metrics:        collector,
		defaultBackups: max(cfg.DefaultBackups, 0),
		seed:           cfg.Seed,
		armed:          make(chan struct{}, 1),
	}
	s.scheduler = engine.NewScheduler(
		s.pool, s.registry, s.ledger,
		rand.New(rand.NewSource(cfg.Seed)),
		engine.WithCountdown(cfg.CountdownTicks),
		engine.WithObserver(func(from, to models.DrawState) {
			logger.Infof("Draw state %s -> %s", from, to)
		}),
	)
	return s
}

// Seed returns the seed of the session's random source.
func (s *LotteryService) Seed() int64 {
	return s.seed
}

// PrizeDefaults returns the counts used for a new prize when the caller gives none.
func (s *LotteryService) PrizeDefaults() (winners, backups int) {
	return 1, s.defaultBackups
}

// LoadParticipants replaces the participant pool.
func (s *LotteryService) LoadParticipants(records []models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pool.Load(records); err != nil {
		logger.Warningf("Rejected participant load: %v", err)
		return err
	}
	s.metrics.SetInventory(s.pool.Size(), s.registry.Len())
	logger.Infof("Loaded %d participants", s.pool.Size())
	return nil
}

// GetParticipants returns the current pool in load order.
func (s *LotteryService) GetParticipants() []models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool.Snapshot()
}

// GetPrizes returns the prizes in allocation order.
func (s *LotteryService) GetPrizes() []models.Prize {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.List()
}

// AddPrize registers a new prize.
func (s *LotteryService) AddPrize(name string, winnerCount, backupCount int) (models.Prize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prize, err := s.registry.Add(name, winnerCount, backupCount)
	if err != nil {
		logger.Warningf("Rejected prize %q: %v", name, err)
		return models.Prize{}, err
	}
	s.metrics.SetInventory(s.pool.Size(), s.registry.Len())
	logger.Infof("Added prize %s (%q, %d winners, %d backups)", prize.ID, prize.Name, prize.WinnerCount, prize.BackupCount)
	return prize, nil
}

// UpdatePrize changes a prize. The bool reports whether the prize exists.
func (s *LotteryService) UpdatePrize(id string, u engine.PrizeUpdate) (models.Prize, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Update(id, u); err != nil {
		logger.Warningf("Rejected update of prize %s: %v", id, err)
		return models.Prize{}, false, err
	}
	prize, ok := s.registry.Get(id)
	return prize, ok, nil
}

// RemovePrize drops a prize. Unknown ids are ignored.
func (s *LotteryService) RemovePrize(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Remove(id); err != nil {
		logger.Warningf("Rejected removal of prize %s: %v", id, err)
		return err
	}
	s.metrics.SetInventory(s.pool.Size(), s.registry.Len())
	return nil
}

// Arm starts the countdown. It reports false when a draw is already armed, running or completed.
func (s *LotteryService) Arm() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler.State().Phase == models.PhaseIdle && (s.pool.Size() == 0 || s.registry.Len() == 0) {
		return false, ErrNothingToDraw
	}
	if !s.scheduler.Arm() {
		return false, nil
	}
	select {
	case s.armed <- struct{}{}:
	default:
	}
	logger.Infof("Draw armed: %d participants, %d prizes, seed %d", s.pool.Size(), s.registry.Len(), s.seed)
	return true, nil
}

// Tick advances a running countdown by one step and records the draw once it completes.
func (s *LotteryService) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scheduler.Tick() {
		return false
	}
	if s.scheduler.State().Phase == models.PhaseCompleted {
		winners := s.ledger.All()
		fills := s.ledger.Fills()
		s.metrics.RecordDraw(winners, fills)
		for _, f := range fills {
			if n := f.Unfilled(); n > 0 {
				logger.Warningf("Prize %s left %d slots unfilled: pool exhausted", f.PrizeID, n)
			}
		}
		logger.Infof("Draw completed with %d winners", len(winners))
	}
	return true
}

// Cancel stops a running countdown without drawing.
func (s *LotteryService) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scheduler.Cancel() {
		return false
	}
	s.metrics.RecordCancel()
	logger.Infof("Draw cancelled")
	return true
}

// Reset clears participants, prizes and results and returns the session to idle.
func (s *LotteryService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.Reset()
	s.metrics.SetInventory(0, 0)
	logger.Infof("Session reset")
}

// State returns the current draw state.
func (s *LotteryService) State() models.DrawState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheduler.State()
}

// GetLotteryResults returns every winner of the last draw in draw order.
func (s *LotteryService) GetLotteryResults() []models.Winner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.All()
}

// GetResultsByStatus returns either the backups or the main winners of the last draw.
func (s *LotteryService) GetResultsByStatus(backup bool) []models.Winner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.ByStatus(backup)
}

// GetPrizeResults returns one prize's winners. The bool is false for an unknown prize.
func (s *LotteryService) GetPrizeResults(prizeID string) ([]models.Winner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.registry.Get(prizeID); !ok {
		return nil, false
	}
	return s.ledger.ByPrize(prizeID), true
}

// View returns the session as presentation sees it.
func (s *LotteryService) View() DrawView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.scheduler.State()
	v := DrawView{
		State:        state,
		Countdown:    s.scheduler.Countdown(),
		Participants: s.pool.Size(),
		Prizes:       s.registry.Len(),
	}
	if state.Phase == models.PhaseArmed || state.Phase == models.PhaseCountingDown {
		v.Countdown = state.Remaining
	}
	drawnAt, ok := s.ledger.DrawnAt()
	if !ok {
		return v
	}
	v.DrawnAt = &drawnAt

	fills := make(map[string]models.PrizeFill)
	for _, f := range s.ledger.Fills() {
		fills[f.PrizeID] = f
	}
	for _, p := range s.registry.List() {
		r := PrizeResult{Prize: p, Fill: fills[p.ID]}
		for _, w := range s.ledger.ByPrize(p.ID) {
			if w.IsBackup {
				r.Backups = append(r.Backups, w)
			} else {
				r.Winners = append(r.Winners, w)
			}
		}
		v.Results = append(v.Results, r)
	}
	return v
}

// RunClock ticks the countdown every interval until ctx is done.
// Arming restarts the interval so the first step is a full interval after the arm.
func (s *LotteryService) RunClock(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Infof("Countdown clock started (interval %s)", interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Countdown clock stopped")
			return
		case <-s.armed:
			ticker.Reset(interval)
		case <-ticker.C:
			s.Tick()
		}
	}
}
