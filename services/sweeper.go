package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/hub"
	"github.com/AlexHayrapetyan/RestoBook/metrics"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"gorm.io/gorm"
)

// Sweeper promotes reservations whose slot started more than an hour ago to
// Done. Every tick recomputes the set from the clock, so a failed or repeated
// tick is harmless.
type Sweeper struct {
	db       *gorm.DB
	clock    Clock
	hub      *hub.Hub
	metrics  *metrics.Metrics
	Interval time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewSweeper(db *gorm.DB, clock Clock, h *hub.Hub, m *metrics.Metrics, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{db: db, clock: clock, hub: h, metrics: m, Interval: interval}
}

var errSweeperRunning = errors.New("sweeper already running")

// Start launches the ticker goroutine. It stops on Stop or when ctx ends.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errSweeperRunning
	}
	s.running = true
	s.stopChan = make(chan struct{})

	s.wg.Add(1)
	go s.loop(ctx, s.stopChan)
	utils.InfoLogger.Infof("Status sweeper started (interval %s)", s.Interval)
	return nil
}

// Stop signals the loop and waits for the current tick to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	utils.InfoLogger.Info("Status sweeper stopped")
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Sweeper) loop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	if n, err := s.SweepOnce(ctx); err != nil {
		utils.ErrorLogger.Errorf("sweep abandoned after %d reservation(s): %v", n, err)
	} else if n > 0 {
		utils.InfoLogger.Infof("Sweep marked %d reservation(s) as Done", n)
	}
}

// SweepOnce runs a single pass. Each reservation is committed on its own; the
// first failure abandons the pass and returns how many were completed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().UTC().Add(-models.SlotLength)

	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("starts_at < ? AND (status IS NULL OR status <> ?)", cutoff, models.ReservationDone).
		Order("starts_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		s.metrics.SweepRun("error", 0)
		return 0, wrap("select stale reservations", err)
	}

	done := 0
	touched := make(map[uint]*models.Table)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			s.finish(touched, done, err)
			return done, err
		}

		var table *models.Table
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			_, table, err = completeReservation(tx, id)
			return err
		})
		if err != nil {
			err = wrap("complete reservation", err)
			s.finish(touched, done, err)
			return done, err
		}
		done++
		touched[table.ID] = table
	}

	s.finish(touched, done, nil)
	return done, nil
}

func (s *Sweeper) finish(touched map[uint]*models.Table, done int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.SweepRun(outcome, done)
	for _, t := range touched {
		s.hub.BroadcastTableUpdate(*t)
	}
	if done > 0 {
		s.hub.BroadcastStaffNotification(fmt.Sprintf("%d reservation(s) marked as Done", done))
	}
}
