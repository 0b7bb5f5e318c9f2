// Package scheduler contains background workers that keep match state fresh
// between API-driven reconcile passes.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gun9212/idealmatch-backend/app/dto"
	businessflow "github.com/gun9212/idealmatch-backend/business_flow"
	"github.com/gun9212/idealmatch-backend/config"
	"github.com/gun9212/idealmatch-backend/repository"
)

// MatchSweeper periodically reconciles matches for every matchable profile
// using its last stored coordinate. Drifted pairs expire on the next sweep
// even when neither party reports a fresh position through the API.
type MatchSweeper struct {
	profileRepo repository.ProfileRepository
	matchFlow   businessflow.MatchFlow
	logger      *log.Logger
	interval    time.Duration
	batchSize   int
	logPath     string

	logFile *os.File
}

func NewMatchSweeper(
	profileRepo repository.ProfileRepository,
	matchFlow businessflow.MatchFlow,
	cfg config.SchedulerConfig,
) *MatchSweeper {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 200
	}

	s := &MatchSweeper{
		profileRepo: profileRepo,
		matchFlow:   matchFlow,
		interval:    interval,
		batchSize:   batchSize,
		logPath:     cfg.LogPath,
	}

	// Initialize sweeper-specific logger (to stdout and persistent file)
	if err := s.initSweeperLogger(); err != nil {
		// Fallback to default stdout logger if file logger init fails
		s.logger = log.Default()
		s.logger.Printf("sweeper: failed to initialize file logger: %v", err)
	}

	return s
}

// initSweeperLogger configures a logger that writes to both stdout and the configured persistent file
func (s *MatchSweeper) initSweeperLogger() error {
	candidates := []string{s.logPath, filepath.Join("data", "sweeper.log")}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		s.logFile = f
		mw := io.MultiWriter(os.Stdout, f)
		// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
		s.logger = log.New(mw, "sweeper ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create sweeper log file in any candidate path")
}

// Start launches the sweep loop in a background goroutine and returns a stop function
func (s *MatchSweeper) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				if s.logFile != nil {
					s.logFile.Close()
				}
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *MatchSweeper) runOnce(ctx context.Context) {
	start := time.Now()

	profiles, err := s.profileRepo.ListMatchable(ctx, 0)
	if err != nil {
		s.logger.Printf("sweeper: list matchable profiles failed: %v", err)
		return
	}
	if len(profiles) == 0 {
		return
	}
	s.logger.Printf("sweeper: sweeping %d matchable profiles", len(profiles))

	var created, removed, failed int
	for batchStart := 0; batchStart < len(profiles); batchStart += s.batchSize {
		if ctx.Err() != nil {
			return
		}
		batchEnd := min(batchStart+s.batchSize, len(profiles))

		for _, p := range profiles[batchStart:batchEnd] {
			if p == nil || p.Location == nil {
				continue
			}
			req := &dto.ReconcileRequest{
				ProfileID: p.ID,
				Latitude:  p.Location.Latitude,
				Longitude: p.Location.Longitude,
			}
			res, err := s.matchFlow.ReconcileMatches(ctx, p.ID, req, nil)
			if err != nil {
				// Consent may have flipped between listing and reconciling
				if businessflow.IsMatchingConsentOff(err) || businessflow.IsProfileInactive(err) {
					continue
				}
				failed++
				s.logger.Printf("sweeper: reconcile failed for profile id=%d: %v", p.ID, err)
				continue
			}
			created += len(res.Created)
			removed += len(res.Removed)
		}
	}

	s.logger.Printf("sweeper: sweep done profiles=%d created=%d removed=%d failed=%d elapsed=%s",
		len(profiles), created, removed, failed, time.Since(start).Round(time.Millisecond))
}
