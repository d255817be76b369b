package jobs

import (
	"context"
	"errors"
	"strconv"
	"time"

	"punthub/config"
	"punthub/helpers"
	"punthub/metrics"
	"punthub/models"
	"punthub/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scheduler drives OPEN bets to a terminal state. Each sweep runs on
// its own ticker goroutine but processes bets strictly sequentially,
// so the scheduler never races against itself; the pacing delay keeps
// two settlements for the same user from interleaving.
type Scheduler struct {
	db     *gorm.DB
	cfg    config.Config
	scores *services.ScoreClient
	odds   *services.OddsCache
	log    *zap.SugaredLogger

	// settle is the lifecycle entry point, a field so sweep flows can
	// be exercised against a recording fake.
	settle func(p services.SettleParams) (*services.SettlementResult, error)
}

func NewScheduler(db *gorm.DB, cfg config.Config, scores *services.ScoreClient,
	odds *services.OddsCache, log *zap.SugaredLogger) *Scheduler {
	s := &Scheduler{db: db, cfg: cfg, scores: scores, odds: odds, log: log}
	s.settle = func(p services.SettleParams) (*services.SettlementResult, error) {
		return services.Settle(s.db, p)
	}
	return s
}

// Start launches the sweep goroutines. They stop when ctx is
// cancelled; interrupting between bets is safe because every
// settlement is independent and idempotent.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, s.cfg.SportsSweepInterval, func() {
		s.SweepCategory(ctx, models.CategorySports)
	})
	go s.loop(ctx, s.cfg.FancySweepInterval, func() {
		s.SweepCategory(ctx, models.CategoryFancy)
	})
	go s.loop(ctx, s.cfg.VoidSweepInterval, func() {
		s.VoidExpired(ctx)
	})
	go s.loop(ctx, s.cfg.OddsRefreshInterval, func() {
		s.RefreshOdds(ctx)
	})
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// SweepCategory settles every OPEN bet past its event window for
// which the score source has a result. Bets with no result yet stay
// OPEN for the next pass; a source failure skips the bet, it never
// forces a terminal state.
func (s *Scheduler) SweepCategory(ctx context.Context, category string) {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
	}()

	cutoff := time.Now().Add(-s.cfg.SettleGrace)

	var bets []models.Bet
	if err := s.db.
		Where("status = ? AND category = ? AND event_time IS NOT NULL AND event_time < ?",
			models.BetOpen, category, cutoff).
		Order("user_id, id").
		Find(&bets).Error; err != nil {
		s.log.Errorw("sweep query failed", "category", category, "error", err)
		return
	}

	for i := range bets {
		if ctx.Err() != nil {
			return
		}
		bet := &bets[i]

		result, err := s.scores.FetchResult(ctx, category, bet.EventID)
		if err != nil {
			if errors.Is(err, services.ErrUpstreamUnavailable) {
				s.log.Warnw("score source unavailable, bet left open",
					"bet_id", bet.ID, "event_id", bet.EventID)
			} else {
				s.log.Errorw("result fetch failed", "bet_id", bet.ID, "error", err)
			}
			continue
		}
		if result == nil {
			continue
		}

		outcome, pnl, ok := DecideOutcome(bet, result)
		if !ok {
			continue
		}

		if _, err := s.settle(services.SettleParams{
			BetID:   bet.ID,
			Outcome: outcome,
			Pnl:     pnl,
			Remark:  "scheduler settlement",
		}); err != nil && !errors.Is(err, services.ErrAlreadySettled) {
			s.log.Errorw("scheduled settlement failed",
				"bet_id", bet.ID, "outcome", outcome, "error", err)
		}

		time.Sleep(s.cfg.SweepPacing)
	}
}

// VoidExpired voids any bet still OPEN past the absolute safety
// timeout, bounding how long exposure can stay locked on channels
// with unreliable result callbacks.
func (s *Scheduler) VoidExpired(ctx context.Context) {
	deadline := time.Now().Add(-s.cfg.SafetyTimeout)

	var bets []models.Bet
	if err := s.db.
		Where("status = ? AND created_at < ?", models.BetOpen, deadline).
		Order("user_id, id").
		Find(&bets).Error; err != nil {
		s.log.Errorw("void sweep query failed", "error", err)
		return
	}

	s.voidStale(ctx, bets)
}

// voidStale voids each bet in turn and reports how many actually
// transitioned. A bet settled concurrently is skipped quietly.
func (s *Scheduler) voidStale(ctx context.Context, bets []models.Bet) int {
	voided := 0
	for i := range bets {
		if ctx.Err() != nil {
			return voided
		}
		bet := &bets[i]

		_, err := s.settle(services.SettleParams{
			BetID:   bet.ID,
			Outcome: models.BetVoid,
			Remark:  "safety timeout void",
		})
		switch {
		case err == nil:
			s.log.Infow("stale bet voided", "bet_id", bet.ID, "liability", bet.Liability)
			voided++
			time.Sleep(s.cfg.SweepPacing)
		case errors.Is(err, services.ErrAlreadySettled):
			// settled between the query and the lock, nothing to void
		default:
			s.log.Errorw("safety void failed", "bet_id", bet.ID, "error", err)
		}
	}
	return voided
}

// RefreshOdds pulls the odds board into the cache used by placement
// re-validation.
func (s *Scheduler) RefreshOdds(ctx context.Context) {
	snaps, err := s.scores.FetchOdds(ctx)
	if err != nil {
		s.log.Warnw("odds refresh skipped", "error", err)
		return
	}
	for _, snap := range snaps {
		if err := s.odds.Put(ctx, snap); err != nil {
			s.log.Warnw("odds cache write failed", "event_id", snap.EventID, "error", err)
			return
		}
	}
}

// DecideOutcome maps an authoritative event result onto one bet's
// terminal outcome. Returns ok=false when the result does not decide
// this bet (e.g. the fancy market has no final value yet).
func DecideOutcome(bet *models.Bet, result *services.EventResult) (string, float64, bool) {
	if result.Abandoned {
		return models.BetVoid, 0, true
	}
	if !result.Completed {
		return "", 0, false
	}

	switch bet.Category {
	case models.CategorySports:
		won := result.Winner == bet.Selection
		if bet.Side == "lay" {
			won = !won
		}
		if !won {
			return models.BetLost, 0, true
		}
		return models.BetWon, winPnl(bet), true

	case models.CategoryFancy:
		line, err := strconv.ParseFloat(bet.Selection, 64)
		if err != nil {
			return "", 0, false
		}
		final, found := result.FancyValues[bet.MarketID]
		if !found {
			return "", 0, false
		}
		won := final >= line
		if bet.Side == "no" {
			won = !won
		}
		if !won {
			return models.BetLost, 0, true
		}
		return models.BetWon, winPnl(bet), true

	default:
		// fawk and wacs settle via provider callbacks, never by sweep.
		return "", 0, false
	}
}

// winPnl is the profit on a winning bet: a back bet wins at its odds,
// a lay (or "no") bet wins the backer's stake.
func winPnl(bet *models.Bet) float64 {
	if bet.Side == "lay" || bet.Side == "no" {
		return bet.Stake
	}
	return helpers.Round2(bet.Stake * (bet.Odds - 1))
}
