package services

import (
	"errors"
	"math/rand"
	"testing"

	"punthub/models"
)

func TestLiabilityFor(t *testing.T) {
	tests := []struct {
		name  string
		side  string
		stake float64
		odds  float64
		want  float64
	}{
		{"back risks stake", "back", 500, 1.85, 500},
		{"lay risks payout", "lay", 100, 3.5, 250},
		{"lay at evens", "lay", 200, 2.0, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LiabilityFor(tt.side, tt.stake, tt.odds); got != tt.want {
				t.Errorf("LiabilityFor(%s, %v, %v) = %v, want %v",
					tt.side, tt.stake, tt.odds, got, tt.want)
			}
		})
	}
}

func TestPlacementPlan(t *testing.T) {
	tests := []struct {
		name       string
		wallet     Wallet
		liability  float64
		creditOnly bool
		want       Wallet
		wantBonus  float64
		wantErr    error
	}{
		{
			name:      "credit only balance",
			wallet:    Wallet{Credit: 1000},
			liability: 500,
			want:      Wallet{Credit: 500, Exposure: 500},
		},
		{
			name:      "bonus consumed before credit",
			wallet:    Wallet{Credit: 1000, Bonus: 300},
			liability: 500,
			want:      Wallet{Credit: 800, Bonus: 0, Exposure: 500},
			wantBonus: 300,
		},
		{
			name:      "bonus covers whole debit",
			wallet:    Wallet{Credit: 100, Bonus: 700},
			liability: 500,
			want:      Wallet{Credit: 100, Bonus: 200, Exposure: 500},
			wantBonus: 500,
		},
		{
			name:      "insufficient combined funds",
			wallet:    Wallet{Credit: 200, Bonus: 100},
			liability: 301,
			wantErr:   ErrInsufficientBalance,
		},
		{
			name:       "credit-only channel ignores bonus",
			wallet:     Wallet{Credit: 200, Bonus: 500},
			liability:  300,
			creditOnly: true,
			wantErr:    ErrInsufficientBalance,
		},
		{
			name:       "credit-only channel spends credit",
			wallet:     Wallet{Credit: 400, Bonus: 500},
			liability:  300,
			creditOnly: true,
			want:       Wallet{Credit: 100, Bonus: 500, Exposure: 300},
		},
		{
			name:      "exact funds accepted",
			wallet:    Wallet{Credit: 300},
			liability: 300,
			want:      Wallet{Credit: 0, Exposure: 300},
		},
		{
			name:      "zero liability rejected",
			wallet:    Wallet{Credit: 300},
			liability: 0,
			wantErr:   ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bonusUsed, err := PlacementPlan(tt.wallet, tt.liability, tt.creditOnly)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				if got != tt.wallet {
					t.Errorf("failed plan mutated wallet: %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("wallet = %+v, want %+v", got, tt.want)
			}
			if bonusUsed != tt.wantBonus {
				t.Errorf("bonusUsed = %v, want %v", bonusUsed, tt.wantBonus)
			}
		})
	}
}

// A placement must never succeed when liability exceeds available
// funds, whatever the balance split looks like.
func TestPlacementPlanNeverOverdraws(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		w := Wallet{
			Credit: float64(rng.Intn(100000)) / 100,
			Bonus:  float64(rng.Intn(50000)) / 100,
		}
		liability := float64(rng.Intn(200000)+1) / 100

		next, _, err := PlacementPlan(w, liability, false)
		if liability > w.Credit+w.Bonus {
			if !errors.Is(err, ErrInsufficientBalance) {
				t.Fatalf("credit=%v bonus=%v liability=%v: want ErrInsufficientBalance, got %v",
					w.Credit, w.Bonus, liability, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("credit=%v bonus=%v liability=%v: unexpected error %v",
				w.Credit, w.Bonus, liability, err)
		}
		if next.Credit < 0 || next.Bonus < 0 {
			t.Fatalf("plan overdrew: %+v from %+v liability %v", next, w, liability)
		}
	}
}

func TestSettlementPlan(t *testing.T) {
	tests := []struct {
		name      string
		outcome   string
		stake     float64
		pnl       float64
		liability float64
		maxPayout float64
		want      float64
		wantErr   bool
	}{
		{"won credits stake plus pnl", models.BetWon, 500, 350, 500, 0, 850, false},
		{"won capped at max payout", models.BetWon, 1000, 900000, 1000, 500000, 500000, false},
		{"lost credits nothing", models.BetLost, 500, 0, 500, 0, 0, false},
		{"void refunds liability", models.BetVoid, 100, 0, 250, 0, 250, false},
		{"unknown outcome rejected", "DRAW", 100, 0, 100, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, status, err := SettlementPlan(tt.outcome, tt.stake, tt.pnl, tt.liability, tt.maxPayout)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("credit = %v, want %v", got, tt.want)
			}
			if status != tt.outcome {
				t.Errorf("status = %q, want %q", status, tt.outcome)
			}
		})
	}
}

func TestReleaseExposure(t *testing.T) {
	if got := ReleaseExposure(500, 500); got != 0 {
		t.Errorf("ReleaseExposure(500, 500) = %v, want 0", got)
	}
	if got := ReleaseExposure(800, 300); got != 500 {
		t.Errorf("ReleaseExposure(800, 300) = %v, want 500", got)
	}
	// a replayed release clamps instead of going negative
	if got := ReleaseExposure(100, 300); got != 0 {
		t.Errorf("ReleaseExposure(100, 300) = %v, want 0", got)
	}
}
