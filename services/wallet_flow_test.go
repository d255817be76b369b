package services

import (
	"errors"
	"testing"

	"punthub/models"
)

// miniLedger replays the lifecycle money rules in memory so the
// end-to-end wallet properties can be checked without a database.
type miniLedger struct {
	wallet  Wallet
	status  string
	entries []Entry
}

func (m *miniLedger) place(liability float64, creditOnly bool) error {
	next, _, err := PlacementPlan(m.wallet, liability, creditOnly)
	if err != nil {
		return err
	}
	m.wallet = next
	m.status = models.BetOpen
	m.entries = append(m.entries, Entry{Type: models.TrxDebit, Amount: liability})
	return nil
}

func (m *miniLedger) settle(outcome string, stake, pnl, liability float64) error {
	if m.status != models.BetOpen {
		return ErrAlreadySettled
	}
	amount, status, err := SettlementPlan(outcome, stake, pnl, liability, 0)
	if err != nil {
		return err
	}
	m.wallet.Credit += amount
	m.wallet.Exposure = ReleaseExposure(m.wallet.Exposure, liability)
	m.status = status
	m.entries = append(m.entries, Entry{Type: models.TrxCredit, Amount: amount})
	return nil
}

func (m *miniLedger) signedSum() float64 {
	sum := 0.0
	for _, e := range m.entries {
		if e.Type == models.TrxCredit {
			sum += e.Amount
		} else {
			sum -= e.Amount
		}
	}
	return sum
}

func TestBackBetPlacementScenario(t *testing.T) {
	m := &miniLedger{wallet: Wallet{Credit: 1000}}

	if err := m.place(500, false); err != nil {
		t.Fatalf("place: %v", err)
	}
	if m.wallet.Credit != 500 {
		t.Errorf("credit = %v, want 500", m.wallet.Credit)
	}
	if m.wallet.Exposure != 500 {
		t.Errorf("exposure = %v, want 500", m.wallet.Exposure)
	}
	if m.status != models.BetOpen {
		t.Errorf("status = %q, want OPEN", m.status)
	}
}

func TestWonSettlementScenario(t *testing.T) {
	m := &miniLedger{wallet: Wallet{Credit: 1000}}
	if err := m.place(500, false); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := m.settle(models.BetWon, 500, 350, 500); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if m.wallet.Credit != 1350 {
		t.Errorf("credit = %v, want 1350", m.wallet.Credit)
	}
	if m.wallet.Exposure != 0 {
		t.Errorf("exposure = %v, want 0", m.wallet.Exposure)
	}
	if m.status != models.BetWon {
		t.Errorf("status = %q, want WON", m.status)
	}
}

// Exposure returns to its pre-bet value after every terminal outcome.
func TestExposureReleasedOnAnyTerminalState(t *testing.T) {
	for _, outcome := range []string{models.BetWon, models.BetLost, models.BetVoid} {
		t.Run(outcome, func(t *testing.T) {
			m := &miniLedger{wallet: Wallet{Credit: 1000, Exposure: 120}}
			if err := m.place(500, false); err != nil {
				t.Fatalf("place: %v", err)
			}
			if err := m.settle(outcome, 500, 100, 500); err != nil {
				t.Fatalf("settle: %v", err)
			}
			if m.wallet.Exposure != 120 {
				t.Errorf("exposure = %v, want pre-bet 120", m.wallet.Exposure)
			}
		})
	}
}

// A second settlement of the same bet must not move money again.
func TestDuplicateSettlementIsIdempotent(t *testing.T) {
	m := &miniLedger{wallet: Wallet{Credit: 1000}}
	if err := m.place(500, false); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := m.settle(models.BetWon, 500, 350, 500); err != nil {
		t.Fatalf("first settle: %v", err)
	}

	creditBefore := m.wallet.Credit
	entriesBefore := len(m.entries)

	if err := m.settle(models.BetWon, 500, 350, 500); err != ErrAlreadySettled {
		t.Fatalf("second settle: want ErrAlreadySettled, got %v", err)
	}
	if m.wallet.Credit != creditBefore {
		t.Errorf("duplicate settle moved credit: %v -> %v", creditBefore, m.wallet.Credit)
	}
	if len(m.entries) != entriesBefore {
		t.Errorf("duplicate settle wrote a ledger entry")
	}
}

// miniBook adds provider-style dedup on top of miniLedger: one bet per
// idempotency key, a redelivered key is refused before any money moves.
type miniBook struct {
	miniLedger
	seen map[string]bool
}

func (m *miniBook) placeKeyed(key string, liability float64, creditOnly bool) error {
	if m.seen[key] {
		return ErrDuplicateBet
	}
	if err := m.place(liability, creditOnly); err != nil {
		return err
	}
	m.seen[key] = true
	return nil
}

// A casino bet instruction delivered twice debits the stake exactly
// once; the second delivery is refused as a duplicate with the wallet
// untouched.
func TestRedeliveredDebitAppliedOnce(t *testing.T) {
	m := &miniBook{
		miniLedger: miniLedger{wallet: Wallet{Credit: 1000}},
		seen:       map[string]bool{},
	}
	key := "roulette:r-100:o-7"

	if err := m.placeKeyed(key, 200, true); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := m.placeKeyed(key, 200, true); !errors.Is(err, ErrDuplicateBet) {
		t.Fatalf("second delivery: want ErrDuplicateBet, got %v", err)
	}

	if m.wallet.Credit != 800 {
		t.Errorf("credit = %v, want 800 (debited exactly once)", m.wallet.Credit)
	}
	if m.wallet.Exposure != 200 {
		t.Errorf("exposure = %v, want 200", m.wallet.Exposure)
	}
	if len(m.entries) != 1 {
		t.Errorf("ledger has %d entries, want the single debit", len(m.entries))
	}
}

// A safety-timeout void returns the full liability: the wallet ends up
// exactly where it was before the bet, with the exposure released.
func TestSafetyVoidRestoresWallet(t *testing.T) {
	m := &miniLedger{wallet: Wallet{Credit: 1000, Bonus: 50}}
	before := m.wallet.Credit + m.wallet.Bonus

	if err := m.place(400, false); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := m.settle(models.BetVoid, 400, 0, 400); err != nil {
		t.Fatalf("void: %v", err)
	}

	if total := m.wallet.Credit + m.wallet.Bonus; total != before {
		t.Errorf("total balance = %v, want pre-bet %v", total, before)
	}
	if m.wallet.Exposure != 0 {
		t.Errorf("exposure = %v, want 0", m.wallet.Exposure)
	}
	if m.status != models.BetVoid {
		t.Errorf("status = %q, want VOID", m.status)
	}
	if sum := m.signedSum(); sum != 0 {
		t.Errorf("signed transaction sum = %v, want 0", sum)
	}
}

// The signed transaction sum reconciles to the net balance change for
// every place -> settle sequence.
func TestLedgerReconciliation(t *testing.T) {
	cases := []struct {
		outcome string
		pnl     float64
	}{
		{models.BetWon, 350},
		{models.BetLost, 0},
		{models.BetVoid, 0},
	}
	for _, tc := range cases {
		t.Run(tc.outcome, func(t *testing.T) {
			m := &miniLedger{wallet: Wallet{Credit: 1000, Bonus: 250}}
			before := m.wallet.Credit + m.wallet.Bonus

			if err := m.place(600, false); err != nil {
				t.Fatalf("place: %v", err)
			}
			if err := m.settle(tc.outcome, 600, tc.pnl, 600); err != nil {
				t.Fatalf("settle: %v", err)
			}

			net := (m.wallet.Credit + m.wallet.Bonus) - before
			if sum := m.signedSum(); sum != net {
				t.Errorf("signed transaction sum %v != net balance change %v", sum, net)
			}
		})
	}
}
