package risk

import "testing"

func TestShouldKillLatchesOnPartialFillStreak(t *testing.T) {
	m := New(DefaultLimits())
	for i := 0; i < 2; i++ {
		m.PartialFill()
		if m.ShouldKill() {
			t.Fatalf("killed too early at streak %d", i+1)
		}
	}
	m.PartialFill()
	if !m.ShouldKill() {
		t.Fatal("expected kill at streak 3")
	}
	if m.KillReason() != "partial_fill_streak" {
		t.Fatalf("unexpected kill reason: %s", m.KillReason())
	}
}

func TestShouldKillLatchIsSticky(t *testing.T) {
	m := New(DefaultLimits())
	for i := 0; i < 5; i++ {
		m.APIError()
	}
	if !m.ShouldKill() {
		t.Fatal("expected kill on api errors")
	}
	reason := m.KillReason()
	// simulate the world recovering: the latch must not clear itself.
	m.HedgedComplete()
	if !m.ShouldKill() {
		t.Fatal("expected latch to remain tripped")
	}
	if m.KillReason() != reason {
		t.Fatalf("kill reason changed after latch: got %s want %s", m.KillReason(), reason)
	}
}

func TestHedgedCompleteResetsStreakOnly(t *testing.T) {
	m := New(DefaultLimits())
	m.PartialFill()
	m.PartialFill()
	m.HedgedComplete()
	if m.partialFillStreak != 0 {
		t.Fatalf("expected streak reset, got %d", m.partialFillStreak)
	}
	if m.partialFillDay != 2 {
		t.Fatalf("expected daily count preserved, got %d", m.partialFillDay)
	}
}

func TestCanTakeTradeRespectsExposureCap(t *testing.T) {
	m := New(DefaultLimits())
	bankroll := 1000.0
	if !m.CanTakeTrade(bankroll, 400) {
		t.Fatal("expected trade within cap to be allowed")
	}
	m.AddExposure(400)
	if m.CanTakeTrade(bankroll, 200) {
		t.Fatal("expected trade exceeding 50% cap to be denied")
	}
	m.ReduceExposure(400)
	if m.CurrentExposure() != 0 {
		t.Fatalf("expected exposure back to zero, got %f", m.CurrentExposure())
	}
}

func TestCanTakeTradeDeniesNonPositiveBankroll(t *testing.T) {
	m := New(DefaultLimits())
	if m.CanTakeTrade(0, 1) {
		t.Fatal("expected denial for zero bankroll")
	}
}

func TestThinBookStreakResetsOnHealthyCheck(t *testing.T) {
	m := New(DefaultLimits())
	m.ThinBook(true)
	m.ThinBook(true)
	m.ThinBook(false)
	if m.thinBookStreak != 0 {
		t.Fatalf("expected thin book streak reset, got %d", m.thinBookStreak)
	}
}
