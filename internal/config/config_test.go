package config

import "testing"

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("MANAGER_PIN", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.ManagerPIN != "" {
		t.Fatalf("expected empty MANAGER_PIN when unset, got %q", cfg.ManagerPIN)
	}
}

func TestLoadParsesLedgerSettings(t *testing.T) {
	t.Setenv("OPENING_CASH_CENTS", "2500000")
	t.Setenv("DEFAULT_CURRENCY", "ngn")
	t.Setenv("SYNC_QUEUE_SIZE", "-4")

	cfg := Load()
	if cfg.OpeningCashCents != 2500000 {
		t.Fatalf("expected opening cash 2500000, got %d", cfg.OpeningCashCents)
	}
	if cfg.DefaultCurrency != "NGN" {
		t.Fatalf("expected currency NGN, got %q", cfg.DefaultCurrency)
	}
	if cfg.SyncQueueSize != 256 {
		t.Fatalf("expected invalid queue size to fall back to 256, got %d", cfg.SyncQueueSize)
	}
}

func TestLoadFallsBackOnBadOpeningCash(t *testing.T) {
	t.Setenv("OPENING_CASH_CENTS", "lots")

	if cfg := Load(); cfg.OpeningCashCents != 0 {
		t.Fatalf("expected 0 opening cash for invalid value, got %d", cfg.OpeningCashCents)
	}
}
