package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.DBPath != "swapwear.sqlite3" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.AdminUser != "admin" {
		t.Errorf("AdminUser = %q", cfg.AdminUser)
	}
	if cfg.StartingPoints != 0 {
		t.Errorf("StartingPoints = %d", cfg.StartingPoints)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SWAPWEAR_DB", "/tmp/test.sqlite3")
	t.Setenv("SWAPWEAR_ADDR", ":9090")
	t.Setenv("SWAPWEAR_STARTING_POINTS", "25")

	cfg := Load()

	if cfg.DBPath != "/tmp/test.sqlite3" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.StartingPoints != 25 {
		t.Errorf("StartingPoints = %d", cfg.StartingPoints)
	}
}

func TestLoadIgnoresBadInteger(t *testing.T) {
	t.Setenv("SWAPWEAR_STARTING_POINTS", "lots")

	cfg := Load()
	if cfg.StartingPoints != 0 {
		t.Errorf("StartingPoints = %d, want default 0", cfg.StartingPoints)
	}
}
