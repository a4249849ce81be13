package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}
	if cfg.Telemetry.ServiceName != "parcela-api" {
		t.Errorf("Telemetry.ServiceName = %q, want %q", cfg.Telemetry.ServiceName, "parcela-api")
	}
}

func TestLoad_InvalidDBPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid DB_PORT, got nil")
	}
}

func TestLoad_AllowedHosts(t *testing.T) {
	t.Setenv("ALLOWED_HOSTS", "example.com, api.example.com, localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.Server.AllowedHosts) != 3 {
		t.Errorf("AllowedHosts length = %d, want 3", len(cfg.Server.AllowedHosts))
	}
}

func TestLoad_NotifyDisabledWithoutCredentials(t *testing.T) {
	t.Setenv("SWEEP_NOTIFY_ENABLED", "true")
	os.Unsetenv("FIREBASE_CREDENTIALS_FILE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Sweep.NotifyEnabled {
		t.Error("Sweep.NotifyEnabled should degrade to false without firebase credentials")
	}
}

func TestLoad_NotifyEnabledWithCredentials(t *testing.T) {
	t.Setenv("SWEEP_NOTIFY_ENABLED", "true")
	t.Setenv("FIREBASE_CREDENTIALS_FILE", "/etc/parcela/firebase.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !cfg.Sweep.NotifyEnabled {
		t.Error("Sweep.NotifyEnabled should be true with firebase credentials present")
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value    string
		defVal   bool
		expected bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"True", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"YES", false, true},
		{"false", true, false},
		{"FALSE", true, false},
		{"0", true, false},
		{"no", true, false},
		{"NO", true, false},
		{"invalid", true, true},   // returns default
		{"invalid", false, false}, // returns default
		{"", true, true},          // empty returns default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			key := "TEST_BOOL_ENV"
			if tt.value == "" {
				os.Unsetenv(key)
			} else {
				t.Setenv(key, tt.value)
			}

			got := getBoolEnv(key, tt.defVal)
			if got != tt.expected {
				t.Errorf("getBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defVal, got, tt.expected)
			}
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	got := cfg.ConnectionString()
	if got != expected {
		t.Errorf("ConnectionString() = %q, want %q", got, expected)
	}
}
