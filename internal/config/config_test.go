package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"thermarun/internal/logger"
)

func TestNewThresholds(t *testing.T) {
	tests := []struct {
		name      string
		hot, cool float64
		wantErr   bool
	}{
		{"typical", 80, 60, false},
		{"at limits", 90, 30, false},
		{"equal thresholds", 70, 70, false},
		{"hot above ceiling", 90.5, 60, true},
		{"cool below floor", 80, 29.9, true},
		{"hot below cool", 60, 80, true},
		{"both limits violated", 95, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := NewThresholds(tt.hot, tt.cool)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewThresholds succeeded, want error")
				}
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("error is %T, want *ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewThresholds failed: %v", err)
			}
			if th.Hot != tt.hot || th.Cool != tt.cool {
				t.Errorf("thresholds = %+v", th)
			}
		})
	}
}

func TestDefaultConfig_ReferenceTables(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.TemperatureFeatures) != 6 {
		t.Errorf("got %d temperature features, want 6", len(cfg.TemperatureFeatures))
	}
	for _, f := range cfg.TemperatureFeatures {
		if f.Chip != "coretemp-isa-0000" {
			t.Errorf("temperature chip = %q", f.Chip)
		}
	}
	if len(cfg.FanFeatures) != 2 {
		t.Errorf("got %d fan features, want 2", len(cfg.FanFeatures))
	}

	// The hot interval must stay the longer one.
	if cfg.Intervals.HotPoll != time.Second {
		t.Errorf("HotPoll = %v, want 1s", cfg.Intervals.HotPoll)
	}
	if cfg.Intervals.CoolPoll != 100*time.Millisecond {
		t.Errorf("CoolPoll = %v, want 100ms", cfg.Intervals.CoolPoll)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestParse_MergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"Backend": "gopsutil",
		"TemperatureFeatures": [{"Chip": "*", "Feature": "coretemp_core_0"}],
		"FanFeatures": [],
		"Intervals": {"HotPoll": "2s", "FanReport": "1m"},
		"Events": {
			"Redis": {"Enabled": true, "Addr": "10.0.0.5:6379", "Key": "thermal"},
			"SocksProxy": {"Host": "proxy", "Port": 1080}
		},
		"Logging": {"Level": "debug", "Console": true}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Backend != "gopsutil" {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if len(cfg.TemperatureFeatures) != 1 || cfg.TemperatureFeatures[0].Feature != "coretemp_core_0" {
		t.Errorf("TemperatureFeatures = %+v", cfg.TemperatureFeatures)
	}
	if len(cfg.FanFeatures) != 0 {
		t.Errorf("explicit empty FanFeatures not honored: %+v", cfg.FanFeatures)
	}
	if cfg.Intervals.HotPoll != 2*time.Second {
		t.Errorf("HotPoll = %v, want 2s", cfg.Intervals.HotPoll)
	}
	// Unset fields keep defaults.
	if cfg.Intervals.CoolPoll != 100*time.Millisecond {
		t.Errorf("CoolPoll = %v, want default 100ms", cfg.Intervals.CoolPoll)
	}
	if cfg.Intervals.FanReport != time.Minute {
		t.Errorf("FanReport = %v, want 1m", cfg.Intervals.FanReport)
	}
	if !cfg.Events.Redis.Enabled || cfg.Events.Redis.Addr != "10.0.0.5:6379" {
		t.Errorf("Redis sink = %+v", cfg.Events.Redis)
	}
	if cfg.Events.Redis.MaxLen != 1000 {
		t.Errorf("Redis MaxLen = %d, want default 1000", cfg.Events.Redis.MaxLen)
	}
	if cfg.Events.SOCKSProxy.Host != "proxy" {
		t.Errorf("SOCKSProxy = %+v", cfg.Events.SOCKSProxy)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("{nope")); err == nil {
		t.Error("malformed JSON accepted")
	}
	if _, err := Parse([]byte(`{"Intervals": {"HotPoll": "soon"}}`)); err == nil {
		t.Error("bad duration accepted")
	}
	if _, err := Parse([]byte(`{"Events": {"Kafka": {"Timeout": "whenever"}}}`)); err == nil {
		t.Error("bad kafka timeout accepted")
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Backend != "hwmon" {
		t.Errorf("empty path should yield defaults, got backend %q", cfg.Backend)
	}

	path := filepath.Join(t.TempDir(), "thermarun.json")
	if err := os.WriteFile(path, []byte(`{"Backend": "gopsutil"}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != "gopsutil" {
		t.Errorf("Backend = %q, want gopsutil", cfg.Backend)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemperatureFeatures = nil
	if err := cfg.Validate(); err == nil {
		t.Error("empty temperature table accepted")
	}

	cfg = DefaultConfig()
	cfg.Intervals.HotPoll = 50 * time.Millisecond // shorter than CoolPoll
	if err := cfg.Validate(); err == nil {
		t.Error("inverted poll intervals accepted")
	}

	cfg = DefaultConfig()
	cfg.Intervals.CoolPoll = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero poll interval accepted")
	}
}

func TestLoggingWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thermarun.json")
	if err := os.WriteFile(path, []byte(`{"Logging": {"Level": "info"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	applied := make(chan string, 4)
	w, err := NewLoggingWatcher(path, func(lc logger.Config) {
		applied <- lc.Level
	})
	if err != nil {
		t.Fatalf("NewLoggingWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte(`{"Logging": {"Level": "debug"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case level := <-applied:
		if level != "debug" {
			t.Errorf("applied level = %q, want debug", level)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("logging reload not applied")
	}
}
