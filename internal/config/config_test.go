package config_test

import (
	"testing"

	"github.com/vplearn/tonetutor/internal/config"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	if cfg.Server.ListenAddr != "0.0.0.0:5000" {
		t.Errorf("listen_addr: expected 0.0.0.0:5000, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("log_level: expected info, got %q", cfg.Server.LogLevel)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("cors_origins: expected 2 defaults, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Recognition.Language != "vi-VN" {
		t.Errorf("language: expected vi-VN, got %q", cfg.Recognition.Language)
	}
	if cfg.Recognition.SampleRate != 16000 {
		t.Errorf("sample_rate: expected 16000, got %d", cfg.Recognition.SampleRate)
	}
	if cfg.Recognition.HintBoost != 20 {
		t.Errorf("hint_boost: expected 20, got %v", cfg.Recognition.HintBoost)
	}
	if cfg.Recognition.RequestTimeoutMS != 15000 {
		t.Errorf("request_timeout_ms: expected 15000, got %d", cfg.Recognition.RequestTimeoutMS)
	}
	if cfg.Recognition.MaxRecordingSeconds != 3 {
		t.Errorf("max_recording_seconds: expected 3, got %d", cfg.Recognition.MaxRecordingSeconds)
	}
	if !cfg.Diagnostics.Enabled {
		t.Error("diagnostics should default to enabled")
	}
	if cfg.Diagnostics.Language != "en-US" {
		t.Errorf("diagnostics.language: expected en-US, got %q", cfg.Diagnostics.Language)
	}
	if cfg.Words.File != "" {
		t.Errorf("words.file: expected empty (built-in catalogue), got %q", cfg.Words.File)
	}
	if cfg.Telemetry.ServiceName != "tonetutor" {
		t.Errorf("service_name: expected tonetutor, got %q", cfg.Telemetry.ServiceName)
	}

	if err := config.Validate(cfg); err != nil {
		t.Errorf("defaults must validate cleanly, got: %v", err)
	}
}

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()

	valid := []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError}
	for _, l := range valid {
		if !l.IsValid() {
			t.Errorf("level %q should be valid", l)
		}
	}
	for _, l := range []config.LogLevel{"", "trace", "INFO "} {
		if l.IsValid() {
			t.Errorf("level %q should be invalid", l)
		}
	}
}
