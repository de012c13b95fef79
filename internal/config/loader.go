package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path, applies environment
// overrides and returns a validated [Config]. An empty path skips the file
// and yields [Default] plus overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		applyEnv(cfg)
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults, applies
// environment overrides and validates the result. Useful in tests where
// configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. The credential variables
// use the names the cloud vendor's tooling already documents, so an operator
// who has them set gets cloud recognition without touching a config file.
func applyEnv(cfg *Config) {
	overrideString(&cfg.Recognition.APIKey, "GOOGLE_CLOUD_API_KEY")
	overrideString(&cfg.Recognition.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	overrideString(&cfg.Server.ListenAddr, "TONETUTOR_LISTEN_ADDR")
	if v := os.Getenv("TONETUTOR_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = LogLevel(strings.ToLower(v))
	}
}

func overrideString(target *string, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		*target = v
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	for i, origin := range cfg.Server.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			errs = append(errs, fmt.Errorf("server.cors_origins[%d] is empty", i))
		}
	}

	if cfg.Recognition.Language == "" {
		errs = append(errs, errors.New("recognition.language is required"))
	}
	if cfg.Recognition.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("recognition.sample_rate %d must be positive", cfg.Recognition.SampleRate))
	}
	if cfg.Recognition.HintBoost < 0 {
		errs = append(errs, fmt.Errorf("recognition.hint_boost %.2f must not be negative", cfg.Recognition.HintBoost))
	}
	if cfg.Recognition.RequestTimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("recognition.request_timeout_ms %d must be positive", cfg.Recognition.RequestTimeoutMS))
	}
	if cfg.Recognition.MaxRecordingSeconds < 0 {
		errs = append(errs, fmt.Errorf("recognition.max_recording_seconds %d must not be negative", cfg.Recognition.MaxRecordingSeconds))
	}

	if cfg.Diagnostics.Enabled && cfg.Diagnostics.Language == "" {
		errs = append(errs, errors.New("diagnostics.language is required when diagnostics are enabled"))
	}

	if cfg.Telemetry.ServiceName == "" {
		errs = append(errs, errors.New("telemetry.service_name is required"))
	}

	// Credential availability warnings. Neither key is an error: without
	// cloud credentials recognition still works through the public web
	// speech endpoint, just without phrase hints.
	if cfg.Recognition.APIKey != "" && cfg.Recognition.CredentialsFile != "" {
		slog.Warn("both recognition.api_key and recognition.credentials_file are set; the API key takes precedence")
	}
	if cfg.Recognition.APIKey == "" && cfg.Recognition.CredentialsFile == "" {
		slog.Warn("no cloud recognition credentials configured; phrase hints will not be available")
	}

	return errors.Join(errs...)
}
