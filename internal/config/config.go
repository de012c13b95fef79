// Package config provides the configuration schema and loader for the
// pronunciation trainer.
package config

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader]; every field has a default and
// the file may be omitted entirely.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Words       WordsConfig       `yaml:"words"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// ServerConfig holds network, CORS and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// CORSOrigins lists the origins allowed to call the API from a browser.
	CORSOrigins []string `yaml:"cors_origins"`
}

// RecognitionConfig holds settings for the speech recognition pipeline.
type RecognitionConfig struct {
	// Language is the BCP-47 code recognition requests ask for.
	Language string `yaml:"language"`

	// SampleRate is the rate in hertz declared to the cloud recognizers.
	// The incoming payload's own rate is not validated against it; clients
	// are trusted to record at this rate.
	SampleRate int `yaml:"sample_rate"`

	// HintBoost is the phrase-bias strength applied to the expected word.
	HintBoost float64 `yaml:"hint_boost"`

	// RequestTimeout bounds one outbound recognition call, in milliseconds.
	RequestTimeoutMS int `yaml:"request_timeout_ms"`

	// MaxRecordingSeconds is the recording length clients are asked to keep
	// to. Longer payloads are logged, not rejected.
	MaxRecordingSeconds int `yaml:"max_recording_seconds"`

	// APIKey enables the REST recognizer when set. Overridden by the
	// GOOGLE_CLOUD_API_KEY environment variable.
	APIKey string `yaml:"api_key"`

	// CredentialsFile is a service account JSON path for the SDK recognizer.
	// Overridden by the GOOGLE_APPLICATION_CREDENTIALS environment variable;
	// when empty, the SDK's own credential discovery applies.
	CredentialsFile string `yaml:"credentials_file"`
}

// DiagnosticsConfig controls the log-only diagnostic probes.
type DiagnosticsConfig struct {
	// Enabled toggles the no-match reprobe and near-miss scoring.
	Enabled bool `yaml:"enabled"`

	// Language is the alternate language used by the no-match reprobe.
	Language string `yaml:"language"`
}

// WordsConfig selects the practice word catalogue.
type WordsConfig struct {
	// File is a YAML word list path. Empty selects the built-in catalogue.
	File string `yaml:"file"`
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	// ServiceName identifies this process in traces and metrics.
	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used when no file or overrides are
// present. The defaults match the trainer's original deployment: plain HTTP
// on port 5000, Vietnamese recognition at 16 kHz, diagnostics on.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: "0.0.0.0:5000",
			LogLevel:   LogInfo,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Recognition: RecognitionConfig{
			Language:            "vi-VN",
			SampleRate:          16000,
			HintBoost:           20,
			RequestTimeoutMS:    15000,
			MaxRecordingSeconds: 3,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:  true,
			Language: "en-US",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "tonetutor",
		},
	}
}
