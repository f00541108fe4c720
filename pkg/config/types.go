package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent sadhana configuration stored as
// config.toml in the .sadhana/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	EventStream EventStreamConfig `toml:"event_stream"`
	Enrichment  EnrichmentConfig  `toml:"enrichment"`
	Audio       AudioConfig       `toml:"audio"`
	Scoring     ScoringConfig     `toml:"scoring"`
}

// StorageConfig selects and configures the event log backend.
type StorageConfig struct {
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// EventStreamConfig holds integration event publishing settings.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// EnrichmentConfig holds settings for the optional external reasoning
// service behind the adaptation policy.
type EnrichmentConfig struct {
	Enabled   bool   `toml:"enabled,omitempty"`
	Target    string `toml:"target,omitempty"`
	Model     string `toml:"model,omitempty"`
	TimeoutMS uint   `toml:"timeout_ms,omitempty"`
}

// AudioConfig holds capture settings for the feature extractor.
type AudioConfig struct {
	SampleRate   uint    `toml:"sample_rate,omitempty"`
	FrameSize    uint    `toml:"frame_size,omitempty"`
	VADThreshold float64 `toml:"vad_threshold,omitempty"`
}

// ScoringConfig holds scoring defaults applied when a request omits them.
type ScoringConfig struct {
	Lineage       string `toml:"lineage,omitempty"`
	GoldenProfile string `toml:"golden_profile,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error { c.Storage.Provider = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"event_stream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error { c.EventStream.Provider = v; return nil },
	},
	"event_stream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"event_stream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"enrichment.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Enrichment.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for enrichment.enabled: %w", err)
			}
			c.Enrichment.Enabled = b
			return nil
		},
	},
	"enrichment.target": {
		get: func(c *Config) string { return c.Enrichment.Target },
		set: func(c *Config, v string) error { c.Enrichment.Target = v; return nil },
	},
	"enrichment.model": {
		get: func(c *Config) string { return c.Enrichment.Model },
		set: func(c *Config, v string) error { c.Enrichment.Model = v; return nil },
	},
	"enrichment.timeout_ms": {
		get: func(c *Config) string {
			if c.Enrichment.TimeoutMS == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Enrichment.TimeoutMS), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for enrichment.timeout_ms: %w", err)
			}
			c.Enrichment.TimeoutMS = uint(n)
			return nil
		},
	},
	"audio.sample_rate": {
		get: func(c *Config) string {
			if c.Audio.SampleRate == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Audio.SampleRate), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for audio.sample_rate: %w", err)
			}
			c.Audio.SampleRate = uint(n)
			return nil
		},
	},
	"audio.frame_size": {
		get: func(c *Config) string {
			if c.Audio.FrameSize == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Audio.FrameSize), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for audio.frame_size: %w", err)
			}
			c.Audio.FrameSize = uint(n)
			return nil
		},
	},
	"audio.vad_threshold": {
		get: func(c *Config) string {
			if c.Audio.VADThreshold == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Audio.VADThreshold, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for audio.vad_threshold: %w", err)
			}
			c.Audio.VADThreshold = f
			return nil
		},
	},
	"scoring.lineage": {
		get: func(c *Config) string { return c.Scoring.Lineage },
		set: func(c *Config, v string) error { c.Scoring.Lineage = v; return nil },
	},
	"scoring.golden_profile": {
		get: func(c *Config) string { return c.Scoring.GoldenProfile },
		set: func(c *Config, v string) error { c.Scoring.GoldenProfile = v; return nil },
	},
}
