package reportguard

import (
	"errors"
	"time"
)

// Config defines every tunable of the guard. It is fixed at Build time and
// never re-read per request; treat instances as immutable once built.
type Config struct {
	RateLimit  RateLimitConfig
	CSV        CSVConfig
	Email      EmailConfig
	EmailStore EmailStoreConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig bounds the frequency of named actions per session using a
// sliding time window.
type RateLimitConfig struct {
	// Window is the trailing window length for every action.
	Window time.Duration
	// UploadsPerHour, PDFsPerHour, TeamReportsPerHour are independent
	// per-session budgets within the window.
	UploadsPerHour     int
	PDFsPerHour        int
	TeamReportsPerHour int
	// Shared selects the Redis-backed window so multiple instances can
	// serve the same session. Requires Builder.WithRedis.
	Shared      bool
	RedisPrefix string
}

/*
====================================
CSV CONFIG
====================================
*/

// CSVConfig caps the size and shape of uploaded tables.
type CSVConfig struct {
	MaxRows       int
	MaxColumns    int
	MaxCellLength int
	MaxFileSizeMB int
}

/*
====================================
EMAIL CONFIG
====================================
*/

// EmailConfig tunes the validation pipeline.
type EmailConfig struct {
	// ResolveTimeout bounds the domain-liveness lookup.
	ResolveTimeout time.Duration
	// RequireMX strengthens liveness from a plain host resolution to a
	// genuine MX lookup.
	RequireMX bool
	// SkipLiveness disables the DNS stage entirely. Intended for offline
	// environments and tests.
	SkipLiveness bool
	// TypoCorrections maps misspelled provider domains to their corrected
	// form. Nil selects the built-in table.
	TypoCorrections map[string]string
	// DisposableDomains lists blocked temporary-mailbox providers. Nil
	// selects the built-in set.
	DisposableDomains []string
}

/*
====================================
EMAIL STORE CONFIG
====================================
*/

// EmailStoreConfig selects and bounds the backing store for accepted
// submissions.
type EmailStoreConfig struct {
	// Backend is one of "file", "redis", "postgres", "memory".
	Backend string
	// Path is the file backend's JSON location.
	Path string
	// MaxStored caps record count; MaxFileMB caps serialized size. Both
	// caps are enforced silently.
	MaxStored int
	MaxFileMB int
	// RedisPrefix namespaces the redis backend's keys.
	RedisPrefix string
	// PostgresDSN is required by the postgres backend.
	PostgresDSN string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the structured audit trail and its rotation.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// Dir and FileName locate the rotating segment files. An empty Dir
	// with no explicit sink means events are discarded.
	Dir      string
	FileName string
	// MaxSegmentMB rotates the active segment at this size; MaxSegments
	// bounds retained history.
	MaxSegmentMB int
	MaxSegments  int
}

// MetricsConfig toggles atomic counter collection.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		RateLimit: RateLimitConfig{
			Window:             time.Hour,
			UploadsPerHour:     20,
			PDFsPerHour:        50,
			TeamReportsPerHour: 5,
			Shared:             false,
			RedisPrefix:        "rg",
		},
		CSV: CSVConfig{
			MaxRows:       500,
			MaxColumns:    50,
			MaxCellLength: 200,
			MaxFileSizeMB: 10,
		},
		Email: EmailConfig{
			ResolveTimeout: 3 * time.Second,
			RequireMX:      false,
			SkipLiveness:   false,
		},
		EmailStore: EmailStoreConfig{
			Backend:     "file",
			Path:        "logs/collected_emails.json",
			MaxStored:   10000,
			MaxFileMB:   2,
			RedisPrefix: "rge",
		},
		Audit: AuditConfig{
			Enabled:      true,
			BufferSize:   1024,
			DropIfFull:   true,
			Dir:          "logs",
			FileName:     "app.log",
			MaxSegmentMB: 5,
			MaxSegments:  3,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Email.TypoCorrections != nil {
		out.Email.TypoCorrections = make(map[string]string, len(cfg.Email.TypoCorrections))
		for k, v := range cfg.Email.TypoCorrections {
			out.Email.TypoCorrections[k] = v
		}
	}
	if cfg.Email.DisposableDomains != nil {
		out.Email.DisposableDomains = make([]string, len(cfg.Email.DisposableDomains))
		copy(out.Email.DisposableDomains, cfg.Email.DisposableDomains)
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internally inconsistent or unusable
// values. Build rejects a Config that fails validation.
func (c *Config) Validate() error {
	if c.RateLimit.Window <= 0 {
		return errors.New("RateLimit Window must be > 0")
	}
	if c.RateLimit.UploadsPerHour < 0 || c.RateLimit.PDFsPerHour < 0 || c.RateLimit.TeamReportsPerHour < 0 {
		return errors.New("RateLimit budgets must be >= 0")
	}
	if c.RateLimit.Shared && c.RateLimit.RedisPrefix == "" {
		return errors.New("RateLimit RedisPrefix required when Shared")
	}

	if c.CSV.MaxRows <= 0 {
		return errors.New("CSV MaxRows must be > 0")
	}
	if c.CSV.MaxColumns <= 0 {
		return errors.New("CSV MaxColumns must be > 0")
	}
	if c.CSV.MaxCellLength <= 0 {
		return errors.New("CSV MaxCellLength must be > 0")
	}
	if c.CSV.MaxFileSizeMB <= 0 {
		return errors.New("CSV MaxFileSizeMB must be > 0")
	}

	if !c.Email.SkipLiveness && c.Email.ResolveTimeout <= 0 {
		return errors.New("Email ResolveTimeout must be > 0")
	}

	switch c.EmailStore.Backend {
	case "file":
		if c.EmailStore.Path == "" {
			return errors.New("EmailStore Path required for file backend")
		}
	case "redis":
		if c.EmailStore.RedisPrefix == "" {
			return errors.New("EmailStore RedisPrefix required for redis backend")
		}
	case "postgres", "memory":
	default:
		return errors.New("unsupported EmailStore Backend")
	}
	if c.EmailStore.MaxStored <= 0 {
		return errors.New("EmailStore MaxStored must be > 0")
	}
	if c.EmailStore.MaxFileMB <= 0 {
		return errors.New("EmailStore MaxFileMB must be > 0")
	}

	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0")
		}
		if c.Audit.Dir != "" {
			if c.Audit.FileName == "" {
				return errors.New("Audit FileName required when Dir is set")
			}
			if c.Audit.MaxSegmentMB <= 0 {
				return errors.New("Audit MaxSegmentMB must be > 0")
			}
			if c.Audit.MaxSegments < 0 {
				return errors.New("Audit MaxSegments must be >= 0")
			}
		}
	}

	return nil
}
