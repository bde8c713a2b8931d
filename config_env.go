package reportguard

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadConfigFromEnv returns the default configuration overlaid with any
// RG_-prefixed environment variables. A .env file in the working directory is
// loaded first when present; a missing file is not an error. The lookup
// tables (typo corrections, disposable domains) are not settable from the
// environment.
func LoadConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	overlays := []struct {
		name  string
		apply func(string) error
	}{
		{"RG_RATE_WINDOW", setDuration(&cfg.RateLimit.Window)},
		{"RG_UPLOADS_PER_HOUR", setInt(&cfg.RateLimit.UploadsPerHour)},
		{"RG_PDFS_PER_HOUR", setInt(&cfg.RateLimit.PDFsPerHour)},
		{"RG_TEAM_REPORTS_PER_HOUR", setInt(&cfg.RateLimit.TeamReportsPerHour)},
		{"RG_RATE_SHARED", setBool(&cfg.RateLimit.Shared)},
		{"RG_RATE_REDIS_PREFIX", setString(&cfg.RateLimit.RedisPrefix)},

		{"RG_CSV_MAX_ROWS", setInt(&cfg.CSV.MaxRows)},
		{"RG_CSV_MAX_COLUMNS", setInt(&cfg.CSV.MaxColumns)},
		{"RG_CSV_MAX_CELL_LENGTH", setInt(&cfg.CSV.MaxCellLength)},
		{"RG_CSV_MAX_FILE_SIZE_MB", setInt(&cfg.CSV.MaxFileSizeMB)},

		{"RG_EMAIL_RESOLVE_TIMEOUT", setDuration(&cfg.Email.ResolveTimeout)},
		{"RG_EMAIL_REQUIRE_MX", setBool(&cfg.Email.RequireMX)},
		{"RG_EMAIL_SKIP_LIVENESS", setBool(&cfg.Email.SkipLiveness)},

		{"RG_EMAIL_STORE_BACKEND", setString(&cfg.EmailStore.Backend)},
		{"RG_EMAIL_STORE_PATH", setString(&cfg.EmailStore.Path)},
		{"RG_EMAIL_STORE_MAX", setInt(&cfg.EmailStore.MaxStored)},
		{"RG_EMAIL_STORE_MAX_FILE_MB", setInt(&cfg.EmailStore.MaxFileMB)},
		{"RG_EMAIL_STORE_REDIS_PREFIX", setString(&cfg.EmailStore.RedisPrefix)},
		{"RG_EMAIL_STORE_POSTGRES_DSN", setString(&cfg.EmailStore.PostgresDSN)},

		{"RG_AUDIT_ENABLED", setBool(&cfg.Audit.Enabled)},
		{"RG_AUDIT_BUFFER_SIZE", setInt(&cfg.Audit.BufferSize)},
		{"RG_AUDIT_DROP_IF_FULL", setBool(&cfg.Audit.DropIfFull)},
		{"RG_AUDIT_DIR", setString(&cfg.Audit.Dir)},
		{"RG_AUDIT_FILE_NAME", setString(&cfg.Audit.FileName)},
		{"RG_AUDIT_MAX_SEGMENT_MB", setInt(&cfg.Audit.MaxSegmentMB)},
		{"RG_AUDIT_MAX_SEGMENTS", setInt(&cfg.Audit.MaxSegments)},

		{"RG_METRICS_ENABLED", setBool(&cfg.Metrics.Enabled)},
	}

	for _, o := range overlays {
		raw, ok := os.LookupEnv(o.name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if err := o.apply(strings.TrimSpace(raw)); err != nil {
			return Config{}, fmt.Errorf("config load: invalid value for %s=%q: %w", o.name, raw, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func setDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
