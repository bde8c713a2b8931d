package reportguard

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := defaultConfig()

	if cfg.RateLimit.Window != time.Hour {
		t.Errorf("window = %v, want 1h", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.UploadsPerHour != 20 || cfg.RateLimit.PDFsPerHour != 50 || cfg.RateLimit.TeamReportsPerHour != 5 {
		t.Errorf("budgets = %d/%d/%d, want 20/50/5",
			cfg.RateLimit.UploadsPerHour, cfg.RateLimit.PDFsPerHour, cfg.RateLimit.TeamReportsPerHour)
	}
	if cfg.CSV.MaxRows != 500 || cfg.CSV.MaxColumns != 50 || cfg.CSV.MaxCellLength != 200 || cfg.CSV.MaxFileSizeMB != 10 {
		t.Errorf("csv limits = %+v", cfg.CSV)
	}
	if cfg.EmailStore.MaxStored != 10000 || cfg.EmailStore.MaxFileMB != 2 {
		t.Errorf("email store limits = %+v", cfg.EmailStore)
	}
	if cfg.Email.ResolveTimeout != 3*time.Second {
		t.Errorf("resolve timeout = %v, want 3s", cfg.Email.ResolveTimeout)
	}
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }},
		{"negative budget", func(c *Config) { c.RateLimit.PDFsPerHour = -1 }},
		{"shared without prefix", func(c *Config) { c.RateLimit.Shared = true; c.RateLimit.RedisPrefix = "" }},
		{"zero max rows", func(c *Config) { c.CSV.MaxRows = 0 }},
		{"zero cell length", func(c *Config) { c.CSV.MaxCellLength = 0 }},
		{"zero resolve timeout", func(c *Config) { c.Email.ResolveTimeout = 0 }},
		{"unknown backend", func(c *Config) { c.EmailStore.Backend = "dynamodb" }},
		{"file backend without path", func(c *Config) { c.EmailStore.Path = "" }},
		{"zero store cap", func(c *Config) { c.EmailStore.MaxStored = 0 }},
		{"zero audit buffer", func(c *Config) { c.Audit.BufferSize = 0 }},
		{"audit dir without file name", func(c *Config) { c.Audit.FileName = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate accepted a broken config")
			}
		})
	}
}

func TestValidateSkipLivenessIgnoresTimeout(t *testing.T) {
	cfg := defaultConfig()
	cfg.Email.SkipLiveness = true
	cfg.Email.ResolveTimeout = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCloneConfigIsIndependent(t *testing.T) {
	cfg := defaultConfig()
	cfg.Email.TypoCorrections = map[string]string{"gmial.com": "gmail.com"}
	cfg.Email.DisposableDomains = []string{"mailinator.com"}

	clone := cloneConfig(cfg)
	clone.Email.TypoCorrections["gmal.com"] = "gmail.com"
	clone.Email.DisposableDomains[0] = "tempmail.com"

	if len(cfg.Email.TypoCorrections) != 1 {
		t.Error("mutating the clone's map reached the original")
	}
	if cfg.Email.DisposableDomains[0] != "mailinator.com" {
		t.Error("mutating the clone's slice reached the original")
	}
}

func TestLoadConfigFromEnvOverlays(t *testing.T) {
	t.Setenv("RG_UPLOADS_PER_HOUR", "7")
	t.Setenv("RG_RATE_WINDOW", "30m")
	t.Setenv("RG_CSV_MAX_ROWS", "100")
	t.Setenv("RG_EMAIL_SKIP_LIVENESS", "true")
	t.Setenv("RG_EMAIL_STORE_BACKEND", "memory")
	t.Setenv("RG_AUDIT_ENABLED", "false")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv: %v", err)
	}
	if cfg.RateLimit.UploadsPerHour != 7 {
		t.Errorf("uploads per hour = %d, want 7", cfg.RateLimit.UploadsPerHour)
	}
	if cfg.RateLimit.Window != 30*time.Minute {
		t.Errorf("window = %v, want 30m", cfg.RateLimit.Window)
	}
	if cfg.CSV.MaxRows != 100 {
		t.Errorf("max rows = %d, want 100", cfg.CSV.MaxRows)
	}
	if !cfg.Email.SkipLiveness {
		t.Error("skip liveness not applied")
	}
	if cfg.EmailStore.Backend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.EmailStore.Backend)
	}
	if cfg.Audit.Enabled {
		t.Error("audit enable not applied")
	}
	// Untouched values keep their defaults.
	if cfg.RateLimit.PDFsPerHour != 50 {
		t.Errorf("pdfs per hour = %d, want default 50", cfg.RateLimit.PDFsPerHour)
	}
}

func TestLoadConfigFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("RG_CSV_MAX_ROWS", "lots")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected error for a non-numeric value")
	}
}

func TestLoadConfigFromEnvRejectsInvalidResult(t *testing.T) {
	t.Setenv("RG_CSV_MAX_ROWS", "0")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected validation error for a zero row cap")
	}
}
