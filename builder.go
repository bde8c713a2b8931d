package reportguard

import (
	"context"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tmajeri/reportguard/internal/emailcheck"
	"github.com/tmajeri/reportguard/internal/emailstore"
	"github.com/tmajeri/reportguard/internal/rate"
)

// DomainResolver is the DNS seam for the email liveness stage. Production
// code never supplies one; tests do.
type DomainResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Builder assembles a Guard. Each Builder produces at most one Guard.
type Builder struct {
	config Config

	logger   *zap.Logger
	sink     AuditSink
	redis    *redis.Client
	resolver DomainResolver
	emails   EmailStore
	clock    func() time.Time

	built bool
}

// New returns a Builder loaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLogger sets the operational logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink overrides the default rotating-file sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithRedis supplies the client required by the shared rate-limit window and
// the redis email store backend.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithResolver overrides the DNS resolver used by email liveness checks.
func (b *Builder) WithResolver(r DomainResolver) *Builder {
	b.resolver = r
	return b
}

// WithEmailStore injects a custom storage backend for accepted submissions,
// taking precedence over the configured EmailStoreConfig.Backend.
func (b *Builder) WithEmailStore(store EmailStore) *Builder {
	b.emails = store
	return b
}

// WithClock overrides the time source. Test seam.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// Build validates the configuration and assembles the Guard.
func (b *Builder) Build() (*Guard, error) {
	if b.built {
		return nil, ErrBuilderReused
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	guard := &Guard{
		config:  cfg,
		logger:  logger,
		metrics: newMetrics(cfg.Metrics),
		clock:   b.clock,
	}

	// -------- RATE LIMIT WINDOW --------
	var windowStore rate.Store
	if cfg.RateLimit.Shared {
		if b.redis == nil {
			return nil, ErrRedisRequired
		}
		windowStore = rate.NewRedisStore(b.redis, cfg.RateLimit.RedisPrefix)
	} else {
		windowStore = rate.NewMemoryStore()
	}
	guard.limiter = rate.New(windowStore, cfg.RateLimit.Window, b.clock)

	// -------- EMAIL PIPELINE --------
	guard.validator = emailcheck.New(emailcheck.Config{
		ResolveTimeout:    cfg.Email.ResolveTimeout,
		RequireMX:         cfg.Email.RequireMX,
		SkipLiveness:      cfg.Email.SkipLiveness,
		TypoCorrections:   cfg.Email.TypoCorrections,
		DisposableDomains: cfg.Email.DisposableDomains,
	}, b.resolver)

	// -------- EMAIL STORE --------
	limits := emailstore.Limits{
		MaxRecords: cfg.EmailStore.MaxStored,
		MaxBytes:   int64(cfg.EmailStore.MaxFileMB) * 1024 * 1024,
	}
	switch {
	case b.emails != nil:
		guard.emails = customEmailStore{store: b.emails}
	case cfg.EmailStore.Backend == "file":
		store, err := emailstore.NewFileStore(cfg.EmailStore.Path, limits)
		if err != nil {
			return nil, err
		}
		guard.emails = store
	case cfg.EmailStore.Backend == "redis":
		if b.redis == nil {
			return nil, ErrRedisRequired
		}
		guard.emails = emailstore.NewRedisStore(b.redis, cfg.EmailStore.RedisPrefix, limits)
	case cfg.EmailStore.Backend == "postgres":
		if cfg.EmailStore.PostgresDSN == "" {
			return nil, ErrPostgresDSNRequired
		}
		pool, err := pgxpool.New(context.Background(), cfg.EmailStore.PostgresDSN)
		if err != nil {
			return nil, err
		}
		store := emailstore.NewPostgresStore(pool, limits)
		if err := store.EnsureSchema(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
		guard.emails = store
		guard.closers = append(guard.closers, func() error {
			pool.Close()
			return nil
		})
	case cfg.EmailStore.Backend == "memory":
		guard.emails = emailstore.NewMemoryStore(limits)
	}
	guard.closers = append(guard.closers, guard.emails.Close)

	// -------- AUDIT --------
	sink := b.sink
	if sink == nil && cfg.Audit.Enabled && cfg.Audit.Dir != "" {
		fileSink := NewRotatingFileSink(cfg.Audit.Dir, cfg.Audit.FileName, cfg.Audit.MaxSegmentMB, cfg.Audit.MaxSegments)
		guard.closers = append(guard.closers, fileSink.Close)
		sink = fileSink
	}
	guard.audit = newAuditDispatcher(cfg.Audit, sink)

	b.built = true

	return guard, nil
}

// customEmailStore bridges a caller-supplied EmailStore into the internal
// store interface. EmailSaveStatus values mirror emailstore.SaveStatus.
type customEmailStore struct {
	store EmailStore
}

func (c customEmailStore) Save(ctx context.Context, rec emailstore.Record) (emailstore.SaveStatus, error) {
	status, err := c.store.Save(ctx, EmailRecord{
		Email:     rec.Email,
		SessionID: rec.SessionID,
		Timestamp: rec.Timestamp,
		Consent:   rec.Consent,
	})
	return emailstore.SaveStatus(status), err
}

func (c customEmailStore) Count(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

func (c customEmailStore) Close() error {
	return c.store.Close()
}
