package reportguard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmajeri/reportguard/internal/emailcheck"
	"github.com/tmajeri/reportguard/internal/emailstore"
	"github.com/tmajeri/reportguard/internal/rate"
	"github.com/tmajeri/reportguard/internal/sanitize"
)

// Guard is the protective core. Construct it through [Builder.Build]; the
// zero value is not usable. All methods are safe for concurrent use.
type Guard struct {
	config    Config
	logger    *zap.Logger
	limiter   *rate.Limiter
	emails    emailstore.Store
	validator *emailcheck.Validator
	audit     *auditDispatcher
	metrics   *Metrics
	clock     func() time.Time
	closers   []func() error
}

// Close drains the audit dispatcher and releases store resources. Safe to
// call more than once.
func (g *Guard) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
	for _, closeFn := range g.closers {
		if err := closeFn(); err != nil {
			g.logger.Error("close failed", zap.Error(err))
		}
	}
	g.closers = nil
}

// NewSession issues a fresh pseudonymous session handle. The id is a
// truncated hash of a random value and the current time; it is never derived
// from anything identifying the user.
func (g *Guard) NewSession() *Session {
	raw := g.now().Format(time.RFC3339Nano) + "-" + uuid.NewString()
	sum := sha256.Sum256([]byte(raw))
	return &Session{id: hex.EncodeToString(sum[:])[:16]}
}

// Sanitize neutralizes injection payloads in a single untrusted string. The
// returned value is safe to hand to spreadsheet tooling; idempotent for
// already-clean input.
func (g *Guard) Sanitize(value string) string {
	res := sanitize.Clean(value, g.config.CSV.MaxCellLength)
	if res.Flagged {
		g.metrics.Inc(MetricSanitizerHit)
		g.logger.Warn("sanitized potentially dangerous input",
			zap.String("prefix", clip(res.Value, 50)))
	}
	if res.Truncated {
		g.metrics.Inc(MetricCellTruncated)
		g.logger.Warn("truncated oversized cell content")
	}
	return res.Value
}

// AuditDropped reports how many audit events were shed by a full buffer.
func (g *Guard) AuditDropped() uint64 {
	if g == nil {
		return 0
	}
	return g.audit.Dropped()
}

// MetricsSnapshot copies the guard's counters.
func (g *Guard) MetricsSnapshot() MetricsSnapshot {
	if g == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return g.metrics.Snapshot()
}

func (g *Guard) now() time.Time {
	if g == nil || g.clock == nil {
		return time.Now()
	}
	return g.clock()
}

func (g *Guard) emit(ctx context.Context, kind EventKind, session *Session, success bool, reason string, details map[string]string) {
	if g == nil || g.audit == nil {
		return
	}
	g.audit.Emit(ctx, AuditEvent{
		Timestamp: g.now(),
		Kind:      kind,
		SessionID: session.ID(),
		Success:   success,
		Reason:    reason,
		Details:   details,
	})
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
