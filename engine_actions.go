package reportguard

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/tmajeri/reportguard/internal/rate"
)

const limiterFailureReason = "Service temporarily unavailable. Please try again."

func (g *Guard) limitFor(action string) (int, error) {
	switch action {
	case ActionUpload:
		return g.config.RateLimit.UploadsPerHour, nil
	case ActionPDF:
		return g.config.RateLimit.PDFsPerHour, nil
	case ActionTeamReport:
		return g.config.RateLimit.TeamReportsPerHour, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func limitMessage(limit int, action string) string {
	return fmt.Sprintf("Rate limit exceeded. Maximum %d %s per hour. Please wait.", limit, action)
}

// CheckLimit reports whether one more occurrence of the named action would be
// admitted for this session, without recording anything. A denied Decision
// carries a user-facing message naming the configured limit. On a backend
// failure the Decision denies and the error wraps ErrLimiterUnavailable.
func (g *Guard) CheckLimit(ctx context.Context, session *Session, action string) (Decision, error) {
	if g == nil || g.limiter == nil {
		return Decision{Reason: limiterFailureReason}, ErrGuardNotReady
	}
	limit, err := g.limitFor(action)
	if err != nil {
		return Decision{Reason: limiterFailureReason}, err
	}

	d, err := g.limiter.Check(ctx, session.ID(), action, limit)
	if err != nil {
		g.logger.Error("rate limit check failed", zap.String("action", action), zap.Error(err))
		return Decision{Reason: limiterFailureReason}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return g.decisionFrom(d, limit, action), nil
}

// RecordAction records one occurrence of the action. Call only after a
// corresponding CheckLimit allowed it; Authorize does both atomically and is
// what double-click-prone paths should use.
func (g *Guard) RecordAction(ctx context.Context, session *Session, action string) error {
	if g == nil || g.limiter == nil {
		return ErrGuardNotReady
	}
	if _, err := g.limitFor(action); err != nil {
		return err
	}
	if err := g.limiter.Record(ctx, session.ID(), action); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}

// Authorize admits and records the action in one atomic step. Denials are
// audited and counted.
func (g *Guard) Authorize(ctx context.Context, session *Session, action string) (Decision, error) {
	if g == nil || g.limiter == nil {
		return Decision{Reason: limiterFailureReason}, ErrGuardNotReady
	}
	limit, err := g.limitFor(action)
	if err != nil {
		return Decision{Reason: limiterFailureReason}, err
	}

	d, err := g.limiter.Reserve(ctx, session.ID(), action, limit)
	if err != nil {
		g.logger.Error("rate limit reserve failed", zap.String("action", action), zap.Error(err))
		return Decision{Reason: limiterFailureReason}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}

	decision := g.decisionFrom(d, limit, action)
	if !decision.Allowed {
		g.metrics.Inc(MetricRateLimitHit)
		g.emit(ctx, EventRateLimited, session, false, decision.Reason, map[string]string{
			"action": action,
			"limit":  strconv.Itoa(limit),
		})
	}
	return decision, nil
}

// AuthorizeUpload admits one CSV upload.
func (g *Guard) AuthorizeUpload(ctx context.Context, session *Session) (Decision, error) {
	return g.Authorize(ctx, session, ActionUpload)
}

// AuthorizePDF admits one PDF generation.
func (g *Guard) AuthorizePDF(ctx context.Context, session *Session) (Decision, error) {
	return g.Authorize(ctx, session, ActionPDF)
}

// AuthorizeTeamReport admits one team report download.
func (g *Guard) AuthorizeTeamReport(ctx context.Context, session *Session) (Decision, error) {
	return g.Authorize(ctx, session, ActionTeamReport)
}

func (g *Guard) decisionFrom(d rate.Decision, limit int, action string) Decision {
	if !d.Allowed {
		return Decision{
			Allowed:   false,
			Reason:    limitMessage(limit, action),
			Remaining: 0,
		}
	}
	return Decision{Allowed: true, Remaining: d.Remaining}
}
