package reportguard

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tmajeri/reportguard/internal/emailstore"
)

const consentRequiredReason = "Consent is required to store your email."
const storeFailureReason = "Unable to save your email right now. Please try again later."

// ValidateEmail runs the candidate address through the full pipeline without
// touching storage.
func (g *Guard) ValidateEmail(ctx context.Context, email string) EmailVerdict {
	v := g.validator.Validate(ctx, email)
	return EmailVerdict{
		Valid:      v.Valid,
		Reason:     v.Reason,
		Suggestion: v.Suggestion,
	}
}

// SubmitEmail validates the address and, for a consenting submission, stores
// it. Capacity overflow and duplicates still report Stored=true so the
// endpoint reveals nothing about store state; only a persistence failure
// reports non-success, with the error wrapping ErrStoreUnavailable.
func (g *Guard) SubmitEmail(ctx context.Context, session *Session, email string, consent bool) (EmailVerdict, error) {
	if g == nil || g.emails == nil {
		return EmailVerdict{Reason: storeFailureReason}, ErrGuardNotReady
	}
	v := g.validator.Validate(ctx, email)
	if !v.Valid {
		g.metrics.Inc(MetricEmailRejected)
		g.emit(ctx, EventEmailRejected, session, false, v.Reason, map[string]string{
			"email_hash": HashIdentifier(v.Normalized),
		})
		return EmailVerdict{Reason: v.Reason, Suggestion: v.Suggestion}, nil
	}
	g.metrics.Inc(MetricEmailAccepted)

	if !consent {
		return EmailVerdict{Valid: true, Reason: consentRequiredReason}, nil
	}

	rec := emailstore.Record{
		Email:     v.Normalized,
		SessionID: session.ID(),
		Timestamp: g.now(),
		Consent:   true,
	}

	status, err := g.emails.Save(ctx, rec)
	if err != nil {
		g.metrics.Inc(MetricStoreFailure)
		g.logger.Error("failed to save email", zap.Error(err))
		g.emit(ctx, EventError, session, false, "email store failure", map[string]string{
			"error_type": "email_store",
		})
		return EmailVerdict{Valid: true, Reason: storeFailureReason},
			fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	switch status {
	case emailstore.StatusStored:
		g.metrics.Inc(MetricEmailStored)
		session.markEmailSubmitted()
		g.emit(ctx, EventEmailSubmitted, session, true, "", map[string]string{
			"email_hash": HashIdentifier(v.Normalized),
		})
	case emailstore.StatusDuplicate:
		g.metrics.Inc(MetricEmailDuplicate)
	case emailstore.StatusDropped:
		// Still success to the caller; a capacity probe must not see a cap.
		g.metrics.Inc(MetricEmailDropped)
		g.logger.Warn("email store capacity reached, submission dropped")
	}

	return EmailVerdict{Valid: true, Stored: true}, nil
}

// EmailCount returns the number of stored records, for operator statistics.
func (g *Guard) EmailCount(ctx context.Context) (int, error) {
	if g == nil || g.emails == nil {
		return 0, ErrGuardNotReady
	}
	return g.emails.Count(ctx)
}
