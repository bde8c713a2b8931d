package reportguard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAuthorizeEnforcesLimit(t *testing.T) {
	guard, sink, _ := newTestGuard(t, func(cfg *Config) {
		cfg.RateLimit.UploadsPerHour = 3
	})
	ctx := context.Background()
	session := guard.NewSession()

	for i := 0; i < 3; i++ {
		d, err := guard.AuthorizeUpload(ctx, session)
		if err != nil {
			t.Fatalf("AuthorizeUpload #%d: %v", i+1, err)
		}
		if !d.Allowed {
			t.Fatalf("AuthorizeUpload #%d denied, want allowed", i+1)
		}
	}

	d, err := guard.AuthorizeUpload(ctx, session)
	if err != nil {
		t.Fatalf("AuthorizeUpload over limit: %v", err)
	}
	if d.Allowed {
		t.Fatal("fourth upload allowed, want denied")
	}
	if !strings.Contains(d.Reason, "Maximum 3 uploads per hour") {
		t.Fatalf("denial reason = %q, want configured limit named", d.Reason)
	}

	drainAudit(guard)
	denials := sink.byKind(EventRateLimited)
	if len(denials) != 1 {
		t.Fatalf("rate_limited events = %d, want 1", len(denials))
	}
	if denials[0].SessionID != session.ID() {
		t.Fatalf("event session = %q, want %q", denials[0].SessionID, session.ID())
	}
	if denials[0].Details["action"] != ActionUpload {
		t.Fatalf("event action = %q, want %q", denials[0].Details["action"], ActionUpload)
	}
	if n := guard.MetricsSnapshot().Counters[MetricRateLimitHit]; n != 1 {
		t.Fatalf("rate limit hits = %d, want 1", n)
	}
}

func TestAuthorizeWindowSlides(t *testing.T) {
	guard, _, clock := newTestGuard(t, func(cfg *Config) {
		cfg.RateLimit.UploadsPerHour = 1
	})
	ctx := context.Background()
	session := guard.NewSession()

	if d, _ := guard.AuthorizeUpload(ctx, session); !d.Allowed {
		t.Fatal("first upload denied")
	}
	if d, _ := guard.AuthorizeUpload(ctx, session); d.Allowed {
		t.Fatal("second upload inside window allowed")
	}

	clock.Advance(time.Hour + time.Minute)

	if d, _ := guard.AuthorizeUpload(ctx, session); !d.Allowed {
		t.Fatal("upload after window slid not re-admitted")
	}
}

func TestActionsHaveIndependentBudgets(t *testing.T) {
	guard, _, _ := newTestGuard(t, func(cfg *Config) {
		cfg.RateLimit.UploadsPerHour = 1
		cfg.RateLimit.PDFsPerHour = 1
	})
	ctx := context.Background()
	session := guard.NewSession()

	if d, _ := guard.AuthorizeUpload(ctx, session); !d.Allowed {
		t.Fatal("upload denied")
	}
	if d, _ := guard.AuthorizeUpload(ctx, session); d.Allowed {
		t.Fatal("upload budget not exhausted")
	}
	if d, _ := guard.AuthorizePDF(ctx, session); !d.Allowed {
		t.Fatal("pdf denied after unrelated upload exhaustion")
	}
}

func TestSessionsHaveIndependentBudgets(t *testing.T) {
	guard, _, _ := newTestGuard(t, func(cfg *Config) {
		cfg.RateLimit.TeamReportsPerHour = 1
	})
	ctx := context.Background()

	first := guard.NewSession()
	second := guard.NewSession()

	if d, _ := guard.AuthorizeTeamReport(ctx, first); !d.Allowed {
		t.Fatal("first session denied")
	}
	if d, _ := guard.AuthorizeTeamReport(ctx, second); !d.Allowed {
		t.Fatal("second session penalized for first session's usage")
	}
}

func TestCheckLimitDoesNotConsume(t *testing.T) {
	guard, _, _ := newTestGuard(t, func(cfg *Config) {
		cfg.RateLimit.PDFsPerHour = 2
	})
	ctx := context.Background()
	session := guard.NewSession()

	for i := 0; i < 10; i++ {
		d, err := guard.CheckLimit(ctx, session, ActionPDF)
		if err != nil {
			t.Fatalf("CheckLimit: %v", err)
		}
		if !d.Allowed || d.Remaining != 2 {
			t.Fatalf("CheckLimit #%d = %+v, want allowed with 2 remaining", i+1, d)
		}
	}
}

func TestRecordActionConsumes(t *testing.T) {
	guard, _, _ := newTestGuard(t, func(cfg *Config) {
		cfg.RateLimit.PDFsPerHour = 1
	})
	ctx := context.Background()
	session := guard.NewSession()

	if err := guard.RecordAction(ctx, session, ActionPDF); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	d, err := guard.CheckLimit(ctx, session, ActionPDF)
	if err != nil {
		t.Fatalf("CheckLimit: %v", err)
	}
	if d.Allowed {
		t.Fatal("check allowed after recorded action exhausted the budget")
	}
}

func TestRemainingCountsDown(t *testing.T) {
	guard, _, _ := newTestGuard(t, func(cfg *Config) {
		cfg.RateLimit.UploadsPerHour = 3
	})
	ctx := context.Background()
	session := guard.NewSession()

	for want := 3; want >= 1; want-- {
		d, err := guard.AuthorizeUpload(ctx, session)
		if err != nil {
			t.Fatalf("AuthorizeUpload: %v", err)
		}
		if d.Remaining != want {
			t.Fatalf("remaining = %d, want %d", d.Remaining, want)
		}
	}
}

func TestUnknownActionRejected(t *testing.T) {
	guard, _, _ := newTestGuard(t, nil)
	ctx := context.Background()
	session := guard.NewSession()

	if _, err := guard.Authorize(ctx, session, "exports"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("Authorize err = %v, want ErrUnknownAction", err)
	}
	if err := guard.RecordAction(ctx, session, "exports"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("RecordAction err = %v, want ErrUnknownAction", err)
	}
}

func TestZeroBudgetDeniesEverything(t *testing.T) {
	guard, _, _ := newTestGuard(t, func(cfg *Config) {
		cfg.RateLimit.TeamReportsPerHour = 0
	})
	ctx := context.Background()

	d, err := guard.AuthorizeTeamReport(ctx, guard.NewSession())
	if err != nil {
		t.Fatalf("AuthorizeTeamReport: %v", err)
	}
	if d.Allowed {
		t.Fatal("zero budget admitted an action")
	}
}
