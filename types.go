package reportguard

import (
	"context"
	"sync"
	"time"
)

/*
====================================
ACTIONS
====================================
*/

// Rate-limited action names. Each action keeps an independent window; limits
// never bleed across names.
const (
	// ActionUpload is an inbound tabular (CSV) upload.
	ActionUpload = "uploads"
	// ActionPDF is a single-subject PDF generation.
	ActionPDF = "pdfs"
	// ActionTeamReport is a full team report download.
	ActionTeamReport = "team_reports"
)

/*
====================================
SESSION
====================================
*/

// Session is an ephemeral per-user context identified by a pseudonymous id.
// The id is derived by hashing a random value at first contact and carries no
// PII. The request-handling layer owns the Session and passes it into every
// Guard call; nothing in this package holds one globally.
type Session struct {
	id string

	mu             sync.Mutex
	emailSubmitted bool
}

// ID returns the pseudonymous session identifier.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// EmailSubmitted reports whether this session has already stored an email.
func (s *Session) EmailSubmitted() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emailSubmitted
}

func (s *Session) markEmailSubmitted() {
	s.mu.Lock()
	s.emailSubmitted = true
	s.mu.Unlock()
}

/*
====================================
TABLE MODEL
====================================
*/

// ColumnKind classifies a column for sanitization purposes only. The guard
// never interprets cell values beyond this.
type ColumnKind int

const (
	// KindText marks a column whose cells are sanitized.
	KindText ColumnKind = iota
	// KindNumber marks a column exempt from cell sanitization; downstream
	// numeric coercion handles malformed values as a separate concern.
	KindNumber
)

// Column is a named, kind-tagged column of an uploaded table.
type Column struct {
	Name string
	Kind ColumnKind
}

// Table is an opaque tabular payload: ordered columns and rows of string
// cells. Rows are indexed positionally against Columns.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// RowCount returns the number of data rows.
func (t Table) RowCount() int { return len(t.Rows) }

// ColumnCount returns the number of columns.
func (t Table) ColumnCount() int { return len(t.Columns) }

// Clone returns a deep copy. Validation sanitizes the copy so the caller's
// original table handle is never mutated.
func (t Table) Clone() Table {
	out := Table{
		Columns: make([]Column, len(t.Columns)),
		Rows:    make([][]string, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)
	for i, row := range t.Rows {
		out.Rows[i] = make([]string, len(row))
		copy(out.Rows[i], row)
	}
	return out
}

/*
====================================
VERDICTS
====================================
*/

// Decision is a rate-limit verdict. Reason is user-facing and names the
// configured limit; it never exposes internals beyond the remaining count.
type Decision struct {
	Allowed   bool
	Reason    string
	Remaining int
}

// UploadVerdict is the outcome of screening an uploaded table. When Accepted
// is true, Table is the sanitized copy and satisfies every configured limit.
// When false, Table is the caller's payload unchanged and must not be used
// downstream.
type UploadVerdict struct {
	Accepted bool
	Reason   string
	Table    Table
}

// EmailVerdict is the outcome of validating (and optionally storing) an
// email submission. Stored reflects the caller-visible result: capacity
// overflow and duplicates still report true so the endpoint cannot be probed
// for store state.
type EmailVerdict struct {
	Valid      bool
	Reason     string
	Suggestion string
	Stored     bool
}

/*
====================================
EMAIL STORAGE SEAM
====================================
*/

// EmailRecord is one accepted submission as handed to a storage backend. The
// address is already normalized by the validation pipeline.
type EmailRecord struct {
	Email     string
	SessionID string
	Timestamp time.Time
	Consent   bool
}

// EmailSaveStatus is a backend's save outcome. Callers of SubmitEmail never
// see it directly; duplicates and capacity drops collapse into success.
type EmailSaveStatus int

const (
	// EmailStored means a new record was persisted.
	EmailStored EmailSaveStatus = iota
	// EmailDuplicate means the normalized address already exists.
	EmailDuplicate
	// EmailDropped means a capacity cap silently swallowed the record.
	EmailDropped
)

// EmailStore is the persistence seam for accepted submissions. The built-in
// backends (file, redis, postgres, memory) are selected through
// EmailStoreConfig; a custom implementation plugs in via
// [Builder.WithEmailStore].
type EmailStore interface {
	Save(ctx context.Context, rec EmailRecord) (EmailSaveStatus, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

/*
====================================
OPERATOR STATS
====================================
*/

// UsageStats aggregates the audit trail for operator dashboards. Values are
// eventually consistent with in-flight audit dispatch.
type UsageStats struct {
	Uploads         int
	PDFs            int
	TeamReports     int
	Errors          int
	UniqueSessions  int
	EmailsCollected int
}
