package reportguard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EventKind names a class of audited decision.
type EventKind string

const (
	// EventUpload records an accepted tabular upload.
	EventUpload EventKind = "upload"
	// EventUploadRejected records an upload that failed a structural check.
	EventUploadRejected EventKind = "upload_rejected"
	// EventPDFGenerated records a completed single-subject PDF.
	EventPDFGenerated EventKind = "pdf_generated"
	// EventTeamReport records a completed team report download.
	EventTeamReport EventKind = "team_report"
	// EventEmailSubmitted records a newly stored email (hash only).
	EventEmailSubmitted EventKind = "email_submitted"
	// EventEmailRejected records an email that failed validation.
	EventEmailRejected EventKind = "email_rejected"
	// EventRateLimited records a denied rate-limit check.
	EventRateLimited EventKind = "rate_limited"
	// EventSanitized records a cell or header the sanitizer neutralized.
	EventSanitized EventKind = "input_sanitized"
	// EventError records an infrastructure failure.
	EventError EventKind = "error"
)

// AuditEvent is one immutable entry of the audit trail. Details carry
// kind-specific fields and never raw user content; identifiers appear only as
// truncated one-way hashes.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Kind      EventKind         `json:"event"`
	SessionID string            `json:"session_id,omitempty"`
	Success   bool              `json:"success"`
	Reason    string            `json:"reason,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// AuditSink receives emitted audit events.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// RotatingFileSink appends JSON lines to a size-rotated segment file. The
// active segment rotates at maxSegmentMB and at most maxSegments historical
// segments are retained, capping total disk usage.
type RotatingFileSink struct {
	*JSONWriterSink
	out *lumberjack.Logger
}

// NewRotatingFileSink opens (creating as needed) dir/name as the active audit
// segment.
func NewRotatingFileSink(dir, name string, maxSegmentMB, maxSegments int) *RotatingFileSink {
	if maxSegmentMB <= 0 {
		maxSegmentMB = 1
	}
	out := &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    maxSegmentMB,
		MaxBackups: maxSegments,
	}
	return &RotatingFileSink{
		JSONWriterSink: NewJSONWriterSink(out),
		out:            out,
	}
}

// Close flushes and closes the active segment.
func (s *RotatingFileSink) Close() error {
	if s == nil || s.out == nil {
		return nil
	}
	return s.out.Close()
}

// HashIdentifier returns a truncated one-way hash of an identifier, suitable
// for audit correlation without recording the identifier itself.
func HashIdentifier(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:16]
}
