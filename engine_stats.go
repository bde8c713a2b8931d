package reportguard

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// LogPDFGenerated records a completed PDF generation. The subject's name is
// deliberately absent; only the season label travels with the event.
func (g *Guard) LogPDFGenerated(ctx context.Context, session *Session, seasonLabel string) {
	g.emit(ctx, EventPDFGenerated, session, true, "", map[string]string{
		"season_type": seasonLabel,
	})
}

// LogTeamReport records a completed team report download.
func (g *Guard) LogTeamReport(ctx context.Context, session *Session, numAthletes int, seasonLabel string) {
	g.emit(ctx, EventTeamReport, session, true, "", map[string]string{
		"season_type":  seasonLabel,
		"num_athletes": strconv.Itoa(numAthletes),
	})
}

// LogError records a caller-side failure against the session. Details are
// clipped so an attacker-controlled message cannot bloat the trail.
func (g *Guard) LogError(ctx context.Context, session *Session, errorType, details string) {
	g.emit(ctx, EventError, session, false, "", map[string]string{
		"error_type": errorType,
		"details":    clip(details, 500),
	})
}

// UsageStats aggregates the audit segments into operator-facing totals.
// Counts lag in-flight dispatch by the audit buffer; that is acceptable for
// dashboards. The email count is best-effort: a store failure logs and
// reports zero rather than failing the whole report.
func (g *Guard) UsageStats(ctx context.Context) (UsageStats, error) {
	stats := UsageStats{}

	if n, err := g.emails.Count(ctx); err == nil {
		stats.EmailsCollected = n
	} else {
		g.logger.Error("email count failed", zap.Error(err))
	}

	if g.config.Audit.Dir == "" {
		return stats, nil
	}

	segments, err := g.auditSegments()
	if err != nil {
		return stats, err
	}

	sessions := make(map[string]struct{})
	for _, segment := range segments {
		if err := scanSegment(segment, &stats, sessions); err != nil {
			return stats, err
		}
	}
	stats.UniqueSessions = len(sessions)

	return stats, nil
}

// auditSegments lists the active segment and its rotated backups
// ("name.log", "name-<timestamp>.log").
func (g *Guard) auditSegments() ([]string, error) {
	dir, name := g.config.Audit.Dir, g.config.Audit.FileName
	ext := filepath.Ext(name)
	prefix := strings.TrimSuffix(name, ext) + "-"

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var segments []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := entry.Name()
		if base == name || (strings.HasPrefix(base, prefix) && filepath.Ext(base) == ext) {
			segments = append(segments, filepath.Join(dir, base))
		}
	}
	return segments, nil
}

func scanSegment(path string, stats *UsageStats, sessions map[string]struct{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var event AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue // tolerate torn lines from a crashed writer
		}
		switch event.Kind {
		case EventUpload:
			stats.Uploads++
		case EventPDFGenerated:
			stats.PDFs++
		case EventTeamReport:
			stats.TeamReports++
		case EventError:
			stats.Errors++
		}
		if event.SessionID != "" {
			sessions[event.SessionID] = struct{}{}
		}
	}
	return scanner.Err()
}
