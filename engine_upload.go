package reportguard

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/tmajeri/reportguard/internal/sanitize"
)

// ValidateUpload screens an uploaded table before any column is interpreted.
// Structural checks short-circuit in a fixed order: file size, row count,
// column count, non-empty. On rejection the verdict carries the caller's
// table unchanged. On acceptance the verdict carries a sanitized deep copy:
// every cell of every text column and every header has been through the
// sanitizer, and the result satisfies all configured limits.
//
// Rate limiting is a separate concern; call AuthorizeUpload first.
func (g *Guard) ValidateUpload(ctx context.Context, session *Session, table Table, fileSizeBytes int64) UploadVerdict {
	limits := g.config.CSV

	fileSizeMB := float64(fileSizeBytes) / (1024 * 1024)
	if fileSizeMB > float64(limits.MaxFileSizeMB) {
		return g.rejectUpload(ctx, session, table,
			fmt.Sprintf("File too large. Maximum size is %dMB, got %.1fMB", limits.MaxFileSizeMB, fileSizeMB))
	}
	if table.RowCount() > limits.MaxRows {
		return g.rejectUpload(ctx, session, table,
			fmt.Sprintf("Too many rows. Maximum is %d, got %d", limits.MaxRows, table.RowCount()))
	}
	if table.ColumnCount() > limits.MaxColumns {
		return g.rejectUpload(ctx, session, table,
			fmt.Sprintf("Too many columns. Maximum is %d, got %d", limits.MaxColumns, table.ColumnCount()))
	}
	if table.RowCount() == 0 {
		return g.rejectUpload(ctx, session, table, "CSV file is empty")
	}

	cleaned := table.Clone()
	flagged, truncated := 0, 0

	for col, column := range cleaned.Columns {
		if column.Kind != KindText {
			continue
		}
		for row := range cleaned.Rows {
			if col >= len(cleaned.Rows[row]) {
				continue
			}
			res := sanitize.Clean(cleaned.Rows[row][col], limits.MaxCellLength)
			cleaned.Rows[row][col] = res.Value
			if res.Flagged {
				flagged++
			}
			if res.Truncated {
				truncated++
			}
		}
	}

	seen := make(map[string]string, len(cleaned.Columns))
	for i, column := range cleaned.Columns {
		res := sanitize.Clean(column.Name, limits.MaxCellLength)
		if res.Flagged {
			flagged++
		}
		if res.Truncated {
			truncated++
		}
		if prev, ok := seen[res.Value]; ok {
			// Two distinct headers collapsing to one name would silently
			// merge columns downstream; reject instead.
			return g.rejectUpload(ctx, session, table,
				fmt.Sprintf("Column names %q and %q collide after sanitization", prev, column.Name))
		}
		seen[res.Value] = column.Name
		cleaned.Columns[i].Name = res.Value
	}

	if flagged > 0 {
		g.logger.Warn("sanitized potentially dangerous upload content",
			zap.Int("cells", flagged))
		g.emit(ctx, EventSanitized, session, true, "", map[string]string{
			"cells": strconv.Itoa(flagged),
		})
		for i := 0; i < flagged; i++ {
			g.metrics.Inc(MetricSanitizerHit)
		}
	}
	for i := 0; i < truncated; i++ {
		g.metrics.Inc(MetricCellTruncated)
	}

	g.metrics.Inc(MetricUploadAccepted)
	g.emit(ctx, EventUpload, session, true, "", map[string]string{
		"rows":    strconv.Itoa(cleaned.RowCount()),
		"columns": strconv.Itoa(cleaned.ColumnCount()),
		"size_mb": fmt.Sprintf("%.2f", fileSizeMB),
	})

	return UploadVerdict{Accepted: true, Table: cleaned}
}

func (g *Guard) rejectUpload(ctx context.Context, session *Session, table Table, reason string) UploadVerdict {
	g.metrics.Inc(MetricUploadRejected)
	g.emit(ctx, EventUploadRejected, session, false, reason, nil)
	return UploadVerdict{Accepted: false, Reason: reason, Table: table}
}
