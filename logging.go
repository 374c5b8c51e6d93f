package pubindex

import (
	"io"
	"log/slog"
	"strings"
)

// Canonical log field names.
const (
	KeyPath     = "path"
	KeyDocument = "document"
	KeyReason   = "reason"
	KeyCount    = "count"
	KeyError    = "error"
)

func logPath(p string) slog.Attr      { return slog.String(KeyPath, p) }
func logDocument(id string) slog.Attr { return slog.String(KeyDocument, id) }
func logReason(r string) slog.Attr    { return slog.String(KeyReason, r) }
func logCount(n int) slog.Attr        { return slog.Int(KeyCount, n) }
func logError(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// NewLogger builds a slog logger writing to w. Unknown levels fall back to
// info and unknown formats to text.
func NewLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogExcluded writes one info line per document a listing left out.
func LogExcluded(logger *slog.Logger, l *Listing) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, ex := range l.Excluded() {
		logger.Info("Document excluded from listing",
			logDocument(ex.ID), logReason(reason(ex.Reason)))
	}
}
