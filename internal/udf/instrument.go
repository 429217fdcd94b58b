package udf

import (
	"context"
	"strings"
	"time"

	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/logging"
)

// CallRecord is the ephemeral snapshot written for every entry-point call.
type CallRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Function   string    `json:"function"`
	Args       []string  `json:"args"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// AuditSink receives call records beyond the query log. Publishing is
// best-effort; failures never surface to the caller.
type AuditSink interface {
	Publish(ctx context.Context, rec CallRecord) error
	Close() error
}

// instrument wraps one entry-point invocation: timing, one structured log
// line, optional audit publish. Errors are swallowed at this boundary and
// rendered as a one-row diagnostic grid; the caller never sees a failure
// propagate.
func instrument(ctx context.Context, lg *logging.Logger, audit AuditSink, name string, args []string, fn func() (core.Grid, error)) core.Grid {
	start := time.Now()
	grid, err := fn()
	elapsed := time.Since(start)

	rec := CallRecord{
		Timestamp:  start,
		Function:   name,
		Args:       args,
		Status:     "SUCCESS",
		DurationMS: float64(elapsed.Microseconds()) / 1000,
	}
	if err != nil {
		rec.Status = "FAILURE"
		rec.Error = err.Error()
	}

	line := "function=" + name + " | params=(" + strings.Join(args, ", ") + ")"
	if err != nil {
		lg.Errorf("UDF", "%s | duration=%.2f ms | status=%s | error=%s", line, rec.DurationMS, rec.Status, rec.Error)
	} else {
		lg.Infof("UDF", "%s | duration=%.2f ms | status=%s", line, rec.DurationMS, rec.Status)
	}

	if audit != nil {
		if perr := audit.Publish(ctx, rec); perr != nil {
			lg.Warnf("UDF", "audit publish failed: %v", perr)
		}
	}

	if err != nil {
		return core.MessageGrid("%v", err)
	}
	return grid
}
