// Package udf implements the spreadsheet-callable entry points: four read
// queries and a cache-clear operation. Every entry point validates its
// arguments, normalizes dates, executes through the cached executor, and
// shapes the outcome as a two-dimensional array the host expands into
// cells. Failures of any kind become a one-row diagnostic; nothing raises
// to the caller.
package udf

import (
	"context"

	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/logging"
	"github.com/rzpsarthak13/indexserve/internal/query"
)

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Executor   *query.Executor
	Normalizer *query.Normalizer
	Log        *logging.Logger

	// Audit is optional; nil disables call-record publishing.
	Audit AuditSink
}

// Service is the spreadsheet-facing surface.
type Service struct {
	exec  *query.Executor
	norm  *query.Normalizer
	log   *logging.Logger
	audit AuditSink
}

// NewService creates the entry-point surface.
func NewService(cfg ServiceConfig) *Service {
	lg := cfg.Log
	if lg == nil {
		lg = logging.Discard()
	}
	norm := cfg.Normalizer
	if norm == nil {
		norm = query.NewNormalizer(query.DefaultDateLayout)
	}
	return &Service{
		exec:  cfg.Executor,
		norm:  norm,
		log:   lg,
		audit: cfg.Audit,
	}
}

// GetMonthlyData fetches constituents for a given index as on a specific
// date: header + (company_name, sector, mcap_category, weights) rows,
// heaviest weight first.
func (s *Service) GetMonthlyData(ctx context.Context, indexName, dateValue string) core.Grid {
	return instrument(ctx, s.log, s.audit, "get_monthly_data", []string{indexName, dateValue}, func() (core.Grid, error) {
		if err := query.Validate(
			query.Field{Name: "index_name", Value: indexName, Kind: query.KindString},
			query.Field{Name: "date_value", Value: dateValue, Kind: query.KindString},
		); err != nil {
			return nil, err
		}

		date := s.norm.Normalize(dateValue)
		table, err := s.exec.MonthlyData(ctx, indexName, date)
		if err != nil {
			return nil, err
		}
		if table.Empty() {
			return core.MessageGrid("no data found for index='%s' on '%s'", indexName, date), nil
		}
		return table.Grid(), nil
	})
}

// GetSeries fetches constituents and weights between start and end dates,
// inclusive.
func (s *Service) GetSeries(ctx context.Context, indexName, startDate, endDate string) core.Grid {
	return instrument(ctx, s.log, s.audit, "get_series", []string{indexName, startDate, endDate}, func() (core.Grid, error) {
		if err := query.Validate(
			query.Field{Name: "index_name", Value: indexName, Kind: query.KindString},
			query.Field{Name: "start_date", Value: startDate, Kind: query.KindString},
			query.Field{Name: "end_date", Value: endDate, Kind: query.KindString},
		); err != nil {
			return nil, err
		}

		start := s.norm.Normalize(startDate)
		end := s.norm.Normalize(endDate)
		table, err := s.exec.Series(ctx, indexName, start, end)
		if err != nil {
			return nil, err
		}
		if table.Empty() {
			return core.MessageGrid("no records found for '%s' between %s and %s", indexName, start, end), nil
		}
		return table.Grid(), nil
	})
}

// GetMatrix fetches all constituents of a given index as on a specific
// date, with the wide column set. Note the argument order: date first, as
// the spreadsheet formula takes it.
func (s *Service) GetMatrix(ctx context.Context, dateValue, indexName string) core.Grid {
	return instrument(ctx, s.log, s.audit, "get_matrix", []string{dateValue, indexName}, func() (core.Grid, error) {
		if err := query.Validate(
			query.Field{Name: "date_value", Value: dateValue, Kind: query.KindString},
			query.Field{Name: "index_name", Value: indexName, Kind: query.KindString},
		); err != nil {
			return nil, err
		}

		date := s.norm.Normalize(dateValue)
		table, err := s.exec.Matrix(ctx, indexName, date)
		if err != nil {
			return nil, err
		}
		if table.Empty() {
			return core.MessageGrid("no records found for '%s' on %s", indexName, date), nil
		}
		return table.Grid(), nil
	})
}

// GetAllData fetches all available records for one index across all dates.
func (s *Service) GetAllData(ctx context.Context, indexName string) core.Grid {
	return instrument(ctx, s.log, s.audit, "get_all_data", []string{indexName}, func() (core.Grid, error) {
		if err := query.Validate(
			query.Field{Name: "index_name", Value: indexName, Kind: query.KindString},
		); err != nil {
			return nil, err
		}

		table, err := s.exec.AllData(ctx, indexName)
		if err != nil {
			return nil, err
		}
		if table.Empty() {
			return core.MessageGrid("no data found for index='%s'", indexName), nil
		}
		return table.Grid(), nil
	})
}

// ClearCache evicts every cached query result. Useful after the store has
// been reloaded.
func (s *Service) ClearCache(ctx context.Context) string {
	grid := instrument(ctx, s.log, s.audit, "clear_cache", nil, func() (core.Grid, error) {
		if err := s.exec.ClearCache(ctx); err != nil {
			return nil, err
		}
		return core.MessageGrid("cache cleared successfully"), nil
	})
	if len(grid) > 0 && len(grid[0]) > 0 {
		if msg, ok := grid[0][0].(string); ok {
			return msg
		}
	}
	return "cache cleared successfully"
}
