// Package expiry implements the cross-category due-item aggregation.
//
// All record categories expose the same three expiry queries through the
// Source interface. The aggregator fans one operation out over every
// source with a shared reference time, collects per-category results and
// failures, and shapes them for the three call sites: bulk deletion,
// flat per-category listing, and window-bounded grouping by owner.
package expiry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/metrics"
	"github.com/temirbekov/assistant-backend/internal/model"
)

// ErrAllCategoriesFailed is returned when no category produced a result.
var ErrAllCategoriesFailed = errors.New("all categories failed")

// Source provides the expiry queries for one record category.
type Source interface {
	Category() model.Category
	DueBefore(ctx context.Context, t time.Time) ([]model.Record, error)
	DueBetween(ctx context.Context, from, to time.Time) ([]model.Record, error)
	DeleteDueBefore(ctx context.Context, t time.Time) (int64, error)
}

// CategoryError reports one category's failure inside an otherwise
// successful aggregation pass.
type CategoryError struct {
	Category model.Category `json:"category"`
	Message  string         `json:"error"`
}

// SweepResult is one category's outcome of a sweep pass.
type SweepResult struct {
	Category model.Category `json:"category"`
	Deleted  int64          `json:"deleted"`
	Error    string         `json:"error,omitempty"`
}

// SweepReport describes a completed sweep across all categories.
type SweepReport struct {
	SweptAt time.Time     `json:"swept_at"`
	Results []SweepResult `json:"results"`
}

// DueReport is the flat per-category listing of already-due records.
type DueReport struct {
	CheckedAt  time.Time                         `json:"checked_at"`
	Categories map[model.Category][]model.Record `json:"categories"`
	Errors     []CategoryError                   `json:"errors,omitempty"`
}

// Window is the inclusive time boundary used by a window query.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// WindowReport groups due-soon records by owner id.
type WindowReport struct {
	Window Window                    `json:"window"`
	Users  map[string][]model.Record `json:"users"`
	Errors []CategoryError           `json:"errors,omitempty"`
}

// Aggregator runs expiry operations over a fixed set of sources.
type Aggregator struct {
	sources []Source
	timeout time.Duration // per-category limit; zero disables it
}

// New creates an aggregator over the given sources. timeout bounds each
// category's store round-trip; a timed-out category counts as failed.
func New(sources []Source, timeout time.Duration) *Aggregator {
	return &Aggregator{sources: sources, timeout: timeout}
}

type sourceResult struct {
	category model.Category
	records  []model.Record
	deleted  int64
	err      error
}

// forEachSource runs op concurrently against every source and collects
// the results in source order. A failure in one source never aborts the
// others; the pass always completes.
func (a *Aggregator) forEachSource(
	ctx context.Context,
	op func(ctx context.Context, s Source) ([]model.Record, int64, error),
) []sourceResult {
	results := make([]sourceResult, len(a.sources))

	var wg sync.WaitGroup
	wg.Add(len(a.sources))

	for i, s := range a.sources {
		go func(i int, s Source) {
			defer wg.Done()

			opCtx := ctx
			if a.timeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, a.timeout)
				defer cancel()
			}

			records, deleted, err := op(opCtx, s)
			results[i] = sourceResult{
				category: s.Category(),
				records:  records,
				deleted:  deleted,
				err:      err,
			}
		}(i, s)
	}

	wg.Wait()

	return results
}

// SweepExpired deletes every record with expires_at <= now in every
// category. Deletes are best-effort and per-category: a failed category
// is reported in the result and retried naturally on the next sweep.
// It returns ErrAllCategoriesFailed only when no category succeeded.
func (a *Aggregator) SweepExpired(ctx context.Context, now time.Time) (SweepReport, error) {
	results := a.forEachSource(ctx, func(ctx context.Context, s Source) ([]model.Record, int64, error) {
		n, err := s.DeleteDueBefore(ctx, now)
		return nil, n, err
	})

	report := SweepReport{SweptAt: now, Results: make([]SweepResult, 0, len(results))}
	failed := 0

	for _, r := range results {
		res := SweepResult{Category: r.category, Deleted: r.deleted}

		if r.err != nil {
			failed++
			res.Error = r.err.Error()
			metrics.CategoryErrorsTotal.WithLabelValues(string(r.category), "sweep").Inc()
			zlog.Logger.Error().Err(r.err).Str("category", string(r.category)).Msg("failed to sweep category")
		} else {
			metrics.SweptTotal.WithLabelValues(string(r.category)).Add(float64(r.deleted))
		}

		report.Results = append(report.Results, res)
	}

	if len(results) > 0 && failed == len(results) {
		return report, ErrAllCategoriesFailed
	}

	return report, nil
}

// DueNow lists records with expires_at <= now, keyed by category. Failed
// categories contribute an empty list and an entry in Errors.
func (a *Aggregator) DueNow(ctx context.Context, now time.Time) (DueReport, error) {
	results := a.forEachSource(ctx, func(ctx context.Context, s Source) ([]model.Record, int64, error) {
		records, err := s.DueBefore(ctx, now)
		return records, 0, err
	})

	report := DueReport{
		CheckedAt:  now,
		Categories: make(map[model.Category][]model.Record, len(results)),
	}
	failed := 0

	for _, r := range results {
		if r.err != nil {
			failed++
			report.Categories[r.category] = []model.Record{}
			report.Errors = append(report.Errors, CategoryError{Category: r.category, Message: r.err.Error()})
			metrics.CategoryErrorsTotal.WithLabelValues(string(r.category), "due_now").Inc()
			zlog.Logger.Error().Err(r.err).Str("category", string(r.category)).Msg("failed to fetch due records")
			continue
		}

		report.Categories[r.category] = tag(r.category, r.records)
		metrics.DueFetchedTotal.WithLabelValues(string(r.category)).Add(float64(len(r.records)))
	}

	if len(results) > 0 && failed == len(results) {
		return report, ErrAllCategoriesFailed
	}

	return report, nil
}

// DueWithinWindow lists records with now <= expires_at <= now+window,
// boundary-inclusive on both ends, tagged with their category and
// grouped by owner id. Failed categories are skipped and reported in
// Errors; the union of all groups equals the full filtered set.
func (a *Aggregator) DueWithinWindow(ctx context.Context, now time.Time, window time.Duration) (WindowReport, error) {
	end := now.Add(window)

	results := a.forEachSource(ctx, func(ctx context.Context, s Source) ([]model.Record, int64, error) {
		records, err := s.DueBetween(ctx, now, end)
		return records, 0, err
	})

	report := WindowReport{
		Window: Window{From: now, To: end},
		Users:  make(map[string][]model.Record),
	}
	failed := 0

	for _, r := range results {
		if r.err != nil {
			failed++
			report.Errors = append(report.Errors, CategoryError{Category: r.category, Message: r.err.Error()})
			metrics.CategoryErrorsTotal.WithLabelValues(string(r.category), "due_window").Inc()
			zlog.Logger.Error().Err(r.err).Str("category", string(r.category)).Msg("failed to fetch window records")
			continue
		}

		for _, rec := range tag(r.category, r.records) {
			owner := rec.OwnerID.String()
			report.Users[owner] = append(report.Users[owner], rec)
		}

		metrics.DueFetchedTotal.WithLabelValues(string(r.category)).Add(float64(len(r.records)))
	}

	if len(results) > 0 && failed == len(results) {
		return report, ErrAllCategoriesFailed
	}

	return report, nil
}

// tag annotates records with their source category.
func tag(category model.Category, records []model.Record) []model.Record {
	tagged := make([]model.Record, len(records))
	for i, r := range records {
		r.Category = category
		tagged[i] = r
	}
	return tagged
}
