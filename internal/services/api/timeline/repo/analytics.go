// Package repo provides the timeline data sources and saved selection storage
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brushline/internal/core/bucket"
	"brushline/internal/core/series"
	perr "brushline/internal/platform/errors"
	"brushline/internal/platform/store"
	"brushline/internal/services/api/timeline/domain"
)

// Source is one dataset on one analytics backend
type Source interface {
	MinDate(ctx context.Context) (time.Time, bool, error)
	MaxDate(ctx context.Context) (time.Time, bool, error)
	Rows(ctx context.Context, q RowsQuery) ([]series.Row, error)
}

// RowsQuery selects aggregated rows in [Start, End)
type RowsQuery struct {
	Granularity bucket.Granularity
	Kind        series.Kind
	Start       time.Time
	End         time.Time
}

// Analytics binds datasets to a backend and dialect
type Analytics struct {
	db      store.Analytics
	dialect Dialect
}

// NewAnalytics wraps db; queries are rendered with d
func NewAnalytics(db store.Analytics, d Dialect) *Analytics {
	if db == nil {
		panic("timeline.Analytics requires a non nil store.Analytics")
	}
	return &Analytics{db: db, dialect: d}
}

// Dialect returns the sql dialect in use
func (a *Analytics) Dialect() Dialect { return a.dialect }

// For binds ds; identifiers are checked before any sql is rendered
func (a *Analytics) For(ds domain.Dataset) (Source, error) {
	for _, id := range []string{ds.Table, ds.DateField, ds.ValueField, ds.GroupField} {
		if id != "" && !ValidIdent(id) {
			return nil, perr.InvalidArgf("invalid identifier %q", id)
		}
	}
	if ds.Table == "" || ds.DateField == "" {
		return nil, perr.InvalidArgf("table and date_field are required")
	}
	return &source{db: a.db, d: a.dialect, ds: ds}, nil
}

type source struct {
	db store.Analytics
	d  Dialect
	ds domain.Dataset
}

func (s *source) MinDate(ctx context.Context) (time.Time, bool, error) {
	return s.edge(ctx, "ASC")
}

func (s *source) MaxDate(ctx context.Context) (time.Time, bool, error) {
	return s.edge(ctx, "DESC")
}

// edge reads the first non-null date in order; ok is false for an empty table
func (s *source) edge(ctx context.Context, order string) (time.Time, bool, error) {
	col := s.d.ident(s.ds.DateField)
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s %s LIMIT 1",
		s.d.ts(col), s.d.ident(s.ds.Table), col, col, order,
	)
	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return time.Time{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return time.Time{}, false, rows.Err()
	}
	var t time.Time
	if err := rows.Scan(&t); err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), true, rows.Err()
}

// Rows returns one row per bucket (and group, when grouped) within q's window
func (s *source) Rows(ctx context.Context, q RowsQuery) ([]series.Row, error) {
	if !q.Granularity.Valid() {
		return nil, perr.InvalidArgf("unknown granularity %d", q.Granularity)
	}
	sql, args := s.rowsSQL(q)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := s.ds.GroupField != ""
	var out []series.Row
	for rows.Next() {
		var r series.Row
		var err error
		if grouped {
			err = rows.Scan(&r.Date, &r.GroupKey, &r.Value)
		} else {
			err = rows.Scan(&r.Date, &r.Value)
		}
		if err != nil {
			return nil, err
		}
		r.Date = r.Date.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *source) rowsSQL(q RowsQuery) (string, []any) {
	col := s.d.ident(s.ds.DateField)
	cols := []string{s.d.trunc(q.Granularity, col) + " AS bucket"}
	groupBy := "bucket"
	if s.ds.GroupField != "" {
		cols = append(cols, s.d.str(s.d.ident(s.ds.GroupField))+" AS grp")
		groupBy += ", grp"
	}
	cols = append(cols, s.d.agg(q.Kind, s.ds.ValueField)+" AS value")

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), s.d.ident(s.ds.Table))
	fmt.Fprintf(&b, " WHERE %s >= ? AND %s < ?", s.d.ts(col), s.d.ts(col))
	fmt.Fprintf(&b, " GROUP BY %s ORDER BY %s", groupBy, groupBy)
	return b.String(), []any{q.Start.UTC(), q.End.UTC()}
}
