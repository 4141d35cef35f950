package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cruise_catalog/internal/domain"
)

// SearchSailings runs the count and page queries over one compiled predicate set.
func (r *Repo) SearchSailings(ctx context.Context, q domain.SailingSearch, pg domain.PageRequest) ([]domain.SailingSummary, int64, error) {
	c := Compile(q.Filter)
	args := c.Args()

	countSQL := "SELECT COUNT(DISTINCT s.id)\nFROM " + c.From() + "\nWHERE " + c.WhereSQL()

	start := time.Now()
	var total int64
	err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total)
	r.observe("search_count", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("count sailings: %w", err)
	}
	if total == 0 || int64(pg.Offset()) >= total {
		return []domain.SailingSummary{}, total, nil
	}

	rowsSQL := "SELECT" + summaryColumns +
		"\nFROM " + c.From() + summaryPortJoins +
		"\nWHERE " + c.WhereSQL() +
		"\nORDER BY " + OrderBy(q.SortBy, q.SortDir) +
		"\nLIMIT ? OFFSET ?"
	rowArgs := append(append([]any{}, args...), pg.PageSize, pg.Offset())

	start = time.Now()
	rows, err := r.db.QueryContext(ctx, rowsSQL, rowArgs...)
	r.observe("search_rows", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("search sailings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SailingSummary, 0, pg.PageSize)
	for rows.Next() {
		var sr summaryRow
		if err := rows.Scan(sr.dest()...); err != nil {
			return nil, 0, err
		}
		if s := sr.summary(); s != nil {
			out = append(out, *s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// LatestSync is the most recent price sync across the active catalog.
func (r *Repo) LatestSync(ctx context.Context) (*time.Time, error) {
	start := time.Now()
	var t sql.NullTime
	err := r.db.QueryRowContext(ctx, latestSyncSQL).Scan(&t)
	r.observe("latest_sync", start, err)
	if err != nil {
		return nil, err
	}
	return timePtr(t), nil
}
