package mysql

import (
	"context"
	"database/sql"
	"time"

	"cruise_catalog/internal/adapters/observability"
	"cruise_catalog/internal/domain"
)

// Repo is the read-only MySQL catalog store. It never writes.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var _ domain.CruiseRepository = (*Repo)(nil)

func (r *Repo) observe(query string, start time.Time, err error) {
	observability.ObserveDB(query, err, time.Since(start))
}

func (r *Repo) exists(ctx context.Context, name, q, id string) (bool, error) {
	start := time.Now()
	var ok bool
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ok)
	r.observe(name, start, err)
	return ok, err
}

// ---- null helpers ----

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// summaryRow scans summaryColumns. Every sailing column is nullable because the
// alternates query reaches sailings through a LEFT JOIN.
type summaryRow struct {
	id, provider, providerID, name sql.NullString
	sailDate, endDate              sql.NullTime
	nights                         sql.NullInt64
	shipID                         sql.NullString
	shipName                       string
	shipImage                      sql.NullString
	lineID                         sql.NullString
	lineName                       string
	embarkID                       sql.NullString
	embarkName                     string
	disembarkID                    sql.NullString
	disembarkName                  string
	inside, ocean, balcony, suite  sql.NullInt64
	lastSynced                     sql.NullTime
}

func (s *summaryRow) dest() []any {
	return []any{
		&s.id, &s.provider, &s.providerID, &s.name,
		&s.sailDate, &s.endDate, &s.nights,
		&s.shipID, &s.shipName, &s.shipImage,
		&s.lineID, &s.lineName,
		&s.embarkID, &s.embarkName,
		&s.disembarkID, &s.disembarkName,
		&s.inside, &s.ocean, &s.balcony, &s.suite,
		&s.lastSynced,
	}
}

// summary returns nil when the row carried no sailing.
func (s *summaryRow) summary() *domain.SailingSummary {
	if !s.id.Valid {
		return nil
	}
	return &domain.SailingSummary{
		ID:                 s.id.String,
		Provider:           s.provider.String,
		ProviderIdentifier: s.providerID.String,
		Name:               s.name.String,
		SailDate:           s.sailDate.Time,
		EndDate:            s.endDate.Time,
		Nights:             int(s.nights.Int64),
		ShipID:             strPtr(s.shipID),
		ShipName:           s.shipName,
		ShipImageURL:       strPtr(s.shipImage),
		LineID:             strPtr(s.lineID),
		LineName:           s.lineName,
		EmbarkPortID:       strPtr(s.embarkID),
		EmbarkPortName:     s.embarkName,
		DisembarkPortID:    strPtr(s.disembarkID),
		DisembarkPortName:  s.disembarkName,
		Prices: domain.Cheapest{
			InsideCents:    int64Ptr(s.inside),
			OceanviewCents: int64Ptr(s.ocean),
			BalconyCents:   int64Ptr(s.balcony),
			SuiteCents:     int64Ptr(s.suite),
		},
		LastSyncedAt: timePtr(s.lastSynced),
	}
}
