package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cruise_catalog/internal/domain"
)

func (r *Repo) GetSailing(ctx context.Context, id string) (domain.SailingRecord, error) {
	var (
		rec                          domain.SailingRecord
		embarkID, embarkName         sql.NullString
		disembarkID, disembarkName   sql.NullString
		inside, ocean, balcony, suit sql.NullInt64
		lastSynced                   sql.NullTime
		market                       sql.NullString
		shipID, shipName, shipClass  sql.NullString
		shipImage                    sql.NullString
		lineID, lineName             sql.NullString
	)

	start := time.Now()
	err := r.db.QueryRowContext(ctx, getSailingSQL, id).Scan(
		&rec.ID,
		&rec.Provider,
		&rec.ProviderIdentifier,
		&rec.Name,
		&rec.SailDate,
		&rec.EndDate,
		&rec.Nights,
		&embarkID, &embarkName,
		&disembarkID, &disembarkName,
		&inside, &ocean, &balcony, &suit,
		&lastSynced,
		&rec.IsActive,
		&market,
		&rec.NoFly,
		&rec.DepartUK,
		&shipID, &shipName, &shipClass, &shipImage, &rec.ShipMeta,
		&lineID, &lineName, &rec.LineMeta,
	)
	r.observe("get_sailing", start, err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SailingRecord{}, domain.NewNotFound("sailing", id)
		}
		return domain.SailingRecord{}, fmt.Errorf("get sailing %s: %w", id, err)
	}

	rec.EmbarkPortID, rec.EmbarkPortName = strPtr(embarkID), strPtr(embarkName)
	rec.DisembarkPortID, rec.DisembarkPortName = strPtr(disembarkID), strPtr(disembarkName)
	rec.Prices = domain.Cheapest{
		InsideCents:    int64Ptr(inside),
		OceanviewCents: int64Ptr(ocean),
		BalconyCents:   int64Ptr(balcony),
		SuiteCents:     int64Ptr(suit),
	}
	rec.LastSyncedAt = timePtr(lastSynced)
	rec.Market = strPtr(market)
	rec.ShipID, rec.ShipName, rec.ShipClass, rec.ShipImageURL = strPtr(shipID), strPtr(shipName), strPtr(shipClass), strPtr(shipImage)
	rec.LineID, rec.LineName = strPtr(lineID), strPtr(lineName)
	return rec, nil
}

func (r *Repo) GetPort(ctx context.Context, id string) (domain.PortRecord, error) {
	var p domain.PortRecord
	start := time.Now()
	err := r.db.QueryRowContext(ctx, getPortSQL, id).Scan(&p.ID, &p.Name, &p.Meta)
	r.observe("get_port", start, err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PortRecord{}, domain.NewNotFound("port", id)
		}
		return domain.PortRecord{}, fmt.Errorf("get port %s: %w", id, err)
	}
	return p, nil
}

func (r *Repo) ListSailingRegions(ctx context.Context, sailingID string) ([]domain.RegionView, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listSailingRegionsSQL, sailingID)
	r.observe("list_sailing_regions", start, err)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	out := []domain.RegionView{}
	for rows.Next() {
		var rv domain.RegionView
		if err := rows.Scan(&rv.ID, &rv.Name, &rv.IsPrimary); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ListStops(ctx context.Context, sailingID string) ([]domain.StopRecord, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listStopsSQL, sailingID)
	r.observe("list_stops", start, err)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	defer rows.Close()

	out := []domain.StopRecord{}
	for rows.Next() {
		var (
			st                 domain.StopRecord
			day                sql.NullInt64
			portID, portName   sql.NullString
			arrival, departure sql.NullString
		)
		if err := rows.Scan(
			&st.SequenceOrder,
			&day,
			&portID,
			&portName,
			&st.PortMeta,
			&st.IsSeaDay,
			&arrival,
			&departure,
		); err != nil {
			return nil, err
		}
		st.DayNumber = intPtr(day)
		st.PortID, st.PortName = strPtr(portID), strPtr(portName)
		st.ArrivalTime, st.DepartureTime = strPtr(arrival), strPtr(departure)
		out = append(out, st)
	}
	return out, rows.Err()
}

// ListCabinPrices computes TotalPriceCents on read; it is not stored.
func (r *Repo) ListCabinPrices(ctx context.Context, sailingID string) ([]domain.CabinPrice, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listCabinPricesSQL, sailingID)
	r.observe("list_cabin_prices", start, err)
	if err != nil {
		return nil, fmt.Errorf("list cabin prices: %w", err)
	}
	defer rows.Close()

	out := []domain.CabinPrice{}
	for rows.Next() {
		var (
			cp  domain.CabinPrice
			cat string
		)
		if err := rows.Scan(&cp.CabinCode, &cat, &cp.Occupancy, &cp.BasePriceCents, &cp.TaxesCents, &cp.IsPerPerson); err != nil {
			return nil, err
		}
		cp.CabinCategory = domain.CabinCategory(cat)
		cp.TotalPriceCents = cp.BasePriceCents + cp.TaxesCents
		out = append(out, cp)
	}
	return out, rows.Err()
}
