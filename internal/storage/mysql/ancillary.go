package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cruise_catalog/internal/domain"
)

func (r *Repo) ShipExists(ctx context.Context, shipID string) (bool, error) {
	return r.exists(ctx, "ship_exists", shipExistsSQL, shipID)
}

func (r *Repo) SailingExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "sailing_exists", sailingExistsSQL, id)
}

func (r *Repo) CabinTypeExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "cabin_type_exists", cabinTypeExistsSQL, id)
}

// ListShipImages returns hero images first, then by image type.
func (r *Repo) ListShipImages(ctx context.Context, shipID string, pg domain.PageRequest) ([]domain.ShipImage, int64, error) {
	start := time.Now()
	var total int64
	err := r.db.QueryRowContext(ctx, countShipImagesSQL, shipID).Scan(&total)
	r.observe("count_ship_images", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("count ship images: %w", err)
	}
	if total == 0 {
		return []domain.ShipImage{}, 0, nil
	}

	start = time.Now()
	rows, err := r.db.QueryContext(ctx, listShipImagesSQL, shipID, pg.PageSize, pg.Offset())
	r.observe("list_ship_images", start, err)
	if err != nil {
		return nil, 0, fmt.Errorf("list ship images: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ShipImage, 0, pg.PageSize)
	for rows.Next() {
		var (
			im                  domain.ShipImage
			hd, k2, capt, itype sql.NullString
		)
		if err := rows.Scan(&im.ID, &im.URL, &hd, &k2, &capt, &itype, &im.IsHero); err != nil {
			return nil, 0, err
		}
		im.URLHD, im.URL2K, im.Caption, im.ImageType = strPtr(hd), strPtr(k2), strPtr(capt), strPtr(itype)
		out = append(out, im)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) ListShipDecks(ctx context.Context, shipID string) ([]domain.DeckRecord, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listShipDecksSQL, shipID)
	r.observe("list_ship_decks", start, err)
	if err != nil {
		return nil, fmt.Errorf("list ship decks: %w", err)
	}
	defer rows.Close()

	out := []domain.DeckRecord{}
	for rows.Next() {
		var (
			d     domain.DeckRecord
			num   sql.NullInt64
			image sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Name, &num, &image, &d.DisplayOrder, &d.Meta); err != nil {
			return nil, err
		}
		d.DeckNumber, d.ImageURL = intPtr(num), strPtr(image)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListAlternates keeps alternates whose sailing is not imported yet, with Sailing nil.
func (r *Repo) ListAlternates(ctx context.Context, sailingID string) ([]domain.AlternateSailing, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listAlternatesSQL, sailingID)
	r.observe("list_alternates", start, err)
	if err != nil {
		return nil, fmt.Errorf("list alternates: %w", err)
	}
	defer rows.Close()

	out := []domain.AlternateSailing{}
	for rows.Next() {
		var (
			a        domain.AlternateSailing
			provID   sql.NullString
			sailDate sql.NullTime
			sr       summaryRow
		)
		dest := append([]any{&a.ID, &provID, &sailDate}, sr.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		a.ProviderIdentifier = strPtr(provID)
		a.SailDate = timePtr(sailDate)
		a.Sailing = sr.summary()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) ListCabinImages(ctx context.Context, cabinTypeID string) ([]domain.CabinImage, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listCabinImagesSQL, cabinTypeID)
	r.observe("list_cabin_images", start, err)
	if err != nil {
		return nil, fmt.Errorf("list cabin images: %w", err)
	}
	defer rows.Close()

	out := []domain.CabinImage{}
	for rows.Next() {
		var (
			im       domain.CabinImage
			hd, capt sql.NullString
		)
		if err := rows.Scan(&im.ID, &im.URL, &hd, &capt, &im.DisplayOrder); err != nil {
			return nil, err
		}
		im.URLHD, im.Caption = strPtr(hd), strPtr(capt)
		out = append(out, im)
	}
	return out, rows.Err()
}

func (r *Repo) ListLineIDs(ctx context.Context) ([]string, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listLineIDsSQL)
	r.observe("list_line_ids", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *Repo) ListUpcomingSailingIDs(ctx context.Context, from time.Time, limit int) ([]string, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, listUpcomingSailingIDsSQL, from.Format(dateLayout), limit)
	r.observe("list_upcoming_sailing_ids", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
