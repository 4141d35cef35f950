package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"cruise_catalog/internal/domain"
)

// facetScope is the narrowing shared by every facet list: active sailings, plus
// the selected cruise line. Ship, region, port and date/night selections do not
// narrow facets. That asymmetry is long-standing behaviour and is kept until
// product decides on full mutual narrowing.
func facetScope(lineID string) (string, []any) {
	if lineID == "" {
		return "s.is_active = TRUE", nil
	}
	return "s.is_active = TRUE AND s.line_id = ?", []any{lineID}
}

func (r *Repo) facetOptions(ctx context.Context, name, tmpl, lineID string) ([]domain.FacetOption, error) {
	where, args := facetScope(lineID)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(tmpl, where), args...)
	r.observe(name, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer rows.Close()

	out := []domain.FacetOption{}
	for rows.Next() {
		var o domain.FacetOption
		if err := rows.Scan(&o.ID, &o.Name, &o.Count); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) FacetLines(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return r.facetOptions(ctx, "facet_lines", facetLinesSQL, lineID)
}

func (r *Repo) FacetShips(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return r.facetOptions(ctx, "facet_ships", facetShipsSQL, lineID)
}

func (r *Repo) FacetRegions(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return r.facetOptions(ctx, "facet_regions", facetRegionsSQL, lineID)
}

func (r *Repo) FacetEmbarkPorts(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return r.facetOptions(ctx, "facet_embark_ports", facetEmbarkSQL, lineID)
}

func (r *Repo) FacetDisembarkPorts(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return r.facetOptions(ctx, "facet_disembark_ports", facetDisembarkSQL, lineID)
}

// FacetPortsOfCall collapses port rows that share a trimmed name. Port names are
// not unique in the catalog; this grouping is best effort and nothing else may
// rely on name uniqueness.
func (r *Repo) FacetPortsOfCall(ctx context.Context, lineID string) ([]domain.PortFacetOption, error) {
	where, args := facetScope(lineID)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(facetPortsOfCallSQL, where), args...)
	r.observe("facet_ports_of_call", start, err)
	if err != nil {
		return nil, fmt.Errorf("facet_ports_of_call: %w", err)
	}
	defer rows.Close()

	var stops []portOfCallRow
	for rows.Next() {
		var row portOfCallRow
		if err := rows.Scan(&row.Name, &row.PortID, &row.SailingID); err != nil {
			return nil, err
		}
		stops = append(stops, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupPortsOfCall(stops), nil
}

type portOfCallRow struct {
	Name      string
	PortID    string
	SailingID string
}

// groupPortsOfCall merges rows whose trimmed names are byte-equal. Each entry
// counts distinct sailings; AllIDs is sorted and its first id is the
// representative. Output is ordered by name.
func groupPortsOfCall(rows []portOfCallRow) []domain.PortFacetOption {
	type group struct {
		ids      map[string]struct{}
		sailings map[string]struct{}
	}
	groups := map[string]*group{}
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" || row.PortID == "" {
			continue
		}
		g, ok := groups[name]
		if !ok {
			g = &group{ids: map[string]struct{}{}, sailings: map[string]struct{}{}}
			groups[name] = g
		}
		g.ids[row.PortID] = struct{}{}
		g.sailings[row.SailingID] = struct{}{}
	}

	out := make([]domain.PortFacetOption, 0, len(groups))
	for name, g := range groups {
		ids := make([]string, 0, len(g.ids))
		for id := range g.ids {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out = append(out, domain.PortFacetOption{
			ID:     ids[0],
			Name:   name,
			Count:  int64(len(g.sailings)),
			AllIDs: ids,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Repo) CatalogRanges(ctx context.Context) (domain.Ranges, error) {
	var (
		dMin, dMax sql.NullTime
		nMin, nMax sql.NullInt64
		pMin, pMax sql.NullInt64
	)
	start := time.Now()
	err := r.db.QueryRowContext(ctx, catalogRangesSQL).Scan(&dMin, &dMax, &nMin, &nMax, &pMin, &pMax)
	r.observe("catalog_ranges", start, err)
	if err != nil {
		return domain.Ranges{}, fmt.Errorf("catalog ranges: %w", err)
	}
	return domain.Ranges{
		SailDateMin:       timePtr(dMin),
		SailDateMax:       timePtr(dMax),
		NightsMin:         intPtr(nMin),
		NightsMax:         intPtr(nMax),
		InsidePriceMinCts: int64Ptr(pMin),
		InsidePriceMaxCts: int64Ptr(pMax),
	}, nil
}
