package mysql

import (
	"strings"

	"cruise_catalog/internal/domain"
)

const dateLayout = "2006-01-02"

// Predicate is one SQL fragment with its positional args.
type Predicate struct {
	SQL  string
	Args []any
}

// Compiled is the output of Compile: AND-composed WHERE predicates, extra join
// conditions, and the price column price bounds were resolved against.
type Compiled struct {
	Joins       []Predicate
	Where       []Predicate
	PriceColumn string
}

var priceColumns = map[domain.CabinCategory]string{
	domain.CabinInside:    "s.cheapest_inside_cents",
	domain.CabinOceanview: "s.cheapest_oceanview_cents",
	domain.CabinBalcony:   "s.cheapest_balcony_cents",
	domain.CabinSuite:     "s.cheapest_suite_cents",
}

// PriceColumn maps a cabin category to its cheapest-price column; unknown means inside.
func PriceColumn(c domain.CabinCategory) string {
	return priceColumns[domain.ParseCabinCategory(string(c))]
}

// Compile turns a filter into predicates over the search base tables
// (s = sailings, sh = ships, cl = cruise_lines).
func Compile(f domain.SailingFilter) Compiled {
	c := Compiled{PriceColumn: PriceColumn(f.CabinCategory)}
	c.where("s.is_active = TRUE")

	if q := strings.TrimSpace(f.Q); q != "" {
		pat := likePattern(q)
		c.where(qMatchSQL, pat, pat, pat, pat, pat, pat, pat)
	}

	if f.CruiseLineID != "" {
		c.where("s.line_id = ?", f.CruiseLineID)
	}
	if f.ShipID != "" {
		c.where("s.ship_id = ?", f.ShipID)
	}
	if f.EmbarkPortID != "" {
		c.where("s.embark_port_id = ?", f.EmbarkPortID)
	}
	if f.DisembarkPortID != "" {
		c.where("s.disembark_port_id = ?", f.DisembarkPortID)
	}

	if ids := nonEmpty(f.PortOfCallIDs); len(ids) > 0 {
		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id
		}
		c.where("EXISTS (SELECT 1 FROM sailing_stops pst WHERE pst.sailing_id = s.id AND pst.port_id IN ("+placeholders(len(ids))+"))", args...)
	}

	switch {
	case f.SailDateFrom != nil && f.SailDateTo != nil:
		c.where("s.sail_date BETWEEN ? AND ?", f.SailDateFrom.Format(dateLayout), f.SailDateTo.Format(dateLayout))
	case f.SailDateFrom != nil:
		c.where("s.sail_date >= ?", f.SailDateFrom.Format(dateLayout))
	case f.SailDateTo != nil:
		c.where("s.sail_date <= ?", f.SailDateTo.Format(dateLayout))
	}

	if f.NightsMin != nil {
		c.where("s.nights >= ?", *f.NightsMin)
	}
	if f.NightsMax != nil {
		c.where("s.nights <= ?", *f.NightsMax)
	}

	if f.PriceMinCents != nil {
		c.where(c.PriceColumn+" >= ?", *f.PriceMinCents)
	}
	if f.PriceMaxCents != nil {
		c.where(c.PriceColumn+" <= ?", *f.PriceMaxCents)
	}

	// Region is many-to-many, so it narrows through the join rather than WHERE.
	if f.RegionID != "" {
		c.Joins = append(c.Joins, Predicate{
			SQL:  "JOIN sailing_regions fsr ON fsr.sailing_id = s.id AND fsr.region_id = ?",
			Args: []any{f.RegionID},
		})
	}
	return c
}

func (c *Compiled) where(sql string, args ...any) {
	c.Where = append(c.Where, Predicate{SQL: sql, Args: args})
}

// From renders the FROM clause body: base tables plus filter joins.
func (c Compiled) From() string {
	var b strings.Builder
	b.WriteString(searchBaseFrom)
	for _, j := range c.Joins {
		b.WriteString("\n")
		b.WriteString(j.SQL)
	}
	return b.String()
}

func (c Compiled) WhereSQL() string {
	parts := make([]string, len(c.Where))
	for i, p := range c.Where {
		parts[i] = p.SQL
	}
	return strings.Join(parts, "\n  AND ")
}

// Args returns join args followed by where args, matching their order in the SQL.
func (c Compiled) Args() []any {
	var out []any
	for _, j := range c.Joins {
		out = append(out, j.Args...)
	}
	for _, p := range c.Where {
		out = append(out, p.Args...)
	}
	return out
}

var sortColumns = map[domain.SortField]string{
	domain.SortSailDate: "s.sail_date",
	domain.SortPrice:    "s.cheapest_inside_cents",
	domain.SortNights:   "s.nights",
	domain.SortShipName: "sh.name",
	domain.SortLineName: "cl.name",
}

// OrderBy renders the ORDER BY body, defaulting to sail date ascending.
// Unpriced sailings sort after priced ones in either direction. s.id breaks
// ties so pages are stable.
func OrderBy(field domain.SortField, dir domain.SortDir) string {
	col, ok := sortColumns[field]
	if !ok {
		col = sortColumns[domain.SortSailDate]
	}
	d := "ASC"
	if dir == domain.SortDesc {
		d = "DESC"
	}
	order := col + " " + d + ", s.id ASC"
	if field == domain.SortPrice {
		order = col + " IS NULL, " + order
	}
	return order
}

// likePattern lowercases q and escapes LIKE metacharacters (default escape is '\').
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nonEmpty(in []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
