package httpserver

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"cruise_catalog/internal/domain"
)

const dateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// sailingQuery is the raw query string before conversion. Field names in
// validation errors are the query parameter names.
type sailingQuery struct {
	Q               string   `param:"q" validate:"max=200"`
	CruiseLineID    string   `param:"cruiseLineId" validate:"max=64"`
	ShipID          string   `param:"shipId" validate:"max=64"`
	EmbarkPortID    string   `param:"embarkPortId" validate:"max=64"`
	DisembarkPortID string   `param:"disembarkPortId" validate:"max=64"`
	PortOfCallIDs   []string `param:"portOfCallIds" validate:"max=50,dive,max=64"`
	SailDateFrom    string   `param:"sailDateFrom" validate:"omitempty,datetime=2006-01-02"`
	SailDateTo      string   `param:"sailDateTo" validate:"omitempty,datetime=2006-01-02"`
	NightsMin       string   `param:"nightsMin" validate:"omitempty,number"`
	NightsMax       string   `param:"nightsMax" validate:"omitempty,number"`
	PriceMinCents   string   `param:"priceMinCents" validate:"omitempty,number"`
	PriceMaxCents   string   `param:"priceMaxCents" validate:"omitempty,number"`
	CabinCategory   string   `param:"cabinCategory"`
	RegionID        string   `param:"regionId" validate:"max=64"`
	SortBy          string   `param:"sortBy" validate:"omitempty,oneof=sailDate price nights shipName lineName"`
	SortDir         string   `param:"sortDir" validate:"omitempty,oneof=asc desc"`
	Page            string   `param:"page" validate:"omitempty,number"`
	PageSize        string   `param:"pageSize" validate:"omitempty,number"`
}

type pageQuery struct {
	Page     string `param:"page" validate:"omitempty,number"`
	PageSize string `param:"pageSize" validate:"omitempty,number"`
}

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("param")
	})
}

// FieldError is one rejected query parameter.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type ValidationError struct{ Fields []FieldError }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" ("+f.Rule+")")
	}
	return "invalid query parameters: " + strings.Join(parts, ", ")
}

func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range ves {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// portOfCallIDs accepts repeated keys, the bracketed form and comma-separated values.
func portOfCallIDs(v url.Values) []string {
	var out []string
	for _, key := range []string{"portOfCallIds", "portOfCallIds[]"} {
		for _, raw := range v[key] {
			for _, id := range strings.Split(raw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					out = append(out, id)
				}
			}
		}
	}
	return out
}

func readSailingQuery(v url.Values) sailingQuery {
	g := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return sailingQuery{
		Q:               g("q"),
		CruiseLineID:    g("cruiseLineId"),
		ShipID:          g("shipId"),
		EmbarkPortID:    g("embarkPortId"),
		DisembarkPortID: g("disembarkPortId"),
		PortOfCallIDs:   portOfCallIDs(v),
		SailDateFrom:    g("sailDateFrom"),
		SailDateTo:      g("sailDateTo"),
		NightsMin:       g("nightsMin"),
		NightsMax:       g("nightsMax"),
		PriceMinCents:   g("priceMinCents"),
		PriceMaxCents:   g("priceMaxCents"),
		CabinCategory:   g("cabinCategory"),
		RegionID:        g("regionId"),
		SortBy:          g("sortBy"),
		SortDir:         g("sortDir"),
		Page:            g("page"),
		PageSize:        g("pageSize"),
	}
}

// parseSailingSearch validates and converts the search/filter query string.
func parseSailingSearch(v url.Values) (domain.SailingSearch, error) {
	raw := readSailingQuery(v)
	if err := checkStruct(raw); err != nil {
		return domain.SailingSearch{}, err
	}

	c := converter{}
	f := domain.SailingFilter{
		Q:               raw.Q,
		CruiseLineID:    raw.CruiseLineID,
		ShipID:          raw.ShipID,
		EmbarkPortID:    raw.EmbarkPortID,
		DisembarkPortID: raw.DisembarkPortID,
		PortOfCallIDs:   raw.PortOfCallIDs,
		SailDateFrom:    c.date("sailDateFrom", raw.SailDateFrom),
		SailDateTo:      c.date("sailDateTo", raw.SailDateTo),
		NightsMin:       c.atoiPtr("nightsMin", raw.NightsMin),
		NightsMax:       c.atoiPtr("nightsMax", raw.NightsMax),
		PriceMinCents:   c.int64Ptr("priceMinCents", raw.PriceMinCents),
		PriceMaxCents:   c.int64Ptr("priceMaxCents", raw.PriceMaxCents),
		CabinCategory:   domain.ParseCabinCategory(raw.CabinCategory),
		RegionID:        raw.RegionID,
	}
	q := domain.SailingSearch{
		Filter:   f,
		SortBy:   domain.SortField(raw.SortBy),
		SortDir:  domain.SortDir(raw.SortDir),
		Page:     c.atoi("page", raw.Page),
		PageSize: c.atoi("pageSize", raw.PageSize),
	}
	if q.SortBy == "" {
		q.SortBy = domain.SortSailDate
	}
	if q.SortDir == "" {
		q.SortDir = domain.SortAsc
	}
	if err := c.err(); err != nil {
		return domain.SailingSearch{}, err
	}
	return q, nil
}

func parsePage(v url.Values) (page, size int, err error) {
	raw := pageQuery{Page: strings.TrimSpace(v.Get("page")), PageSize: strings.TrimSpace(v.Get("pageSize"))}
	if err := checkStruct(raw); err != nil {
		return 0, 0, err
	}
	c := converter{}
	page, size = c.atoi("page", raw.Page), c.atoi("pageSize", raw.PageSize)
	return page, size, c.err()
}

// converter collects conversion failures the validator cannot see (overflow,
// impossible calendar dates that still match the layout).
type converter struct{ fields []FieldError }

func (c *converter) fail(field, rule string) {
	c.fields = append(c.fields, FieldError{Field: field, Rule: rule})
}

func (c *converter) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

func (c *converter) atoi(field, s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		c.fail(field, "number")
	}
	return n
}

func (c *converter) atoiPtr(field, s string) *int {
	if s == "" {
		return nil
	}
	n := c.atoi(field, s)
	return &n
}

func (c *converter) int64Ptr(field, s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		c.fail(field, "number")
		return nil
	}
	return &n
}

func (c *converter) date(field, s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		c.fail(field, fmt.Sprintf("datetime=%s", dateLayout))
		return nil
	}
	return &t
}
