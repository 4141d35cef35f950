package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"cruise_catalog/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Metadata blobs come from several import generations; each field lists the
// keys it has been stored under, most recent first.
var shipAliases = map[string][]string{
	"year_built": {"year_built", "yearbuilt", "yearBuilt", "launched"},
	"tonnage":    {"tonnage", "gross_tonnage", "grosstonnage"},
	"capacity":   {"capacity", "passenger_capacity", "passengers", "occupancy"},
	"amenities":  {"amenities", "facilities"},
	"images":     {"images", "ship_images"},
}

var lineAliases = map[string][]string{
	"logo":    {"logo", "logo_url", "logoUrl", "logourl"},
	"website": {"website", "website_url", "websiteUrl", "url"},
}

var portAliases = map[string][]string{
	"country": {"country", "country_name", "countryName", "country_code"},
	"lat":     {"latitude", "lat", "location.lat"},
	"lon":     {"longitude", "lon", "lng", "location.lon", "location.lng"},
}

var cabinLocationAliases = map[string][]string{
	"cabin_id": {"cabin_id", "cabinid", "cabinId", "cabin"},
}

var imageCaptionAliases = map[string][]string{
	"caption": {"caption", "description", "title"},
}

/********** tiny helpers **********/

// decodeMeta parses a JSON object blob; anything else yields nil.
func decodeMeta(b []byte, context string) map[string]any {
	if len(b) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		log.Warn().Err(err).Str("context", context).Msg("unreadable metadata blob")
		return nil
	}
	return m
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string (or number rendered as string) at path, or "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string, "1,200" allowed).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {name/title}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if s := strings.TrimSpace(t); s != "" {
						out = append(out, s)
					}
				case map[string]any:
					if n := lookupStr(t, "name"); n != "" {
						out = append(out, n)
						continue
					}
					if n := lookupStr(t, "title"); n != "" {
						out = append(out, n)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func firstSlice(m map[string]any, paths ...string) []any {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			return raw
		}
	}
	return nil
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

/********** ship images: two stored shapes, one canonical record **********/

type imageShape int

const (
	shapeUnknown imageShape = iota
	// shapeNormalized: url, url_hd, url_2k, caption, is_default (bool)
	shapeNormalized
	// shapeRaw: imageurl, imageurlhd, imageurl2k, caption, default ("Y"/"N").
	// Older imports were never backfilled to the normalized shape.
	shapeRaw
)

func detectImageShape(m map[string]any) imageShape {
	if lookupStr(m, "url") != "" {
		return shapeNormalized
	}
	if lookupStr(m, "imageurl") != "" {
		return shapeRaw
	}
	return shapeUnknown
}

// normalizeShipImage is the only place the two shapes are told apart.
func normalizeShipImage(m map[string]any) (domain.ShipPhoto, bool) {
	var p domain.ShipPhoto
	switch detectImageShape(m) {
	case shapeNormalized:
		p.URL = lookupStr(m, "url")
		p.URLHD = ptrStr(lookupStr(m, "url_hd"))
		p.URL2K = ptrStr(lookupStr(m, "url_2k"))
		p.IsDefault = truthy(lookupAny(m, "is_default"))
	case shapeRaw:
		p.URL = lookupStr(m, "imageurl")
		p.URLHD = ptrStr(lookupStr(m, "imageurlhd"))
		p.URL2K = ptrStr(lookupStr(m, "imageurl2k"))
		p.IsDefault = strings.EqualFold(lookupStr(m, "default"), "Y")
	default:
		return domain.ShipPhoto{}, false
	}
	p.Caption = firstNonEmptyAlias(m, imageCaptionAliases, "caption")
	return p, true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "y", "yes":
			return true
		}
	}
	return false
}

func shipPhotos(meta map[string]any) []domain.ShipPhoto {
	out := []domain.ShipPhoto{}
	for _, it := range firstSlice(meta, shipAliases["images"]...) {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if p, ok := normalizeShipImage(m); ok {
			out = append(out, p)
		}
	}
	return out
}

/********** views **********/

func shipView(rec domain.SailingRecord) *domain.ShipView {
	if rec.ShipID == nil {
		return nil
	}
	meta := decodeMeta(rec.ShipMeta, "ship:"+*rec.ShipID)
	amenities := firstSliceStrings(meta, shipAliases["amenities"]...)
	if amenities == nil {
		amenities = []string{}
	}
	return &domain.ShipView{
		ID:        *rec.ShipID,
		Name:      deref(rec.ShipName),
		Class:     rec.ShipClass,
		ImageURL:  rec.ShipImageURL,
		YearBuilt: firstInt64Flexible(meta, shipAliases["year_built"]...),
		Tonnage:   firstInt64Flexible(meta, shipAliases["tonnage"]...),
		Capacity:  firstInt64Flexible(meta, shipAliases["capacity"]...),
		Amenities: amenities,
		Images:    shipPhotos(meta),
	}
}

func lineView(rec domain.SailingRecord) *domain.LineView {
	if rec.LineID == nil {
		return nil
	}
	meta := decodeMeta(rec.LineMeta, "line:"+*rec.LineID)
	return &domain.LineView{
		ID:      *rec.LineID,
		Name:    deref(rec.LineName),
		LogoURL: firstNonEmptyAlias(meta, lineAliases, "logo"),
		Website: firstNonEmptyAlias(meta, lineAliases, "website"),
	}
}

func portView(id, name string, metaBlob []byte) *domain.PortView {
	meta := decodeMeta(metaBlob, "port:"+id)
	return &domain.PortView{
		ID:      id,
		Name:    strings.TrimSpace(name),
		Country: firstNonEmptyAlias(meta, portAliases, "country"),
		Lat:     getFloatFlexible(meta, portAliases["lat"]...),
		Lon:     getFloatFlexible(meta, portAliases["lon"]...),
	}
}

// cabinLocations reads the deck plan overlays. Entries without a cabin id or a
// full rectangle are skipped.
func cabinLocations(deckID string, metaBlob []byte) []domain.CabinLocation {
	meta := decodeMeta(metaBlob, "deck:"+deckID)
	out := []domain.CabinLocation{}
	for _, it := range firstSlice(meta, "cabin_locations", "cabinLocations") {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id := firstNonEmptyAlias(m, cabinLocationAliases, "cabin_id")
		x1, y1 := getFloatFlexible(m, "x1"), getFloatFlexible(m, "y1")
		x2, y2 := getFloatFlexible(m, "x2"), getFloatFlexible(m, "y2")
		if id == nil || x1 == nil || y1 == nil || x2 == nil || y2 == nil {
			continue
		}
		out = append(out, domain.CabinLocation{CabinID: *id, X1: *x1, Y1: *y1, X2: *x2, Y2: *y2})
	}
	return out
}
