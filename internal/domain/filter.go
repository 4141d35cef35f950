package domain

import (
	"strings"
	"time"
)

type CabinCategory string

const (
	CabinInside    CabinCategory = "inside"
	CabinOceanview CabinCategory = "oceanview"
	CabinBalcony   CabinCategory = "balcony"
	CabinSuite     CabinCategory = "suite"
)

// ParseCabinCategory never fails: anything unrecognized is inside.
func ParseCabinCategory(s string) CabinCategory {
	switch c := CabinCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case CabinInside, CabinOceanview, CabinBalcony, CabinSuite:
		return c
	}
	return CabinInside
}

// SailingFilter is the validated filter object shared by search and facets.
// Zero values mean "not set".
type SailingFilter struct {
	Q               string
	CruiseLineID    string
	ShipID          string
	EmbarkPortID    string
	DisembarkPortID string
	PortOfCallIDs   []string
	SailDateFrom    *time.Time
	SailDateTo      *time.Time
	NightsMin       *int
	NightsMax       *int
	PriceMinCents   *int64
	PriceMaxCents   *int64
	CabinCategory   CabinCategory
	RegionID        string
}

type SortField string

const (
	SortSailDate SortField = "sailDate"
	SortPrice    SortField = "price"
	SortNights   SortField = "nights"
	SortShipName SortField = "shipName"
	SortLineName SortField = "lineName"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

type SailingSearch struct {
	Filter   SailingFilter
	SortBy   SortField
	SortDir  SortDir
	Page     int
	PageSize int
}
