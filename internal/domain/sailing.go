package domain

import "time"

// Read models. Everything here is produced by the repository and never written back.

type SailingSummary struct {
	ID                 string     `json:"id"`
	Provider           string     `json:"provider"`
	ProviderIdentifier string     `json:"providerIdentifier"`
	Name               string     `json:"name"`
	SailDate           time.Time  `json:"sailDate"`
	EndDate            time.Time  `json:"endDate"`
	Nights             int        `json:"nights"`
	ShipID             *string    `json:"shipId"`
	ShipName           string     `json:"shipName"`
	ShipImageURL       *string    `json:"shipImageUrl"`
	LineID             *string    `json:"lineId"`
	LineName           string     `json:"lineName"`
	EmbarkPortID       *string    `json:"embarkPortId"`
	EmbarkPortName     string     `json:"embarkPortName"`
	DisembarkPortID    *string    `json:"disembarkPortId"`
	DisembarkPortName  string     `json:"disembarkPortName"`
	Prices             Cheapest   `json:"cheapestPrices"`
	LastSyncedAt       *time.Time `json:"lastSyncedAt"`
	PricesUpdating     bool       `json:"pricesUpdating"`
}

// Cheapest carries the four denormalized cheapest{Category}Cents columns.
type Cheapest struct {
	InsideCents    *int64 `json:"insideCents"`
	OceanviewCents *int64 `json:"oceanviewCents"`
	BalconyCents   *int64 `json:"balconyCents"`
	SuiteCents     *int64 `json:"suiteCents"`
}

type SyncInfo struct {
	SyncInProgress bool       `json:"syncInProgress"`
	LastSyncedAt   *time.Time `json:"lastSyncedAt"`
}

type SailingsPage struct {
	Items      []SailingSummary `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sync       SyncInfo         `json:"sync"`
}

// SailingRecord is the base row of the detail view: sailing joined to ship and line,
// metadata blobs left raw for the app layer to normalize.
type SailingRecord struct {
	ID                 string
	Provider           string
	ProviderIdentifier string
	Name               string
	SailDate           time.Time
	EndDate            time.Time
	Nights             int
	EmbarkPortID       *string
	EmbarkPortName     *string
	DisembarkPortID    *string
	DisembarkPortName  *string
	Prices             Cheapest
	LastSyncedAt       *time.Time
	IsActive           bool
	Market             *string
	NoFly              bool
	DepartUK           bool

	ShipID       *string
	ShipName     *string
	ShipClass    *string
	ShipImageURL *string
	ShipMeta     []byte

	LineID   *string
	LineName *string
	LineMeta []byte
}

type PortRecord struct {
	ID   string
	Name string
	Meta []byte
}

type RegionView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"isPrimary"`
}

type StopRecord struct {
	SequenceOrder int
	DayNumber     *int
	PortID        *string
	PortName      *string
	PortMeta      []byte
	IsSeaDay      bool
	ArrivalTime   *string
	DepartureTime *string
}

type CabinPrice struct {
	CabinCode       string        `json:"cabinCode"`
	CabinCategory   CabinCategory `json:"cabinCategory"`
	Occupancy       int           `json:"occupancy"`
	BasePriceCents  int64         `json:"basePriceCents"`
	TaxesCents      int64         `json:"taxesCents"`
	TotalPriceCents int64         `json:"totalPriceCents"`
	IsPerPerson     bool          `json:"isPerPerson"`
}

// Detail view.

type SailingDetail struct {
	ID                 string       `json:"id"`
	Provider           string       `json:"provider"`
	ProviderIdentifier string       `json:"providerIdentifier"`
	Name               string       `json:"name"`
	SailDate           time.Time    `json:"sailDate"`
	EndDate            time.Time    `json:"endDate"`
	Nights             int          `json:"nights"`
	Ship               *ShipView    `json:"ship"`
	Line               *LineView    `json:"line"`
	EmbarkPort         *PortView    `json:"embarkPort"`
	EmbarkPortName     string       `json:"embarkPortName"`
	DisembarkPort      *PortView    `json:"disembarkPort"`
	DisembarkPortName  string       `json:"disembarkPortName"`
	Regions            []RegionView `json:"regions"`
	Itinerary          []StopView   `json:"itinerary"`
	CabinPrices        []CabinPrice `json:"cabinPrices"`
	Prices             Cheapest     `json:"cheapestPrices"`
	Market             *string      `json:"market"`
	NoFly              bool         `json:"noFly"`
	DepartUK           bool         `json:"departUk"`
	LastSyncedAt       *time.Time   `json:"lastSyncedAt"`
	PricesUpdating     bool         `json:"pricesUpdating"`
}

type ShipView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Class     *string     `json:"class"`
	ImageURL  *string     `json:"imageUrl"`
	YearBuilt *int64      `json:"yearBuilt"`
	Tonnage   *int64      `json:"tonnage"`
	Capacity  *int64      `json:"capacity"`
	Amenities []string    `json:"amenities"`
	Images    []ShipPhoto `json:"images"`
}

// ShipPhoto is the canonical ship image record, whatever shape the metadata was stored in.
type ShipPhoto struct {
	URL       string  `json:"url"`
	URLHD     *string `json:"urlHd"`
	URL2K     *string `json:"url2k"`
	Caption   *string `json:"caption"`
	IsDefault bool    `json:"isDefault"`
}

type LineView struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logoUrl"`
	Website *string `json:"website"`
}

type PortView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Country *string  `json:"country"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

type StopView struct {
	SequenceOrder int       `json:"sequenceOrder"`
	DayNumber     *int      `json:"dayNumber"`
	IsSeaDay      bool      `json:"isSeaDay"`
	Port          *PortView `json:"port"`
	PortName      string    `json:"portName"`
	ArrivalTime   *string   `json:"arrivalTime"`
	DepartureTime *string   `json:"departureTime"`
}

// Ancillary resources.

type ShipImage struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	URLHD     *string `json:"urlHd"`
	URL2K     *string `json:"url2k"`
	Caption   *string `json:"caption"`
	ImageType *string `json:"imageType"`
	IsHero    bool    `json:"isHero"`
}

type ShipImagesPage struct {
	Items      []ShipImage `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

type DeckRecord struct {
	ID           string
	Name         string
	DeckNumber   *int
	ImageURL     *string
	DisplayOrder int
	Meta         []byte
}

type ShipDeck struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	DeckNumber     *int            `json:"deckNumber"`
	ImageURL       *string         `json:"imageUrl"`
	DisplayOrder   int             `json:"displayOrder"`
	CabinLocations []CabinLocation `json:"cabinLocations"`
}

// CabinLocation is a rectangle overlay on a deck plan image.
type CabinLocation struct {
	CabinID string  `json:"cabinId"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
}

type AlternateSailing struct {
	ID                 string          `json:"id"`
	ProviderIdentifier *string         `json:"providerIdentifier"`
	SailDate           *time.Time      `json:"sailDate"`
	Sailing            *SailingSummary `json:"sailing"` // nil: not yet imported
}

type CabinImage struct {
	ID           string  `json:"id"`
	URL          string  `json:"url"`
	URLHD        *string `json:"urlHd"`
	Caption      *string `json:"caption"`
	DisplayOrder int     `json:"displayOrder"`
}

// Facets.

type FacetOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// PortFacetOption groups every port row sharing a trimmed name. ID is the representative,
// AllIDs is every id a caller may filter by.
type PortFacetOption struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Count  int64    `json:"count"`
	AllIDs []string `json:"allIds"`
}

type Ranges struct {
	SailDateMin       *time.Time `json:"sailDateMin"`
	SailDateMax       *time.Time `json:"sailDateMax"`
	NightsMin         *int       `json:"nightsMin"`
	NightsMax         *int       `json:"nightsMax"`
	InsidePriceMinCts *int64     `json:"priceMinCents"`
	InsidePriceMaxCts *int64     `json:"priceMaxCents"`
}

type Facets struct {
	Lines          []FacetOption     `json:"cruiseLines"`
	Ships          []FacetOption     `json:"ships"`
	Regions        []FacetOption     `json:"regions"`
	EmbarkPorts    []FacetOption     `json:"embarkPorts"`
	DisembarkPorts []FacetOption     `json:"disembarkPorts"`
	PortsOfCall    []PortFacetOption `json:"portsOfCall"`
	Ranges         Ranges            `json:"ranges"`
}
