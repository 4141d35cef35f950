package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cruise_catalog/internal/app"
	"cruise_catalog/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu sync.Mutex

	summaries []domain.SailingSummary
	total     int64
	latest    *time.Time
	lastQuery domain.SailingSearch
	lastPage  domain.PageRequest

	lines     []domain.FacetOption
	ports     []domain.PortFacetOption
	ranges    domain.Ranges
	facetCall int
	facetLine string
	facetGate chan struct{} // when set, FacetLines waits for it or ctx
	facetIn   chan struct{}

	sailings  map[string]domain.SailingRecord
	portsByID map[string]domain.PortRecord
	regions   []domain.RegionView
	stops     []domain.StopRecord
	prices    []domain.CabinPrice
	detailN   int

	ships      map[string]bool
	shipImages []domain.ShipImage
	decks      []domain.DeckRecord
	alternates []domain.AlternateSailing
	cabinTypes map[string]bool
	cabinImgs  []domain.CabinImage
}

func (f *fakeRepo) SearchSailings(ctx context.Context, q domain.SailingSearch, pg domain.PageRequest) ([]domain.SailingSummary, int64, error) {
	f.lastQuery, f.lastPage = q, pg
	out := make([]domain.SailingSummary, len(f.summaries))
	copy(out, f.summaries)
	return out, f.total, nil
}
func (f *fakeRepo) LatestSync(ctx context.Context) (*time.Time, error) { return f.latest, nil }

func (f *fakeRepo) FacetLines(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	f.mu.Lock()
	f.facetCall++
	f.facetLine = lineID
	f.mu.Unlock()
	if f.facetGate != nil {
		f.facetIn <- struct{}{}
		select {
		case <-f.facetGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.lines, nil
}
func (f *fakeRepo) FacetShips(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return nil, nil
}
func (f *fakeRepo) FacetRegions(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return nil, nil
}
func (f *fakeRepo) FacetEmbarkPorts(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return nil, nil
}
func (f *fakeRepo) FacetDisembarkPorts(ctx context.Context, lineID string) ([]domain.FacetOption, error) {
	return nil, nil
}
func (f *fakeRepo) FacetPortsOfCall(ctx context.Context, lineID string) ([]domain.PortFacetOption, error) {
	return f.ports, nil
}
func (f *fakeRepo) CatalogRanges(ctx context.Context) (domain.Ranges, error) { return f.ranges, nil }

func (f *fakeRepo) GetSailing(ctx context.Context, id string) (domain.SailingRecord, error) {
	f.mu.Lock()
	f.detailN++
	f.mu.Unlock()
	rec, ok := f.sailings[id]
	if !ok {
		return domain.SailingRecord{}, domain.NewNotFound("sailing", id)
	}
	return rec, nil
}
func (f *fakeRepo) GetPort(ctx context.Context, id string) (domain.PortRecord, error) {
	p, ok := f.portsByID[id]
	if !ok {
		return domain.PortRecord{}, domain.NewNotFound("port", id)
	}
	return p, nil
}
func (f *fakeRepo) ListSailingRegions(ctx context.Context, id string) ([]domain.RegionView, error) {
	return f.regions, nil
}
func (f *fakeRepo) ListStops(ctx context.Context, id string) ([]domain.StopRecord, error) {
	return f.stops, nil
}
func (f *fakeRepo) ListCabinPrices(ctx context.Context, id string) ([]domain.CabinPrice, error) {
	return f.prices, nil
}

func (f *fakeRepo) ShipExists(ctx context.Context, id string) (bool, error) { return f.ships[id], nil }
func (f *fakeRepo) ListShipImages(ctx context.Context, id string, pg domain.PageRequest) ([]domain.ShipImage, int64, error) {
	f.lastPage = pg
	return f.shipImages, int64(len(f.shipImages)), nil
}
func (f *fakeRepo) ListShipDecks(ctx context.Context, id string) ([]domain.DeckRecord, error) {
	return f.decks, nil
}
func (f *fakeRepo) SailingExists(ctx context.Context, id string) (bool, error) {
	_, ok := f.sailings[id]
	return ok, nil
}
func (f *fakeRepo) ListAlternates(ctx context.Context, id string) ([]domain.AlternateSailing, error) {
	return f.alternates, nil
}
func (f *fakeRepo) CabinTypeExists(ctx context.Context, id string) (bool, error) {
	return f.cabinTypes[id], nil
}
func (f *fakeRepo) ListCabinImages(ctx context.Context, id string) ([]domain.CabinImage, error) {
	return f.cabinImgs, nil
}
func (f *fakeRepo) ListLineIDs(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeRepo) ListUpcomingSailingIDs(ctx context.Context, from time.Time, limit int) ([]string, error) {
	return nil, nil
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error { return nil }

type fakeSync bool

func (f fakeSync) IsSyncInProgress(ctx context.Context) bool { return bool(f) }

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(repo *fakeRepo, running bool) (*app.QueryService, *fakeCache) {
	cache := &fakeCache{}
	return app.NewQueryService(repo, cache, fakeSync(running), 10*time.Minute,
		app.WithClock(func() time.Time { return now })), cache
}

func ptr[T any](v T) *T { return &v }

// ---- search ----

func TestSearch_StalenessAndSyncAreIndependent(t *testing.T) {
	fresh := now.Add(-time.Hour)
	old := now.Add(-25 * time.Hour)
	repo := &fakeRepo{
		summaries: []domain.SailingSummary{
			{ID: "a", LastSyncedAt: &fresh},
			{ID: "b", LastSyncedAt: &old},
			{ID: "c"},
		},
		total:  3,
		latest: &fresh,
	}
	svc, _ := newService(repo, true)

	page, err := svc.Search(context.Background(), domain.SailingSearch{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.False(t, page.Items[0].PricesUpdating)
	assert.True(t, page.Items[1].PricesUpdating)
	assert.True(t, page.Items[2].PricesUpdating)
	assert.True(t, page.Sync.SyncInProgress)
	assert.Equal(t, &fresh, page.Sync.LastSyncedAt)
}

func TestSearch_PageWindow(t *testing.T) {
	repo := &fakeRepo{total: 101}
	svc, _ := newService(repo, false)

	page, err := svc.Search(context.Background(), domain.SailingSearch{Page: 2, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, domain.PageRequest{Page: 2, PageSize: 50}, repo.lastPage)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasMore)
	assert.NotNil(t, page.Items)
	assert.False(t, page.Sync.SyncInProgress)
}

func TestSearch_UnknownCabinCategoryBecomesInside(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newService(repo, false)

	_, err := svc.Search(context.Background(), domain.SailingSearch{
		Filter: domain.SailingFilter{CabinCategory: "penthouse"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CabinInside, repo.lastQuery.Filter.CabinCategory)
}

// ---- facets ----

func TestFacets_SharedFillSurvivesStarterCancel(t *testing.T) {
	repo := &fakeRepo{
		lines:     []domain.FacetOption{{ID: "l1", Name: "Azure", Count: 4}},
		facetGate: make(chan struct{}),
		facetIn:   make(chan struct{}, 1),
	}
	svc, cache := newService(repo, false)

	starterCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	starterErr := make(chan error, 1)
	go func() {
		_, err := svc.Facets(starterCtx, domain.SailingFilter{})
		starterErr <- err
	}()
	<-repo.facetIn

	type result struct {
		fc  domain.Facets
		err error
	}
	waiter := make(chan result, 1)
	go func() {
		fc, err := svc.Facets(context.Background(), domain.SailingFilter{})
		waiter <- result{fc, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-starterErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(repo.facetGate)
	select {
	case res := <-waiter:
		require.NoError(t, res.err)
		assert.Equal(t, repo.lines, res.fc.Lines)
	case <-time.After(2 * time.Second):
		t.Fatal("waiting caller did not return")
	}

	assert.Equal(t, 1, repo.facetCall)
	assert.Contains(t, cache.store, "facets:all")
}

func TestFacets_CachedPerLine(t *testing.T) {
	repo := &fakeRepo{
		lines: []domain.FacetOption{{ID: "l1", Name: "Azure", Count: 4}},
		ports: []domain.PortFacetOption{{ID: "p1", Name: "Miami", Count: 2, AllIDs: []string{"p1", "p2"}}},
	}
	svc, cache := newService(repo, false)
	ctx := context.Background()

	fc, err := svc.Facets(ctx, domain.SailingFilter{CruiseLineID: "l1", ShipID: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "l1", repo.facetLine)
	assert.Equal(t, repo.lines, fc.Lines)
	assert.Equal(t, []string{"p1", "p2"}, fc.PortsOfCall[0].AllIDs)
	assert.NotNil(t, fc.Ships)

	_, err = svc.Facets(ctx, domain.SailingFilter{CruiseLineID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.facetCall)
	assert.Contains(t, cache.store, "facets:l1")

	_, err = svc.Facets(ctx, domain.SailingFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.facetCall)
	assert.Contains(t, cache.store, "facets:all")
}

// ---- detail ----

func detailRepo(synced *time.Time) *fakeRepo {
	return &fakeRepo{
		sailings: map[string]domain.SailingRecord{
			"s1": {
				ID:                "s1",
				Name:              "Caribbean Escape",
				EmbarkPortID:      ptr("p-mia"),
				EmbarkPortName:    ptr("Miami (old)"),
				DisembarkPortID:   ptr("p-gone"),
				DisembarkPortName: nil,
				LastSyncedAt:      synced,
				ShipID:            ptr("sh1"),
				ShipName:          ptr("Sea Star"),
				ShipMeta:          []byte(`{"images":[{"imageurl":"a.jpg","default":"Y"}],"yearbuilt":"2004"}`),
				LineID:            ptr("l1"),
				LineName:          ptr("Azure"),
				LineMeta:          []byte(`not json`),
			},
		},
		portsByID: map[string]domain.PortRecord{
			"p-mia": {ID: "p-mia", Name: "Miami", Meta: []byte(`{"country":"US","latitude":25.77}`)},
		},
		regions: []domain.RegionView{{ID: "r1", Name: "Caribbean", IsPrimary: true}},
		stops: []domain.StopRecord{
			{SequenceOrder: 1, PortID: ptr("p-mia"), PortName: ptr("Miami")},
			{SequenceOrder: 2, IsSeaDay: true},
			{SequenceOrder: 3},
		},
		prices: []domain.CabinPrice{
			{CabinCode: "IA", CabinCategory: domain.CabinInside, BasePriceCents: 50000, TaxesCents: 12000, TotalPriceCents: 62000},
		},
	}
}

func TestDetail_Aggregates(t *testing.T) {
	synced := now.Add(-2 * time.Hour)
	svc, _ := newService(detailRepo(&synced), false)

	d, err := svc.Detail(context.Background(), "s1")
	require.NoError(t, err)

	require.NotNil(t, d.EmbarkPort)
	assert.Equal(t, "Miami", d.EmbarkPortName)
	assert.Equal(t, "US", *d.EmbarkPort.Country)
	assert.Nil(t, d.DisembarkPort)
	assert.Equal(t, "Unknown", d.DisembarkPortName)

	require.Len(t, d.CabinPrices, 1)
	assert.Equal(t, int64(62000), d.CabinPrices[0].TotalPriceCents)
	assert.Equal(t, "Caribbean", d.Regions[0].Name)

	require.Len(t, d.Itinerary, 3)
	assert.Equal(t, "Miami", d.Itinerary[0].Port.Name)
	assert.Equal(t, "", d.Itinerary[1].PortName)
	assert.Equal(t, "Unknown", d.Itinerary[2].PortName)

	require.NotNil(t, d.Ship)
	require.Len(t, d.Ship.Images, 1)
	assert.True(t, d.Ship.Images[0].IsDefault)
	assert.Equal(t, int64(2004), *d.Ship.YearBuilt)
	require.NotNil(t, d.Line)
	assert.Nil(t, d.Line.LogoURL)
	assert.False(t, d.PricesUpdating)
}

func TestDetail_NotFound(t *testing.T) {
	svc, _ := newService(detailRepo(nil), false)

	_, err := svc.Detail(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDetail_StalenessRecomputedOnCacheHit(t *testing.T) {
	synced := now.Add(-23 * time.Hour)
	repo := detailRepo(&synced)
	cache := &fakeCache{}
	clock := now
	svc := app.NewQueryService(repo, cache, fakeSync(false), time.Minute,
		app.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	d, err := svc.Detail(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, d.PricesUpdating)

	clock = now.Add(2 * time.Hour)
	d, err = svc.Detail(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, d.PricesUpdating)
	assert.Equal(t, 1, repo.detailN)
}

func TestRefreshDetail_Overwrites(t *testing.T) {
	repo := detailRepo(nil)
	svc, cache := newService(repo, false)

	require.NoError(t, svc.RefreshDetail(context.Background(), "s1"))
	require.NoError(t, svc.RefreshDetail(context.Background(), "s1"))
	assert.Equal(t, 2, repo.detailN)
	assert.Contains(t, cache.store, "sailing:s1")
}

// ---- ancillary ----

func TestShipImages(t *testing.T) {
	repo := &fakeRepo{
		ships:      map[string]bool{"sh1": true},
		shipImages: []domain.ShipImage{{ID: "i1", URL: "a.jpg", IsHero: true}},
	}
	svc, _ := newService(repo, false)
	ctx := context.Background()

	page, err := svc.ShipImages(ctx, "sh1", 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.lastPage.PageSize)
	assert.Equal(t, int64(1), page.Pagination.TotalItems)

	_, err = svc.ShipImages(ctx, "nope", 1, 0)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ship", nf.Resource)
}

func TestShipDecks_CabinLocations(t *testing.T) {
	repo := &fakeRepo{
		ships: map[string]bool{"sh1": true},
		decks: []domain.DeckRecord{{
			ID:   "d1",
			Name: "Deck 5",
			Meta: []byte(`{"cabin_locations":[{"cabin_id":"5001","x1":1,"y1":2,"x2":"3.5","y2":4},{"x1":1}]}`),
		}},
	}
	svc, _ := newService(repo, false)

	decks, err := svc.ShipDecks(context.Background(), "sh1")
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, []domain.CabinLocation{{CabinID: "5001", X1: 1, Y1: 2, X2: 3.5, Y2: 4}}, decks[0].CabinLocations)

	_, err = svc.ShipDecks(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAlternates(t *testing.T) {
	fresh := now.Add(-time.Minute)
	repo := detailRepo(nil)
	repo.alternates = []domain.AlternateSailing{
		{ID: "a1", ProviderIdentifier: ptr("X-1"), Sailing: &domain.SailingSummary{ID: "s9", LastSyncedAt: &fresh}},
		{ID: "a2", ProviderIdentifier: ptr("X-2")},
	}
	svc, _ := newService(repo, false)

	alts, err := svc.Alternates(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, alts, 2)
	assert.False(t, alts[0].Sailing.PricesUpdating)
	assert.Nil(t, alts[1].Sailing)

	_, err = svc.Alternates(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCabinImages(t *testing.T) {
	repo := &fakeRepo{
		cabinTypes: map[string]bool{"ct1": true},
		cabinImgs:  []domain.CabinImage{{ID: "ci1", URL: "c.jpg"}},
	}
	svc, _ := newService(repo, false)

	imgs, err := svc.CabinImages(context.Background(), "ct1")
	require.NoError(t, err)
	assert.Len(t, imgs, 1)

	_, err = svc.CabinImages(context.Background(), "ct2")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "cabin_type", nf.Resource)
}
