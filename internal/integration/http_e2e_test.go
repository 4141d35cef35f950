//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "cruise_catalog/internal/adapters/http_server"
	redisad "cruise_catalog/internal/adapters/redis"
	"cruise_catalog/internal/app"
	"cruise_catalog/internal/domain"
	mysqlrepo "cruise_catalog/internal/storage/mysql"
)

const (
	e2eLine    = "10000000-0000-0000-0000-0000000000e1"
	e2eShip    = "20000000-0000-0000-0000-0000000000e1"
	e2ePort    = "30000000-0000-0000-0000-0000000000e1"
	e2eCall    = "30000000-0000-0000-0000-0000000000e2"
	e2eSailing = "50000000-0000-0000-0000-0000000000e1"
	syncKey    = "import:sync_in_progress"
)

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=cruise",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		"root", hostPort, "cruise")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []struct {
		q    string
		args []any
	}{
		{`INSERT INTO cruise_lines (id, name) VALUES (?, 'Azure Lines')`, []any{e2eLine}},
		{`INSERT INTO ships (id, line_id, name, metadata) VALUES (?, ?, 'Sea Star', ?)`,
			[]any{e2eShip, e2eLine, `{"images":[{"url":"n.jpg","is_default":true},{"imageurl":"r.jpg","default":"N"}]}`}},
		{`INSERT INTO ports (id, name, metadata) VALUES (?, 'Southampton', '{"country":"GB"}'), (?, 'Bergen', NULL)`,
			[]any{e2ePort, e2eCall}},
		{`INSERT INTO sailings (id, provider, provider_identifier, name, sail_date, end_date, nights,
			ship_id, line_id, embark_port_id, embark_port_name, disembark_port_id, cheapest_inside_cents, last_synced_at)
			VALUES (?, 'acme', 'F-1', 'Norwegian Fjords', '2026-06-10', '2026-06-17', 7, ?, ?, ?, 'Southampton', ?, 80000, ?)`,
			[]any{e2eSailing, e2eShip, e2eLine, e2ePort, e2ePort, time.Now().UTC().Add(-48 * time.Hour)}},
		{`INSERT INTO sailing_stops (id, sailing_id, sequence_order, day_number, port_id, port_name)
			VALUES (UUID(), ?, 1, 1, ?, 'Southampton'), (UUID(), ?, 2, 3, ?, 'Bergen')`,
			[]any{e2eSailing, e2ePort, e2eSailing, e2eCall}},
		{`INSERT INTO cabin_prices (id, sailing_id, cabin_code, cabin_category, base_price_cents, taxes_cents)
			VALUES (UUID(), ?, 'IA', 'inside', 50000, 12000)`, []any{e2eSailing}},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.q, s.args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

// ---------- the test ----------
func TestHTTP_EndToEnd_Catalog(t *testing.T) {
	db := startMySQL(t)
	seed(t, db)

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	require.NoError(t, mr.Set(syncKey, "1"))

	cache := redisad.NewFromClient(rc)
	q := app.NewQueryService(mysqlrepo.New(db), cache, redisad.NewSyncStatus(rc, syncKey), time.Minute)

	srv := server.New(server.Options{Timeout: 10 * time.Second})
	srv.MountHandlers(&server.Handlers{Q: q, DB: db})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	getJSON := func(t *testing.T, path string, dst any) int {
		t.Helper()
		res, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer res.Body.Close()
		if dst != nil && res.StatusCode == http.StatusOK {
			require.NoError(t, json.NewDecoder(res.Body).Decode(dst))
		}
		return res.StatusCode
	}

	t.Run("search by port of call", func(t *testing.T) {
		var page domain.SailingsPage
		require.Equal(t, http.StatusOK, getJSON(t, "/v1/sailings?q=bergen", &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, e2eSailing, page.Items[0].ID)
		assert.True(t, page.Items[0].PricesUpdating)
		assert.True(t, page.Sync.SyncInProgress)
		assert.Equal(t, 1, page.Pagination.TotalPages)
	})

	t.Run("detail", func(t *testing.T) {
		var d domain.SailingDetail
		require.Equal(t, http.StatusOK, getJSON(t, "/v1/sailings/"+e2eSailing, &d))
		assert.Equal(t, "Southampton", d.EmbarkPortName)
		assert.Equal(t, "GB", *d.EmbarkPort.Country)
		require.Len(t, d.Itinerary, 2)
		assert.Equal(t, "Bergen", d.Itinerary[1].PortName)
		require.Len(t, d.CabinPrices, 1)
		assert.Equal(t, int64(62000), d.CabinPrices[0].TotalPriceCents)
		require.Len(t, d.Ship.Images, 2)
		assert.Equal(t, "r.jpg", d.Ship.Images[1].URL)
		assert.True(t, d.PricesUpdating)
		assert.True(t, mr.Exists("cruise:sailing:"+e2eSailing))
	})

	t.Run("facets", func(t *testing.T) {
		var fc domain.Facets
		require.Equal(t, http.StatusOK, getJSON(t, "/v1/filters?cruiseLineId="+e2eLine, &fc))
		require.Len(t, fc.PortsOfCall, 2)
		assert.Equal(t, int64(1), fc.Lines[0].Count)
	})

	t.Run("not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, getJSON(t, "/v1/sailings/50000000-0000-0000-0000-0000000000ff", nil))
		assert.Equal(t, http.StatusNotFound, getJSON(t, "/v1/ships/20000000-0000-0000-0000-0000000000ff/images", nil))
		assert.Equal(t, http.StatusNotFound, getJSON(t, "/v1/cabin-types/60000000-0000-0000-0000-0000000000ff/images", nil))
	})

	t.Run("health", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, db.PingContext(ctx))
		assert.Equal(t, http.StatusOK, getJSON(t, "/healthz", nil))
	})
}
