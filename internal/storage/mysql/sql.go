package mysql

// -----------------------------------------------------------------------------
// SEARCH
// -----------------------------------------------------------------------------

const searchBaseFrom = `sailings s
LEFT JOIN ships sh        ON sh.id = s.ship_id
LEFT JOIN cruise_lines cl ON cl.id = s.line_id`

// Free text reaches intermediate ports of call and region labels through EXISTS,
// not only the sailing's own columns. Seven args, all the same pattern.
const qMatchSQL = `(LOWER(s.name) LIKE ?
    OR LOWER(sh.name) LIKE ?
    OR LOWER(cl.name) LIKE ?
    OR LOWER(s.embark_port_name) LIKE ?
    OR LOWER(s.disembark_port_name) LIKE ?
    OR EXISTS (SELECT 1 FROM sailing_stops qst
               JOIN ports qp ON qp.id = qst.port_id
               WHERE qst.sailing_id = s.id AND LOWER(qp.name) LIKE ?)
    OR EXISTS (SELECT 1 FROM sailing_regions qsr
               JOIN regions qr ON qr.id = qsr.region_id
               WHERE qsr.sailing_id = s.id AND LOWER(qr.name) LIKE ?))`

// Port names fall back canonical port -> denormalized sailing column -> 'Unknown'.
// Older imports left either side empty, so keep all three tiers.
const summaryColumns = `
  s.id,
  s.provider,
  s.provider_identifier,
  s.name,
  s.sail_date,
  s.end_date,
  s.nights,
  s.ship_id,
  COALESCE(sh.name, ''),
  sh.image_url,
  s.line_id,
  COALESCE(cl.name, ''),
  s.embark_port_id,
  COALESCE(ep.name, s.embark_port_name, 'Unknown'),
  s.disembark_port_id,
  COALESCE(dp.name, s.disembark_port_name, 'Unknown'),
  s.cheapest_inside_cents,
  s.cheapest_oceanview_cents,
  s.cheapest_balcony_cents,
  s.cheapest_suite_cents,
  s.last_synced_at`

const summaryPortJoins = `
LEFT JOIN ports ep ON ep.id = s.embark_port_id
LEFT JOIN ports dp ON dp.id = s.disembark_port_id`

const latestSyncSQL = `SELECT MAX(last_synced_at) FROM sailings WHERE is_active = TRUE`

// -----------------------------------------------------------------------------
// FACETS
// Every list is scoped by facetScope (active + optional line). Nothing else narrows.
// -----------------------------------------------------------------------------

const facetLinesSQL = `
SELECT cl.id, cl.name, COUNT(DISTINCT s.id)
FROM sailings s
JOIN cruise_lines cl ON cl.id = s.line_id
WHERE %s
GROUP BY cl.id, cl.name
ORDER BY cl.name, cl.id`

const facetShipsSQL = `
SELECT sh.id, sh.name, COUNT(DISTINCT s.id)
FROM sailings s
JOIN ships sh ON sh.id = s.ship_id
WHERE %s
GROUP BY sh.id, sh.name
ORDER BY sh.name, sh.id`

const facetRegionsSQL = `
SELECT r.id, r.name, COUNT(DISTINCT s.id)
FROM sailings s
JOIN sailing_regions sr ON sr.sailing_id = s.id
JOIN regions r          ON r.id = sr.region_id
WHERE %s
GROUP BY r.id, r.name
ORDER BY r.name, r.id`

const facetEmbarkSQL = `
SELECT s.embark_port_id,
       COALESCE(MAX(p.name), MAX(s.embark_port_name), 'Unknown') AS port_name,
       COUNT(DISTINCT s.id)
FROM sailings s
LEFT JOIN ports p ON p.id = s.embark_port_id
WHERE %s AND s.embark_port_id IS NOT NULL
GROUP BY s.embark_port_id
ORDER BY port_name, s.embark_port_id`

const facetDisembarkSQL = `
SELECT s.disembark_port_id,
       COALESCE(MAX(p.name), MAX(s.disembark_port_name), 'Unknown') AS port_name,
       COUNT(DISTINCT s.id)
FROM sailings s
LEFT JOIN ports p ON p.id = s.disembark_port_id
WHERE %s AND s.disembark_port_id IS NOT NULL
GROUP BY s.disembark_port_id
ORDER BY port_name, s.disembark_port_id`

// One row per (trimmed name, port, sailing). Grouping happens in Go on the exact
// trimmed string; the binary collation keeps case and accent variants apart.
const facetPortsOfCallSQL = `
SELECT DISTINCT TRIM(p.name) COLLATE utf8mb4_bin AS port_name, p.id, s.id
FROM sailings s
JOIN sailing_stops st ON st.sailing_id = s.id
JOIN ports p          ON p.id = st.port_id
WHERE %s AND st.is_sea_day = FALSE AND TRIM(p.name) <> ''
ORDER BY port_name, p.id, s.id`

// Absolute catalog bounds for slider UI; never narrowed by the current selection.
const catalogRangesSQL = `
SELECT MIN(sail_date), MAX(sail_date),
       MIN(nights), MAX(nights),
       MIN(cheapest_inside_cents), MAX(cheapest_inside_cents)
FROM sailings
WHERE is_active = TRUE`

// -----------------------------------------------------------------------------
// DETAIL
// -----------------------------------------------------------------------------

const getSailingSQL = `
SELECT
  s.id,
  s.provider,
  s.provider_identifier,
  s.name,
  s.sail_date,
  s.end_date,
  s.nights,
  s.embark_port_id,
  s.embark_port_name,
  s.disembark_port_id,
  s.disembark_port_name,
  s.cheapest_inside_cents,
  s.cheapest_oceanview_cents,
  s.cheapest_balcony_cents,
  s.cheapest_suite_cents,
  s.last_synced_at,
  s.is_active,
  s.market,
  s.no_fly,
  s.depart_uk,
  sh.id,
  sh.name,
  sh.ship_class,
  sh.image_url,
  sh.metadata,
  cl.id,
  cl.name,
  cl.metadata
FROM sailings s
LEFT JOIN ships sh        ON sh.id = s.ship_id
LEFT JOIN cruise_lines cl ON cl.id = s.line_id
WHERE s.id = ?`

const getPortSQL = `SELECT id, name, metadata FROM ports WHERE id = ?`

const listSailingRegionsSQL = `
SELECT r.id, r.name, sr.is_primary
FROM sailing_regions sr
JOIN regions r ON r.id = sr.region_id
WHERE sr.sailing_id = ?
ORDER BY sr.is_primary DESC, r.name, r.id`

const listStopsSQL = `
SELECT
  st.sequence_order,
  st.day_number,
  st.port_id,
  COALESCE(p.name, st.port_name),
  p.metadata,
  st.is_sea_day,
  st.arrival_time,
  st.departure_time
FROM sailing_stops st
LEFT JOIN ports p ON p.id = st.port_id
WHERE st.sailing_id = ?
ORDER BY st.sequence_order`

const listCabinPricesSQL = `
SELECT cabin_code, cabin_category, occupancy, base_price_cents, taxes_cents, is_per_person
FROM cabin_prices
WHERE sailing_id = ?
ORDER BY cabin_category, base_price_cents`

// -----------------------------------------------------------------------------
// ANCILLARY
// -----------------------------------------------------------------------------

const shipExistsSQL = `SELECT EXISTS(SELECT 1 FROM ships WHERE id = ?)`

const countShipImagesSQL = `SELECT COUNT(*) FROM ship_images WHERE ship_id = ?`

const listShipImagesSQL = `
SELECT id, url, url_hd, url_2k, caption, image_type, is_hero
FROM ship_images
WHERE ship_id = ?
ORDER BY is_hero DESC, image_type ASC, id ASC
LIMIT ? OFFSET ?`

const listShipDecksSQL = `
SELECT id, name, deck_number, image_url, display_order, metadata
FROM ship_decks
WHERE ship_id = ?
ORDER BY display_order, id`

const sailingExistsSQL = `SELECT EXISTS(SELECT 1 FROM sailings WHERE id = ?)`

// The alternate row always exists; its sailing may not have been imported yet.
const listAlternatesSQL = `
SELECT a.id, a.alternate_provider_identifier, a.sail_date,` + summaryColumns + `
FROM alternate_sailings a
LEFT JOIN sailings s      ON s.id = a.alternate_sailing_id
LEFT JOIN ships sh        ON sh.id = s.ship_id
LEFT JOIN cruise_lines cl ON cl.id = s.line_id` + summaryPortJoins + `
WHERE a.source_sailing_id = ?
ORDER BY a.sail_date, a.id`

const cabinTypeExistsSQL = `SELECT EXISTS(SELECT 1 FROM cabin_types WHERE id = ?)`

const listCabinImagesSQL = `
SELECT id, url, url_hd, caption, display_order
FROM cabin_images
WHERE cabin_type_id = ?
ORDER BY display_order, id`

// -----------------------------------------------------------------------------
// WARM-UP
// -----------------------------------------------------------------------------

const listLineIDsSQL = `
SELECT DISTINCT line_id FROM sailings
WHERE is_active = TRUE AND line_id IS NOT NULL
ORDER BY line_id`

const listUpcomingSailingIDsSQL = `
SELECT id FROM sailings
WHERE is_active = TRUE AND sail_date >= ?
ORDER BY sail_date, id
LIMIT ?`
