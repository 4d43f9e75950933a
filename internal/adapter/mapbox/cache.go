package mapbox

import (
	"container/list"
	"context"
	"math"
	"sync"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	"github.com/couchcryptid/ais-pollution-etl/internal/observability"
)

// cellPrecision is the number of decimal places a position is rounded to
// before lookup; 3 places is roughly a 100 m grid.
const cellPrecision = 3

// CachedGeocoder wraps a Geocoder with a bounded LRU cache keyed by grid
// cell, so vessels lying at the same berth or anchorage share one lookup.
type CachedGeocoder struct {
	inner   domain.Geocoder
	metrics *observability.Metrics

	mu         sync.Mutex
	maxEntries int
	order      *list.List // front is most recently used
	cells      map[cell]*list.Element
}

type cell struct {
	lat, lon int64
}

type cached struct {
	key    cell
	result domain.GeocodingResult
}

// NewCachedGeocoder creates a cache decorator around a geocoder. metrics may
// be nil.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &CachedGeocoder{
		inner:      inner,
		metrics:    metrics,
		maxEntries: maxEntries,
		order:      list.New(),
		cells:      make(map[cell]*list.Element),
	}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := cellOf(lat, lon)
	if result, ok := c.get(key); ok {
		c.record("hit")
		return result, nil
	}
	c.record("miss")

	result, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	// Empty answers are not cached so a later run can retry them.
	if result.FormattedAddress != "" {
		c.put(key, result)
	}
	return result, nil
}

// Len reports the number of cached cells.
func (c *CachedGeocoder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *CachedGeocoder) get(key cell) (domain.GeocodingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.cells[key]
	if !ok {
		return domain.GeocodingResult{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).result, true
}

func (c *CachedGeocoder) put(key cell, result domain.GeocodingResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.cells[key]; ok {
		el.Value.(*cached).result = result
		c.order.MoveToFront(el)
		return
	}
	c.cells[key] = c.order.PushFront(&cached{key: key, result: result})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.cells, oldest.Value.(*cached).key)
	}
}

func (c *CachedGeocoder) record(result string) {
	if c.metrics != nil {
		c.metrics.GeocodeCache.WithLabelValues(result).Inc()
	}
}

func cellOf(lat, lon float64) cell {
	scale := math.Pow10(cellPrecision)
	return cell{
		lat: int64(math.Round(lat * scale)),
		lon: int64(math.Round(lon * scale)),
	}
}
