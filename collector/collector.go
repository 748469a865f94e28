package collector

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dsa-lake/data-lander/lander_error"
	"github.com/dsa-lake/data-lander/table"
	"github.com/dsa-lake/data-lander/types"
)

// part is one table ingested for a category, with the source it came from
type part struct {
	table  *table.Table
	source string
}

// Collector partitions filtered tables by category and accumulates the per category
// parts until they are consolidated. Parts are only ever appended.
type Collector struct {
	column    string
	allowList types.AllowList

	// parts keyed by sanitized category key
	parts map[string][]part
	// keys in the order they were first seen
	keys []string
	// mutex for parts and keys
	lock sync.RWMutex
}

func New(column string, allowList types.AllowList) *Collector {
	return &Collector{
		column:    column,
		allowList: allowList,
		parts:     make(map[string][]part),
	}
}

// Ingest splits t by the distinct values of the category column, in first seen order,
// and appends the rows for each value to the value's key. Values which are empty or not
// in the allow list are skipped.
func (c *Collector) Ingest(t *table.Table, source string) error {
	if t == nil {
		return lander_error.Schema(source, fmt.Errorf("%w: %s (no table)", lander_error.ErrMissingColumn, c.column))
	}
	idx := t.ColumnIndex(c.column)
	if idx < 0 {
		return lander_error.Schema(source, fmt.Errorf("%w: %s", lander_error.ErrMissingColumn, c.column))
	}
	if t.NumRows() == 0 {
		slog.Warn("ingesting empty table, skipping", "source", source)
		return nil
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	for _, value := range t.DistinctValues(idx) {
		if value == "" {
			slog.Warn("skipping rows with empty category value", "source", source, "column", c.column)
			continue
		}
		if !c.allowList.Contains(value) {
			slog.Warn("skipping rows with category value not in allow list", "source", source, "value", value)
			continue
		}

		rows := t.Select(func(row []string) bool { return row[idx] == value })
		key := types.SanitizeKey(value)
		if _, ok := c.parts[key]; !ok {
			c.keys = append(c.keys, key)
		}
		c.parts[key] = append(c.parts[key], part{table: rows, source: source})

		slog.Debug("ingested category rows", "source", source, "value", value, "key", key, "rows", rows.NumRows())
	}
	return nil
}

// Consolidate returns a single table holding every row ingested for key, in ingestion order.
// All parts must share the same columns in the same order.
func (c *Collector) Consolidate(key string) (*table.Table, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	parts := c.parts[key]
	if len(parts) == 0 {
		return nil, lander_error.CategoryStructural(key, lander_error.ErrUnknownCategory)
	}
	if len(parts) == 1 {
		return parts[0].table.Clone(), nil
	}

	first := parts[0].table
	tables := make([]*table.Table, len(parts))
	for i, p := range parts {
		if !p.table.SameSchema(first) {
			return nil, lander_error.CategorySchema(key, p.source,
				fmt.Errorf("%w: columns %v, expected %v (from %s)", lander_error.ErrSchemaMismatch, p.table.Columns, first.Columns, parts[0].source))
		}
		tables[i] = p.table
	}

	res, err := table.Concat(tables...)
	if err != nil {
		return nil, lander_error.CategorySchema(key, "", err)
	}
	slog.Debug("consolidated category", "key", key, "parts", len(parts), "rows", res.NumRows())
	return res, nil
}

// Keys returns the category keys in the order they were first seen
func (c *Collector) Keys() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	res := make([]string, len(c.keys))
	copy(res, c.keys)
	return res
}

func (c *Collector) Has(key string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	_, ok := c.parts[key]
	return ok
}

// RowCounts returns the total number of rows accumulated per key
func (c *Collector) RowCounts() map[string]int64 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	res := make(map[string]int64, len(c.parts))
	for key, parts := range c.parts {
		for _, p := range parts {
			res[key] += int64(p.table.NumRows())
		}
	}
	return res
}

func (c *Collector) KeyCount() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.keys)
}

// TableCount returns the total number of parts across all keys
func (c *Collector) TableCount() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	count := 0
	for _, parts := range c.parts {
		count += len(parts)
	}
	return count
}

// Sources returns the source of each part of key, in ingestion order
func (c *Collector) Sources(key string) []string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	var res []string
	for _, p := range c.parts[key] {
		res = append(res, p.source)
	}
	return res
}
