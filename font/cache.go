/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

import "sort"

// maxFontCache bounds the number of distinct fonts kept per page, evicting
// least-recently-used entries once full.
const maxFontCache = 10

type cacheEntry struct {
	font   *Font
	access int64
}

// Cache memoizes Font construction by resource name within a single page.
// It is deliberately not shared across pages or goroutines: each page
// worker gets its own Cache so font construction never needs
// cross-goroutine locking.
type Cache struct {
	entries map[string]cacheEntry
	order   []string // insertion order, so Each is deterministic
	access  int64
}

// NewCache returns an empty font cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]cacheEntry{}}
}

// Get returns the cached font for name, building it with build if absent.
func (c *Cache) Get(name string, build func() (*Font, error)) (*Font, error) {
	c.access++
	if e, ok := c.entries[name]; ok {
		e.access = c.access
		c.entries[name] = e
		return e.font, nil
	}

	f, err := build()
	if err != nil {
		return nil, err
	}

	if len(c.entries) >= maxFontCache {
		var names []string
		for n := range c.entries {
			names = append(names, n)
		}
		sort.Slice(names, func(i, j int) bool {
			return c.entries[names[i]].access < c.entries[names[j]].access
		})
		delete(c.entries, names[0])
		for i, n := range c.order {
			if n == names[0] {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.entries[name] = cacheEntry{font: f, access: c.access}
	c.order = append(c.order, name)
	return f, nil
}

// Each calls fn once per cached font, in first-use order. Used by callers
// that want to check post-hoc state (e.g. Font.Lossy) once a page is done.
func (c *Cache) Each(fn func(name string, f *Font)) {
	for _, name := range c.order {
		if e, ok := c.entries[name]; ok {
			fn(name, e.font)
		}
	}
}
