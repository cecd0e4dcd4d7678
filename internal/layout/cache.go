package layout

import "ffigen/internal/native"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

type cache struct {
	byRecord map[*native.RecordDecl]*cacheEntry
}

func newCache() *cache {
	return &cache{byRecord: make(map[*native.RecordDecl]*cacheEntry, 256)}
}

func (c *cache) get(rd *native.RecordDecl) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.byRecord[rd]
	return e, ok
}

func (c *cache) put(rd *native.RecordDecl, e *cacheEntry) {
	if c == nil {
		return
	}
	if e == nil {
		delete(c.byRecord, rd)
		return
	}
	c.byRecord[rd] = e
}
