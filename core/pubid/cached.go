package pubid

import (
	"github.com/FocuswithJustin/pubid/core/cache"
)

// Interface is satisfied by *Parser and *CachedParser.
type Interface interface {
	Parse(s string) (*Identifier, error)
}

// CachedParser memoizes successful parses in an LRU keyed by the raw
// input. Callers receive clones, so mutating a result never affects the
// cache.
type CachedParser struct {
	parser *Parser
	cache  cache.Cache[string, *Identifier]
}

// NewCachedParser wraps p with an LRU holding up to size identifiers
// (cache.DefaultMaxSize when size is 0).
func NewCachedParser(p *Parser, size int) *CachedParser {
	if p == nil {
		p = defaultParser()
	}
	cfg := cache.DefaultConfig[string, *Identifier]()
	if size > 0 {
		cfg.MaxSize = size
	}
	return &CachedParser{parser: p, cache: cache.NewLRUCache(cfg)}
}

// Parse returns a cached identifier for s, parsing it on a miss. Errors
// are not cached.
func (c *CachedParser) Parse(s string) (*Identifier, error) {
	id, err := c.cache.GetOrLoad(s, func() (*Identifier, error) {
		return c.parser.Parse(s)
	})
	if err != nil {
		return nil, err
	}
	return id.Clone(), nil
}

// Stats returns the underlying cache statistics.
func (c *CachedParser) Stats() cache.Stats {
	return c.cache.Stats()
}

// Reset empties the cache.
func (c *CachedParser) Reset() {
	c.cache.Clear()
}
