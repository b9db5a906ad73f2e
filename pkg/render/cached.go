package render

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/mathfmt/pkg/cache"
	"github.com/matzehuels/mathfmt/pkg/observability"
)

// Identifier is implemented by renderers that name their backend. The name
// keeps cache entries of different backends apart.
type Identifier interface {
	ID() string
}

// cacheKeyType labels cache events emitted by [Cached].
const cacheKeyType = "render"

type cached struct {
	next  Renderer
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	id    string
}

// Cached wraps r so that successful renderings are stored in c and served
// from it on later calls. Failures are never stored. Cache errors are
// treated as misses. A nil keyer uses [cache.NewDefaultKeyer].
func Cached(r Renderer, c cache.Cache, keyer cache.Keyer, ttl time.Duration) Renderer {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	id := fmt.Sprintf("%T", r)
	if i, ok := r.(Identifier); ok {
		id = i.ID()
	}
	return &cached{next: r, cache: c, keyer: keyer, ttl: ttl, id: id}
}

func (c *cached) ID() string { return c.id }

func (c *cached) Render(ctx context.Context, tex TeX) Outcome {
	hooks := observability.Cache()
	key := c.keyer.RenderKey(c.id, string(tex))

	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var s Success
		if json.Unmarshal(data, &s) == nil && s.MathML != "" {
			hooks.OnCacheHit(ctx, cacheKeyType)
			return &s
		}
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	out := c.next.Render(ctx, tex)
	if s, ok := out.(*Success); ok {
		if data, err := json.Marshal(s); err == nil {
			if c.cache.Set(ctx, key, data, c.ttl) == nil {
				hooks.OnCacheSet(ctx, cacheKeyType, len(data))
			}
		}
	}
	return out
}
