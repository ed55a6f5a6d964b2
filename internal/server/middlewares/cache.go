package middleware

// This in-memory cache is used for simplicity purpose. It can be replaced with Redis.
// golang-lru automatically evicts the least recently accessed items, ensuring efficient memory usage.
// Keys carry a generation counter: bumping it after a detection cycle
// invalidates every cached payload at once.

import (
	"bytes"
	"fmt"
	"net/http"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"github.com/labstack/echo/v4"
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

// ResponseCache caches successful GET responses in memory.
type ResponseCache struct {
	cache *lru.Cache
	gen   atomic.Uint64
}

// NewResponseCache sets up an in-memory LRU cache of the given size.
func NewResponseCache(size int) (*ResponseCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ResponseCache{cache: cache}, nil
}

// Invalidate drops all cached responses by advancing the generation.
func (rc *ResponseCache) Invalidate() {
	rc.gen.Add(1)
}

func (rc *ResponseCache) key(c echo.Context) string {
	r := c.Request()
	return fmt.Sprintf("%d:%s?%s", rc.gen.Load(), r.URL.Path, r.URL.RawQuery)
}

type captureWriter struct {
	http.ResponseWriter
	buf *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware serves cached payloads for GET requests and records misses.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			key := rc.key(c)
			if v, ok := rc.cache.Get(key); ok {
				cached := v.(cachedResponse)
				return c.Blob(cached.status, cached.contentType, cached.body)
			}

			res := c.Response()
			cw := &captureWriter{ResponseWriter: res.Writer, buf: &bytes.Buffer{}}
			res.Writer = cw

			if err := next(c); err != nil {
				return err
			}

			// Only successful responses are worth replaying.
			if res.Status == http.StatusOK {
				rc.cache.Add(key, cachedResponse{
					status:      res.Status,
					contentType: res.Header().Get(echo.HeaderContentType),
					body:        cw.buf.Bytes(),
				})
			}
			return nil
		}
	}
}
