package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
	processingMsKey = "processing_time_ms"
)

// WithResponseMeta seeds a metadata map on the request context. Handlers for
// derived endpoints such as the dashboard attach cache and timing facts to
// it, and the response envelope carries the map out as `meta`.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
		meta := ensureMeta(c)
		if _, exists := meta[processingMsKey]; !exists {
			meta[processingMsKey] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit records whether the response was served from the redis cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
}

// SetProcessingTime overrides the measured handler duration, for handlers
// that want to report time spent on computation rather than the whole
// middleware chain.
func SetProcessingTime(c *gin.Context, d time.Duration) {
	ensureMeta(c)[processingMsKey] = d.Milliseconds()
}

// ExtractMeta returns the metadata map stored on the context, or nil when
// WithResponseMeta is not installed.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	newMeta := make(map[string]interface{})
	c.Set(responseMetaKey, newMeta)
	return newMeta
}
