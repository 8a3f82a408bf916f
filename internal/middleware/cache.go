package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CacheConfig represents cache control configuration
type CacheConfig struct {
	MaxAge         int
	Private        bool
	NoStore        bool
	NoCache        bool
	MustRevalidate bool
	Vary           []string
}

// NoStoreConfig keeps health data out of every cache.
func NoStoreConfig() CacheConfig {
	return CacheConfig{
		Private: true,
		NoStore: true,
		NoCache: true,
		Vary:    []string{"Authorization"},
	}
}

// Cache adds cache control headers to responses
func Cache(config CacheConfig) gin.HandlerFunc {
	value := cacheControl(config)
	vary := strings.Join(config.Vary, ", ")

	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		if config.NoStore {
			c.Header("Pragma", "no-cache")
		}
		if vary != "" {
			c.Header("Vary", vary)
		}
		c.Next()
	}
}

func cacheControl(config CacheConfig) string {
	directives := make([]string, 0, 5)

	if config.Private {
		directives = append(directives, "private")
	} else {
		directives = append(directives, "public")
	}
	if config.NoStore {
		directives = append(directives, "no-store")
	}
	if config.NoCache {
		directives = append(directives, "no-cache")
	}
	if config.MaxAge > 0 && !config.NoStore {
		directives = append(directives, "max-age="+strconv.Itoa(config.MaxAge))
	}
	if config.MustRevalidate {
		directives = append(directives, "must-revalidate")
	}

	return strings.Join(directives, ", ")
}
