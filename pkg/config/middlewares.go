package config

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// CORSConfig allows the configured origins to call the API
func (c *Config) CORSConfig() middleware.CORSConfig {
	origins := c.CORS.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return middleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}
}

// AuthRateLimiterStore limits signup and login attempts per client
func (c *Config) AuthRateLimiterStore() middleware.RateLimiterStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(c.RateLimit.AuthRPS),
		Burst:     c.RateLimit.AuthBurst,
		ExpiresIn: 3 * time.Minute,
	})
}

// BodyLimit leaves room for one image plus the form fields around it
func (c *Config) BodyLimit() string {
	return fmt.Sprintf("%dK", (c.Upload.MaxBytes+1<<20)/1024)
}
