// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// Validate checks struct tags first and then the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if !models.IsSupportedLanguage(c.Query.DefaultLanguage) {
		return fmt.Errorf("query.default_language %q is not a supported language code", c.Query.DefaultLanguage)
	}

	if c.TMDB.CacheDir != "" && c.TMDB.CacheTTL <= 0 {
		return fmt.Errorf("tmdb.cache_ttl must be positive when tmdb.cache_dir is set")
	}

	if c.Server.RateLimit > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when server.rate_limit is set")
	}

	return nil
}

// Addr returns host:port for the HTTP listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
