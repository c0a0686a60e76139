package services

import (
	"sync/atomic"

	"github.com/zatekoja/searchpulse/pkg/config"
)

// SiteSettings holds runtime-mutable operational settings. Unlike pkg/config,
// which is read once from the environment, these can be changed by an
// administrative surface while the process runs.
type SiteSettings struct {
	searchLogMaxSize atomic.Int64
}

// NewSiteSettings seeds the settings from the loaded configuration.
func NewSiteSettings(cfg *config.SearchConfig) *SiteSettings {
	s := &SiteSettings{}
	s.searchLogMaxSize.Store(cfg.LogMaxSize)
	return s
}

// SearchLogMaxSize returns the cap on stored search events.
func (s *SiteSettings) SearchLogMaxSize() int64 {
	return s.searchLogMaxSize.Load()
}

// SetSearchLogMaxSize changes the cap. The retention job picks it up on its
// next run.
func (s *SiteSettings) SetSearchLogMaxSize(n int64) {
	s.searchLogMaxSize.Store(n)
}
