package internal

import (
	"sjsage522/reviewworker/internal/crawler"
	"sjsage522/reviewworker/services/cache"
	"sjsage522/reviewworker/services/publisher"
)

// Dependencies holds all service dependencies of a run
type Dependencies struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Fetcher   crawler.Fetcher
}

// Cleanup releases the connections held by the dependencies
func (d *Dependencies) Cleanup() {
	if d.Publisher != nil {
		d.Publisher.Close()
	}
}
