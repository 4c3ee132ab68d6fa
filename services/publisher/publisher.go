package publisher

import (
	"encoding/json"

	"sjsage522/reviewworker/internal/crawler"
	"sjsage522/reviewworker/logger"
	scrapeerrors "sjsage522/reviewworker/pkg/errors"
	"sjsage522/reviewworker/services/metrics"
)

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish appends a message to the stream of key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}

// PublishReviews sends each record of source as its own JSON message.
// It stops at the first failure and returns how many were published.
func PublishReviews(p Publisher, source string, records []crawler.ReviewRecord) (int, error) {
	published := 0
	for _, record := range records {
		message, err := json.Marshal(record)
		if err != nil {
			return published, scrapeerrors.NewPublisher(source, "failed to encode review", err)
		}
		err = p.Publish(source, message)
		metrics.ObservePublish(source, err)
		if err != nil {
			return published, scrapeerrors.NewPublisher(source, "failed to publish review", err)
		}
		published++
	}

	if err := p.TrimStreams(); err != nil {
		logger.ForPublisher().Warn().Err(err).Msg("Failed to trim streams")
	}
	return published, nil
}
