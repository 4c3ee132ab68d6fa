package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sjsage522/reviewworker/internal/crawler"
	"sjsage522/reviewworker/logger"
	scrapeerrors "sjsage522/reviewworker/pkg/errors"
	"sjsage522/reviewworker/services/publisher"
)

// Sink stores the records of one run
type Sink interface {
	Write(source string, records []crawler.ReviewRecord) (string, error)
}

// Report summarises one run of a job
type Report struct {
	Source    string
	Outcome   crawler.Outcome
	Pages     int
	Reviews   int
	Published int
	Path      string
	Elapsed   time.Duration
}

// Worker handles the crawling, writing and publishing process
type Worker struct {
	ctx           context.Context
	crawler       crawler.Crawler
	sink          Sink
	publisher     publisher.Publisher
	crawlInterval time.Duration
	production    bool
}

// NewWorker creates a new worker. pub may be nil when no stream is configured.
// A production worker skips the sample record log.
func NewWorker(
	ctx context.Context,
	c crawler.Crawler,
	sink Sink,
	pub publisher.Publisher,
	crawlInterval time.Duration,
	production bool,
) *Worker {
	return &Worker{
		ctx:           ctx,
		crawler:       c,
		sink:          sink,
		publisher:     pub,
		crawlInterval: crawlInterval,
		production:    production,
	}
}

// RunOnce crawls job, writes the records and publishes them.
// Records are written whenever at least one page was fetched, so a crawl
// that failed midway still leaves its partial results behind; the crawl
// error is returned afterwards.
func (w *Worker) RunOnce(job crawler.Job) (*Report, error) {
	log := logger.ForWorker().WithFields(logger.Fields{
		"source":  w.crawler.GetProvider(),
		"company": job.Company,
	})
	start := time.Now()

	log.Info().Str("window", job.Window.String()).Msg("Starting crawl")

	result, crawlErr := w.crawler.Crawl(w.ctx, job)
	if result == nil {
		return nil, crawlErr
	}

	report := &Report{
		Source:  result.Source,
		Outcome: result.Outcome,
		Pages:   result.Pages,
		Reviews: len(result.Records),
	}

	var scrapeErr *scrapeerrors.ScrapeError
	if errors.As(crawlErr, &scrapeErr) && scrapeErr.IsFetchFailure() {
		log.WithError(crawlErr).Warn().
			Int("pages", result.Pages).
			Int("reviews", len(result.Records)).
			Msg("Fetch failed, keeping pages fetched so far")
	}

	if result.Pages == 0 {
		report.Elapsed = time.Since(start)
		log.Warn().Str("outcome", string(result.Outcome)).Msg("No page fetched, nothing written")
		return report, crawlErr
	}

	path, err := w.sink.Write(result.Source, result.Records)
	if err != nil {
		return report, err
	}
	report.Path = path

	if w.publisher != nil && len(result.Records) > 0 {
		published, err := publisher.PublishReviews(w.publisher, result.Source, result.Records)
		report.Published = published
		if err != nil {
			logger.LogError("Publisher", err, "published %d of %d reviews", published, len(result.Records))
		}
	}

	w.logFirstRecord(result.Records)

	report.Elapsed = time.Since(start)
	log.Info().
		Str("outcome", string(report.Outcome)).
		Int("pages", report.Pages).
		Int("reviews", report.Reviews).
		Int("published", report.Published).
		Str("path", report.Path).
		Dur("elapsed", report.Elapsed).
		Msg("Crawl finished")

	return report, crawlErr
}

// Start runs job repeatedly every crawl interval until the context is done
func (w *Worker) Start(job crawler.Job) {
	for {
		if _, err := w.RunOnce(job); err != nil {
			logger.LogError(w.crawler.GetName(), err, "run failed")
		}

		select {
		case <-w.ctx.Done():
			logger.ForWorker().Info().Msg("Worker stopped")
			return
		case <-time.After(w.crawlInterval):
		}
	}
}

// logFirstRecord shows a sample record outside production
func (w *Worker) logFirstRecord(records []crawler.ReviewRecord) {
	if w.production || len(records) == 0 {
		return
	}
	data, err := json.Marshal(records[0])
	if err != nil {
		return
	}
	logger.ForWorker().Debug().RawJSON("review", data).Msg("First review")
}
