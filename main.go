package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sjsage522/reviewworker/config"
	"sjsage522/reviewworker/internal"
	"sjsage522/reviewworker/internal/crawler"
	"sjsage522/reviewworker/logger"
	scrapeerrors "sjsage522/reviewworker/pkg/errors"
	"sjsage522/reviewworker/services/cache"
	"sjsage522/reviewworker/services/metrics"
	"sjsage522/reviewworker/services/proxy"
	"sjsage522/reviewworker/services/publisher"
	"sjsage522/reviewworker/services/sink"
	"sjsage522/reviewworker/services/worker"
)

var version = "dev"

// options are the command line flags of one run
type options struct {
	website   string
	company   string
	startDate string
	endDate   string
	url       string
	output    string
	maxPages  int
	watch     bool
}

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger first
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("Run failed: %v", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "reviewworker",
		Short:   "Scrape product reviews from g2 or capterra into JSON",
		Version: version,
		Example: `  # All g2 reviews of a product written in March 2024
  reviewworker -w g2 -c "Acme CRM" -s 2024-03-01 -e 2024-03-31

  # One capterra review page
  reviewworker -w capterra -c acme -u https://www.capterra.com/p/123/Acme/reviews/`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := opts.job()
			if err != nil {
				return err
			}

			cfg := config.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return scrapeerrors.NewConfiguration("invalid configuration", err)
			}

			return execute(cmd.Context(), cfg, opts, job)
		},
	}

	cmd.Flags().StringVarP(&opts.website, "website", "w", "", "Review site to scrape (g2, capterra)")
	cmd.Flags().StringVarP(&opts.company, "company", "c", "", "Company or product name")
	cmd.Flags().StringVarP(&opts.startDate, "start-date", "s", "", "First review day to keep, YYYY-MM-DD")
	cmd.Flags().StringVarP(&opts.endDate, "end-date", "e", "", "Last review day to keep, YYYY-MM-DD")
	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "Review page URL (capterra)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (defaults to <website>_reviews.json in OUTPUT_DIR)")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", 0, "Stop after this many pages (0 for no limit)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Repeat the run every CRAWL_INTERVAL_SECONDS")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return scrapeerrors.NewConfiguration("invalid flags", err)
	})

	return cmd
}

// job validates the flags and turns them into a crawl job
func (o *options) job() (crawler.Job, error) {
	o.website = strings.ToLower(strings.TrimSpace(o.website))
	job := crawler.Job{
		Company:  strings.TrimSpace(o.company),
		URL:      strings.TrimSpace(o.url),
		MaxPages: o.maxPages,
	}

	if o.maxPages < 0 {
		return job, scrapeerrors.NewConfiguration("--max-pages must not be negative", nil)
	}

	switch o.website {
	case "":
		return job, scrapeerrors.NewConfiguration("--website is required", nil)
	case crawler.SiteG2:
		if job.Company == "" {
			return job, scrapeerrors.NewConfiguration("--company is required for g2", nil)
		}
		if o.startDate == "" || o.endDate == "" {
			return job, scrapeerrors.NewConfiguration("--start-date and --end-date are required for g2", nil)
		}
		window, err := crawler.ParseDateWindow(o.startDate, o.endDate)
		if err != nil {
			return job, scrapeerrors.NewConfiguration("invalid date range", err)
		}
		job.Window = window
	case crawler.SiteCapterra:
		if job.URL == "" {
			return job, scrapeerrors.NewConfiguration("--url is required for capterra", nil)
		}
		u, err := url.ParseRequestURI(job.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return job, scrapeerrors.NewConfiguration(fmt.Sprintf("invalid --url %q", job.URL), err)
		}
	default:
		return job, scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported website %q (want g2 or capterra)", o.website), nil)
	}

	return job, nil
}

// execute wires the services for one site and runs the job
func execute(ctx context.Context, cfg *config.Config, opts *options, job crawler.Job) error {
	log := logger.ForSource(opts.website)

	sites, err := crawler.LoadSiteOverrides(cfg.SelectorsFile, crawler.DefaultSiteConfigs())
	if err != nil {
		return scrapeerrors.NewConfiguration("invalid selectors file", err)
	}

	deps, err := initializeServices(ctx, cfg, opts.website)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	if cfg.MetricsAddr != "" {
		if srv := metrics.Serve(cfg.MetricsAddr, metrics.InitRegistry()); srv != nil {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}
	}

	guard := cache.NewRateLimitGuard(deps.Cache, time.Duration(cfg.BlockSeconds)*time.Second)
	c, err := crawler.CreateCrawler(cfg, opts.website, sites, crawler.Dependencies{
		Fetcher: deps.Fetcher,
		Guard:   guard,
	})
	if err != nil {
		return scrapeerrors.NewConfiguration("failed to create crawler", err)
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("website", opts.website).
		Str("company", job.Company).
		Str("window", job.Window.String()).
		Bool("watch", opts.watch).
		Msg("Starting application")

	if !cfg.IsProduction() {
		log.Debug().
			Str("render_service", cfg.RenderServiceURL).
			Bool("render_js", cfg.RenderJS).
			Str("output_dir", cfg.OutputDir).
			Bool("redis", cfg.RedisAddr != "").
			Bool("memcache", cfg.MemcacheAddr != "").
			Msg("Configuration")
	}

	w := worker.NewWorker(ctx, c, sink.NewFileSink(cfg.OutputDir, opts.output), deps.Publisher, cfg.CrawlInterval, cfg.IsProduction())

	if opts.watch {
		w.Start(job)
		log.Info().Msg("Shutting down gracefully...")
		return nil
	}

	report, err := w.RunOnce(job)
	if report != nil && report.Path != "" {
		log.Info().
			Str("path", report.Path).
			Int("reviews", report.Reviews).
			Msg("Reviews saved")
	}
	return err
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config, website string) (*internal.Dependencies, error) {
	deps := &internal.Dependencies{
		Fetcher: proxy.NewRenderClient(cfg.RenderServiceURL, cfg.ScraperAPIKey, cfg.RenderJS, cfg.FetchTimeout).ForSource(website),
	}

	// Initialize cache service
	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr, "reviewworker:")
		if err := memcacheService.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable (%v), using in-memory cache", cfg.MemcacheAddr, err)
			deps.Cache = cache.NewMemoryCacheService()
		} else {
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
			deps.Cache = memcacheService
		}
	} else {
		deps.Cache = cache.NewMemoryCacheService()
	}

	// Initialize publisher
	if cfg.RedisAddr != "" {
		redisPublisher, err := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		if err != nil {
			return nil, err
		}
		deps.Publisher = redisPublisher

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return deps, nil
}

// exitCode maps configuration errors to 2 and every other failure to 1
func exitCode(err error) int {
	if scrapeerrors.IsType(err, scrapeerrors.ErrorTypeConfiguration) {
		return 2
	}
	return 1
}
