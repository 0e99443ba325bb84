package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/adobe/fetch-retry-go/pkg/config"
	"github.com/adobe/fetch-retry-go/pkg/fetch"
	"github.com/adobe/fetch-retry-go/pkg/logger"
	"github.com/adobe/fetch-retry-go/pkg/retry"
)

var (
	configFile    = flag.String("config", "", "Path to configuration file")
	method        = flag.String("method", "GET", "HTTP method")
	data          = flag.String("data", "", "Request body")
	headers       = flag.String("headers", "", "Request headers as comma-separated key=value pairs")
	maxDuration   = flag.Duration("max-duration", 0, "Total retry budget (0 uses defaults)")
	initialDelay  = flag.Duration("initial-delay", 0, "Delay before the first retry (0 uses defaults)")
	backoff       = flag.Int("backoff", 0, "Backoff factor (0 uses defaults)")
	socketTimeout = flag.Duration("socket-timeout", 0, "Per-attempt timeout (0 uses defaults)")
	forceTimeout  = flag.Bool("force-socket-timeout", false, "Keep the socket timeout even when it exceeds the budget")
	noRetry       = flag.Bool("no-retry", false, "Perform exactly one attempt")
	logLevel      = flag.String("log-level", "", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: fetchretry [flags] <url>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	url := strings.TrimSpace(args[0])

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	opts := []fetch.Option{fetch.WithMethod(strings.ToUpper(*method))}
	if *data != "" {
		opts = append(opts, fetch.WithBody([]byte(*data)))
	}
	for _, pair := range strings.Split(*headers, ",") {
		if key, value, ok := strings.Cut(pair, "="); ok {
			opts = append(opts, fetch.WithHeader(strings.TrimSpace(key), strings.TrimSpace(value)))
		}
	}
	if *noRetry {
		opts = append(opts, fetch.WithRetryDisabled())
	} else {
		opts = append(opts, fetch.WithRetryOptions(retryOptions()...))
	}

	client := fetch.New(
		fetch.WithDefaults(cfg.Retry),
		fetch.WithLogger(log),
	)

	start := time.Now()
	resp, err := client.Fetch(context.Background(), url, opts...)
	if err != nil {
		log.ErrorWithFields("request failed", map[string]interface{}{
			"url":     url,
			"error":   err.Error(),
			"elapsed": time.Since(start),
		})
		os.Exit(1)
	}
	defer resp.Body.Close()

	log.InfoWithFields("request completed", map[string]interface{}{
		"url":            url,
		"status":         resp.StatusCode,
		"attempts":       resp.Attempts,
		"socket_timeout": resp.SocketTimeout,
		"elapsed":        time.Since(start),
	})

	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// retryOptions maps the non-zero flags onto policy overrides
func retryOptions() []retry.Option {
	var opts []retry.Option
	if *maxDuration != 0 {
		opts = append(opts, retry.WithMaxDuration(*maxDuration))
	}
	if *initialDelay != 0 {
		opts = append(opts, retry.WithInitialDelay(*initialDelay))
	}
	if *backoff != 0 {
		opts = append(opts, retry.WithBackoff(*backoff))
	}
	if *socketTimeout != 0 {
		opts = append(opts, retry.WithSocketTimeout(*socketTimeout))
	}
	if *forceTimeout {
		opts = append(opts, retry.WithForceSocketTimeout())
	}
	return opts
}
