package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/photoupload/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// components (such as -c) do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-n", "-r", "-i", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.S3Endpoint, "a", cfg.S3Endpoint, "S3-compatible endpoint URL")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "destination bucket")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")
	fs.IntVar(&cfg.Concurrency, "n", cfg.Concurrency, "upload concurrency")
	fs.IntVar(&cfg.Retries, "r", cfg.Retries, "retries per write")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
