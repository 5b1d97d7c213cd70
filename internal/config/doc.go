// Package config loads runtime configuration for the photo uploader.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   S3-compatible endpoint URL
//	-b string   destination bucket
//	-d string   SQLite database path for the offline queue
//	-n int      upload concurrency
//	-r int      retries per write
//	-i int      online status check interval (seconds)
//	-m string   address for the Prometheus metrics endpoint (empty disables it)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "500ms" or
// integer nanoseconds:
//
//	{
//	  "s3_endpoint": "http://127.0.0.1:9000",
//	  "bucket": "profile-photos",
//	  "backoff": "500ms",
//	  "upload_timeout": "60s",
//	  "max_per_batch": 6
//	}
package config
