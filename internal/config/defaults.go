package config

import "time"

// Default returns the stock configuration. Load unmarshals the YAML
// document over it, so absent keys keep these values.
func Default() *Config {
	return &Config{
		Buckets: BucketConfig{
			Start: "<1 GB",
			End:   "10 TB+",
		},
		Archive: ArchiveConfig{
			Mode:               "exec",
			Level:              12,
			Threads:            8,
			Retries:            3,
			RetrySleep:         10 * time.Second,
			SkipExisting:       true,
			VerifyBeforeDelete: true,
		},
		Probe: ProbeConfig{
			Mode:    "command",
			Timeout: 4 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
