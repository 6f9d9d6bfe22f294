package config

import "time"

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Buckets BucketConfig  `yaml:"buckets"`
	Archive ArchiveConfig `yaml:"archive"`
	Probe   ProbeConfig   `yaml:"probe"`
	Logging LoggingConfig `yaml:"logging"`
}

type SourceConfig struct {
	Path string `yaml:"path"`
}

type OutputConfig struct {
	Path      string          `yaml:"path"` // empty selects <source>/archives
	Retention RetentionConfig `yaml:"retention"`
}

type RetentionConfig struct {
	LastCount int             `yaml:"lastCount"`
	Rules     []RetentionRule `yaml:"rules"`
}

type RetentionRule struct {
	Name  string `yaml:"name"`
	Cron  string `yaml:"cron"`
	Count int    `yaml:"count"`
}

// BucketConfig bounds the run to a contiguous range of size bands.
type BucketConfig struct {
	Start string `yaml:"start"` // e.g. "<1 GB"
	End   string `yaml:"end"`   // e.g. "10-50 GB"
}

type ArchiveConfig struct {
	Mode               string        `yaml:"mode"`    // "exec", "native"
	Level              int           `yaml:"level"`   // zstd compression level
	Threads            int           `yaml:"threads"` // zstd -T semantics, 0 = all cores
	Retries            int           `yaml:"retries"` // total attempts per folder
	RetrySleep         time.Duration `yaml:"retrySleep"`
	SkipExisting       bool          `yaml:"skipExisting"`
	DeleteAfterArchive bool          `yaml:"deleteAfterArchive"`
	VerifyBeforeDelete bool          `yaml:"verifyBeforeDelete"`
	// argv templates for exec mode; {dir}, {out}, {archive}, {level}
	// and {threads} are substituted per run
	SerializeArgv []string `yaml:"serializeArgv"`
	CompressArgv  []string `yaml:"compressArgv"`
	VerifyArgv    []string `yaml:"verifyArgv"`
}

type ProbeConfig struct {
	Mode    string        `yaml:"mode"` // "command", "walk"
	Argv    []string      `yaml:"argv"` // {dir} is substituted per folder
	Timeout time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "info", "debug", etc.
	Format string `yaml:"format"` // "json", "text"
}
