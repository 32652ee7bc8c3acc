// Copyright 2026 The duplicityfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the mount's static configuration: logging
// severity and format, log rotation, and passthrough FUSE mount
// options. Values are populated by cmd from flags and an optional
// config file, and read thereafter by internal/logger and cmd/mount.
package config

// Severity levels accepted by Logging.Severity, ordered from most to
// least verbose. OFF disables logging entirely.
const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

// LogRotateConfig mirrors lumberjack's rotation knobs.
type LogRotateConfig struct {
	MaxFileSizeMB   int
	BackupFileCount int
	Compress        bool
}

// DefaultLogRotateConfig matches gcsfuse's defaults: 512MB per file, no
// cap on backups, gzip them.
func DefaultLogRotateConfig() LogRotateConfig {
	return LogRotateConfig{
		MaxFileSizeMB:   512,
		BackupFileCount: 0,
		Compress:        true,
	}
}

// LoggingConfig controls where and how the mount logs.
type LoggingConfig struct {
	Severity        string
	Format          string // "text" or "json"
	FilePath        string // empty means stderr
	LogRotateConfig LogRotateConfig
}

// Config is the mount's full static configuration.
type Config struct {
	Logging LoggingConfig

	// MountOptions holds raw "-o key=value" pairs, parsed by
	// internal/mountutil and passed to fuse.Mount's MountConfig.
	MountOptions map[string]string
}

// DefaultConfig returns the configuration used when no flags or config
// file override it.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Severity:        INFO,
			Format:          "text",
			LogRotateConfig: DefaultLogRotateConfig(),
		},
		MountOptions: map[string]string{},
	}
}
