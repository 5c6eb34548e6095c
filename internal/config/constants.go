// Package config centralizes the tunables of the live-eval engine: poll
// interval, recognized source extensions, and the env vars that override
// the defaults.
package config

import "time"

// DefaultPollInterval is how often the file watcher checks mtime+size when
// no faster OS-notification backend is wired in.
const DefaultPollInterval = 200 * time.Millisecond

// SourceFileExt is the canonical extension for a watched live-eval source.
const SourceFileExt = ".live"

// SourceFileExtensions lists the extensions recognized as live-eval
// sources. The CLI does not check a watched path's extension.
var SourceFileExtensions = []string{".live", ".cells", ".nb"}

// EnvPollInterval overrides DefaultPollInterval, parsed with
// time.ParseDuration (e.g. "500ms").
const EnvPollInterval = "LIVEEVAL_POLL_INTERVAL"

// EnvListenAddr overrides DefaultListenAddr.
const EnvListenAddr = "LIVEEVAL_ADDR"

// DefaultListenAddr is used when neither the yaml config nor
// EnvListenAddr specify one.
const DefaultListenAddr = "127.0.0.1:7337"

// EnvConfigFile points at an optional yaml config file; if unset,
// "liveeval.yaml" in the current directory is tried and silently skipped
// if absent.
const EnvConfigFile = "LIVEEVAL_CONFIG"
