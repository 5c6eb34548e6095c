package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the optional on-disk override layer, e.g.:
//
//	pollInterval: 150ms
//	listenAddr: ":8080"
type File struct {
	PollInterval string `yaml:"pollInterval"`
	ListenAddr   string `yaml:"listenAddr"`
}

// Resolved is the fully-merged configuration: env vars override the yaml
// file, which overrides the built-in defaults.
type Resolved struct {
	PollInterval time.Duration
	ListenAddr   string
}

// Load merges DefaultPollInterval/DefaultListenAddr, the optional yaml file
// at path (skipped silently if unreadable), and env var overrides, in that
// increasing order of precedence.
func Load(path string) Resolved {
	r := Resolved{PollInterval: DefaultPollInterval, ListenAddr: DefaultListenAddr}

	if path == "" {
		path = "liveeval.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		var f File
		if err := yaml.Unmarshal(data, &f); err == nil {
			if f.PollInterval != "" {
				if d, err := time.ParseDuration(f.PollInterval); err == nil {
					r.PollInterval = d
				}
			}
			if f.ListenAddr != "" {
				r.ListenAddr = f.ListenAddr
			}
		}
	}

	if v := os.Getenv(EnvPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			r.PollInterval = d
		}
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		r.ListenAddr = v
	}

	return r
}
