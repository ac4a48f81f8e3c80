package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/jayquinn/interview-scheduler-sub001/infra/notify"
)

// Config is the root of the scheduler configuration file.
type Config struct {
	Plan      PlanConfig      `json:"plan"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Metrics   metrics.Config  `json:"metrics"`
	Notify    notify.Config   `json:"notify"`
	Logging   LoggingConfig   `json:"logging"`
	Output    OutputConfig    `json:"output"`
}

// Load reads the configuration file, applies environment overrides with the
// IS_ prefix (IS_SCHEDULER__WORKERS=4 sets scheduler.workers), fills in
// defaults, and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The callback yields dotted keys, so
	// the provider must split on "." to nest them into the config tree.
	if err := k.Load(env.Provider("IS_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "is_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Plan.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Output.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Plan.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
