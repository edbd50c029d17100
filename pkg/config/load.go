package config

import (
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/logging"
)

// raw mirrors the on-disk configuration shape before compilation. Filter,
// rule and path-element values are schemaless (string or single-key map)
// and compiled into typed ASTs afterwards.
type rawConfig struct {
	Sources    map[string]rawSource `koanf:"sources"`
	Targets    map[string]string    `koanf:"targets"`
	FileGroups []rawGroup           `koanf:"file_groups"`
	Settings   rawSettings          `koanf:"settings"`
}

type rawSource struct {
	Path        string   `koanf:"path"`
	IgnorePaths []string `koanf:"ignore_paths"`
	Disabled    bool     `koanf:"disabled"`
}

type rawGroup struct {
	Name    string      `koanf:"name"`
	Sources interface{} `koanf:"sources"`
	Filter  interface{} `koanf:"filter"`
	Rule    interface{} `koanf:"rule"`
}

type rawSettings struct {
	FileSizeStyle   string `koanf:"file_size_style"`
	CollisionPolicy string `koanf:"collision_policy"`
}

// Load reads, parses and compiles a configuration file. YAML is the
// default; a .toml extension selects the TOML parser.
func Load(path string) (*Config, error) {
	logger := logging.GetLogger("config.loader")

	k := koanf.New(".")
	var parser koanf.Parser
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parser = toml.Parser()
	} else {
		parser = yaml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "loading %s", path)
	}

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing %s", path)
	}

	cfg, err := compile(&raw)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("sources", len(cfg.Sources)).
		Int("targets", len(cfg.Targets)).
		Int("fileGroups", len(cfg.Groups)).
		Str("path", path).
		Msg("Configuration loaded")

	return cfg, nil
}
