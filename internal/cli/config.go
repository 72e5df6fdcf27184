package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/depsynth/pkg/errors"
)

// Config holds the settings of a generate run after all sources are merged.
type Config struct {
	Base       string            `mapstructure:"base"`      // base package.json (default manifest when empty)
	Modules    string            `mapstructure:"modules"`   // module reference file, "-" for stdin
	OutDir     string            `mapstructure:"out_dir"`   // output directory
	FileName   string            `mapstructure:"file_name"` // output file name
	Root       string            `mapstructure:"root"`      // default lookup directory
	Exclude    []string          `mapstructure:"exclude"`   // packages never looked up
	Builtins   []string          `mapstructure:"builtins"`  // extra runtime built-ins
	Additional map[string]string `mapstructure:"-"`         // extra dependencies, lowest priority; read from the file directly
	Stdout     bool              `mapstructure:"stdout"`    // write to stdout instead of a file
	Verbose    bool              `mapstructure:"verbose"`
}

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() *Config {
	return &Config{
		OutDir:     ".",
		FileName:   "package.json",
		Exclude:    []string{},
		Builtins:   []string{},
		Additional: map[string]string{},
	}
}

// configKeys maps config keys to the flags that override them.
var configKeys = map[string]string{
	"base":      "base",
	"modules":   "modules",
	"out_dir":   "out-dir",
	"file_name": "file-name",
	"root":      "root",
	"exclude":   "exclude",
	"builtins":  "builtin",
	"stdout":    "stdout",
	"verbose":   "verbose",
	// additional bypasses viper, which lowercases keys; npm names are
	// case-sensitive. --additional entries are merged on top.
	"additional": "",
}

// loadConfig merges defaults, the config file, DEPSYNTH_* environment
// variables and flags, in increasing order of precedence.
//
// An explicit path must exist. Without one, depsynth.toml in the working
// directory is used when present.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("base", defaults.Base)
	v.SetDefault("modules", defaults.Modules)
	v.SetDefault("out_dir", defaults.OutDir)
	v.SetDefault("file_name", defaults.FileName)
	v.SetDefault("root", defaults.Root)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("builtins", defaults.Builtins)
	v.SetDefault("stdout", defaults.Stdout)
	v.SetDefault("verbose", defaults.Verbose)

	additional := defaults.Additional
	if path == "" && fileExists(configFileName) {
		path = configFileName
	}
	if path != "" {
		if !fileExists(path) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		table, err := loadTOMLIntoViper(v, path)
		if err != nil {
			return nil, err
		}
		additional = table
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range configKeys {
			if name == "" {
				continue
			}
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "can't decode configuration")
	}
	cfg.Additional = additional
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadTOMLIntoViper decodes a TOML file and merges it into v. The
// [additional] table is returned as decoded instead, with its keys intact.
// Unknown keys are rejected so typos don't silently fall back to defaults.
func loadTOMLIntoViper(v *viper.Viper, path string) (map[string]string, error) {
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "can't parse %s", path)
	}

	for key := range raw {
		if _, ok := configKeys[key]; !ok {
			known := make([]string, 0, len(configKeys))
			for k := range configKeys {
				known = append(known, k)
			}
			slices.Sort(known)
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s (known: %s)", key, path, strings.Join(known, ", "))
		}
	}

	additional, err := additionalTable(raw["additional"])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid [additional] in %s", path)
	}
	delete(raw, "additional")

	if err := v.MergeConfigMap(raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "can't merge %s", path)
	}
	return additional, nil
}

// additionalTable converts the decoded [additional] table. Versions must be
// strings.
func additionalTable(v any) (map[string]string, error) {
	out := map[string]string{}
	if v == nil {
		return out, nil
	}
	table, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("want a table of name = \"version\", got %T", v)
	}
	for name, version := range table {
		s, ok := version.(string)
		if !ok {
			return nil, fmt.Errorf("%s: version must be a string, got %T", name, version)
		}
		out[name] = s
	}
	return out, nil
}

func (c *Config) validate() error {
	if err := errors.ValidateManifestFilename(c.FileName); err != nil {
		return err
	}
	if c.OutDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "out_dir cannot be empty")
	}
	for name, version := range c.Additional {
		if err := errors.ValidatePackageName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "additional dependency %q", name)
		}
		if version == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "additional dependency %q has no version", name)
		}
	}
	return nil
}

// parseAdditional parses name=version pairs. The version may itself contain
// "=", as in "=1.0.0".
func parseAdditional(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, version, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		version = strings.TrimSpace(version)
		if !ok || name == "" || version == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid --additional %q (want name=version)", pair)
		}
		out[name] = version
	}
	return out, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
