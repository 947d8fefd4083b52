// Package config holds the names the inference engine treats specially and
// the per-project session configuration read from hintinfer.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level hintinfer.yaml configuration.
type Config struct {
	// TargetVersion is the version of the analyzed language (e.g. "3.8").
	// Inline annotations are ignored for targets below 3.0.
	TargetVersion string `yaml:"target_version,omitempty"`

	// TypingModule names the module generic annotations come from.
	// Defaults to "typing".
	TypingModule string `yaml:"typing_module,omitempty"`

	// MaxSteps caps the number of evaluation steps of a session.
	// Zero means unlimited.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Debug routes the session log to stderr.
	Debug bool `yaml:"debug,omitempty"`

	// Natives lists JSON snapshot files of additional native classes,
	// relative to the config file.
	Natives []string `yaml:"natives,omitempty"`

	dir    string
	target *semver.Version
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a hintinfer.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses hintinfer.yaml content from bytes.
// The path argument is used for error messages and to resolve native
// snapshot files.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for hintinfer.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{"hintinfer.yaml", "hintinfer.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.TargetVersion != "" {
		v, err := semver.NewVersion(c.TargetVersion)
		if err != nil {
			return fmt.Errorf("%s: target_version %q: %w", path, c.TargetVersion, err)
		}
		c.target = v
	}

	if c.MaxSteps < 0 {
		return fmt.Errorf("%s: max_steps must not be negative", path)
	}

	if c.TypingModule != "" && !isDottedName(c.TypingModule) {
		return fmt.Errorf("%s: typing_module %q is not a module name", path, c.TypingModule)
	}

	for i, native := range c.Natives {
		if native == "" {
			return fmt.Errorf("%s: natives[%d]: path is empty", path, i)
		}
		info, err := os.Stat(c.resolve(native))
		if err != nil {
			return fmt.Errorf("%s: natives[%d]: snapshot %q not found: %w", path, i, native, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s: natives[%d]: snapshot %q is a directory", path, i, native)
		}
	}

	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.TypingModule == "" {
		c.TypingModule = DefaultTypingModule
	}
	if c.TargetVersion == "" {
		c.TargetVersion = DefaultTargetVersion
	}
	if c.target == nil {
		c.target = semver.MustParse(c.TargetVersion)
	}
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// NativeFiles returns the native snapshot paths resolved against the
// config file's directory.
func (c *Config) NativeFiles() []string {
	files := make([]string, len(c.Natives))
	for i, native := range c.Natives {
		files[i] = c.resolve(native)
	}
	return files
}

// Target returns the parsed target version.
func (c *Config) Target() *semver.Version {
	if c.target == nil {
		c.setDefaults()
	}
	return c.target
}

// SetTarget overrides the target version.
func (c *Config) SetTarget(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("target version %q: %w", version, err)
	}
	c.TargetVersion, c.target = version, v
	return nil
}

// InlineAnnotations reports whether the target version has inline
// parameter and return annotations.
func (c *Config) InlineAnnotations() bool {
	return c.targets(InlineAnnotationConstraint)
}

// BuiltinGenerics reports whether builtin containers are subscriptable in
// annotations.
func (c *Config) BuiltinGenerics() bool {
	return c.targets(BuiltinGenericsConstraint)
}

func (c *Config) targets(constraint string) bool {
	check, err := semver.NewConstraint(constraint)
	if err != nil {
		return true
	}
	return check.Check(c.Target())
}

func isDottedName(name string) bool {
	start := true
	for _, r := range name {
		switch {
		case r == '.':
			if start {
				return false
			}
			start = true
		case r == '_' || unicode.IsLetter(r):
			start = false
		case unicode.IsDigit(r):
			if start {
				return false
			}
		default:
			return false
		}
	}
	return !start
}
