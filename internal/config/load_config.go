package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"laravel-assembler/internal/composer"
	"laravel-assembler/internal/logger"
)

//go:embed packages.yaml
var defaultPackages []byte

const (
	appDir    = "assembler"
	fileName  = "config"
	fileType  = "yaml"
	envPrefix = "ASSEMBLER"
)

// DefaultPath returns the location of the user settings file
// ($XDG_CONFIG_HOME/assembler/config.yaml or the OS equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appDir, fileName+"."+fileType)
	}
	return filepath.Join(dir, appDir, fileName+"."+fileType)
}

// setDefaults registers every setting with its default so env overrides work
// even for keys missing from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("binaries.laravel", "laravel")
	v.SetDefault("binaries.composer", "")
	v.SetDefault("binaries.php", "php")
	v.SetDefault("binaries.npm", "npm")
	v.SetDefault("binaries.git", "git")
	v.SetDefault("binaries.gh", "gh")
	v.SetDefault("binaries.valet", "valet")
	v.SetDefault("policy", PolicyBestEffort)
	v.SetDefault("composer.keep_unknown_scripts", true)
	v.SetDefault("composer.script_order", composer.CanonicalOrder)
	v.SetDefault("git.fallback_branch", "master")
	v.SetDefault("git.commit_message", "Initial commit")
	v.SetDefault("ide", "")
	v.SetDefault("packages_file", "")
}

// Load reads the settings file at path (DefaultPath when empty), overlays
// ASSEMBLER_* environment variables, and loads the dev package catalog.
// A missing file is only an error when the path was given explicitly.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("reading settings %s: %w", path, err)
		}
		logger.Debug("[DEBUG] No settings file at %s, using defaults\n", path)
	} else {
		logger.Debug("[DEBUG] Loaded settings from %s\n", v.ConfigFileUsed())
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	catalog, err := LoadCatalog(s.PackagesFile)
	if err != nil {
		return nil, err
	}
	s.Catalog = catalog

	return &s, nil
}

func (s *Settings) validate() error {
	switch s.Policy {
	case PolicyBestEffort, PolicyFailFast:
	default:
		return fmt.Errorf("unknown policy %q: use %q or %q", s.Policy, PolicyBestEffort, PolicyFailFast)
	}
	if len(s.Composer.ScriptOrder) == 0 {
		s.Composer.ScriptOrder = composer.CanonicalOrder
	}
	return nil
}

// LoadCatalog parses the dev package catalog at path, or the embedded default
// catalog when path is empty.
func LoadCatalog(path string) (Catalog, error) {
	data := defaultPackages
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Catalog{}, fmt.Errorf("reading package catalog %s: %w", path, err)
		}
		data = raw
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parsing package catalog: %w", err)
	}

	seen := make(map[string]bool)
	for i, p := range c.Packages {
		if p.Key == "" || p.Name == "" {
			return Catalog{}, fmt.Errorf("package catalog entry %d needs both key and package", i)
		}
		if seen[p.Key] {
			return Catalog{}, fmt.Errorf("package catalog has duplicate key %q", p.Key)
		}
		seen[p.Key] = true
	}
	return c, nil
}

// ComposerCommand returns the composer invocation: the configured binary,
// `php composer.phar` when one of dirs holds a composer.phar, or plain
// `composer`. dirs[0] is the directory composer runs in; a phar found in a
// later directory is called by its absolute path.
func (s *Settings) ComposerCommand(dirs ...string) string {
	if s.Binaries.Composer != "" {
		return s.Binaries.Composer
	}
	for i, dir := range dirs {
		phar := filepath.Join(dir, "composer.phar")
		if _, err := os.Stat(phar); err != nil {
			continue
		}
		if i == 0 {
			return fmt.Sprintf("%q composer.phar", s.Binaries.PHP)
		}
		return fmt.Sprintf(`%q "%s"`, s.Binaries.PHP, phar)
	}
	return "composer"
}
