package config

// Package is one optional composer dev dependency the user is asked about.
// - Key: stable identifier used by the rest of the tool (e.g., "phpcs").
// - Title: human-readable name shown in the question.
// - Name: composer package identifier (e.g., squizlabs/php_codesniffer).
// - Provider: service provider whose config gets published after install, if any.
// - Default: the pre-selected answer of the question.
type Package struct {
	Key      string `yaml:"key"`
	Title    string `yaml:"title"`
	Name     string `yaml:"package"`
	Provider string `yaml:"provider"`
	Default  bool   `yaml:"default"`
}

// DisplayTitle returns the title, or the package identifier when no title is set.
func (p Package) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}

// Catalog is the ordered list of optional dev packages.
type Catalog struct {
	Packages []Package `yaml:"packages"`
}

// Find returns the package registered under key.
func (c Catalog) Find(key string) (Package, bool) {
	for _, p := range c.Packages {
		if p.Key == key {
			return p, true
		}
	}
	return Package{}, false
}

// Binaries holds the command names (or full paths) of every external tool the
// run shells out to. An empty Composer means "detect".
type Binaries struct {
	Laravel  string `mapstructure:"laravel"`
	Composer string `mapstructure:"composer"`
	PHP      string `mapstructure:"php"`
	NPM      string `mapstructure:"npm"`
	Git      string `mapstructure:"git"`
	GH       string `mapstructure:"gh"`
	Valet    string `mapstructure:"valet"`
}

// ComposerSettings controls how composer.json gets rewritten.
type ComposerSettings struct {
	KeepUnknownScripts bool     `mapstructure:"keep_unknown_scripts"`
	ScriptOrder        []string `mapstructure:"script_order"`
}

// GitSettings controls the git bootstrap.
type GitSettings struct {
	FallbackBranch string `mapstructure:"fallback_branch"`
	CommitMessage  string `mapstructure:"commit_message"`
}

// Settings is the fully resolved configuration of a run.
type Settings struct {
	Binaries     Binaries         `mapstructure:"binaries"`
	Policy       string           `mapstructure:"policy"`
	Composer     ComposerSettings `mapstructure:"composer"`
	Git          GitSettings      `mapstructure:"git"`
	IDE          string           `mapstructure:"ide"`
	PackagesFile string           `mapstructure:"packages_file"`

	// Catalog is not read from the settings file directly; it is loaded from
	// PackagesFile, or from the embedded default catalog.
	Catalog Catalog `mapstructure:"-"`
}

// Failure policies of the task phase.
const (
	PolicyBestEffort = "best-effort"
	PolicyFailFast   = "fail-fast"
)
