package tasks

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/subosito/gotenv"

	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/shell"
)

// Feature is one front-end tool: the npm packages it needs and the files it
// writes into the project.
type Feature struct {
	Key      string
	Title    string
	Packages []string
	Files    []file
}

// Front-end features by selection key.
var (
	Tailwind = Feature{
		Key:      "tailwind",
		Title:    "Tailwind CSS",
		Packages: []string{"tailwindcss@3", "postcss", "autoprefixer"},
		Files: []file{
			{Asset: "tailwind.config.js", Target: "tailwind.config.js"},
			{Asset: "postcss.config.js", Target: "postcss.config.js"},
			{Asset: "tailwind.css", Target: "resources/css/app.css", How: prependOnce},
		},
	}
	ESLintPrettier = Feature{
		Key:      "eslint-prettier",
		Title:    "ESLint and Prettier",
		Packages: []string{"eslint@8", "prettier", "eslint-config-prettier"},
		Files: []file{
			{Asset: ".eslintrc.json", Target: ".eslintrc.json"},
			{Asset: ".prettierrc.json", Target: ".prettierrc.json"},
		},
	}
	BladeFormatter = Feature{
		Key:      "blade-formatter",
		Title:    "Blade Formatter",
		Packages: []string{"blade-formatter"},
		Files: []file{
			{Asset: ".bladeformatterrc.json", Target: ".bladeformatterrc.json"},
		},
	}
	Alpine = Feature{
		Key:      "alpine",
		Title:    "Alpine.js",
		Packages: []string{"alpinejs"},
		Files: []file{
			{Asset: "alpine.js", Target: "resources/js/app.js", How: appendOnce},
		},
	}
)

// bootstrapNpm runs `npm install` at most once per run, and only when the
// project has no node_modules yet. Later calls return the first outcome.
func (r *Runner) bootstrapNpm(ctx context.Context) Result {
	if r.npm != nil {
		return *r.npm
	}

	res := success()
	if info, err := os.Stat(r.Project.File("node_modules")); err != nil || !info.IsDir() {
		res = r.exec(ctx, shell.Request{Commands: []string{r.Binaries.NPM + " install"}, Raw: true})
	}
	r.npm = &res // Shared by every front-end feature of the run
	return res
}

// InstallFrontEndTooling installs the npm packages of f and writes its files.
func (r *Runner) InstallFrontEndTooling(ctx context.Context, f Feature) Result {
	return task("🎨", "Installing "+f.Title, func() Result {
		if res := r.bootstrapNpm(ctx); !res.Succeeded {
			res.Message = "npm install: " + res.Message
			return res
		}

		res := r.exec(ctx, shell.Request{
			Commands: []string{r.Binaries.NPM + " install -D " + strings.Join(f.Packages, " ")},
			Raw:      true,
		})
		if !res.Succeeded {
			return res
		}

		for _, fl := range f.Files {
			if err := place(r.Project.Path, fl); err != nil {
				return failure(err)
			}
		}
		return success()
	})
}

// ValetURL returns the https address Valet serves the project under.
func ValetURL(name string) string {
	return "https://" + strings.ToLower(name) + ".test"
}

// ConfigureViteForValet makes Vite serve assets with the Valet certificate of
// the project: it writes vite.config.js and sets VITE_APP_URL in .env.
func (r *Runner) ConfigureViteForValet(_ context.Context, name string) Result {
	return task("🔒", "Configuring Vite for Valet", func() Result {
		if err := place(r.Project.Path, file{Asset: "vite.config.js", Target: "vite.config.js"}); err != nil {
			return failure(err)
		}
		if err := setEnv(r.Project.File(".env"), "VITE_APP_URL", ValetURL(name)); err != nil {
			return failure(err)
		}
		return success()
	})
}

// setEnv appends key=value to the dotenv file at path unless key is already set.
func setEnv(path, key, value string) error {
	if _, err := os.Stat(path); err == nil {
		env, err := gotenv.Read(path)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		if _, ok := env[key]; ok {
			logger.Debug("[DEBUG] %s already set in %s\n", key, path)
			return nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	line := key + "=" + value + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		line = "\n" + line // Keep the previous last line intact
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() // Closed after the single write
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
