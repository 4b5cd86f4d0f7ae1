package tasks

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laravel-assembler/internal/composer"
	"laravel-assembler/internal/config"
	"laravel-assembler/internal/gitops"
	"laravel-assembler/internal/platform"
	"laravel-assembler/internal/project"
	"laravel-assembler/internal/shell"
	"laravel-assembler/internal/shell/shelltest"
)

func TestMain(m *testing.M) {
	// Keep status lines out of the test output.
	color.Output = io.Discard
	os.Exit(m.Run())
}

func newRunner(t *testing.T) (*Runner, *shelltest.Recorder) {
	t.Helper()
	p, err := project.New("my-app", t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(p.Path, 0o755))

	rec := shelltest.New()
	s := &config.Settings{Binaries: config.Binaries{
		PHP: "php", NPM: "npm", Git: "git", GH: "gh", Valet: "valet",
	}}
	return New(rec, p, platform.For("linux"), s, gitops.New(rec, p.Path)), rec
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func asset(t *testing.T, name string) string {
	t.Helper()
	data, err := Asset(name)
	require.NoError(t, err)
	return string(data)
}

func TestInstallDevPackages(t *testing.T) {
	ctx := context.Background()

	t.Run("single require", func(t *testing.T) {
		r, rec := newRunner(t)
		res := r.InstallDevPackages(ctx, []string{"squizlabs/php_codesniffer", "barryvdh/laravel-ide-helper"})

		assert.True(t, res.Succeeded)
		assert.Equal(t, "Installing additional dev dependencies", res.Label)
		assert.Equal(t, []string{
			"composer require --dev --quiet squizlabs/php_codesniffer barryvdh/laravel-ide-helper",
		}, rec.Lines())
		assert.False(t, rec.Requests[0].Raw)
		assert.Equal(t, r.Project.Path, rec.Requests[0].Dir)
	})

	t.Run("nothing selected", func(t *testing.T) {
		r, rec := newRunner(t)
		res := r.InstallDevPackages(ctx, nil)

		assert.True(t, res.Skipped)
		assert.False(t, res.Failed())
		assert.Empty(t, rec.Requests)
	})

	t.Run("composer fails", func(t *testing.T) {
		r, rec := newRunner(t)
		rec.FailOn("composer require")
		res := r.InstallDevPackages(ctx, []string{"a/b"})

		assert.True(t, res.Failed())
		assert.Equal(t, 1, res.ExitCode)
		assert.Equal(t, "exit status 1", res.Message)
	})

	t.Run("composer.phar in the project", func(t *testing.T) {
		r, rec := newRunner(t)
		require.NoError(t, os.WriteFile(r.Project.File("composer.phar"), nil, 0o644))
		r.InstallDevPackages(ctx, []string{"a/b"})

		assert.Equal(t, []string{`"php" composer.phar require --dev --quiet a/b`}, rec.Lines())
	})

	t.Run("composer.phar where the tool was started", func(t *testing.T) {
		r, rec := newRunner(t)
		phar := filepath.Join(filepath.Dir(r.Project.Path), "composer.phar")
		require.NoError(t, os.WriteFile(phar, nil, 0o644))
		r.InstallDevPackages(ctx, []string{"a/b"})

		assert.Equal(t, []string{`"php" "` + phar + `" require --dev --quiet a/b`}, rec.Lines())
	})
}

func TestHasVendorBin(t *testing.T) {
	r, _ := newRunner(t)
	assert.False(t, r.HasVendorBin("pint"))

	require.NoError(t, os.MkdirAll(r.Project.File("vendor", "bin"), 0o755))
	require.NoError(t, os.WriteFile(r.Project.File("vendor", "bin", "pint"), nil, 0o755))
	assert.True(t, r.HasVendorBin("pint"))
}

func TestArtisanChains(t *testing.T) {
	ctx := context.Background()
	r, rec := newRunner(t)

	require.True(t, r.GenerateIdeHelperArtifacts(ctx).Succeeded)
	require.True(t, r.PublishVendorConfig(ctx, []string{`Barryvdh\LaravelIdeHelper\IdeHelperServiceProvider`, `Foo\Bar`}).Succeeded)
	require.True(t, r.PublishVendorConfig(ctx, nil).Skipped)

	assert.Equal(t, []string{
		"php artisan ide-helper:eloquent && php artisan ide-helper:generate && php artisan ide-helper:meta",
		`php artisan vendor:publish --provider="Barryvdh\LaravelIdeHelper\IdeHelperServiceProvider" --tag=config --quiet && ` +
			`php artisan vendor:publish --provider="Foo\Bar" --tag=config --quiet`,
	}, rec.Lines())
}

func TestCreateLintConfigFile(t *testing.T) {
	r, _ := newRunner(t)
	require.True(t, r.CreateLintConfigFile(context.Background()).Succeeded)
	assert.Equal(t, asset(t, "phpcs.xml"), readFile(t, r.Project.File("phpcs.xml")))
}

func TestRegisterDevScripts(t *testing.T) {
	laravel := func() *composer.Scripts {
		s := composer.NewScripts()
		s.SetList("post-autoload-dump", `Illuminate\Foundation\ComposerScripts::postAutoloadDump`, "@php artisan package:discover --ansi")
		s.SetList("post-update-cmd", "@php artisan vendor:publish --tag=laravel-assets --ansi --force")
		return s
	}

	t.Run("lint tooling and IDE helper", func(t *testing.T) {
		r, _ := newRunner(t)
		s := laravel()
		r.RegisterDevScripts(s, true, true)

		phpcs, _ := s.Get("phpcs")
		assert.Equal(t, []string{"./vendor/bin/phpcs --standard=phpcs.xml"}, phpcs.Commands)
		assert.True(t, s.Has("phpcbf"))

		optimize, _ := s.Get("optimize")
		assert.Equal(t, append(append([]string{}, ideHelperOptimize...), "@phpcbf"), optimize.Commands)

		dump, _ := s.Get("post-autoload-dump")
		assert.Equal(t, "@optimize", dump.Commands[len(dump.Commands)-1])
		update, _ := s.Get("post-update-cmd")
		assert.Equal(t, []string{"@php artisan vendor:publish --tag=laravel-assets --ansi --force", "@optimize"}, update.Commands)
	})

	t.Run("no lint tooling", func(t *testing.T) {
		r, _ := newRunner(t)
		s := laravel()
		r.RegisterDevScripts(s, false, false)

		assert.False(t, s.Has("phpcs"))
		assert.False(t, s.Has("phpcbf"))
		optimize, _ := s.Get("optimize")
		assert.Equal(t, []string{"@pint"}, optimize.Commands)
		pint, _ := s.Get("pint")
		assert.Equal(t, []string{"./vendor/bin/pint"}, pint.Commands)
	})

	t.Run("twice", func(t *testing.T) {
		r, _ := newRunner(t)
		once := laravel()
		r.RegisterDevScripts(once, true, false)
		twice := once.Clone()
		r.RegisterDevScripts(twice, true, false)

		assert.True(t, once.Equal(twice))
	})
}

func TestInstallPreCommitHook(t *testing.T) {
	ctx := context.Background()

	t.Run("installs and registers", func(t *testing.T) {
		r, rec := newRunner(t)
		s := composer.NewScripts()

		res := r.InstallPreCommitHook(ctx, s)
		require.True(t, res.Succeeded)

		hook := r.Project.File("pre-commit-hook.sh")
		assert.Equal(t, asset(t, "pre-commit-hook.sh"), readFile(t, hook))
		info, err := os.Stat(hook)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

		chain := "cp pre-commit-hook.sh .git/hooks/pre-commit && chmod +x .git/hooks/pre-commit && chmod +x pre-commit-hook.sh"
		assert.Equal(t, []string{chain}, rec.Lines())
		assert.True(t, rec.Requests[0].Raw)

		install, _ := s.Get("install-hooks")
		assert.Equal(t, r.HookChain(), install.Commands)
		for _, name := range []string{"pre-install-cmd", "post-install-cmd"} {
			v, ok := s.Get(name)
			require.True(t, ok, name)
			assert.Equal(t, []string{"@install-hooks"}, v.Commands)
		}
	})

	t.Run("without composer.json", func(t *testing.T) {
		r, rec := newRunner(t)
		assert.True(t, r.InstallPreCommitHook(ctx, nil).Succeeded)
		assert.Len(t, rec.Requests, 1)
	})

	t.Run("windows copy", func(t *testing.T) {
		r, _ := newRunner(t)
		r.Platform = platform.For("windows")
		assert.Equal(t, `copy pre-commit-hook.sh .git\hooks\pre-commit`, r.HookChain()[0])
	})
}

func writeManifest(t *testing.T, dir, content string) *composer.Manifest {
	t.Helper()
	path := filepath.Join(dir, "composer.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	m, err := composer.Load(path)
	require.NoError(t, err)
	return m
}

func TestUpdateComposerFile(t *testing.T) {
	ctx := context.Background()

	t.Run("reorders and writes", func(t *testing.T) {
		r, _ := newRunner(t)
		m := writeManifest(t, r.Project.Path, `{"name": "acme/app", "scripts": {"pint": "./vendor/bin/pint", "dev": "npm run dev", "post-update-cmd": ["a"]}}`)

		res := r.UpdateComposerFile(ctx, m, composer.CanonicalOrder, true)
		require.True(t, res.Succeeded)

		reloaded, err := composer.Load(m.Path())
		require.NoError(t, err)
		assert.Equal(t, []string{"post-update-cmd", "pint", "dev"}, reloaded.Scripts.Keys())
	})

	t.Run("drops unknown scripts", func(t *testing.T) {
		r, _ := newRunner(t)
		m := writeManifest(t, r.Project.Path, `{"scripts": {"dev": "npm run dev", "pint": "./vendor/bin/pint"}}`)

		require.True(t, r.UpdateComposerFile(ctx, m, composer.CanonicalOrder, false).Succeeded)
		reloaded, err := composer.Load(m.Path())
		require.NoError(t, err)
		assert.Equal(t, []string{"pint"}, reloaded.Scripts.Keys())
	})

	t.Run("already in order", func(t *testing.T) {
		r, _ := newRunner(t)
		m := writeManifest(t, r.Project.Path, `{"scripts": {"post-autoload-dump": ["a"], "pint": "b"}}`)
		before := readFile(t, m.Path())

		res := r.UpdateComposerFile(ctx, m, composer.CanonicalOrder, true)
		assert.True(t, res.Skipped)
		assert.Equal(t, before, readFile(t, m.Path()))
	})

	t.Run("write fails", func(t *testing.T) {
		r, _ := newRunner(t)
		m := writeManifest(t, r.Project.Path, `{"scripts": {"pint": "b", "post-autoload-dump": ["a"]}}`)
		before := readFile(t, m.Path())
		// A directory where the temporary file goes makes the write fail.
		require.NoError(t, os.MkdirAll(filepath.Join(m.Path()+".tmp", "busy"), 0o755))

		res := r.UpdateComposerFile(ctx, m, composer.CanonicalOrder, true)
		assert.True(t, res.Failed())
		assert.Contains(t, res.Message, "composer.json.tmp")
		assert.Equal(t, before, readFile(t, m.Path()))
	})

	t.Run("no manifest", func(t *testing.T) {
		r, _ := newRunner(t)
		res := r.UpdateComposerFile(ctx, nil, composer.CanonicalOrder, true)
		assert.True(t, res.Failed())
		assert.Equal(t, errNoManifest.Error(), res.Message)
	})
}

func TestAppendGitIgnoreEntries(t *testing.T) {
	ctx := context.Background()
	r, _ := newRunner(t)
	path := r.Project.File(".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("/vendor\n.idea/\n/node_modules"), 0o644))

	require.True(t, r.AppendGitIgnoreEntries(ctx, GitIgnoreEntries).Succeeded)
	want := "/vendor\n.idea/\n/node_modules\n.phpunit.result.cache\n.phpstorm.meta.php\n_ide_helper.php\n_ide_helper_models.php\n"
	assert.Equal(t, want, readFile(t, path))

	require.True(t, r.AppendGitIgnoreEntries(ctx, GitIgnoreEntries).Succeeded)
	assert.Equal(t, want, readFile(t, path))
}

func TestAppendGitIgnoreEntries_NoFile(t *testing.T) {
	r, _ := newRunner(t)
	require.True(t, r.AppendGitIgnoreEntries(context.Background(), []string{".idea/"}).Succeeded)
	assert.Equal(t, ".idea/\n", readFile(t, r.Project.File(".gitignore")))
}

func TestGitTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("init", func(t *testing.T) {
		r, rec := newRunner(t)
		require.True(t, r.InitializeGitRepository(ctx, "main", "Initial commit").Succeeded)
		assert.True(t, rec.Ran("git init --quiet"))
		assert.True(t, rec.Ran("git branch -M main"))
	})

	t.Run("commit on clean tree is skipped", func(t *testing.T) {
		r, _ := newRunner(t)
		res := r.Commit(ctx, "README updated")
		assert.True(t, res.Skipped)
		assert.False(t, res.Failed())
	})

	t.Run("commit", func(t *testing.T) {
		r, rec := newRunner(t)
		rec.On("status --porcelain", func(shell.Request) shell.Result {
			return shell.Result{Succeeded: true, Output: "?? README.md\n"}
		})
		res := r.Commit(ctx, "README updated")
		assert.True(t, res.Succeeded)
		assert.True(t, rec.Ran(`git commit -m "README updated" --no-verify --quiet`))
	})

	t.Run("GitHub CLI logged out", func(t *testing.T) {
		r, rec := newRunner(t)
		rec.FailOn("gh auth status")

		res := r.CreatePrivateRepository(ctx, "my-app")
		assert.True(t, res.Skipped)
		assert.False(t, res.Failed())
		assert.Equal(t, gitops.ErrGitHubUnavailable.Error(), res.Message)
		assert.False(t, rec.Ran("repo create"))
	})

	t.Run("repository created", func(t *testing.T) {
		r, rec := newRunner(t)
		res := r.CreatePrivateRepository(ctx, "my-app")
		assert.True(t, res.Succeeded)
		assert.True(t, rec.Ran("gh repo create my-app --source=. --push --private"))
	})

	t.Run("git flow and push", func(t *testing.T) {
		r, rec := newRunner(t)
		require.True(t, r.StartGitFlow(ctx).Succeeded)
		require.True(t, r.PushPendingChanges(ctx, "main", "composer.json scripts updated.").Succeeded)
		assert.True(t, rec.Ran("git flow init -d"))
		assert.True(t, rec.Ran("git push origin main --quiet"))
	})
}

func TestUpdateReadme(t *testing.T) {
	r, _ := newRunner(t)
	require.True(t, r.UpdateReadme(context.Background(), "my-app").Succeeded)

	readme := readFile(t, r.Project.File("README.md"))
	assert.Contains(t, readme, "# my-app\n")
	assert.NotContains(t, readme, "projectName")
}

func TestInstallFrontEndTooling(t *testing.T) {
	ctx := context.Background()
	r, rec := newRunner(t)

	for _, f := range []Feature{Tailwind, ESLintPrettier, BladeFormatter, Alpine} {
		res := r.InstallFrontEndTooling(ctx, f)
		require.True(t, res.Succeeded, f.Key)
	}

	bootstrap := 0
	for _, l := range rec.Lines() {
		if l == "npm install" {
			bootstrap++
		}
	}
	assert.Equal(t, 1, bootstrap)
	assert.Equal(t, 0, rec.Index("npm install"))
	assert.Equal(t, 5, len(rec.Requests))
	assert.True(t, rec.Ran("npm install -D tailwindcss@3 postcss autoprefixer"))
	assert.True(t, rec.Ran("npm install -D alpinejs"))
	for _, req := range rec.Requests {
		assert.True(t, req.Raw)
	}

	for _, f := range []string{"tailwind.config.js", "postcss.config.js", ".eslintrc.json", ".prettierrc.json", ".bladeformatterrc.json"} {
		assert.Equal(t, asset(t, f), readFile(t, r.Project.File(f)), f)
	}
	assert.Equal(t, asset(t, "tailwind.css"), readFile(t, r.Project.File("resources", "css", "app.css")))
	assert.Equal(t, asset(t, "alpine.js"), readFile(t, r.Project.File("resources", "js", "app.js")))
}

func TestInstallFrontEndTooling_SingleFeature(t *testing.T) {
	r, _ := newRunner(t)
	require.True(t, r.InstallFrontEndTooling(context.Background(), BladeFormatter).Succeeded)

	assert.FileExists(t, r.Project.File(".bladeformatterrc.json"))
	for _, f := range []string{"tailwind.config.js", ".eslintrc.json", ".prettierrc.json", "resources/js/app.js"} {
		assert.NoFileExists(t, r.Project.File(f))
	}
}

func TestInstallFrontEndTooling_ExistingFiles(t *testing.T) {
	ctx := context.Background()
	r, rec := newRunner(t)
	require.NoError(t, os.MkdirAll(r.Project.File("node_modules"), 0o755))
	require.NoError(t, os.MkdirAll(r.Project.File("resources", "js"), 0o755))
	require.NoError(t, os.MkdirAll(r.Project.File("resources", "css"), 0o755))
	require.NoError(t, os.WriteFile(r.Project.File("resources", "js", "app.js"), []byte("import './bootstrap';\n"), 0o644))
	require.NoError(t, os.WriteFile(r.Project.File("resources", "css", "app.css"), []byte("body {}\n"), 0o644))

	for i := 0; i < 2; i++ {
		require.True(t, r.InstallFrontEndTooling(ctx, Alpine).Succeeded)
		require.True(t, r.InstallFrontEndTooling(ctx, Tailwind).Succeeded)
	}

	for _, l := range rec.Lines() {
		assert.NotEqual(t, "npm install", l)
	}
	assert.Equal(t, "import './bootstrap';\n\n"+asset(t, "alpine.js"), readFile(t, r.Project.File("resources", "js", "app.js")))
	assert.Equal(t, asset(t, "tailwind.css")+"\nbody {}\n", readFile(t, r.Project.File("resources", "css", "app.css")))
}

func TestInstallFrontEndTooling_BootstrapFails(t *testing.T) {
	ctx := context.Background()
	r, rec := newRunner(t)
	rec.On("npm install", func(req shell.Request) shell.Result {
		if shelltest.Line(req) == "npm install" {
			return shell.Result{ExitCode: 254}
		}
		return shell.Result{Succeeded: true}
	})

	res := r.InstallFrontEndTooling(ctx, Tailwind)
	assert.True(t, res.Failed())
	assert.Equal(t, "npm install: exit status 254", res.Message)

	res = r.InstallFrontEndTooling(ctx, Alpine)
	assert.True(t, res.Failed())
	assert.Equal(t, 1, rec.Count("npm install"))
	assert.NoFileExists(t, r.Project.File("tailwind.config.js"))
}

func TestConfigureViteForValet(t *testing.T) {
	ctx := context.Background()
	r, _ := newRunner(t)
	env := r.Project.File(".env")
	require.NoError(t, os.WriteFile(env, []byte("APP_NAME=Laravel\nAPP_URL=http://localhost"), 0o644))

	require.True(t, r.ConfigureViteForValet(ctx, "My-App").Succeeded)
	require.True(t, r.ConfigureViteForValet(ctx, "My-App").Succeeded)

	assert.Equal(t, asset(t, "vite.config.js"), readFile(t, r.Project.File("vite.config.js")))
	assert.Equal(t, "APP_NAME=Laravel\nAPP_URL=http://localhost\nVITE_APP_URL=https://my-app.test\n", readFile(t, env))
}

func TestLocalEnvironment(t *testing.T) {
	ctx := context.Background()
	r, rec := newRunner(t)

	require.True(t, r.ApplyLocalSsl(ctx, "my-app").Succeeded)
	require.True(t, r.OpenInBrowser(ctx, "my-app").Succeeded)
	require.True(t, r.LoadInEditor(ctx).Succeeded)

	r.IDE = "pstorm"
	require.True(t, r.LoadInEditor(ctx).Succeeded)

	assert.Equal(t, []string{"valet secure my-app", "valet open my-app", "phpstorm .", "pstorm ."}, rec.Lines())
}

func TestLoadInEditor_Darwin(t *testing.T) {
	r, rec := newRunner(t)
	r.Platform = platform.For("darwin")
	require.True(t, r.LoadInEditor(context.Background()).Succeeded)
	assert.Equal(t, []string{`open -a "PhpStorm.app" .`}, rec.Lines())
}
