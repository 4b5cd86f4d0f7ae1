package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laravel-assembler/internal/platform"
	"laravel-assembler/internal/shell"
	"laravel-assembler/internal/shell/shelltest"
	"laravel-assembler/internal/state"
	"laravel-assembler/internal/toolchain"
)

const composerJSON = `{
    "name": "laravel/laravel",
    "require": {"php": "^8.2"},
    "scripts": {
        "post-autoload-dump": ["@php artisan package:discover --ansi"],
        "dev": "npx concurrently \"php artisan serve\" \"npm run dev\""
    }
}
`

// withRecorder routes every command of the run to a recorder whose
// `laravel new` creates a minimal project.
func withRecorder(t *testing.T) *shelltest.Recorder {
	t.Helper()
	color.Output = io.Discard

	rec := shelltest.New()
	rec.On("laravel new", func(req shell.Request) shell.Result {
		dir := filepath.Join(req.Dir, "my-app")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte(composerJSON), 0o644))
		return shell.Result{Succeeded: true}
	})

	prev, prevLook := newShell, toolchain.LookPath
	newShell = func(platform.Capabilities, bool) shell.Runner { return rec }
	toolchain.LookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	t.Cleanup(func() {
		newShell = prev
		toolchain.LookPath = prevLook
	})
	resetFlags(t)
	return rec
}

// resetFlags puts every flag back to its default once the test ends, so one
// Execute does not leak --github or --report into the next.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		rootCmd.PersistentFlags().VisitAll(reset)
		newCmd.Flags().VisitAll(reset)
		rootCmd.SetArgs(nil)
	})
}

func settingsFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy: best-effort\nide: phpstorm\n"), 0o644))
	return path
}

func TestNew_NoInteraction(t *testing.T) {
	rec := withRecorder(t)
	dir := t.TempDir()
	chdir(t, dir)
	report := filepath.Join(dir, "report.json")

	rootCmd.SetArgs([]string{
		"new", "my-app", "-n", "--front-end=false", "--github", "--organization=acme",
		"--branch=main", "--report=" + report, "--config=" + settingsFile(t),
	})
	require.NoError(t, Execute())

	assert.Equal(t, "laravel new my-app", rec.Lines()[0])
	assert.True(t, rec.Ran("composer require --dev --quiet barryvdh/laravel-ide-helper"))
	assert.True(t, rec.Ran("git branch -M main"))
	assert.True(t, rec.Ran("gh repo create acme/my-app --source=. --push --private"))
	assert.True(t, rec.Ran("git flow init -d"))
	assert.True(t, rec.Ran("valet secure my-app"))
	assert.True(t, rec.Ran("phpstorm ."))
	assert.False(t, rec.Ran("npm"))

	r, err := state.LoadReport(report)
	require.NoError(t, err)
	assert.Equal(t, "my-app", filepath.Base(r.Project))
	assert.True(t, r.Selections["ide-helper"])
	assert.False(t, r.Selections["phpcs"])
	assert.False(t, r.Selections["tailwind"])
	assert.Equal(t, state.RepositoryState{Initialized: true, CreatedOnGitHub: true, Branch: "main"}, r.Repository)
	assert.Empty(t, r.Failed())
}

func TestNew_ExistingDirectory(t *testing.T) {
	rec := withRecorder(t)
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "taken"), 0o755))

	rootCmd.SetArgs([]string{"new", "taken", "-n", "--config=" + settingsFile(t)})
	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, rec.Requests)
}

func TestNew_MissingInstaller(t *testing.T) {
	rec := withRecorder(t)
	toolchain.LookPath = func(name string) (string, error) {
		if name == "laravel" {
			return "", os.ErrNotExist
		}
		return "/usr/bin/" + name, nil
	}
	chdir(t, t.TempDir())

	rootCmd.SetArgs([]string{"new", "fresh-app", "-n", "--config=" + settingsFile(t)})
	err := Execute()
	require.ErrorIs(t, err, toolchain.ErrMissingTool)
	assert.Empty(t, rec.Requests)
}

func TestNew_FlagsDoNotLeak(t *testing.T) {
	t.Run("first run sets flags", func(t *testing.T) {
		withRecorder(t)
		chdir(t, t.TempDir())
		rootCmd.SetArgs([]string{
			"new", "my-app", "-n", "--front-end=false", "--github=--public", "--branch=dev", "--config=" + settingsFile(t),
		})
		require.NoError(t, Execute())
		assert.Equal(t, "--public", githubFlags)
	})

	t.Run("second run starts from defaults", func(t *testing.T) {
		rec := withRecorder(t)
		chdir(t, t.TempDir())
		rootCmd.SetArgs([]string{"new", "my-app", "-n", "--front-end=false", "--config=" + settingsFile(t)})
		require.NoError(t, Execute())

		assert.Empty(t, githubFlags)
		assert.Empty(t, branch)
		assert.False(t, newCmd.Flags().Changed("github"))
		// The repository question is answered by its default, with the default visibility.
		assert.True(t, rec.Ran("gh repo create my-app --source=. --push --private"))
		assert.False(t, rec.Ran("--public"))
		assert.True(t, rec.Ran("git branch -M master"))
	})
}

// chdir changes the working directory to dir and restores it when the test
// ends, like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
