package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"laravel-assembler/internal/config"
	"laravel-assembler/internal/gitops"
	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/orchestrator"
	"laravel-assembler/internal/platform"
	"laravel-assembler/internal/project"
	"laravel-assembler/internal/prompt"
	"laravel-assembler/internal/shell"
	"laravel-assembler/internal/tasks"
	"laravel-assembler/internal/toolchain"
)

// Flags of `assembler new`. --dev, --jet, --stack, --teams, --prompt-jetstream
// and --force go to the Laravel installer; the rest are ours.
var (
	installer     orchestrator.InstallerFlags
	gitFlag       bool
	githubFlags   string
	branch        string
	organization  string
	noInteraction bool
	frontEnd      bool
	failFast      bool
	reportPath    string
)

// newShell builds the runner every command goes through. Tests swap it for a recorder.
var newShell = func(p platform.Capabilities, quiet bool) shell.Runner {
	return shell.New(p, quiet)
}

// newCmd asks every question, runs the Laravel installer, then the selected tasks.
var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new Laravel application and set it up",
	Long: `Create a new Laravel application with "laravel new", then install dev packages,
front-end tooling, a git repository, curated composer scripts and the local environment.
Every question is asked before the installer starts. Use "." to install into the current directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		p, err := project.New(args[0], cwd)
		if err != nil {
			return err
		}
		if p.Name != "." && p.Exists() && !installer.Force {
			return fmt.Errorf("%s already exists, use --force to install anyway", p.Path)
		}

		if failFast {
			settings.Policy = config.PolicyFailFast
		}

		orchestrator.PrintBanner()

		var c prompt.Confirmer = prompt.NewSurveyConfirmer()
		if noInteraction {
			c = prompt.AutoConfirmer{}
		}
		sel, err := prompt.Collect(c, settings.Catalog, p.BaseName, prompt.Options{
			FrontEnd: frontEnd,
			Git:      gitFlag,
			GitHub:   cmd.Flags().Changed("github"),
		})
		if err != nil {
			return err
		}
		if err := toolchain.Verify(toolchain.Needed(settings.Binaries, sel)); err != nil {
			return err
		}

		plat := platform.Current()
		sh := newShell(plat, quiet)

		repo := gitops.New(sh, p.Path)
		repo.Git = settings.Binaries.Git
		repo.GH = settings.Binaries.GH
		repo.Fallback = settings.Git.FallbackBranch
		repo.Organization = organization
		repo.Flags = githubFlags

		o := orchestrator.New(orchestrator.Options{
			Project:    p,
			Selections: sel,
			Installer:  installer,
			Branch:     branch,
			Settings:   settings,
		}, sh, tasks.New(sh, p, plat, settings, repo))

		report, runErr := o.Run(cmd.Context())

		if reportPath != "" {
			if err := report.Save(reportPath); err != nil {
				logger.Warn("[WARN] %v\n", err)
			} else {
				logger.Info("[INFO] Report written to %s\n", reportPath)
			}
		}
		if runErr == nil {
			if err := report.Err(); err != nil {
				logger.Warn("[WARN] %v\n", err)
			}
		}
		return runErr
	},
}

func init() {
	f := newCmd.Flags()
	f.BoolVar(&installer.Dev, "dev", false, "Install the latest development release of Laravel")
	f.BoolVar(&installer.Jet, "jet", false, "Install the Jetstream scaffolding")
	f.StringVar(&installer.Stack, "stack", "", "The Jetstream stack that should be installed")
	f.BoolVar(&installer.Teams, "teams", false, "Indicates whether Jetstream should be scaffolded with team support")
	f.BoolVar(&installer.PromptJetstream, "prompt-jetstream", false, "Issues a prompt to determine if Jetstream should be installed")
	f.BoolVarP(&installer.Force, "force", "f", false, "Forces install even if the directory already exists")

	f.BoolVar(&gitFlag, "git", false, "Initialize a git repository without asking")
	f.StringVar(&branch, "branch", "", "The branch that should be created for a new repository")
	f.StringVar(&githubFlags, "github", "", "Create a new repository on GitHub without asking, with these gh repo create flags")
	f.Lookup("github").NoOptDefVal = gitops.DefaultVisibility
	f.StringVar(&organization, "organization", "", "The GitHub organization to create the new repository for")

	f.BoolVarP(&noInteraction, "no-interaction", "n", false, "Answer every question with its default")
	f.BoolVar(&frontEnd, "front-end", true, "Ask about front-end tooling")
	f.BoolVar(&failFast, "fail-fast", false, "Stop at the first failed task")
	f.StringVar(&reportPath, "report", "", "Write a JSON report of the run to this file")
}
