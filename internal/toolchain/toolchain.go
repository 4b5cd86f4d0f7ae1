// Package toolchain checks that the external programs a run shells out to are
// installed before any question is answered with a project on the line.
package toolchain

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"laravel-assembler/internal/config"
	"laravel-assembler/internal/logger"
	"laravel-assembler/internal/prompt"
)

// ErrMissingTool is returned by Verify when a required program is not on PATH.
var ErrMissingTool = errors.New("required program not found")

// LookPath resolves a program name to its path. Tests replace it.
var LookPath = exec.LookPath

// Tool is one external program.
// - Name: what the program is called in messages.
// - Command: the configured invocation; only its first word is looked up.
// - Required: the run cannot start without it.
type Tool struct {
	Name     string
	Command  string
	Required bool
}

// Status is the outcome of looking up a Tool.
type Status struct {
	Tool
	Path  string
	Found bool
}

// Program returns the executable part of the command, without quotes.
func (t Tool) Program() string {
	fields := strings.Fields(t.Command)
	if len(fields) == 0 {
		return ""
	}
	if p, err := strconv.Unquote(fields[0]); err == nil {
		return p
	}
	return fields[0]
}

// Needed lists the programs the selections will call. laravel and php are
// always required; the rest only when a selected task uses them.
func Needed(b config.Binaries, sel prompt.Selections) []Tool {
	tools := []Tool{
		{Name: "Laravel installer", Command: b.Laravel, Required: true},
		{Name: "PHP", Command: b.PHP, Required: true},
	}

	if len(sel.Packages) > 0 {
		composer := b.Composer
		if composer == "" {
			composer = "composer"
		}
		tools = append(tools, Tool{Name: "Composer", Command: composer})
	}
	if sel.FrontEnd() {
		tools = append(tools, Tool{Name: "npm", Command: b.NPM})
	}
	if sel.GitInit {
		tools = append(tools, Tool{Name: "git", Command: b.Git})
	}
	if sel.CreateRepo {
		tools = append(tools, Tool{Name: "GitHub CLI", Command: b.GH})
	}
	if sel.SecureValet {
		tools = append(tools, Tool{Name: "Valet", Command: b.Valet})
	}
	return tools
}

// Check looks up every tool concurrently. The statuses keep the order of tools.
func Check(tools []Tool) []Status {
	logger.Debug("[DEBUG] Checking %d programs\n", len(tools))

	statuses := make([]Status, len(tools))
	var wg sync.WaitGroup

	for i, tool := range tools {
		wg.Add(1)
		go func(i int, tool Tool) {
			defer wg.Done()
			st := Status{Tool: tool}
			if path, err := LookPath(tool.Program()); err == nil {
				st.Path = path
				st.Found = true
				logger.Debug("[DEBUG] %s found at %s\n", tool.Name, path)
			} else {
				logger.Debug("[DEBUG] %s (%s) not found: %v\n", tool.Name, tool.Program(), err)
			}
			// Each goroutine owns its slot.
			statuses[i] = st
		}(i, tool)
	}

	wg.Wait() // Wait for all lookups to complete
	return statuses
}

// Verify checks tools, warns about every missing optional program and returns
// ErrMissingTool naming the missing required ones.
func Verify(tools []Tool) error {
	var missing []string
	for _, st := range Check(tools) {
		if st.Found {
			continue
		}
		if st.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", st.Name, st.Program()))
			continue
		}
		logger.Warn("[WARN] %s (%s) is not on PATH, the tasks that need it will fail.\n", st.Name, st.Program())
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingTool, strings.Join(missing, ", "))
	}
	return nil
}
