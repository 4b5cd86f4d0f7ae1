// Package platform resolves, once per run, the handful of commands and paths
// that differ between operating system families.
package platform

import (
	"os"
	"runtime"
)

// Capabilities describes what the current OS family needs for shell commands.
type Capabilities struct {
	// OS is the runtime.GOOS value the table was resolved for.
	OS string
	// Shell and ShellFlag run a command line ("sh -c", "cmd /C").
	Shell     string
	ShellFlag string
	// NullDevice is where silenced commands send their output.
	NullDevice string
	// Copy is the file copy command used inside generated composer scripts.
	Copy string
	// IDE launches PhpStorm on the current directory, without the trailing path.
	IDE string
	// TTY is the controlling terminal device, empty when the OS has none to attach.
	TTY string
	// Separator is the path separator of composer script paths.
	Separator string
}

var table = map[string]Capabilities{
	"windows": {
		Shell:      "cmd",
		ShellFlag:  "/C",
		NullDevice: "NUL",
		Copy:       "copy",
		IDE:        "phpstorm.bat",
		Separator:  `\`,
	},
	"linux": {
		Shell:      "sh",
		ShellFlag:  "-c",
		NullDevice: "/dev/null",
		Copy:       "cp",
		IDE:        "phpstorm",
		TTY:        "/dev/tty",
		Separator:  "/",
	},
	"darwin": {
		Shell:      "sh",
		ShellFlag:  "-c",
		NullDevice: "/dev/null",
		Copy:       "cp",
		IDE:        `open -a "PhpStorm.app"`,
		TTY:        "/dev/tty",
		Separator:  "/",
	},
}

// For returns the capability table of goos. Unknown Unix-likes get the Linux row.
func For(goos string) Capabilities {
	c, ok := table[goos]
	if !ok {
		c = table["linux"]
	}
	c.OS = goos
	return c
}

// Current returns the capability table of the running OS.
func Current() Capabilities {
	return For(runtime.GOOS)
}

// Silence wraps command so that its stdout and stderr go to the null device.
func (c Capabilities) Silence(command string) string {
	return command + " > " + c.NullDevice + " 2>&1"
}

// HasTTY reports whether the terminal device exists and is readable, so it can
// be handed to child processes as stdin.
func (c Capabilities) HasTTY() bool {
	if c.TTY == "" {
		return false
	}
	if _, err := os.Stat(c.TTY); err != nil {
		return false
	}
	f, err := os.Open(c.TTY)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
