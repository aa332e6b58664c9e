// Package proc names the process-spawn facility (spec.md §6(8)) used by
// the WM to launch applications from the bar launcher and run-mode
// (spec.md §4.7). Candidate paths follow axwm_actions.c in
// original_source/: "/bin/<name>", "/bin/<name>.exe", "/bin/usr/<name>",
// "/bin/usr/<name>.exe" — the first that exists is spawned.
package proc

import (
	"fmt"
	"os"
	"os/exec"
)

// Candidates returns the spawn-path candidates for a bare program name, in
// the order they are tried.
func Candidates(name string) []string {
	return []string{
		"/bin/" + name,
		"/bin/" + name + ".exe",
		"/bin/usr/" + name,
		"/bin/usr/" + name + ".exe",
	}
}

// Spawn launches the first existing candidate path for name, detached from
// the WM process. It returns an error only if no candidate exists or the
// spawn syscall itself fails.
func Spawn(name string) error {
	for _, path := range Candidates(name) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cmd := exec.Command(path)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("proc: spawn %s: %w", path, err)
		}
		go cmd.Wait() // reap without blocking the WM's event loop
		return nil
	}
	return fmt.Errorf("proc: no candidate found for %q", name)
}
