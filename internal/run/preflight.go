package run

import (
	"fmt"
	"os/exec"
)

type toolCommands interface {
	Commands() []string
}

type toolCommand interface {
	Command() string
}

// preflight fails fast on a missing source, an uncreatable output
// directory or an external tool that is not installed, before any
// reports are written.
func (r *Runner) preflight(wantArchive bool) error {
	if _, err := r.fs.Stat(r.cfg.Source.Path); err != nil {
		return fmt.Errorf("source root: %w", err)
	}
	if err := r.fs.MkdirAll(r.cfg.Output.Path); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	var tools []string
	if c, ok := r.probe.(toolCommand); ok {
		tools = append(tools, c.Command())
	}
	if wantArchive {
		if c, ok := r.arch.(toolCommands); ok {
			tools = append(tools, c.Commands()...)
		}
	}

	seen := make(map[string]bool)
	for _, tool := range tools {
		if tool == "" || seen[tool] {
			continue
		}
		seen[tool] = true
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("required tool %q: %w", tool, err)
		}
	}
	return nil
}
