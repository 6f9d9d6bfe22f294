package sizeprobe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// runs an external listing utility and reads its byte summary.

// CommandProber measures a folder by running a configured command.
// Each {dir} in the argv template is replaced with the folder path.
type CommandProber struct {
	argv    []string
	timeout time.Duration
}

// NewCommandProber builds a prober from an argv template. An empty
// template selects the platform default (robocopy on Windows, du
// elsewhere). A timeout of zero disables the per-folder guard.
func NewCommandProber(argv []string, timeout time.Duration) *CommandProber {
	if len(argv) == 0 {
		argv = DefaultArgv()
	}
	return &CommandProber{argv: argv, timeout: timeout}
}

func (p *CommandProber) Measure(ctx context.Context, dir string) (int64, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	argv := make([]string, len(p.argv))
	for i, a := range p.argv {
		argv[i] = strings.ReplaceAll(a, "{dir}", dir)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, runErr := cmd.CombinedOutput()

	// Listing utilities often report counts through the exit code
	// (robocopy exits 1 on a clean listing), so the exit status only
	// matters when the summary line is absent.
	n, err := ParseSummaryBytes(string(out))
	if err != nil {
		if runErr != nil {
			return 0, fmt.Errorf("size probe %s: %w: %s", argv[0], runErr, firstLine(out))
		}
		return 0, fmt.Errorf("size probe %s: %w", argv[0], err)
	}
	return n, nil
}

// Command returns the utility name, for preflight checks.
func (p *CommandProber) Command() string {
	return p.argv[0]
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
