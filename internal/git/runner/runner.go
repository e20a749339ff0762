package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// Runner abstracts executing git operations.
type Runner interface {
	Run(ctx context.Context, root string, args ...string) (string, error)
}

// CommandError is returned when git exits unsuccessfully. Message holds
// git's own stderr (or stdout) text with credentials scrubbed.
type CommandError struct {
	Op       string
	Message  string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: %s", e.Op, e.Message)
}

// ExecRunner executes the configured git binary.
type ExecRunner struct {
	GitBin string
	// Env is appended to the process environment for every invocation.
	Env []string
}

// NewExecRunner returns a runner for gitBin ("git" when empty). Interactive
// credential prompts are disabled so a missing credential fails instead of
// blocking forever. Optional locks are off so read-only commands such as
// status never rewrite the index behind the file watcher.
func NewExecRunner(gitBin string) *ExecRunner {
	if strings.TrimSpace(gitBin) == "" {
		gitBin = "git"
	}
	return &ExecRunner{GitBin: gitBin, Env: []string{"GIT_TERMINAL_PROMPT=0", "GIT_OPTIONAL_LOCKS=0", "LC_ALL=C"}}
}

func (e *ExecRunner) Run(ctx context.Context, root string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.GitBin, args...)
	if strings.TrimSpace(root) != "" {
		cmd.Dir = root
	}
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	var out bytes.Buffer
	var errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("git %s: %w", sanitizeArgs(args), ctxErr)
		}
		msg := strings.TrimSpace(errb.String())
		if msg == "" {
			msg = strings.TrimSpace(out.String())
		}
		if msg == "" {
			msg = err.Error()
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", &CommandError{Op: sanitizeArgs(args), Message: RedactTokens(msg), ExitCode: code}
	}
	return out.String(), nil
}

var (
	safeArg       = regexp.MustCompile(`^[a-z][a-z-]*$`)
	credentialURL = regexp.MustCompile(`https?://[^\s@/]+@`)
	secretParam   = regexp.MustCompile(`(?i)(token|secret|password|passwd|bearer)=[^\s]+`)
)

// sanitizeArgs returns a minimal, non-sensitive summary of the git operation.
// Leading "-c key=value" overrides are skipped; it then keeps at most the
// first two subcommand tokens that look like safe words.
func sanitizeArgs(args []string) string {
	if len(args) == 0 {
		return "<no-args>"
	}
	for len(args) >= 2 && args[0] == "-c" {
		args = args[2:]
	}
	safe := make([]string, 0, 2)
	for _, a := range args {
		if !safeArg.MatchString(a) {
			// stop on first non-safe token to avoid leaking paths/urls
			break
		}
		safe = append(safe, a)
		if len(safe) == 2 {
			break
		}
	}
	if len(safe) == 0 {
		return "<redacted>"
	}
	return strings.Join(safe, " ")
}

// RedactTokens removes obvious credential substrings from messages.
func RedactTokens(s string) string {
	s = credentialURL.ReplaceAllString(s, "https://<redacted>@")
	s = secretParam.ReplaceAllString(s, "$1=<redacted>")
	return s
}
