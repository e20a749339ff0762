package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultSSHHost is probed when SSHOptions.Host is empty.
const DefaultSSHHost = "git@github.com"

const sshSuccessMarker = "successfully authenticated"

type SSHOptions struct {
	Host    string        `json:"host,omitempty"`
	KeyPath string        `json:"keyPath,omitempty"`
	Timeout time.Duration `json:"-"`
	// Bin is the ssh executable; "ssh" when empty.
	Bin string `json:"-"`
}

type SSHResult struct {
	Authenticated bool   `json:"authenticated"`
	Output        string `json:"output"`
}

// TestSSH runs a non-interactive `ssh -T` handshake. Hosting services exit
// non-zero even on success, so the greeting text decides.
func TestSSH(ctx context.Context, opts SSHOptions) (SSHResult, error) {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = DefaultSSHHost
	}
	bin := opts.Bin
	if bin == "" {
		bin = "ssh"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-T",
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=accept-new",
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(timeout.Seconds())),
	}
	if key := strings.TrimSpace(opts.KeyPath); key != "" {
		args = append(args, "-i", key, "-o", "IdentitiesOnly=yes")
	}
	args = append(args, host)

	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	text := strings.TrimSpace(out.String())
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return SSHResult{}, fmt.Errorf("ssh client not found: %w", err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return SSHResult{Output: text}, fmt.Errorf("ssh %s: %w", host, ctxErr)
		}
	}
	return SSHResult{
		Authenticated: err == nil || strings.Contains(text, sshSuccessMarker),
		Output:        text,
	}, nil
}
