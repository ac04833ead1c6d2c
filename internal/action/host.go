package action

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ExecRunner launches scripts with os/exec, picking an interpreter by file
// extension and executing unrecognized paths directly. It only confirms the
// launch; the process is reaped in the background.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sh":
		cmd = exec.CommandContext(ctx, "sh", path)
	case ".bash":
		cmd = exec.CommandContext(ctx, "bash", path)
	case ".py":
		cmd = exec.CommandContext(ctx, "python3", path)
	case ".js", ".mjs":
		cmd = exec.CommandContext(ctx, "node", path)
	default:
		cmd = exec.CommandContext(ctx, path)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap without blocking the caller; exit status is the script's business.
	go func() { _ = cmd.Wait() }()
	return nil
}

// OSOpener opens URLs through the platform's URL-handling facility.
type OSOpener struct{}

func (OSOpener) Open(ctx context.Context, url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", url).Run()
	case "windows":
		return exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url).Run()
	default:
		return exec.CommandContext(ctx, "xdg-open", url).Run()
	}
}
