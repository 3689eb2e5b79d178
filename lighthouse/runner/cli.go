package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/doitintl/hello/lighthouse/config"
	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
	"github.com/doitintl/hello/lighthouse/logger"
)

// CommandFunc runs an external program to completion.
type CommandFunc func(ctx context.Context, name string, args ...string) error

// CLIRunner audits a target with the lighthouse node CLI, which must be on
// the image together with a chrome build.
type CLIRunner struct {
	binary  string
	dir     string
	flags   config.LighthouseFlags
	fs      afero.Fs
	command CommandFunc
}

func NewCLIRunner(binary, dir string, flags config.LighthouseFlags, fs afero.Fs, command CommandFunc) *CLIRunner {
	if command == nil {
		command = execCommand
	}

	return &CLIRunner{
		binary:  binary,
		dir:     dir,
		flags:   flags,
		fs:      fs,
		command: command,
	}
}

func execCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}

	return nil
}

// outputBase is the --output-path value; with several outputs lighthouse
// writes <base>.report.<ext> for each one.
func (r *CLIRunner) outputBase(target domain.Target) string {
	return filepath.Join(r.dir, fmt.Sprintf("lighthouse_%s_%d", target.ID, time.Now().UnixNano()))
}

func outputPath(base, format string) string {
	return fmt.Sprintf("%s.report.%s", base, format)
}

// removeOutputs deletes every output the run may have produced, including
// those left behind by a failed or partial run.
func (r *CLIRunner) removeOutputs(ctx context.Context, base string) {
	l := logger.FromContext(ctx)

	for _, format := range r.flags.Output {
		path := outputPath(base, format)
		if err := r.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.Warningf("failed to remove lighthouse output %s: %s", path, err)
		}
	}
}

func (r *CLIRunner) args(target domain.Target, base string) []string {
	args := []string{target.URL, "--quiet"}

	for _, format := range r.flags.Output {
		args = append(args, "--output="+format)
	}

	args = append(args, "--output-path="+base)

	if len(r.flags.ChromeFlags) > 0 {
		args = append(args, "--chrome-flags="+strings.Join(r.flags.ChromeFlags, " "))
	}

	if len(r.flags.OnlyCategories) > 0 {
		args = append(args, "--only-categories="+strings.Join(r.flags.OnlyCategories, ","))
	}

	if formFactor(target, r.flags) == "desktop" {
		args = append(args, "--preset=desktop")
	}

	return args
}

func (r *CLIRunner) Run(ctx context.Context, target domain.Target) (*domain.Report, error) {
	base := r.outputBase(target)
	defer r.removeOutputs(ctx, base)

	if err := r.command(ctx, r.binary, r.args(target, base)...); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAuditFailed, target.ID, err)
	}

	artifacts := make([]domain.Artifact, 0, len(r.flags.Output))

	for _, format := range r.flags.Output {
		path := outputPath(base, format)

		content, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingArtifact, path, err)
		}

		artifacts = append(artifacts, domain.Artifact{Format: format, Content: content})
	}

	result, err := resultFromArtifacts(artifacts)
	if err != nil {
		return nil, err
	}

	return &domain.Report{
		Artifacts: artifacts,
		Result:    result,
	}, nil
}
