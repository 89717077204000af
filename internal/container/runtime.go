// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs one-shot conversion containers through docker or
// podman. Document converters use it to pipe a file through an image and
// read the result from stdout.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	BinDocker = "docker"
	BinPodman = "podman"
)

// Runtime runs containers with a piped stdin and stdout.
type Runtime interface {
	// Name returns "docker" or "podman".
	Name() string

	// Available reports whether the binary is on PATH and its daemon answers.
	Available(ctx context.Context) bool

	// ImageExists returns nil when image is present locally.
	ImageExists(ctx context.Context, image string) error

	// Run starts image with stdin attached, copies its stdout to stdout, and
	// removes the container afterwards. Extra args go before the image name.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer, args ...string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// RunPiped keeps the tail of stderr in the error so a failed conversion
// says why.
func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// runtime is shared by docker and podman; they differ in binary name and
// the image check subcommand.
type runtime struct {
	bin        string
	imageCheck []string
	exec       executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(ctx, r.bin, "info") == nil
}

func (r *runtime) ImageExists(ctx context.Context, image string) error {
	args := append(append([]string{}, r.imageCheck...), image)
	if err := r.exec.RunSilent(ctx, r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer, args ...string) error {
	full := append([]string{"run", "--rm", "-i", "--network", "none"}, args...)
	full = append(full, image)
	if err := r.exec.RunPiped(ctx, r.bin, full, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func newRuntime(bin string, exec executor) *runtime {
	check := []string{"image", "inspect"}
	if bin == BinPodman {
		check = []string{"image", "exists"}
	}
	return &runtime{bin: bin, imageCheck: check, exec: exec}
}

// DetectRuntime returns the preferred runtime when it works. With no
// preference it tries docker, then podman.
func DetectRuntime(ctx context.Context, preferred string) (Runtime, error) {
	return detectRuntime(ctx, osExecutor{}, preferred)
}

func detectRuntime(ctx context.Context, exec executor, preferred string) (Runtime, error) {
	candidates := []string{BinDocker, BinPodman}
	switch preferred {
	case "":
	case BinDocker, BinPodman:
		candidates = []string{preferred}
	default:
		return nil, fmt.Errorf("unknown container runtime %q (want %s or %s)", preferred, BinDocker, BinPodman)
	}

	for _, bin := range candidates {
		if rt := newRuntime(bin, exec); rt.Available(ctx) {
			return rt, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: tried %s", strings.Join(candidates, ", "))
}
