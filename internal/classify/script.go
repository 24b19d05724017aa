package classify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"potholeai/internal/artifact"
	"potholeai/internal/config"
)

// waitDelay bounds how long Run waits on output pipes held open by children
// of a killed program.
const waitDelay = 2 * time.Second

// ScriptClassifier runs an external program with the artifact path as its
// last argument and reads the classification from stdout.
type ScriptClassifier struct {
	command string
	args    []string
	workDir string
	timeout time.Duration
	slots   chan struct{}
	log     zerolog.Logger
}

func NewScriptClassifier(cfg config.ClassifierConfig, log zerolog.Logger) *ScriptClassifier {
	var slots chan struct{}
	if cfg.MaxConcurrent > 0 {
		slots = make(chan struct{}, cfg.MaxConcurrent)
	}
	return &ScriptClassifier{
		command: cfg.Command,
		args:    append([]string(nil), cfg.Args...),
		workDir: cfg.WorkDir,
		timeout: cfg.Timeout,
		slots:   slots,
		log:     log,
	}
}

func (c *ScriptClassifier) Classify(ctx context.Context, a artifact.Artifact) (Result, error) {
	if c.slots != nil {
		select {
		case c.slots <- struct{}{}:
			defer func() { <-c.slots }()
		case <-ctx.Done():
			return Result{}, fmt.Errorf("%w: waiting for slot: %v", ErrClassificationFailed, ctx.Err())
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), c.args...), a.Path)
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = c.workDir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		c.log.Error().
			Err(err).
			Str("artifact_id", a.ID).
			Str("command", c.command).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Dur("elapsed", elapsed).
			Msg("classification program failed")
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrClassificationFailed, ctx.Err())
		}
		return Result{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}

	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		c.log.Warn().Str("artifact_id", a.ID).Str("stderr", msg).Msg("classification program wrote to stderr")
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		c.log.Error().Str("artifact_id", a.ID).Msg("classification program produced no output")
		return Result{}, fmt.Errorf("%w: empty output", ErrClassificationFailed)
	}

	c.log.Debug().
		Str("artifact_id", a.ID).
		Str("prediction", text).
		Dur("elapsed", elapsed).
		Msg("classification complete")

	return Result{Text: text}, nil
}
