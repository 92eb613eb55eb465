// Package hooks runs user scripts at hook points, such as when a new
// notification arrives.
//
// Scripts live in <dir>/<hook point>/ and run in name order. Only
// executable regular files are considered. Every script gets the caller's
// environment plus HOOK_POINT, HOOK_TIMESTAMP, BELLSYNC_BINARY and the
// variables passed to Run.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/bellsync/internal/colors"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/logging"
	"golang.org/x/sync/semaphore"
)

// PointNotificationReceived runs once per notification shown by follow.
const PointNotificationReceived = "notification-received"

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 30 * time.Second

// FailureMode decides what a failing script does to the run.
type FailureMode string

const (
	// FailureAbort stops at the first failing script and returns its error.
	FailureAbort FailureMode = "abort"
	// FailureWarn prints a warning and continues.
	FailureWarn FailureMode = "warn"
	// FailureIgnore continues silently.
	FailureIgnore FailureMode = "ignore"
)

// ParseFailureMode parses a failure mode name. Empty means warn.
func ParseFailureMode(value string) (FailureMode, error) {
	switch mode := FailureMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return FailureWarn, nil
	case FailureAbort, FailureWarn, FailureIgnore:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid hooks failure mode: %s (must be abort, warn or ignore)", value)
	}
}

// ErrHookFailed wraps the error of a script that failed in abort mode.
var ErrHookFailed = errors.New("hook failed")

// Runner runs the scripts of one hooks directory.
type Runner struct {
	dir         string
	failureMode FailureMode
	timeout     time.Duration
	async       bool
	slots       *semaphore.Weighted
	logger      logging.Logger
	now         func() time.Time
	binary      string

	pending sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithFailureMode sets what happens when a script fails.
func WithFailureMode(mode FailureMode) Option {
	return func(r *Runner) { r.failureMode = mode }
}

// WithTimeout bounds each script run.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithAsync runs scripts in the background, at most maxPending at a time.
// Scripts started while every slot is taken are skipped. Failures are only
// reported, never returned.
func WithAsync(maxPending int) Option {
	return func(r *Runner) {
		r.async = true
		r.slots = semaphore.NewWeighted(int64(max(maxPending, 1)))
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.logger = logging.OrNop(l) }
}

// New returns a Runner for the scripts under dir.
func New(dir string, opts ...Option) *Runner {
	r := &Runner{
		dir:         dir,
		failureMode: FailureWarn,
		timeout:     DefaultTimeout,
		logger:      logging.Nop(),
		now:         time.Now,
	}
	if exe, err := os.Executable(); err == nil {
		r.binary = exe
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the scripts of point with env added to their environment.
// A missing hook point directory means there is nothing to run.
func (r *Runner) Run(ctx context.Context, point string, env map[string]string) error {
	scripts := r.scripts(point)
	if len(scripts) == 0 {
		return nil
	}
	r.logger.Debug("running hooks", "point", point, "scripts", len(scripts))

	environ := r.environ(point, env)
	for _, script := range scripts {
		if r.async {
			r.startAsync(ctx, point, script, environ)
			continue
		}
		if err := r.runScript(ctx, script, environ); err != nil {
			if r.report(point, script, err) {
				return fmt.Errorf("%w: %s/%s: %w", ErrHookFailed, point, filepath.Base(script), err)
			}
		}
	}
	return nil
}

// Wait blocks until background scripts have finished.
func (r *Runner) Wait() {
	r.pending.Wait()
}

func (r *Runner) startAsync(ctx context.Context, point, script string, environ []string) {
	if !r.slots.TryAcquire(1) {
		colors.Warning(fmt.Sprintf("too many pending hooks, skipping %s/%s", point, filepath.Base(script)))
		return
	}
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		defer r.slots.Release(1)
		if err := r.runScript(context.WithoutCancel(ctx), script, environ); err != nil {
			r.report(point, script, err)
		}
	}()
}

func (r *Runner) runScript(ctx context.Context, script string, environ []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := r.now()
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = environ
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("timed out after %s", r.timeout)
	}
	r.logger.Debug("hook finished",
		"script", script,
		"duration", time.Since(start).String(),
		"output", strings.TrimSpace(string(output)),
		"error", err)
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			return fmt.Errorf("%w: %s", err, out)
		}
		return err
	}
	return nil
}

// report handles a failed script according to the failure mode and reports
// whether the run must stop.
func (r *Runner) report(point, script string, err error) bool {
	name := point + "/" + filepath.Base(script)
	switch r.failureMode {
	case FailureAbort:
		if r.async {
			colors.Error(fmt.Sprintf("hook %s failed: %v", name, err))
			return false
		}
		return true
	case FailureIgnore:
		r.logger.Debug("ignoring hook failure", "hook", name, "error", err)
		return false
	default:
		colors.Warning(fmt.Sprintf("hook %s failed: %v", name, err))
		return false
	}
}

// scripts returns the executable files of point sorted by name.
func (r *Runner) scripts(point string) []string {
	if r.dir == "" {
		return nil
	}
	dir := filepath.Join(r.dir, point)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || info.Mode()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts
}

func (r *Runner) environ(point string, env map[string]string) []string {
	environ := os.Environ()
	environ = append(environ,
		"HOOK_POINT="+point,
		"HOOK_TIMESTAMP="+r.now().UTC().Format(time.RFC3339),
		"BELLSYNC_HOOKS_FAILURE_MODE="+string(r.failureMode),
	)
	if r.binary != "" {
		environ = append(environ, "BELLSYNC_BINARY="+r.binary)
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		environ = append(environ, k+"="+env[k])
	}
	return environ
}

// NotificationEnv describes n for scripts. Missing optional fields are
// passed as empty strings.
func NotificationEnv(n *domain.Notification) map[string]string {
	return map[string]string{
		"NOTIFICATION_ID":         n.ID,
		"NOTIFICATION_TITLE":      n.Title,
		"NOTIFICATION_CONTENT":    domain.StringValue(n.Content),
		"NOTIFICATION_CATEGORY":   domain.StringValue(n.Category),
		"NOTIFICATION_TOPIC":      domain.StringValue(n.Topic),
		"NOTIFICATION_ACTION_URL": domain.StringValue(n.ActionURL),
		"NOTIFICATION_SENT_AT":    n.SentAt.UTC().Format(time.RFC3339),
		"NOTIFICATION_READ":       fmt.Sprint(n.IsRead()),
		"NOTIFICATION_SEEN":       fmt.Sprint(n.IsSeen()),
	}
}
