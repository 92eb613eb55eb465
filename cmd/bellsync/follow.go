package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cristianoliveira/bellsync/cmd"
	"github.com/cristianoliveira/bellsync/internal/colors"
	"github.com/cristianoliveira/bellsync/internal/config"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/format"
	"github.com/cristianoliveira/bellsync/internal/hooks"
	"github.com/cristianoliveira/bellsync/internal/metrics"
	"github.com/cristianoliveira/bellsync/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const followCommandLong = `Monitor notifications in real-time.

Prints every notification of the filter once, oldest first, as the realtime
stream delivers it, and runs the executable scripts in
<hooks_dir>/notification-received/ for each one. Runs until interrupted.

USAGE:
    bellsync follow [OPTIONS]

OPTIONS:
    --filter <status>       Filter by read status: read, unread
    --seen <status>         Filter by seen status: seen, unseen
    --archived              Follow archived notifications
    --category <name>       Only notifications in this category (repeatable)
    --topic <name>          Only notifications in this topic (repeatable)
    --format=<format>       Output format: simple (default), compact, json
    --metrics-addr <addr>   Serve Prometheus metrics on addr, e.g. :9090
    --no-hooks              Do not run notification-received hooks
    -h, --help              Show this help`

const metricsShutdownTimeout = 5 * time.Second

// followOptions holds all parameters for following notifications.
type followOptions struct {
	filters     filterFlags
	format      string
	metricsAddr string
	noHooks     bool
}

// NewFollowCmd creates the follow command with explicit dependencies.
func NewFollowCmd(open sessionOpener) *cobra.Command {
	if open == nil {
		panic("NewFollowCmd: session opener cannot be nil")
	}

	var opts followOptions
	followCmd := &cobra.Command{
		Use:   "follow",
		Short: "Monitor notifications in real-time",
		Long:  followCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			predicate, err := opts.filters.predicate()
			if err != nil {
				return err
			}
			formatterType, err := format.ParseFormatterType(opts.format)
			if err != nil {
				return err
			}

			if !c.Flags().Changed("metrics-addr") {
				opts.metricsAddr = config.Get("metrics_addr", "")
			}
			var ln net.Listener
			if opts.metricsAddr != "" {
				ln, err = net.Listen("tcp", opts.metricsAddr)
				if err != nil {
					return fmt.Errorf("metrics listener: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := open("follow")
			if err != nil {
				if ln != nil {
					_ = ln.Close()
				}
				return err
			}
			defer func() { _ = s.Close() }()

			colors.Debug("Monitoring notifications (Ctrl+C to stop)...")
			printer := newFollowPrinter(format.NewFormatter(formatterType), c.OutOrStdout())
			if !opts.noHooks {
				runner, err := s.hookRunner()
				if err != nil {
					if ln != nil {
						_ = ln.Close()
					}
					return err
				}
				defer runner.Wait()
				printer.hooks = runner
			}
			return follow(ctx, s.Store(predicate), printer, ln)
		},
	}

	opts.filters.register(followCmd)
	followCmd.Flags().StringVar(&opts.format, "format", "simple", "Output format: simple, compact, json")
	followCmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (default: metrics_addr)")
	followCmd.Flags().BoolVar(&opts.noHooks, "no-hooks", false, "Do not run notification-received hooks")
	return followCmd
}

// follow prints the notifications of st until ctx is done. Metrics are
// served on ln when it is not nil.
func follow(ctx context.Context, st *store.Store, printer *followPrinter, ln net.Listener) error {
	printer.ctx = ctx
	sub := st.AddContentObserver(&store.ContentObserverFuncs{
		Reloaded: func() { printer.print(st.Notifications()) },
		Inserted: func([]int) { printer.print(st.Notifications()) },
	})
	defer sub.Cancel()

	g, gctx := errgroup.WithContext(ctx)
	if ln != nil {
		g.Go(func() error { return serveMetrics(gctx, ln) })
	}
	g.Go(func() error {
		if _, err := st.Refresh(gctx); err != nil {
			colors.Warning(fmt.Sprintf("initial load failed: %v", err))
		}
		<-gctx.Done()
		return nil
	})
	return g.Wait()
}

// serveMetrics serves the Prometheus handler on ln until ctx is done.
func serveMetrics(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// followPrinter writes each notification once and runs the hooks for it.
type followPrinter struct {
	formatter format.Formatter
	out       io.Writer
	hooks     *hooks.Runner
	ctx       context.Context

	mu      sync.Mutex
	printed map[string]bool
}

func newFollowPrinter(f format.Formatter, out io.Writer) *followPrinter {
	return &followPrinter{formatter: f, out: out, ctx: context.Background(), printed: make(map[string]bool)}
}

// print writes the notifications not printed before, oldest first.
func (p *followPrinter) print(notifs []*domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var fresh []*domain.Notification
	for _, n := range notifs {
		if p.printed[n.ID] {
			continue
		}
		p.printed[n.ID] = true
		fresh = append(fresh, n)
	}
	if len(fresh) == 0 {
		return
	}
	fresh = domain.SortNotifications(fresh, domain.SortOptions{
		Field: domain.SortBySentAtField,
		Order: domain.SortOrderAsc,
	})
	if err := p.formatter.FormatNotifications(fresh, p.out); err != nil {
		colors.Error(fmt.Sprintf("print notifications: %v", err))
	}
	if p.hooks == nil {
		return
	}
	for _, n := range fresh {
		if err := p.hooks.Run(p.ctx, hooks.PointNotificationReceived, hooks.NotificationEnv(n)); err != nil {
			colors.Error(err.Error())
		}
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewFollowCmd(openSession))
}
