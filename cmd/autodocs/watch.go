package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch watch.root and comment meaningful saves",
	Long: `Track every source file under watch.root, then run the save pipeline each
time one is written. Files present at start-up are only recorded, never diffed.
When metrics.addr is set, Prometheus metrics are served on /metrics.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := loadPipeline(true)
	if err != nil {
		return err
	}
	defer func() { _ = p.logger.Sync() }()

	out := cmd.OutOrStdout()

	w, err := watch.New(p.cfg.Watch.Root, watch.Options{
		Debounce:       p.cfg.Watch.Debounce(),
		IgnorePatterns: p.cfg.Watch.IgnorePatterns,
		Match:          func(path string) bool { return lang.ForPath(path).Known() },
	}, p.logger)
	if err != nil {
		return err
	}

	files, err := w.Files()
	if err != nil {
		return err
	}
	for _, file := range files {
		text, err := p.files.Text(file)
		if err != nil {
			p.logger.Warn("skipping unreadable file", zap.String("path", file), zap.Error(err))
			continue
		}
		p.agent.OnOpen(file, text)
	}
	fmt.Fprintf(out, "Watching %s (%d files tracked)\n", w.Root(), len(files))

	handlers := watch.Handlers{
		Saved: func(ctx context.Context, path string) {
			text, err := p.files.Text(path)
			if err != nil {
				p.logger.Warn("failed to read saved file", zap.String("path", path), zap.Error(err))
				return
			}

			result, err := p.agent.OnSave(ctx, path, text, lang.ForPath(path))
			if err != nil {
				return
			}
			if result.Inserted {
				color.New(color.FgGreen).Fprintf(out, "💬 %s: %d comments added\n", path, len(result.Suggestions))
			}
			if result.DocsStale {
				color.New(color.FgYellow).Fprintf(out, "⚠️ %s changed a public interface, docs may be stale\n", path)
			}
		},
		Removed: p.agent.OnClose,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, handlers)
	})

	if addr := p.cfg.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			p.logger.Info("serving metrics", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
