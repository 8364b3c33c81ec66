package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Dheerajkumar69/AutoReadme/internal/agent"
	"github.com/Dheerajkumar69/AutoReadme/internal/host"
	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/pkg/spinner"
)

var scanDryRun bool

var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "Comment the changes in the working tree since HEAD",
	Long: `Diff each file against its content at git HEAD and run the save pipeline on it.
Without arguments every modified or untracked source file is scanned. Paths are
relative to watch.root.

Examples:
  autodocs scan                  # comment all changed files in place
  autodocs scan --dry-run        # write autodocs_preview.md instead
  autodocs scan src/tax.js       # only this file`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "Write a markdown preview instead of editing files")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := loadPipeline(!scanDryRun)
	if err != nil {
		return err
	}
	defer func() { _ = p.logger.Sync() }()

	out := cmd.OutOrStdout()
	git := host.NewGit(p.cfg.Watch.Root)

	files := args
	if len(files) == 0 {
		files, err = git.ChangedFiles(ctx)
		if err != nil {
			return err
		}
	}

	fmt.Fprint(out, "Files to be scanned:")
	if len(files) == 0 {
		fmt.Fprintln(out, "\n   ✕ no changed files since HEAD")
		return nil
	}

	var items []agent.ScanItem
	for _, file := range files {
		language := lang.ForPath(file)
		if !language.Known() {
			fmt.Fprintf(out, "\n   ✕ %s (unsupported language)", file)
			continue
		}

		baseline, err := git.Baseline(ctx, file)
		if err != nil {
			return err
		}
		text, err := p.files.Text(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		items = append(items, agent.ScanItem{DocumentID: file, Baseline: baseline, Text: text, Language: language})
		fmt.Fprintf(out, "\n   ✓ %s", file)
	}
	fmt.Fprintln(out)

	if len(items) == 0 {
		return nil
	}

	s := spinner.NewWithWriter("Scanning files...", out)
	s.Start()
	results, err := p.agent.Scan(ctx, items, func(done, total int) {
		s.Progress("Scanning files", done, total)
	})
	s.Stop()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		color.New(color.FgYellow).Fprintf(out, "Scan cancelled after %d of %d files\n", len(results), len(items))
	}

	for _, result := range results {
		if result.InsertErr != nil {
			color.New(color.FgRed).Fprintf(out, "   ✕ %s: %v\n", result.DocumentID, result.InsertErr)
		}
	}

	var summary agent.Summary
	if scanDryRun {
		summary, err = agent.NewReportGenerator(p.files).GenerateMarkdownReport(results)
		if err != nil {
			return err
		}
	} else {
		_, summary = agent.BuildMarkdownReport(results)
	}

	if !p.gen.Online() {
		p.logger.Warn("generation service unreachable during scan", zap.String("provider", p.gen.Name()))
	}

	agent.PrintScanSummary(out, summary, scanDryRun)
	return nil
}
