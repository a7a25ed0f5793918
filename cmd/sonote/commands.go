package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/export"
	"github.com/nguyentantai21042004/sonote/internal/history"
	"github.com/nguyentantai21042004/sonote/internal/intake"
	"github.com/nguyentantai21042004/sonote/internal/logger"
	"github.com/nguyentantai21042004/sonote/internal/server"
	"github.com/nguyentantai21042004/sonote/internal/tui"
	"github.com/nguyentantai21042004/sonote/internal/watcher"
)

const tuiLogFile = "sonote.log"

// runCmd processes the given files once and prints a summary.
func runCmd(ctx context.Context, configPath string, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	useTUI := fs.Bool("tui", false, "show the live queue view")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return errors.New("run: no input files")
	}

	// The queue view owns the terminal, so logs go to a file.
	out := os.Stderr
	if *useTUI {
		f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}

	a, err := newApp(ctx, configPath, out)
	if err != nil {
		return err
	}
	defer a.Close()

	var files []domain.SourceFile
	for _, path := range fs.Args() {
		file, err := intake.Inspect(path)
		if err != nil {
			a.log.Warn(ctx, "Skipping %s: %v", path, err)
			continue
		}
		files = append(files, file)
	}

	accepted, rejected := a.validator.Filter(files)
	for _, r := range rejected {
		a.log.Warn(ctx, "Rejected %s: %v", r.File.Name, r.Err)
	}
	if len(accepted) == 0 {
		return errors.New("run: no acceptable media files")
	}

	if _, err := a.scheduler.Enqueue(accepted); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	if *useTUI {
		p := tea.NewProgram(tui.New(a.scheduler, true), tea.WithContext(ctx), tea.WithAltScreen())
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run queue view: %w", err)
		}
	} else if err := a.scheduler.Wait(ctx); err != nil {
		return fmt.Errorf("wait: %w", err)
	}

	printSummary(a.scheduler.Items())
	return nil
}

// serveFlags defines the flags shared by watch and serve.
func serveFlags(name string, handling flag.ErrorHandling) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, handling)
	addr := fs.String("addr", "", "listen address (overrides server.address)")
	return fs, addr
}

// watchCmd serves the HTTP API and, when watch is set, feeds the input
// folder into the queue until the context is cancelled. name is the
// subcommand, used in flag usage output.
func watchCmd(ctx context.Context, name, configPath string, args []string, watch bool) error {
	fs, addr := serveFlags(name, flag.ExitOnError)
	_ = fs.Parse(args)

	a, err := newApp(ctx, configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	if *addr != "" {
		a.cfg.Server.Address = *addr
	}

	srv := server.New(a.cfg.Server.Address, server.Deps{
		Scheduler: a.scheduler,
		History:   a.history,
		Validator: a.validator,
		Metrics:   a.metrics.Handler(),
		Staging:   a.staging,
		ExportDir: a.cfg.Paths.Export,
	}, a.log)

	errChan := make(chan error, 2)
	go func() {
		if err := srv.Run(ctx); err != nil {
			errChan <- fmt.Errorf("server: %w", err)
		}
	}()

	if watch {
		handler := watcher.Once(watcher.EnqueueHandler(a.scheduler, a.validator, a.log))

		// Watch first so files written during the scan are not missed.
		w, err := watcher.New(a.cfg.Paths.Input, watcher.DefaultSettleDelay, handler, a.log)
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer w.Stop()

		n, err := watcher.ScanExisting(ctx, a.cfg.Paths.Input, handler, a.log)
		if err != nil {
			return err
		}
		if n > 0 {
			a.log.Info(ctx, "Queued %d existing file(s)", n)
		}

		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("watcher: %w", err)
			}
		}()
	}

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "sonote is ready!")
	if watch {
		a.log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Input)
	}
	a.log.Info(ctx, "API: http://%s/api", a.cfg.Server.Address)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	select {
	case <-ctx.Done():
		a.log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		a.log.Error(ctx, "%v", err)
		return err
	}

	a.log.Info(ctx, "Shutting down gracefully...")
	return nil
}

// historyCmd lists completed items or exports one of them.
func historyCmd(ctx context.Context, configPath string, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of records to list (0 lists all)")
	exportID := fs.String("export", "", "id of the record to export")
	format := fs.String("format", "md", "export format: json, txt, md or docx")
	part := fs.String("part", "clean", "text part for txt: clean, raw or summary")
	outDir := fs.String("out", "", "export directory (defaults to paths.export)")
	clearAll := fs.Bool("clear", false, "delete every record")
	_ = fs.Parse(args)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.NewWithFormat("warn", cfg.Logging.Format, os.Stderr)

	store, err := history.New(ctx, cfg.History, log)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	if *clearAll {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	}

	if *exportID == "" {
		records, err := store.List(ctx, *limit)
		if err != nil {
			return err
		}
		printHistory(records)
		return nil
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	p, err := export.ParsePart(*part)
	if err != nil {
		return err
	}

	rec, err := store.Get(ctx, *exportID)
	if err != nil {
		return err
	}

	dir := *outDir
	if dir == "" {
		dir = cfg.Paths.Export
	}
	path, err := export.WriteFile(rec, f, p, dir)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func printSummary(items []domain.Item) {
	var completed, failed int

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE\tSTATUS\tDETAIL")
	for _, it := range items {
		detail := ""
		switch it.Status {
		case domain.StatusCompleted:
			completed++
			if it.Refined != nil {
				detail = it.Refined.Summary
			}
		case domain.StatusError:
			failed++
			detail = tui.FriendlyError(it.Error)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.Source.Name, humanize.IBytes(uint64(max(it.Source.Size, 0))), it.Status, detail)
	}
	_ = w.Flush()

	fmt.Printf("\n%d completed, %d failed, %d total\n", completed, failed, len(items))
}

func printHistory(records []domain.HistoryRecord) {
	if len(records) == 0 {
		fmt.Println("No history yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tSIZE\tCOMPLETED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.FileName, humanize.IBytes(uint64(max(r.FileSize, 0))), humanize.Time(r.CompletedAt))
	}
	_ = w.Flush()
}
