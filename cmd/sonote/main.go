package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usage = `Usage: sonote [-config path] <command> [flags]

Commands:
  run [-tui] files...   transcribe and polish files, then exit
  watch                 watch the input folder and serve the HTTP API
  serve                 serve the HTTP API only
  history               list or export completed items
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := flag.Arg(0), flag.Args()[1:]

	var err error
	switch cmd {
	case "run":
		err = runCmd(ctx, *configPath, args)
	case "watch":
		err = watchCmd(ctx, cmd, *configPath, args, true)
	case "serve":
		err = watchCmd(ctx, cmd, *configPath, args, false)
	case "history":
		err = historyCmd(ctx, *configPath, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
