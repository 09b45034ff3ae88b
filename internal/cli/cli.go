package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/boris-k201/capsule-to-epub/internal/assembler"
	"github.com/boris-k201/capsule-to-epub/internal/config"
	"github.com/boris-k201/capsule-to-epub/internal/extractor"
	"github.com/boris-k201/capsule-to-epub/internal/fetcher"
	"github.com/boris-k201/capsule-to-epub/internal/logger"
	"github.com/boris-k201/capsule-to-epub/internal/pipeline"
)

const progName = "capsule-to-epub"

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Run executes the command line tool and returns its exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	fs := config.NewFlagSet(progName)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(stdout, fs)
			return ExitOK
		}
		fmt.Fprintf(stderr, "%s: %v\n", progName, err)
		return ExitUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", progName, err)
		return ExitUsage
	}
	if cfg.Help {
		printUsage(stdout, fs)
		return ExitOK
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", progName, err)
		printUsage(stderr, fs)
		return ExitUsage
	}

	log := logger.New(cfg.Verbose)

	fetch := fetcher.Default(cfg.Timeout, cfg.UserAgent)
	pipe := pipeline.New(
		fetch,
		extractor.New(fetch, log),
		assembler.New(log),
		log,
		pipeline.Options{
			Title:    cfg.Title,
			Author:   cfg.Author,
			Language: cfg.Language,
			MaxPages: cfg.MaxPages,
		},
	)

	if err := pipe.Run(context.Background(), cfg.FeedURL, cfg.Output); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", progName, err)
		return ExitError
	}

	fmt.Fprintf(stdout, "wrote %s\n", cfg.Output)
	return ExitOK
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] <feed-url>\n\n", progName)
	fmt.Fprintf(w, "Packages a Gemfeed or Atom feed and its linked pages into one EPUB file.\n")
	fmt.Fprintf(w, "The feed URL may use the http, https or gemini scheme.\n\nFlags:\n")
	fmt.Fprint(w, fs.FlagUsages())
}
