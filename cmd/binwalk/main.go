package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/satyamisme/binwalk/pkg/catalog"
	"github.com/satyamisme/binwalk/pkg/env"
	"github.com/satyamisme/binwalk/pkg/logger"
	"github.com/satyamisme/binwalk/pkg/walker"
)

// Version set at build time via -ldflags
var version = "v0.1.0"

func main() {
	// Load environment variables for logger and catalog configuration
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	extractFlag := flag.Bool("e", false, "extract matched signatures")
	depthFlag := flag.Int("d", env.Int(env.MaxDepth, walker.DefaultMaxDepth), "maximum recursion depth")
	workersFlag := flag.Int("j", env.Int(env.Workers, 1), "number of files processed in parallel")
	configFlag := flag.String("c", env.String(env.ConfigPath, ""), "extractor config file (JSON)")
	quietFlag := flag.Bool("q", false, "only log errors")
	flag.Parse()

	logLevel := env.String(env.LogLevel, "INFO")
	if *quietFlag {
		logLevel = "ERROR"
	}
	logger.Init(logLevel)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: binwalk [-e] [-d depth] [-j workers] [-c config] [-q] file...")
		os.Exit(2)
	}

	logger.Info("Starting binwalk", "version", version)

	cat, err := catalog.Load(*configFlag)
	if err != nil {
		logger.Fatal("Failed to load extractor catalog", "err", err)
	}

	w, err := walker.New(walker.Options{
		Extract:  *extractFlag,
		MaxDepth: *depthFlag,
		Workers:  *workersFlag,
		Catalog:  cat,
	})
	if err != nil {
		logger.Fatal("Failed to initialize walker", "err", err)
	}

	report, err := w.Walk(context.Background(), flag.Args())
	if err != nil {
		logger.Fatal("Walk failed", "err", err)
	}

	printReport(report)
}

func printReport(report *walker.Report) {
	matched := 0
	extracted := 0

	for _, file := range report.Files {
		if len(file.Matches) == 0 {
			continue
		}
		matched += len(file.Matches)

		fmt.Printf("\n%s\n", file.Path)
		fmt.Printf("%-12s %-12s %s\n", "DECIMAL", "HEX", "DESCRIPTION")
		for _, match := range file.Matches {
			fmt.Printf("%-12d %-#12x %s\n", match.Offset, match.Offset, match.Description)
		}

		for _, result := range file.Results {
			if result.Success {
				extracted++
			}
		}
	}

	fmt.Printf("\n%d signature(s) found, %d extraction(s) succeeded\n", matched, extracted)
}
