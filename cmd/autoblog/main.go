package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"autoblog"
	"autoblog/blog"
	"autoblog/config"
	"autoblog/news"
	"autoblog/store"
	"autoblog/writer"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "auto", "test", "dashboard", "retry":
		runCommand(command)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runCommand(command string) {
	// Configuration is validated before any network or database activity.
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	feeds, err := config.LoadFeeds(cfg.FeedsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	collector := news.NewRSSCollector(feeds, logger)

	w, err := writer.NewOpenAIWriter(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	poster := blog.NewPoster(cfg.BlogURL, cfg.BlogUsername, cfg.BlogPassword, nil, logger)

	system := autoblog.NewSystem(cfg, st, collector, w, poster, logger)
	ctx := context.Background()

	switch command {
	case "auto":
		if err := system.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "test":
		writerOK, storeOK := system.Test(ctx)
		if !writerOK || !storeOK {
			os.Exit(1)
		}
	case "dashboard":
		if err := system.Dashboard(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "retry":
		if err := system.Retry(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printUsage() {
	fmt.Println("autoblog - Automated news-to-blog posting pipeline")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  autoblog <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  auto       Run the full pipeline once")
	fmt.Println("  test       Probe the writer and store and report a summary")
	fmt.Println("  dashboard  Print aggregate counts")
	fmt.Println("  retry      Reattempt publishing for pending posts")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  OPENAI_API_KEY        OpenAI API key (required)")
	fmt.Println("  OPENAI_MODEL          Chat model name (default: gpt-4o-mini)")
	fmt.Println("  OPENAI_BASE_URL       Alternate OpenAI-compatible endpoint")
	fmt.Println("  AUTOBLOG_DB_PATH      Path to the SQLite database (required)")
	fmt.Println("  BLOG_URL              Target blog base address (required)")
	fmt.Println("  BLOG_USERNAME         Blog account username (required)")
	fmt.Println("  BLOG_PASSWORD         Blog account password (required)")
	fmt.Println("  MAX_CONTENT_LENGTH    Generated content cap (default: 500)")
	fmt.Println("  AUTOBLOG_FEEDS_FILE   YAML file listing RSS feeds (optional)")
}
