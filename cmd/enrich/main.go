// Command enrich runs operator actions against durable enrichment state.
//
//	enrich stats             print idea counts by enrichment status
//	enrich retry-failed      return all failed ideas to pending
//	enrich reset-processing  return ideas stuck in processing to pending
//
// reset-processing is only safe while no server is running; a server does
// the same on startup. Ideas returned to pending are picked up by the next
// backlog scan of a running server.
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres"
	idearepo "github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres/idea"
	"github.com/heartmarshall/ideaflow-backend/internal/app"
	"github.com/heartmarshall/ideaflow-backend/internal/config"
	"github.com/heartmarshall/ideaflow-backend/internal/service/enrichment"
)

func main() {
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-timeout d] stats|retry-failed|reset-processing\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := enrichment.NewService(logger, idearepo.New(pool))

	if err := run(ctx, svc, flag.Arg(0)); err != nil {
		logger.Error("command failed", slog.String("command", flag.Arg(0)), slog.String("error", err.Error()))
		pool.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *enrichment.Service, command string) error {
	switch command {
	case "stats":
		st, err := svc.GetStats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("pending=%d processing=%d completed=%d failed=%d total=%d\n",
			st.Pending, st.Processing, st.Completed, st.Failed, st.Total)
	case "retry-failed":
		n, err := svc.RetryAllFailed(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("reset %d failed ideas to pending\n", n)
	case "reset-processing":
		n, err := svc.ResetProcessing(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("reset %d processing ideas to pending\n", n)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}
