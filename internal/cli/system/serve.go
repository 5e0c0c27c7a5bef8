package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/tally/internal/api"
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/metrics"
	"github.com/julianstephens/tally/internal/pipeline"
	"github.com/julianstephens/tally/internal/scheduler"
)

// ServeCmd runs the scheduler and the health/metrics endpoint until interrupted.
type ServeCmd struct {
	Listen string `help:"Address for the HTTP endpoint. Defaults to the config file value."`
	NoHTTP bool   `help:"Run the scheduler without the HTTP endpoint." name:"no-http"`
	RunNow bool   `help:"Run fetch_and_process once at startup."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.LoadSettings()
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	p := pipeline.New(ctx.Store, pipeline.WithRecorder(m))
	s := scheduler.New(ctx.Store, p, scheduler.WithHooks(m))

	if err := s.Start(runCtx, settings); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer s.Stop()

	interval, weekly, _ := scheduler.Specs(settings)
	fmt.Printf("Scheduler started (%s every %q, %s at %q)\n", constants.JobFetchAndProcess, interval, constants.JobWeeklyFillUp, weekly)
	for _, next := range s.Entries() {
		fmt.Printf("  next run: %s\n", next.Format(time.RFC3339))
	}

	if c.RunNow {
		if _, err := s.RunNow(runCtx, constants.JobFetchAndProcess); err != nil && !errors.Is(err, scheduler.ErrJobRunning) {
			logger.Error("Startup run failed", "error", err)
			fmt.Printf("⚠ Startup run failed: %v\n", err)
		}
	}

	if c.NoHTTP {
		<-runCtx.Done()
		fmt.Println("Shutting down")
		return nil
	}

	addr := c.Listen
	if addr == "" && ctx.Config != nil {
		addr = ctx.Config.Listen
	}
	if addr == "" {
		addr = constants.DefaultListenAddr
	}

	health := func() error {
		_, err := ctx.Store.CountRawEvents()
		return err
	}
	router := api.NewRouter(ctx.Store, health, m.Handler())

	fmt.Printf("Serving /health, /metrics and /summaries on %s\n", addr)
	if err := api.NewServer(addr, router).Run(runCtx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	fmt.Println("Shutting down")
	return nil
}
