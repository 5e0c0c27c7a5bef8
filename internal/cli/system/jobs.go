package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/pipeline"
	"github.com/julianstephens/tally/internal/scheduler"
)

type JobsCmd struct {
	Run  JobsRunCmd  `cmd:"" help:"Run a scheduler job once, now."`
	List JobsListCmd `cmd:"" help:"List recent job runs." default:"1"`
}

type JobsRunCmd struct {
	Job string `arg:"" enum:"fetch_and_process,weekly_fillup" help:"Job to run (fetch_and_process or weekly_fillup)."`
}

func (c *JobsRunCmd) Run(ctx *cli.Context) error {
	if ctx.IsSQLite() {
		ctx.PerformAutomaticBackup()
	}

	s := scheduler.New(ctx.Store, pipeline.New(ctx.Store))
	run, err := s.RunNow(context.Background(), c.Job)
	if err != nil {
		return fmt.Errorf("%s failed: %w", c.Job, err)
	}

	fmt.Printf("✓ %s finished in %s\n", run.Job, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	for _, key := range []string{"week_start", "events_fetched", "raw_events_count", "time_blocks_created", "total_hours", "hours_filled"} {
		if v, ok := run.Metadata[key]; ok {
			fmt.Printf("  %-20s %v\n", key+":", v)
		}
	}
	return nil
}

type JobsListCmd struct {
	Job   string `help:"Only show runs of this job."`
	Limit int    `help:"Maximum number of runs to show." default:"20"`
}

func (c *JobsListCmd) Run(ctx *cli.Context) error {
	runs, err := ctx.Store.GetJobRuns(c.Job, c.Limit)
	if err != nil {
		return fmt.Errorf("failed to list job runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No job runs recorded.")
		return nil
	}

	for _, run := range runs {
		status := "running"
		elapsed := ""
		if run.FinishedAt != nil {
			elapsed = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
			status = "ok"
			if !run.Success {
				status = "failed"
			}
		}
		fmt.Printf("  %s  %-18s %-8s %s\n", run.StartedAt.Local().Format(constants.LegacyTimestampFormat), run.Job, status, elapsed)
		if run.Error != "" {
			fmt.Printf("      %s\n", run.Error)
		}
	}
	return nil
}
