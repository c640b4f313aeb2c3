package commands

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/internal/refresh"
	"github.com/GregMSThompson/widget-dashboard/pkg/clock"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

var WatchCmd = &cobra.Command{
	Use:   "watch WIDGET_YAML",
	Short: "Mount a widget and print every state change until interrupted",
	Long: `Watch mounts the widget the way a dashboard page does: one fetch on
mount, then one per refreshInterval, with rate-limited fetches retried
silently. Each state transition is printed as one line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := loadWidgetFile(args[0])
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logger.ToContext(ctx, newLogger())

		c := clock.Real()
		out := cmd.OutOrStdout()
		ctrl, err := refresh.NewController(ctx, refresh.Config{
			Fetcher:  newExecutor(c),
			Clock:    c,
			OnChange: func(_ string, s refresh.FetchState) { printState(out, s) },
		})
		if err != nil {
			return err
		}
		defer ctrl.Close()

		inst := ctrl.Mount(refresh.MountRequest{
			Config: wf.Widget,
			Vars:   pipeline.ResolveContext(wf.Path, wf.Entity),
		})

		<-ctx.Done()
		if s := inst.State(); s.Phase == refresh.PhaseLoaded {
			return printJSON(out, inst.View())
		}
		return nil
	},
}

func printState(w io.Writer, s refresh.FetchState) {
	line := fmt.Sprintf("%s seq=%d phase=%s", time.Now().Format(time.TimeOnly), s.Sequence, s.Phase)
	if s.Refreshing {
		line += " refreshing"
	}
	if s.ErrorMessage != "" {
		line += fmt.Sprintf(" error=%q", s.ErrorMessage)
	}
	fmt.Fprintln(w, line)
}
