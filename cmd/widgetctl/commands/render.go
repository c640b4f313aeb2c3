package commands

import (
	"github.com/spf13/cobra"

	"github.com/GregMSThompson/widget-dashboard/internal/dto"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/internal/render"
	"github.com/GregMSThompson/widget-dashboard/internal/transform"
	"github.com/GregMSThompson/widget-dashboard/pkg/clock"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

var RenderCmd = &cobra.Command{
	Use:   "render WIDGET_YAML",
	Short: "Render local JSON data with a widget definition",
	Long: `Render transforms and renders a JSON document exactly as the dashboard
would, without calling the plugin gateway. Use --data - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := loadWidgetFile(args[0])
		if err != nil {
			return err
		}
		dataPath, _ := cmd.Flags().GetString("data")
		data, err := readData(dataPath, cmd.InOrStdin())
		if err != nil {
			return err
		}
		shaped := transform.Apply(wf.Widget, data)
		return printJSON(cmd.OutOrStdout(), dto.WidgetDataResponse{
			Data: shaped,
			View: render.Render(wf.Widget.DisplayType, shaped, wf.Widget),
		})
	},
}

var FetchCmd = &cobra.Command{
	Use:   "fetch WIDGET_YAML",
	Short: "Run a widget query once against the gateway and print the view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := loadWidgetFile(args[0])
		if err != nil {
			return err
		}
		ctx := logger.ToContext(cmd.Context(), newLogger())
		exec := newExecutor(clock.Real())

		res, err := exec.Execute(ctx, wf.Widget, pipeline.ResolveContext(wf.Path, wf.Entity))
		if err != nil {
			return err
		}
		shaped := transform.Apply(wf.Widget, res.Data)
		return printJSON(cmd.OutOrStdout(), dto.WidgetDataResponse{
			Data:        shaped,
			View:        render.Render(wf.Widget.DisplayType, shaped, wf.Widget),
			LastUpdated: res.FetchedAt,
		})
	},
}

func init() {
	RenderCmd.Flags().String("data", "-", "JSON data file, - for stdin")
}
