package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/GregMSThompson/widget-dashboard/internal/bootstrap"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/pkg/clock"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

// WidgetFile is the YAML document widgetctl reads: a widget configuration
// and the page it is shown on.
type WidgetFile struct {
	Widget models.WidgetConfig   `yaml:"widget"`
	Path   string                `yaml:"path,omitempty"`
	Entity *models.EntityContext `yaml:"entity,omitempty"`
}

func loadWidgetFile(path string) (WidgetFile, error) {
	var wf WidgetFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return wf, err
	}
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return wf, fmt.Errorf("parse %s: %w", path, err)
	}
	if wf.Widget.QueryType == "" {
		wf.Widget.QueryType = models.QueryTypeDefault
	}
	if !wf.Widget.DisplayType.Valid() {
		return wf, fmt.Errorf("%s: unsupported displayType %q", path, wf.Widget.DisplayType)
	}
	return wf, nil
}

// readData decodes a JSON document from a file, or from stdin when path is "-".
func readData(path string, stdin io.Reader) (any, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var data any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return data, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger() *slog.Logger {
	return logger.New(viper.GetString("log-level"), func(level slog.Level) slog.Handler {
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	})
}

func newExecutor(c clock.Clock) *pipeline.Executor {
	return pipeline.NewExecutor(pipeline.ExecutorConfig{
		BaseURL: viper.GetString("gateway"),
		Client:  bootstrap.NewHTTPClient(),
		Tokens:  pipeline.StaticToken(viper.GetString("token")),
		Limiter: pipeline.NewRateLimiter(c, pipeline.DefaultCooldown),
		Clock:   c,
		Timeout: viper.GetDuration("timeout"),
	})
}
