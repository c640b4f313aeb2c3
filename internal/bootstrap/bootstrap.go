package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/widget-dashboard/internal/config"
	"github.com/GregMSThompson/widget-dashboard/internal/metrics"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/internal/refresh"
	"github.com/GregMSThompson/widget-dashboard/internal/telemetry"
	"github.com/GregMSThompson/widget-dashboard/pkg/clock"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	KMS       *gcpkms.KeyManagementClient
	Secrets   *secretmanager.Client

	Metrics    *metrics.Metrics
	Executor   *pipeline.Executor
	Bus        *refresh.Bus
	Controller *refresh.Controller

	shutdownTracing func(context.Context) error
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)
	applicationCtx = logger.ToContext(applicationCtx, bs.Log)

	bs.shutdownTracing, err = telemetry.SetupProvider(applicationCtx, telemetry.Config{
		ServiceName: "widget-dashboard-api",
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
	})
	if err != nil {
		return bs, err
	}

	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.Firebase, err = InitFirebase(applicationCtx)
	if err != nil {
		return bs, err
	}
	if cfg.PluginTokenCipher != "" {
		bs.KMS, err = InitKMS(applicationCtx)
		if err != nil {
			return bs, err
		}
	}
	if cfg.PluginTokenSecret != "" {
		bs.Secrets, err = InitSecretManager(applicationCtx)
		if err != nil {
			return bs, err
		}
	}

	tokens, err := gatewayTokens(cfg, bs)
	if err != nil {
		return bs, err
	}

	c := clock.Real()
	bs.Metrics = metrics.New()
	bs.Executor = pipeline.NewExecutor(pipeline.ExecutorConfig{
		BaseURL:  cfg.PluginBaseURL,
		Client:   NewHTTPClient(),
		Tokens:   tokens,
		Limiter:  pipeline.NewRateLimiter(c, cfg.RateLimitWindow),
		Clock:    c,
		Timeout:  cfg.PluginTimeout,
		Recorder: bs.Metrics,
	})

	bs.Bus = refresh.NewBus(bs.Log)
	policy := pipeline.DefaultRetryPolicy()
	policy.RateLimitDelay = cfg.RateLimitRetry
	bs.Controller, err = refresh.NewController(applicationCtx, refresh.Config{
		Fetcher: bs.Executor,
		Clock:   c,
		Policy:  policy,
		Bus:     bs.Bus,
		Mounted: bs.Metrics.Mounted(),
		IdleTTL: cfg.InstanceIdleTTL,
	})
	if err != nil {
		return bs, err
	}

	return bs, nil
}

// Close stops every mounted instance, releases the cloud clients and flushes
// buffered spans.
func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Controller != nil {
		bs.Controller.Close()
	}
	if bs.Bus != nil {
		errList = append(errList, bs.Bus.Close())
	}
	if bs.Secrets != nil {
		errList = append(errList, bs.Secrets.Close())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errList = append(errList, bs.shutdownTracing(ctx))
		cancel()
	}
	return errors.Join(errList...)
}
