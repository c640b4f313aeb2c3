package bootstrap

import (
	"github.com/GregMSThompson/widget-dashboard/internal/config"
	"github.com/GregMSThompson/widget-dashboard/internal/crypto"
	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/pipeline"
	"github.com/GregMSThompson/widget-dashboard/internal/store"
)

// gatewayTokens picks the bearer token source. A Secret Manager secret wins
// over a KMS sealed token, which wins over a plaintext token.
func gatewayTokens(cfg *config.Config, bs *Bootstrap) (pipeline.TokenSource, error) {
	switch {
	case cfg.PluginTokenSecret != "":
		return store.NewGatewayTokenStore(bs.Secrets, cfg.ProjectID, cfg.PluginTokenSecret), nil
	case cfg.PluginTokenCipher != "":
		if cfg.KMSKeyName == "" {
			return nil, errs.NewConfigurationError("KMSKEYNAME", "KMSKEYNAME is required with PLUGINTOKENCIPHER")
		}
		return crypto.NewSealedToken(crypto.NewKMS(bs.KMS, cfg.KMSKeyName), cfg.PluginTokenCipher), nil
	default:
		return pipeline.StaticToken(cfg.PluginToken), nil
	}
}
