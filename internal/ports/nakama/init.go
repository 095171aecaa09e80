package nakama

import (
	"context"
	"database/sql"

	"refbot/internal/app"
	"refbot/internal/config"
	"refbot/internal/resolver"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires the referee RPCs and realtime hooks for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	if path := env[envConfigPath]; path != "" {
		if err := config.LoadGameConfig(path); err != nil {
			logger.Error("InitModule: could not load game config: %v", err)
			return err
		}
	} else {
		logger.Warn("InitModule: %s not set, using default game config.", envConfigPath)
	}
	cfg := config.GetGameConfig()

	secret := cfg.RevertSecret
	if s := env[envRevertSecret]; s != "" {
		secret = s
	}
	if secret == "" {
		logger.Warn("InitModule: no revert secret configured, revert commands are disabled.")
	}

	svc := app.NewService(nil, resolver.New(), cfg)
	signer := app.NewRevertSigner(secret, cfg.RevertIssuer, cfg.RevertTTL())
	coord := app.NewCoordinator(svc, NewStorageStore(nk), NewChannelTransport(nk), config.NewStaticRoster(cfg.Teams), signer)
	h := &handlers{coord: coord}

	if err := registerRPCs(initializer, h); err != nil {
		return err
	}
	if err := initializer.RegisterAfterRt(RtChannelMessageSend, h.afterChannelMessageSend); err != nil {
		return err
	}

	logger.Info("refbot Go module loaded with %d teams.", len(cfg.Teams))
	return nil
}
