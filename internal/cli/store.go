package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plantview/pkg/cache"
	"github.com/matzehuels/plantview/pkg/config"
	"github.com/matzehuels/plantview/pkg/convert"
	"github.com/matzehuels/plantview/pkg/engine"
	"github.com/matzehuels/plantview/pkg/slots"
)

// buildSlotStore constructs the slot store selected by the config.
func buildSlotStore(ctx context.Context, cfg config.Config) (slots.Store, error) {
	switch cfg.SlotBackend {
	case config.BackendRedis:
		return slots.NewRedisStore(ctx, cfg.RedisAddr, cfg.MaxStorageBytes)
	case config.BackendMongo:
		return slots.NewMongoStore(ctx, cfg.MongoURI, cfg.MaxStorageBytes)
	default:
		return slots.NewFileStore(cfg.SlotDir, cfg.MaxStorageBytes)
	}
}

// buildBroker wires the engine client and artifact cache into a broker.
func buildBroker(cfg config.Config, logger *log.Logger) *convert.Broker {
	var artifactCache cache.Cache = cache.NewNullCache()
	if cfg.CacheDir != "" {
		if fc, err := cache.NewFileCache(cfg.CacheDir); err == nil {
			artifactCache = fc
		} else {
			logger.Warn("artifact cache disabled", "err", err)
		}
	}

	client := engine.NewClient(cfg.EngineBaseURL, cfg.EngineConcurrencyLimit)
	return convert.New(client, convert.Options{
		MaxContentChars:  cfg.MaxContentChars,
		ConcurrencyLimit: cfg.EngineConcurrencyLimit,
		AdmissionWait:    cfg.AdmissionWait(),
		Timeout:          cfg.RequestTimeout(),
		Cache:            artifactCache,
		Logger:           logger,
	})
}
