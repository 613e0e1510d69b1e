package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/assistant"
	"github.com/vslobodin/jobscout/internal/jobsource"
	"github.com/vslobodin/jobscout/internal/matching"
	"github.com/vslobodin/jobscout/internal/notify"
	"github.com/vslobodin/jobscout/internal/schedule"
	"github.com/vslobodin/jobscout/internal/secrets"
	"github.com/vslobodin/jobscout/internal/semantic"
)

// buildSource constructs the configured job source. Without configuration the
// embedded demo source is used, so the cli works out of the box.
func buildSource(config *Config, logger *zap.Logger) (jobsource.Source, error) {
	provider := "demo"
	if config.Source != nil && config.Source.Provider != "" {
		provider = strings.ToLower(strings.TrimSpace(config.Source.Provider))
	}

	switch provider {
	case "demo":
		demo, err := jobsource.NewDemo()
		if err != nil {
			return nil, err
		}
		return demo, nil
	case "adzuna":
		adzuna := config.Source.Adzuna
		if adzuna == nil || adzuna.AppID == "" {
			return nil, fmt.Errorf("source.adzuna.app-id is required for the adzuna provider")
		}

		appKey, err := secrets.Load(secrets.Source{
			Name:  "adzuna app key",
			Value: adzuna.AppKey,
			File:  adzuna.AppKeyFile,
			Env:   "ADZUNA_APP_KEY",
		})
		if err != nil {
			return nil, err
		}

		country := adzuna.Country
		if country == "" {
			country = "gb"
		}
		return jobsource.NewAdzuna(adzuna.AppID, appKey, country, logger), nil
	default:
		return nil, fmt.Errorf("unsupported job source provider: %s", provider)
	}
}

// buildRanker constructs the hybrid ranker, with the semantic index attached
// only when configured. Without it every posting gets the neutral semantic
// score, which is the demo-mode behavior.
func buildRanker(ctx context.Context, config *Config, logger *zap.Logger) (*matching.Ranker, error) {
	var index matching.VectorIndex
	if config.Semantic != nil && config.Semantic.Enabled {
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: config.Semantic.APIKey,
			File:  config.Semantic.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("semantic search is enabled: %w", err)
		}

		idx, err := semantic.NewIndex(ctx, apiKey, config.Semantic.Model, logger)
		if err != nil {
			return nil, err
		}
		index = idx
	}

	return matching.NewRanker(index, matching.DefaultWeights, logger), nil
}

// buildAssistant constructs the Gemini-backed drafting assistant, or nil when
// it is not configured.
func buildAssistant(ctx context.Context, config *Config, logger *zap.Logger) (*assistant.Assistant, error) {
	if config.Assistant == nil || !config.Assistant.Enabled {
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Assistant.APIKey,
		File:  config.Assistant.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("assistant is enabled: %w", err)
	}

	generator, err := assistant.NewGenerator(ctx, apiKey, config.Assistant.Model)
	if err != nil {
		return nil, err
	}

	return assistant.New(generator, logger.With(zap.String("model", generator.Model())), config.Assistant.MaxLogLength), nil
}

// buildNotifier constructs the digest dispatcher from the configured
// transports. Missing transports degrade to log-only delivery.
func buildNotifier(config *Config, logger *zap.Logger) (*notify.Dispatcher, error) {
	var email, whatsapp notify.Transport
	var recipients map[string]notify.Recipient

	if config.Notify != nil {
		recipients = config.Notify.Recipients

		if smtp := config.Notify.SMTP; smtp != nil && smtp.Host != "" {
			password, err := secrets.Load(secrets.Source{
				Name:  "smtp password",
				Value: smtp.Password,
				File:  smtp.PasswordFile,
				Env:   "SMTP_PASSWORD",
			})
			if err != nil {
				return nil, err
			}

			port := smtp.Port
			if port == 0 {
				port = 587
			}
			email = notify.NewEmailTransport(smtp.Host, port, smtp.From, password)
		}

		if wa := config.Notify.WhatsApp; wa != nil && wa.AccountSID != "" {
			authToken, err := secrets.Load(secrets.Source{
				Name:  "twilio auth token",
				Value: wa.AuthToken,
				File:  wa.AuthTokenFile,
				Env:   "TWILIO_AUTH_TOKEN",
			})
			if err != nil {
				return nil, err
			}
			whatsapp = notify.NewWhatsAppTransport(wa.AccountSID, authToken, wa.From)
		}
	}

	return notify.NewDispatcher(email, whatsapp, recipients, logger), nil
}

// buildStore constructs schedule persistence. The memory driver is the
// default so demo mode needs no database.
func buildStore(ctx context.Context, config *Config) (schedule.Store, func(), error) {
	driver := "memory"
	if config.Store != nil && config.Store.Driver != "" {
		driver = strings.ToLower(strings.TrimSpace(config.Store.Driver))
	}

	switch driver {
	case "memory":
		return schedule.NewMemoryStore(), func() {}, nil
	case "postgres":
		databaseURL, err := secrets.Load(secrets.Source{
			Name:  "database url",
			Value: config.Store.DatabaseURL,
			Env:   "DATABASE_URL",
		})
		if err != nil {
			return nil, nil, err
		}

		pool, err := schedule.NewPostgresPool(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}

		store := schedule.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", driver)
	}
}

// buildSeenSet constructs the redis-backed dedup set when a redis url is
// configured. Without it recurring runs may renotify the same postings.
func buildSeenSet(ctx context.Context, config *Config) (schedule.SeenSet, func(), error) {
	if config.Store == nil || strings.TrimSpace(config.Store.RedisURL) == "" {
		return nil, func() {}, nil
	}

	rdb, err := notify.NewRedisClient(ctx, config.Store.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	return notify.NewRedisSeenSet(rdb), func() { rdb.Close() }, nil
}

// parseDuration parses an optional duration setting, falling back when unset.
func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", raw)
	}
	return d, nil
}
