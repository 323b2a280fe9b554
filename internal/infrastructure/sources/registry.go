package sources

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/feed"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
	"github.com/riskibarqy/scoreline/internal/platform/resilience"
)

const (
	DefaultNBABaseURL = "https://cdn.nba.com/static/json/liveData"
	DefaultMLBBaseURL = "https://statsapi.mlb.com"
	DefaultNHLBaseURL = "https://api-web.nhle.com"
)

type LeagueConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

type RegistryConfig struct {
	Leagues  map[string]LeagueConfig
	Breakers *resilience.BreakerSet
	Logger   *logging.Logger
}

// NewRegistry builds one adapter per configured league. Each league gets its
// own client and circuit breaker; the engine never shares either across
// sources.
func NewRegistry(cfg RegistryConfig) (map[string]feed.Adapter, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	leagues := make([]string, 0, len(cfg.Leagues))
	for league := range cfg.Leagues {
		leagues = append(leagues, strings.ToUpper(strings.TrimSpace(league)))
	}
	sort.Strings(leagues)

	adapters := make(map[string]feed.Adapter, len(leagues))
	for _, league := range leagues {
		leagueCfg := cfg.Leagues[league]
		client := NewClient(ClientConfig{
			HTTPClient: leagueCfg.HTTPClient,
			BaseURL:    baseURLFor(league, leagueCfg.BaseURL),
			Token:      leagueCfg.Token,
			Timeout:    leagueCfg.Timeout,
			MaxRetries: leagueCfg.MaxRetries,
			Logger:     logger,
			Breaker:    cfg.Breakers.For(league),
		})

		switch league {
		case LeagueNBA:
			adapters[league] = NewNBAAdapter(client, logger)
		case LeagueMLB:
			adapters[league] = NewMLBAdapter(client, logger)
		case LeagueNHL:
			adapters[league] = NewNHLAdapter(client, logger)
		default:
			return nil, fmt.Errorf("no adapter implemented for league=%s", league)
		}
	}
	return adapters, nil
}

func baseURLFor(league, configured string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	switch league {
	case LeagueNBA:
		return DefaultNBABaseURL
	case LeagueMLB:
		return DefaultMLBBaseURL
	case LeagueNHL:
		return DefaultNHLBaseURL
	default:
		return ""
	}
}
