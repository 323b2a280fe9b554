package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_EngineDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.Leagues) != 3 {
		t.Fatalf("unexpected league count: %v", cfg.Leagues)
	}
	if cfg.CloseThresholdByLeague["NBA"] != 10 || cfg.CloseThresholdByLeague["NHL"] != 2 || cfg.CloseThresholdByLeague["MLB"] != 3 {
		t.Fatalf("unexpected close thresholds: %v", cfg.CloseThresholdByLeague)
	}
	if cfg.CloseInterval != 60*time.Second || cfg.NormalInterval != 120*time.Second || cfg.ScheduledOnlyInterval != 300*time.Second {
		t.Fatalf("unexpected intervals: %s/%s/%s", cfg.CloseInterval, cfg.NormalInterval, cfg.ScheduledOnlyInterval)
	}
	if cfg.StartLead != 10*time.Minute {
		t.Fatalf("unexpected start lead: %s", cfg.StartLead)
	}
	if cfg.FailureCeiling != 3 {
		t.Fatalf("unexpected failure ceiling: %d", cfg.FailureCeiling)
	}
	if cfg.ActiveHours != "" {
		t.Fatalf("expected no active-hours window by default, got %q", cfg.ActiveHours)
	}
}

func TestLoad_LeagueMapsAreUpperCased(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("LEAGUES", "nba,mlb")
	t.Setenv("RATE_LIMIT_MAP", "nba:30,mlb:25")
	t.Setenv("CLOSE_THRESHOLD_MAP", "nba:10,mlb:3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Leagues[0] != "NBA" || cfg.Leagues[1] != "MLB" {
		t.Fatalf("unexpected leagues: %v", cfg.Leagues)
	}
	if cfg.RateLimitByLeague["MLB"] != 25 {
		t.Fatalf("unexpected rate limits: %v", cfg.RateLimitByLeague)
	}
}

func TestLoad_RateLimitRequiredPerLeague(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("LEAGUES", "NBA,MLB,NHL")
	t.Setenv("RATE_LIMIT_MAP", "NBA:30")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when RATE_LIMIT_MAP misses a configured league")
	}
}

func TestLoad_IntervalsMustBeOrdered(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("POLL_CLOSE_INTERVAL", "120s")
	t.Setenv("POLL_NORMAL_INTERVAL", "60s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when normal interval is below close interval")
	}
}

func TestLoad_SourceMapsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SOURCE_BASE_URL_MAP", "nhl:https://nhl.internal.test")
	t.Setenv("SOURCE_TOKEN_MAP", "mlb:sekret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SourceBaseURLByLeague["NHL"] != "https://nhl.internal.test" {
		t.Fatalf("unexpected base url map: %v", cfg.SourceBaseURLByLeague)
	}
	if cfg.SourceTokenByLeague["MLB"] != "sekret" {
		t.Fatalf("unexpected token map: %v", cfg.SourceTokenByLeague)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "scoreline-poller-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "scoreline-poller-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 30*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}
