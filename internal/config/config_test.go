package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/football-sync/internal/platform/logging"
)

func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("SYNC_SCHEDULE_ENABLED", "false")
	t.Setenv("UPTRACE_TRACE_SAMPLE_RATIO", "")
	t.Setenv("PYROSCOPE_AUTH_TOKEN", "")
	t.Setenv("PYROSCOPE_BASIC_AUTH_USER", "")
	t.Setenv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")
	t.Setenv("PYROSCOPE_PROFILE_TYPES", "")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	baseEnv(t)
	t.Setenv("FOOTBALL_DATA_API_KEY", "")
	t.Setenv("SYNC_AUTH_TOKEN", "")
	t.Setenv("SYNC_WORKERS", "")
	t.Setenv("SYNC_MATCH_WINDOW_DAYS", "")
	t.Setenv("FOOTBALL_DATA_MAX_RETRIES", "")
	t.Setenv("FOOTBALL_DATA_REQUESTS_PER_MINUTE", "")
	t.Setenv("FOOTBALL_DATA_BASE_URL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("unexpected store driver: %q", cfg.StoreDriver)
	}
	if cfg.FootballDataBaseURL != "https://api.football-data.org/v4" {
		t.Fatalf("unexpected base url: %q", cfg.FootballDataBaseURL)
	}
	if cfg.FootballDataTimeout != 20*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.FootballDataTimeout)
	}
	if cfg.FootballDataMaxRetries != 0 {
		t.Fatalf("expected single attempt by default, got retries=%d", cfg.FootballDataMaxRetries)
	}
	if cfg.FootballDataRequestsPerMinute != 10 {
		t.Fatalf("unexpected requests per minute: %d", cfg.FootballDataRequestsPerMinute)
	}
	if cfg.SyncWorkers != 1 || cfg.SyncMatchWindowDays != 7 {
		t.Fatalf("unexpected sync defaults: workers=%d window=%d", cfg.SyncWorkers, cfg.SyncMatchWindowDays)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if !cfg.FootballDataCircuitBreaker.Enabled {
		t.Fatalf("expected circuit breaker enabled by default")
	}
}

func TestLoad_MissingCredentialsDoNotFailLoad(t *testing.T) {
	baseEnv(t)
	t.Setenv("FOOTBALL_DATA_API_KEY", "")
	t.Setenv("SYNC_AUTH_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FootballDataAPIKey != "" || cfg.SyncAuthToken != "" {
		t.Fatalf("expected empty credentials")
	}
}

func TestLoad_CredentialsAreTrimmed(t *testing.T) {
	baseEnv(t)
	t.Setenv("FOOTBALL_DATA_API_KEY", " abc123 ")
	t.Setenv("SYNC_AUTH_TOKEN", " s3cret\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FootballDataAPIKey != "abc123" {
		t.Fatalf("unexpected api key: %q", cfg.FootballDataAPIKey)
	}
	if cfg.SyncAuthToken != "s3cret" {
		t.Fatalf("unexpected sync token: %q", cfg.SyncAuthToken)
	}
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	baseEnv(t)

	t.Run("memory", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "Memory")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StoreDriver != StoreDriverMemory {
			t.Fatalf("unexpected store driver: %q", cfg.StoreDriver)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mysql")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORE_DRIVER")
		}
	})
}

func TestLoad_SyncWorkersMustBePositive(t *testing.T) {
	baseEnv(t)
	t.Setenv("SYNC_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SYNC_WORKERS=0")
	}
}

func TestLoad_CircuitBreakerParsing(t *testing.T) {
	baseEnv(t)
	t.Setenv("FOOTBALL_DATA_CB_ENABLED", "false")
	t.Setenv("FOOTBALL_DATA_CB_FAILURE_COUNT", "7")
	t.Setenv("FOOTBALL_DATA_CB_OPEN_TIMEOUT", "30s")
	t.Setenv("FOOTBALL_DATA_CB_HALF_OPEN_MAX_REQ", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	breaker := cfg.FootballDataCircuitBreaker
	if breaker.Enabled || breaker.FailureThreshold != 7 || breaker.OpenTimeout != 30*time.Second || breaker.HalfOpenMaxReq != 2 {
		t.Fatalf("unexpected breaker config: %+v", breaker)
	}

	t.Setenv("FOOTBALL_DATA_CB_FAILURE_COUNT", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for FOOTBALL_DATA_CB_FAILURE_COUNT=0")
	}
}

func TestLoad_ScheduleValidation(t *testing.T) {
	baseEnv(t)
	t.Setenv("SYNC_SCHEDULE_ENABLED", "true")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SYNC_CRON_ALL", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SyncCronAll != "0 3 * * *" {
			t.Fatalf("unexpected SYNC_CRON_ALL: %q", cfg.SyncCronAll)
		}
	})

	t.Run("blank matches schedule disables it", func(t *testing.T) {
		t.Setenv("SYNC_CRON_MATCHES", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SyncCronMatches != "" {
			t.Fatalf("expected matches schedule disabled, got %q", cfg.SyncCronMatches)
		}
	})

	t.Run("invalid expression", func(t *testing.T) {
		t.Setenv("SYNC_CRON_ALL", "every day")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid SYNC_CRON_ALL")
		}
	})
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	baseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	baseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	baseEnv(t)
	t.Setenv("SERVICE_NAME", "football-sync-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "football-sync-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	baseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_UptraceSampleRatio(t *testing.T) {
	baseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceTraceSampleRatio != 1 {
		t.Fatalf("expected every root span sampled by default, got %v", cfg.UptraceTraceSampleRatio)
	}

	t.Setenv("UPTRACE_TRACE_SAMPLE_RATIO", "0.25")
	if cfg, err = Load(); err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceTraceSampleRatio != 0.25 {
		t.Fatalf("unexpected sample ratio: %v", cfg.UptraceTraceSampleRatio)
	}

	for _, raw := range []string{"1.5", "-0.1", "half"} {
		t.Setenv("UPTRACE_TRACE_SAMPLE_RATIO", raw)
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for UPTRACE_TRACE_SAMPLE_RATIO=%q", raw)
		}
	}
}

func TestLoad_PyroscopeBasicAuth(t *testing.T) {
	baseEnv(t)
	t.Setenv("PYROSCOPE_BASIC_AUTH_USER", " grafana ")
	t.Setenv("PYROSCOPE_BASIC_AUTH_PASSWORD", "glc_secret")
	t.Setenv("PYROSCOPE_PROFILE_TYPES", "cpu, goroutines")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeBasicAuthUser != "grafana" || cfg.PyroscopeBasicAuthPassword != "glc_secret" {
		t.Fatalf("unexpected basic auth: %q/%q", cfg.PyroscopeBasicAuthUser, cfg.PyroscopeBasicAuthPassword)
	}
	if len(cfg.PyroscopeProfileTypes) != 2 || cfg.PyroscopeProfileTypes[1] != "goroutines" {
		t.Fatalf("unexpected profile types: %+v", cfg.PyroscopeProfileTypes)
	}

	t.Setenv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for basic auth user without password")
	}

	t.Setenv("PYROSCOPE_BASIC_AUTH_PASSWORD", "glc_secret")
	t.Setenv("PYROSCOPE_AUTH_TOKEN", "token")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for auth token combined with basic auth")
	}
}
