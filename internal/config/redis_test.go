package config

import "testing"

func clearRedisEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INMET_REDIS_ADDR", "INMET_REDIS_PASSWORD",
		"INMET_REDIS_DB", "INMET_REDIS_STREAM",
	} {
		t.Setenv(key, "")
	}
}

func TestGetRedisConfig_FromEnvVars(t *testing.T) {
	clearRedisEnv(t)
	t.Setenv("INMET_REDIS_ADDR", "testhost:6380")
	t.Setenv("INMET_REDIS_PASSWORD", "testpassword")
	t.Setenv("INMET_REDIS_DB", "5")
	t.Setenv("INMET_REDIS_STREAM", "test_stream")

	cfg := GetRedisConfig()

	if cfg.Addr != "testhost:6380" {
		t.Errorf("GetRedisConfig().Addr = %v, want testhost:6380", cfg.Addr)
	}
	if cfg.Password != "testpassword" {
		t.Errorf("GetRedisConfig().Password = %v, want testpassword", cfg.Password)
	}
	if cfg.DB != 5 {
		t.Errorf("GetRedisConfig().DB = %v, want 5", cfg.DB)
	}
	if cfg.Stream != "test_stream" {
		t.Errorf("GetRedisConfig().Stream = %v, want test_stream", cfg.Stream)
	}
}

func TestGetRedisConfig_Defaults(t *testing.T) {
	clearRedisEnv(t)

	cfg := GetRedisConfig()

	if cfg.Addr != "localhost:6379" {
		t.Errorf("GetRedisConfig().Addr = %v, want localhost:6379", cfg.Addr)
	}
	if cfg.Password != "" {
		t.Errorf("GetRedisConfig().Password = %v, want empty string", cfg.Password)
	}
	if cfg.DB != 0 {
		t.Errorf("GetRedisConfig().DB = %v, want 0", cfg.DB)
	}
	if cfg.Stream != "inmet_snapshots" {
		t.Errorf("GetRedisConfig().Stream = %v, want inmet_snapshots", cfg.Stream)
	}
}

func TestGetRedisConfig_InvalidDB(t *testing.T) {
	clearRedisEnv(t)
	t.Setenv("INMET_REDIS_DB", "invalid")

	if cfg := GetRedisConfig(); cfg.DB != 0 {
		t.Errorf("GetRedisConfig().DB = %v, want 0 on parse error", cfg.DB)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("INMET_TEST_STR", "custom")
	t.Setenv("INMET_TEST_INT", "7")
	t.Setenv("INMET_TEST_EMPTY", "")

	if got := envOr("INMET_TEST_STR", "default"); got != "custom" {
		t.Errorf("envOr() = %v, want custom", got)
	}
	if got := envOr("INMET_TEST_EMPTY", "default"); got != "default" {
		t.Errorf("envOr() on empty = %v, want default", got)
	}
	if got := envInt("INMET_TEST_INT", 0); got != 7 {
		t.Errorf("envInt() = %v, want 7", got)
	}
	if got := envInt("INMET_TEST_EMPTY", 3); got != 3 {
		t.Errorf("envInt() on empty = %v, want 3", got)
	}
}
