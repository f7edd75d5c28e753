package config

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ServerConfig.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.ServerConfig.Port)
	}
	if cfg.AnalysisConfig.DefaultSensitivity != 0.5 {
		t.Errorf("default sensitivity = %v, want 0.5", cfg.AnalysisConfig.DefaultSensitivity)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("ANALYSIS_SENSITIVITY", "0.8")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.ServerConfig.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.ServerConfig.Port)
	}
	if cfg.AnalysisConfig.DefaultSensitivity != 0.8 {
		t.Errorf("sensitivity = %v, want 0.8", cfg.AnalysisConfig.DefaultSensitivity)
	}
	if !cfg.RedisConfig.Enabled {
		t.Error("redis should be enabled")
	}
	if cfg.LoggingConfig.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LoggingConfig.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.ServerConfig.Port = -1
	if err := cfg.validate(); err == nil {
		t.Error("negative port accepted")
	}

	cfg = Default()
	cfg.AnalysisConfig.DefaultSensitivity = 2.0
	if err := cfg.validate(); err == nil {
		t.Error("out-of-range sensitivity accepted")
	}

	cfg = Default()
	cfg.AnalysisConfig.MaxSeriesLength = 10
	if err := cfg.validate(); err == nil {
		t.Error("max series below the analysis minimum accepted")
	}
}
