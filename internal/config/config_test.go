package config

import "testing"

func TestFromEnv_RequiresJWTSecretOutsideOfflineMode(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	t.Setenv(EnvOfflineMode, "")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected an error when JWT_SECRET is missing outside OFFLINE_MODE")
	}
}

func TestFromEnv_OfflineModeAllowsMissingSecret(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	t.Setenv(EnvOfflineMode, "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.OfflineMode {
		t.Error("expected OfflineMode to be true")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv(EnvJWTSecret, "secret")
	t.Setenv(EnvRedisHost, "")
	t.Setenv(EnvRedisPort, "")
	t.Setenv(EnvAddr, "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.RedisHost != "localhost" {
		t.Errorf("expected default redis host, got %s", cfg.RedisHost)
	}
	if cfg.RedisPort != 6379 {
		t.Errorf("expected default redis port, got %d", cfg.RedisPort)
	}
	if cfg.RedisAddr() != "localhost:6379" {
		t.Errorf("unexpected redis addr: %s", cfg.RedisAddr())
	}
}

func TestFromEnv_InvalidRedisPort(t *testing.T) {
	t.Setenv(EnvJWTSecret, "secret")
	t.Setenv(EnvRedisPort, "not-a-number")

	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected an error for non-numeric REDIS_PORT")
	}
}

func TestFromEnv_CORSOrigins(t *testing.T) {
	t.Setenv(EnvJWTSecret, "secret")
	t.Setenv(EnvCORSOrigins, "https://a.example, https://b.example")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %d", len(cfg.CORSOrigins))
	}
	if !cfg.AllowOrigin("https://a.example") {
		t.Error("expected https://a.example to be allowed")
	}
	if cfg.AllowOrigin("https://evil.example") {
		t.Error("expected https://evil.example to be rejected")
	}
}

func TestConfig_AllowOrigin_EmptyWhitelistAllowsAll(t *testing.T) {
	cfg := &Config{}
	if !cfg.AllowOrigin("https://anything.example") {
		t.Error("expected empty whitelist to allow all origins")
	}
}

func TestLoadRoomTemplates_MissingFileReturnsNil(t *testing.T) {
	templates, err := LoadRoomTemplates("/nonexistent/path/rooms.hcl")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if templates != nil {
		t.Error("expected nil templates for missing file")
	}
}

func TestRoomTemplate_ToRoomSettings_Defaults(t *testing.T) {
	tmpl := RoomTemplate{Name: "casual"}
	settings := tmpl.ToRoomSettings()
	if settings.BotDifficulty == "" {
		t.Error("expected a default bot difficulty")
	}
	if settings.TurnDurationSeconds != 30 {
		t.Errorf("expected default turn duration 30, got %d", settings.TurnDurationSeconds)
	}
}
