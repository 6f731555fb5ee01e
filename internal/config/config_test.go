package config

import (
	"testing"
)

// memBackend is an in-memory ConfigBackend for tests.
type memBackend struct {
	strings map[string]string
	ints    map[string]int
}

func (m *memBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *memBackend) SetString(key, val string) error { m.strings[key] = val; return nil }
func (m *memBackend) SetInt(key string, val int) error { m.ints[key] = val; return nil }
func (m *memBackend) Delete(key string) error          { return nil }

func emptyBackend() *memBackend {
	return &memBackend{strings: map[string]string{}, ints: map[string]int{}}
}

func TestDefaults(t *testing.T) {
	cfg, err := loadWith(emptyBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Server.MCPPort != 8091 {
		t.Errorf("Server.MCPPort = %d, want 8091", cfg.Server.MCPPort)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("Ollama.BaseURL = %q, want %q", cfg.Ollama.BaseURL, "http://localhost:11434")
	}
	if cfg.Ollama.Model != "llama3.2" {
		t.Errorf("Ollama.Model = %q, want %q", cfg.Ollama.Model, "llama3.2")
	}
	if cfg.Nutritionix.BaseURL != "https://trackapi.nutritionix.com" {
		t.Errorf("Nutritionix.BaseURL = %q", cfg.Nutritionix.BaseURL)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestBackendOverridesDefaults(t *testing.T) {
	b := emptyBackend()
	b.ints["server.port"] = 9999
	b.strings["ollama.model"] = "mistral"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Ollama.Model != "mistral" {
		t.Errorf("Ollama.Model = %q, want mistral", cfg.Ollama.Model)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	b := emptyBackend()
	b.strings["ollama.base_url"] = "http://file-backend:11434"

	t.Setenv("FITCOACH_OLLAMA_BASE_URL", "http://env-wins:11434")
	t.Setenv("FITCOACH_SERVER_PORT", "7070")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Ollama.BaseURL != "http://env-wins:11434" {
		t.Errorf("Ollama.BaseURL = %q, want env value", cfg.Ollama.BaseURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestSecretsOnlyFromEnv(t *testing.T) {
	t.Setenv("NUTRITIONIX_APP_ID", "app-123")
	t.Setenv("NUTRITIONIX_API_KEY", "key-456")
	t.Setenv("FITCOACH_API_TOKEN", "tok-789")

	cfg, err := loadWith(emptyBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Nutritionix.AppID != "app-123" {
		t.Errorf("Nutritionix.AppID = %q", cfg.Nutritionix.AppID)
	}
	if cfg.Nutritionix.APIKey != "key-456" {
		t.Errorf("Nutritionix.APIKey = %q", cfg.Nutritionix.APIKey)
	}
	if cfg.API.Token != "tok-789" {
		t.Errorf("API.Token = %q", cfg.API.Token)
	}
}

func TestInvalidIntEnvIgnored(t *testing.T) {
	t.Setenv("FITCOACH_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(emptyBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want default 8090", cfg.Server.Port)
	}
}
