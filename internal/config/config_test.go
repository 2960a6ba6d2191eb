/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DataDir != "data" {
		t.Errorf("expected default data_dir 'data', got '%s'", cfg.DataDir)
	}
	if cfg.PageSize != 4096 {
		t.Errorf("expected default page_size 4096, got %d", cfg.PageSize)
	}
	if cfg.MaxMappedPages != 1000 {
		t.Errorf("expected default max_mapped_pages 1000, got %d", cfg.MaxMappedPages)
	}
	if cfg.AppendOnlyInitialFileSize != 1<<20 {
		t.Errorf("expected default append_only_initial_file_size %d, got %d", 1<<20, cfg.AppendOnlyInitialFileSize)
	}
	if cfg.AppendOnlySyncEveryRows != 512 {
		t.Errorf("expected default append_only_sync_every_rows 512, got %d", cfg.AppendOnlySyncEveryRows)
	}
	if cfg.AppendOnlySyncEveryMillis != 100 {
		t.Errorf("expected default append_only_sync_every_millis 100, got %d", cfg.AppendOnlySyncEveryMillis)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.LogJSON != false {
		t.Errorf("expected default log_json false, got %v", cfg.LogJSON)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should validate, got: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	base := func() *Config {
		c := DefaultConfig()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
		{"non power of two page size", func(c *Config) { c.PageSize = 4000 }, true},
		{"zero max mapped pages", func(c *Config) { c.MaxMappedPages = 0 }, true},
		{"zero initial file size", func(c *Config) { c.AppendOnlyInitialFileSize = 0 }, true},
		{"zero sync every rows", func(c *Config) { c.AppendOnlySyncEveryRows = 0 }, true},
		{"negative sync interval", func(c *Config) { c.AppendOnlySyncEveryMillis = -1 }, true},
		{"zero index leaf capacity", func(c *Config) { c.IndexLeafCapacity = 0 }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rstoredb_config_test_*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `# test configuration
data_dir = "/tmp/rstoredb-data"
page_size = 4096
max_mapped_pages = 500
append_only_initial_file_size = 2097152
append_only_sync_every_rows = 256
append_only_sync_every_millis = 50
index_leaf_capacity = 128
log_level = "debug"
log_json = true
`
	configPath := filepath.Join(tmpDir, "rstoredb.conf")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr := NewManager()
	if err := mgr.LoadFromFile(configPath); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	cfg := mgr.Get()
	if cfg.DataDir != "/tmp/rstoredb-data" {
		t.Errorf("expected data_dir '/tmp/rstoredb-data', got '%s'", cfg.DataDir)
	}
	if cfg.MaxMappedPages != 500 {
		t.Errorf("expected max_mapped_pages 500, got %d", cfg.MaxMappedPages)
	}
	if cfg.AppendOnlyInitialFileSize != 2097152 {
		t.Errorf("expected append_only_initial_file_size 2097152, got %d", cfg.AppendOnlyInitialFileSize)
	}
	if cfg.AppendOnlySyncEveryRows != 256 {
		t.Errorf("expected append_only_sync_every_rows 256, got %d", cfg.AppendOnlySyncEveryRows)
	}
	if cfg.IndexLeafCapacity != 128 {
		t.Errorf("expected index_leaf_capacity 128, got %d", cfg.IndexLeafCapacity)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level 'debug', got '%s'", cfg.LogLevel)
	}
	if cfg.LogJSON != true {
		t.Errorf("expected log_json true, got %v", cfg.LogJSON)
	}
	if cfg.ConfigFile != configPath {
		t.Errorf("expected ConfigFile '%s', got '%s'", configPath, cfg.ConfigFile)
	}
}

func TestLoadFromEnv(t *testing.T) {
	origDataDir := os.Getenv(EnvDataDir)
	origLogLevel := os.Getenv(EnvLogLevel)
	origLogJSON := os.Getenv(EnvLogJSON)

	defer func() {
		os.Setenv(EnvDataDir, origDataDir)
		os.Setenv(EnvLogLevel, origLogLevel)
		os.Setenv(EnvLogJSON, origLogJSON)
	}()

	os.Setenv(EnvDataDir, "/var/lib/rstoredb")
	os.Setenv(EnvLogLevel, "debug")
	os.Setenv(EnvLogJSON, "true")

	mgr := NewManager()
	mgr.LoadFromEnv()

	cfg := mgr.Get()
	if cfg.DataDir != "/var/lib/rstoredb" {
		t.Errorf("expected data_dir from env, got '%s'", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level 'debug' from env, got '%s'", cfg.LogLevel)
	}
	if cfg.LogJSON != true {
		t.Errorf("expected log_json true from env, got %v", cfg.LogJSON)
	}
}

func TestConfigPrecedence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rstoredb_config_test_*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `data_dir = "/tmp/from-file"
log_level = "info"
`
	configPath := filepath.Join(tmpDir, "rstoredb.conf")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	origDataDir := os.Getenv(EnvDataDir)
	defer os.Setenv(EnvDataDir, origDataDir)
	os.Setenv(EnvDataDir, "/tmp/from-env")

	mgr := NewManager()
	if err := mgr.LoadFromFile(configPath); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	mgr.LoadFromEnv()

	cfg := mgr.Get()
	if cfg.DataDir != "/tmp/from-env" {
		t.Errorf("expected data_dir '/tmp/from-env' (env override), got '%s'", cfg.DataDir)
	}
}

func TestToTOML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/lib/rstoredb/data"

	toml := cfg.ToTOML()
	if !containsHelper(toml, `data_dir = "/var/lib/rstoredb/data"`) {
		t.Error("TOML output missing data_dir")
	}
	if !containsHelper(toml, "page_size = 4096") {
		t.Error("TOML output missing page_size")
	}
	if !containsHelper(toml, "append_only_sync_every_rows = 512") {
		t.Error("TOML output missing append_only_sync_every_rows")
	}
}

func TestSaveToFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rstoredb_config_test_*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/saved"
	cfg.LogLevel = "debug"

	configPath := filepath.Join(tmpDir, "subdir", "rstoredb.conf")
	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	mgr := NewManager()
	if err := mgr.LoadFromFile(configPath); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	loaded := mgr.Get()
	if loaded.DataDir != "/tmp/saved" {
		t.Errorf("expected data_dir '/tmp/saved', got '%s'", loaded.DataDir)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected log_level 'debug', got '%s'", loaded.LogLevel)
	}
}

func TestReload(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rstoredb_config_test_*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `data_dir = "/tmp/initial"
log_level = "info"
`
	configPath := filepath.Join(tmpDir, "rstoredb.conf")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr := NewManager()
	if err := mgr.LoadFromFile(configPath); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg := mgr.Get(); cfg.DataDir != "/tmp/initial" {
		t.Errorf("expected initial data_dir '/tmp/initial', got '%s'", cfg.DataDir)
	}

	reloadCalled := false
	mgr.OnReload(func(c *Config) { reloadCalled = true })

	newContent := `data_dir = "/tmp/updated"
log_level = "debug"
`
	if err := os.WriteFile(configPath, []byte(newContent), 0644); err != nil {
		t.Fatalf("failed to update config file: %v", err)
	}

	if err := mgr.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	cfg := mgr.Get()
	if cfg.DataDir != "/tmp/updated" {
		t.Errorf("expected reloaded data_dir '/tmp/updated', got '%s'", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected reloaded log_level 'debug', got '%s'", cfg.LogLevel)
	}
	if !reloadCalled {
		t.Error("reload callback was not called")
	}
}

func TestGlobalManager(t *testing.T) {
	mgr := Global()
	if mgr == nil {
		t.Fatal("Global() returned nil")
	}
	if mgr2 := Global(); mgr != mgr2 {
		t.Error("Global() returned different instances")
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	str := cfg.String()

	if !containsHelper(str, "DataDir:") {
		t.Error("String() missing DataDir")
	}
	if !containsHelper(str, "PageSize:") {
		t.Error("String() missing PageSize")
	}
	if !containsHelper(str, "4096") {
		t.Error("String() missing page size value")
	}
}

func containsHelper(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
