package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "snapgen.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel:         "info",
			OutputRoot:       ".",
			DefaultNamespace: DefaultNamespace,
			ListenPort:       5000,
			ReadTimeout:      Duration(1e9),
			WriteTimeout:     Duration(1e9),
		},
		Kinds: []KindConfig{
			{Name: "function", Namespace: "core", Directory: "functions"},
		},
	}
}
