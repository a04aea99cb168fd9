package config

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestServerTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	if err := WriteTemplate(path, KindServer, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := Validate(path, KindServer); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Name != "senditd" || cfg.Addr != ":3333" {
		t.Fatalf("unexpected identity: %+v", cfg)
	}
	if cfg.MetricsAddr != "127.0.0.1:9333" {
		t.Fatalf("unexpected metrics addr: %q", cfg.MetricsAddr)
	}
	if len(cfg.CorsOrigins) != 1 || cfg.CorsOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %+v", cfg.CorsOrigins)
	}
	if cfg.MaxFrameBytes != 8388608 {
		t.Fatalf("unexpected max frame bytes: %d", cfg.MaxFrameBytes)
	}
	if cfg.ReadTimeout != 0 || cfg.WriteTimeout != 10*time.Second {
		t.Fatalf("unexpected timeouts: read=%v write=%v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if err := WriteTemplate(path, KindServer, false); err == nil {
		t.Fatalf("expected existing config to be preserved")
	}
}

func TestClientTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	if err := WriteTemplate(path, KindClient, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := Validate(path, KindClient); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != "localhost:3333" || cfg.ConnectTimeout != 5*time.Second {
		t.Fatalf("unexpected client config: %+v", cfg)
	}
}

func TestLoadServerConfigDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
byte_order = "big"
read_timeout = "1500ms"
`)
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Name != "senditd" || cfg.Addr != ":3333" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.ReadTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected read timeout: %v", cfg.ReadTimeout)
	}
	sess := cfg.Session()
	if sess.ByteOrder != binary.BigEndian {
		t.Fatalf("unexpected byte order: %v", sess.ByteOrder)
	}
	if sess.ReadTimeout != 1500*time.Millisecond || sess.MaxFrameBytes != cfg.MaxFrameBytes {
		t.Fatalf("session config not carried over: %+v", sess)
	}
}

func TestLoadServerConfigUnlimitedFrames(t *testing.T) {
	cfg, err := LoadServerConfig(writeConfig(t, "max_frame_bytes = 0\n"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Session().FrameOptions().MaxFrameBytes != 0 {
		t.Fatalf("expected unlimited frames")
	}
}

func TestLoadServerConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"byte order": `byte_order = "middle"`,
		"duration":   `read_timeout = "abc"`,
		"empty addr": `addr = ""`,
		"negative":   `max_frame_bytes = -1`,
		"syntax":     `addr = `,
	}
	for name, content := range cases {
		if _, err := LoadServerConfig(writeConfig(t, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadClientConfigInvalidIsTyped(t *testing.T) {
	_, err := LoadClientConfig(writeConfig(t, `connect_timeout = "-1s"`))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadClientConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestUnknownTemplateKind(t *testing.T) {
	if _, err := Template("proxy"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if err := Validate("unused.toml", "proxy"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestValidateRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "addr = \"localhost:4000\"\nbyte_ordr = \"big\"\n")
	if _, err := LoadClientConfig(path); err != nil {
		t.Fatalf("load should ignore unknown keys: %v", err)
	}
	err := Validate(path, KindClient)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
