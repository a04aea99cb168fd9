package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tomlv2 "github.com/pelletier/go-toml/v2"
)

const (
	KindServer = "server"
	KindClient = "client"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindServer:
		return serverTemplate, nil
	case KindClient:
		return clientTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Validate loads path as the given kind and reports the first problem.
// Unlike the loaders it also rejects keys the kind does not define.
func Validate(path, kind string) error {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindServer:
		if _, err := LoadServerConfig(path); err != nil {
			return err
		}
		return checkUnknownKeys(path, &serverFile{})
	case KindClient:
		if _, err := LoadClientConfig(path); err != nil {
			return err
		}
		return checkUnknownKeys(path, &clientFile{})
	default:
		return fmt.Errorf("unknown config kind: %s", kind)
	}
}

func checkUnknownKeys(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	defer f.Close()

	dec := tomlv2.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var strict *tomlv2.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s: unknown keys:\n%s", ErrInvalidConfig, path, strict.String())
		}
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

const serverTemplate = `name = "senditd"
addr = ":3333"
# ops endpoint serving /health and /metrics; empty disables it
metrics_addr = "127.0.0.1:9333"
cors_origins = ["http://localhost:3000"]
# little | big; must match every client
byte_order = "little"
max_frame_bytes = 8388608
read_timeout = "0s"
write_timeout = "10s"
`

const clientTemplate = `addr = "localhost:3333"
byte_order = "little"
max_frame_bytes = 8388608
connect_timeout = "5s"
write_timeout = "10s"
`
