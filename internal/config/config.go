package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/ini.v1"
)

// defaultMaxConnections matches the upstream JULEA default used when the
// [clients] section omits max-connections.
const defaultMaxConnections = 8

// ObjectConfig holds the object-service backend selection.
type ObjectConfig struct {
	Backend   string
	Component string
	Path      string
}

// KVConfig holds the KV-service backend selection.
type KVConfig struct {
	Backend   string
	Component string
	Path      string
}

// Configuration is the immutable, shared-by-reference bundle parsed once at
// init. Nothing in this module mutates a Configuration after Load returns
// it, so concurrent reads need no synchronization.
type Configuration struct {
	ObjectServers  []string
	KVServers      []string
	Object         ObjectConfig
	KV             KVConfig
	MaxConnections int
}

// ObjectServerCount returns the number of configured object servers.
func (c *Configuration) ObjectServerCount() uint32 { return uint32(len(c.ObjectServers)) }

// KVServerCount returns the number of configured KV servers.
func (c *Configuration) KVServerCount() uint32 { return uint32(len(c.KVServers)) }

// searchPaths computes the ordered list of candidate configuration file
// paths.
func searchPaths() []string {
	envVal := os.Getenv("JULEA_CONFIG")

	if envVal != "" && filepath.IsAbs(envVal) {
		return []string{envVal}
	}

	name := envVal
	if name == "" {
		name = "julea-config"
	}

	var paths []string

	xdgHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			xdgHome = filepath.Join(home, ".config")
		}
	}
	if xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, "julea", name))
	}

	xdgDirs := os.Getenv("XDG_CONFIG_DIRS")
	if xdgDirs == "" {
		xdgDirs = "/etc/xdg"
	}
	for _, dir := range strings.Split(xdgDirs, ":") {
		if dir == "" {
			continue
		}
		paths = append(paths, filepath.Join(dir, "julea", name))
	}

	return paths
}

// Load searches the configuration file locations in the documented order and
// parses the first one found. A missing or unparseable configuration is a
// fatal error at init: callers should treat any error from Load as
// terminal.
func Load() (*Configuration, error) {
	candidates := searchPaths()

	var lastErr error
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadFile(path)
		if err != nil {
			lastErr = err
			log.Error().Err(err).Str("path", path).Msg("config: failed to parse candidate")
			continue
		}
		return cfg, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("config: no usable configuration found (last error: %w)", lastErr)
	}
	return nil, fmt.Errorf("config: no configuration file found in any of %v", candidates)
}

// LoadFile parses a specific INI file into a Configuration, bypassing the
// search order. Exposed for tests and for the explicit-absolute-path case
// of the search order.
func LoadFile(path string) (*Configuration, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return fromINI(f)
}

func fromINI(f *ini.File) (*Configuration, error) {
	servers := f.Section("servers")
	object := f.Section("object")
	kv := f.Section("kv")
	clients := f.Section("clients")

	cfg := &Configuration{
		ObjectServers: splitList(servers.Key("object").String()),
		KVServers:     splitList(servers.Key("kv").String()),
		Object: ObjectConfig{
			Backend:   object.Key("backend").String(),
			Component: object.Key("component").String(),
			Path:      object.Key("path").String(),
		},
		KV: KVConfig{
			Backend:   kv.Key("backend").String(),
			Component: kv.Key("component").String(),
			Path:      kv.Key("path").String(),
		},
		MaxConnections: clients.Key("max-connections").MustInt(defaultMaxConnections),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Configuration) error {
	if len(cfg.ObjectServers) == 0 {
		return fmt.Errorf("config: [servers] object list must not be empty")
	}
	if len(cfg.KVServers) == 0 {
		return fmt.Errorf("config: [servers] kv list must not be empty")
	}
	if cfg.Object.Backend == "" {
		return fmt.Errorf("config: [object] backend is required")
	}
	if cfg.KV.Backend == "" {
		return fmt.Errorf("config: [kv] backend is required")
	}
	if cfg.MaxConnections <= 0 {
		return fmt.Errorf("config: [clients] max-connections must be positive, got %d", cfg.MaxConnections)
	}
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
