// Package ashenv provides the configuration snapshot for the ash tools.
//
// Every environment variable prefixed with ASH_CFG_ is loaded with the
// prefix stripped, layered over an optional YAML defaults file at
// ~/.ash/config.yaml. Environment values win over file values.
package ashenv

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ASH_CFG_"

// configFile is the per-user defaults file, relative to $HOME.
const configFile = ".ash/config.yaml"

// Config is an immutable snapshot of configuration state, keyed by
// upper-case variable name without the ASH_CFG_ prefix.
type Config struct {
	vars map[string]string
}

// Load builds a Config from the process environment and the user defaults
// file. A missing or malformed defaults file is skipped, never fatal.
func Load(log *zap.Logger) *Config {
	var fileVars map[string]string
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, configFile)
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &fileVars); err != nil {
				log.Warn("ignoring malformed config file",
					zap.String("path", path), zap.Error(err))
				fileVars = nil
			}
		}
	}
	return New(os.Environ(), fileVars)
}

// New builds a Config from an explicit environ slice (as produced by
// os.Environ) layered over file defaults. Split out from [Load] so tests
// can inject environments.
func New(environ []string, fileVars map[string]string) *Config {
	vars := make(map[string]string, len(fileVars))
	for k, v := range fileVars {
		vars[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, envPrefix) {
			continue
		}
		vars[strings.TrimPrefix(k, envPrefix)] = v
	}
	return &Config{vars: vars}
}

// GetString returns the value for a config variable and whether it is set.
func (c *Config) GetString(key string) (string, bool) {
	v, ok := c.vars[normalize(key)]
	return v, ok
}

// GetBool reports whether a config variable is set to the literal "true"
// (surrounding whitespace ignored).
func (c *Config) GetBool(key string) bool {
	v, ok := c.GetString(key)
	return ok && strings.TrimSpace(v) == "true"
}

// GetInt returns the integer value of a config variable, or def when the
// variable is unset or not an integer.
func (c *Config) GetInt(key string, def int) int {
	v, ok := c.GetString(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Sets reports whether the variable is present in the snapshot.
func (c *Config) Sets(key string) bool {
	_, ok := c.vars[normalize(key)]
	return ok
}

func normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
