package checker

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"refinecore/internal/invariants"
)

// Config is the content of a refinecore.toml project file.
type Config struct {
	// Files lists the declaration files checked when none is given on the
	// command line.
	Files         []string `toml:"files"`
	CheckOverflow bool     `toml:"check-overflow"`
	// Adts restricts checking to the named ADTs. Empty means all of them.
	Adts     []string `toml:"adts,omitempty"`
	LogLevel string   `toml:"log-level,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg := &Config{}
	if err := toml.Unmarshal(buff, cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config %s", path)
	}
	return cfg, nil
}

func (c *Config) Invariants() invariants.Config {
	return invariants.Config{CheckOverflow: c.CheckOverflow}
}

func (c *Config) selects(name string) bool {
	if len(c.Adts) == 0 {
		return true
	}
	for _, adt := range c.Adts {
		if adt == name {
			return true
		}
	}
	return false
}
