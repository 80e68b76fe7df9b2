// Package checker drives invariant checking over ADT declaration files.
package checker

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"refinecore/internal/diag"
	"refinecore/internal/invariants"
	"refinecore/internal/rty"
)

type Checker struct {
	cfg     *Config
	backend invariants.Backend
	defs    []*rty.AdtDef
}

func NewChecker(cfg *Config, backend invariants.Backend) *Checker {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Checker{
		cfg:     cfg,
		backend: backend,
	}
}

func (c *Checker) LoadFiles(files []string) error {
	for _, file := range files {
		defs, err := LoadFile(file)
		if err != nil {
			return err
		}
		log.Debugf("loaded %d ADTs from %s", len(defs), file)
		c.defs = append(c.defs, defs...)
	}
	return nil
}

func (c *Checker) AddDefs(defs ...*rty.AdtDef) {
	c.defs = append(c.defs, defs...)
}

func (c *Checker) Defs() []*rty.AdtDef {
	return c.defs
}

func (c *Checker) Lookup(name string) (*rty.AdtDef, bool) {
	for _, def := range c.defs {
		if def.Name == name {
			return def, true
		}
	}
	return nil, false
}

// Run checks the invariants of every selected ADT. A failing invariant does
// not stop the run: its diagnostic is collected and checking goes on.
func (c *Checker) Run() ([]*diag.Diagnostic, error) {
	if len(c.defs) == 0 {
		return nil, errors.New("no ADT found")
	}

	startTime := time.Now()
	var result []*diag.Diagnostic
	checked := 0
	for _, def := range c.defs {
		if !c.cfg.selects(def.Name) {
			continue
		}
		checked++
		log.Infof("checking ADT %s: %d variants, %d invariants", def.Name, len(def.Variants), len(def.Invariants))
		diags, err := invariants.CheckInvariants(def, c.cfg.Invariants(), c.backend)
		if err != nil {
			log.Errorf("checking ADT %s: %v", def.Name, err)
			return result, errors.Wrapf(err, "checking ADT %s", def.Name)
		}
		result = append(result, diags...)
	}
	if checked == 0 {
		return nil, errors.Errorf("none of the ADTs %v found", c.cfg.Adts)
	}
	log.Infof("total diagnostics found: %d", len(result))
	log.Infof("check time used: %.3fs", time.Since(startTime).Seconds())
	return result, nil
}
