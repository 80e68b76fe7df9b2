package main

import (
	"fmt"
	"path/filepath"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"refinecore/internal/checker"
	"refinecore/internal/invariants"
)

var checkCommand = &cobra.Command{
	Use:   "check",
	Short: "check the invariants of ADT declarations",
	Long:  ``,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return checkExec(cmd)
	},
}

var (
	DeclFiles     []string
	ConfigFile    string
	CheckOverflow bool
	AdtNames      []string
)

func init() {
	checkCommand.Flags().StringSliceVar(&DeclFiles, "file", nil, "ADT declaration file")
	checkCommand.Flags().StringVar(&ConfigFile, "config", "", "refinecore.toml project file")
	checkCommand.Flags().BoolVar(&CheckOverflow, "check-overflow", false, "assume integer fields fit their type")
	checkCommand.Flags().StringSliceVar(&AdtNames, "adt", nil, "only check the named ADTs")
}

func loadConfig(cmd *cobra.Command) (*checker.Config, error) {
	cfg := &checker.Config{}
	if ConfigFile != "" {
		var err error
		cfg, err = checker.LoadConfig(ConfigFile)
		if err != nil {
			return nil, err
		}
		for i, file := range cfg.Files {
			if !filepath.IsAbs(file) {
				cfg.Files[i] = filepath.Join(filepath.Dir(ConfigFile), file)
			}
		}
		if cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") {
			if err := setLogLevel(cfg.LogLevel); err != nil {
				return nil, errors.Wrapf(err, "config %s", ConfigFile)
			}
		}
	}
	if len(DeclFiles) > 0 {
		cfg.Files = DeclFiles
	}
	if CheckOverflow {
		cfg.CheckOverflow = true
	}
	if len(AdtNames) > 0 {
		cfg.Adts = AdtNames
	}
	if len(cfg.Files) == 0 {
		return nil, errors.New("no declaration file given")
	}
	return cfg, nil
}

func checkExec(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	yices2.Init()
	defer yices2.Exit()

	c := checker.NewChecker(cfg, invariants.Solver)
	if err := c.LoadFiles(cfg.Files); err != nil {
		return err
	}
	diags, err := c.Run()
	for _, d := range diags {
		fmt.Println(d)
	}
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		return errors.Errorf("%d invariants do not hold", len(diags))
	}
	return nil
}
