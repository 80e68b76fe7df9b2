package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"refinecore/internal/bug"
	"refinecore/internal/checker"
	"refinecore/internal/rty"
)

var unfoldCommand = &cobra.Command{
	Use:   "unfold",
	Short: "unfold a value of an ADT in a fresh heap and fold it back",
	Long:  ``,
	RunE: func(*cobra.Command, []string) error {
		return unfold()
	},
}

var (
	UnfoldFile string
	UnfoldAdt  string
	Variant    int
)

func init() {
	unfoldCommand.Flags().StringVar(&UnfoldFile, "file", "", "ADT declaration file")
	unfoldCommand.Flags().StringVar(&UnfoldAdt, "adt", "", "ADT to unfold")
	unfoldCommand.Flags().IntVar(&Variant, "variant", 0, "variant to unfold with")
}

func unfold() error {
	c := checker.NewChecker(nil, nil)
	if err := c.LoadFiles([]string{UnfoldFile}); err != nil {
		return err
	}
	def, ok := c.Lookup(UnfoldAdt)
	if !ok {
		return errors.Errorf("ADT `%s` not found in %s", UnfoldAdt, UnfoldFile)
	}
	out, err := checker.Unfold(def, rty.VariantIdx(Variant))
	fmt.Print(out)
	if violation, ok := bug.From(err); ok {
		log.Errorf("unfolding `%s`: %+v", UnfoldAdt, violation)
		os.Exit(2)
	}
	return err
}
