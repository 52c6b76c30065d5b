package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates man pages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		page, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err
		}

		page = page.WithSection("Environment", "LANGSPEAK_CONFIG_HOME selects the config directory.\n"+
			"LANGSPEAK_LOG_LEVEL and LANGSPEAK_LOG_FILE control the log.\n"+
			"Any config key can be set as LANGSPEAK_<SECTION>_<KEY>, e.g. LANGSPEAK_LANGUAGE_FALLBACK=de,en.")
		fmt.Println(page.Build(roff.NewDocument()))
		return nil
	},
}
