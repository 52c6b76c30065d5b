package main

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/voices"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the languages the configured voice engine can speak",
	Long: paragraph(fmt.Sprintf("\nShow the %s of the configured engine: one row per language, with the variant and voice used for it.",
		keyword("capability table"))),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		services, err := setupServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		table, err := services.Capabilities(cmd.Context())
		if err != nil {
			return err
		}
		return printTable(cmd.OutOrStdout(), table)
	},
}

func printTable(w io.Writer, table voices.Table) error {
	if table.Passthrough() {
		_, err := fmt.Fprintf(w, "%s cannot list its voices; every language is passed through.\n", table.Identity())
		return err
	}

	var nameWidth, variantWidth int
	for _, e := range table.Entries() {
		nameWidth = max(nameWidth, runewidth.StringWidth(lang.DisplayName(e.Variant)))
		variantWidth = max(variantWidth, runewidth.StringWidth(string(e.Variant)))
	}

	if _, err := fmt.Fprintf(w, "%s (%d languages)\n", table.Identity(), table.Len()); err != nil {
		return err
	}
	for _, e := range table.Entries() {
		marker := " "
		if lang.Compatible(e.Variant, table.Default()) {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %-4s %s %s %s\n",
			marker,
			e.Base,
			runewidth.FillRight(string(e.Variant), variantWidth),
			runewidth.FillRight(lang.DisplayName(e.Variant), nameWidth),
			e.Voice,
		); err != nil {
			return err
		}
	}
	return nil
}
