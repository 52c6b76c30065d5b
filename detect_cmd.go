package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/langspeak/internal/detect"
	"github.com/dgnsrekt/langspeak/internal/lang"
)

var (
	fromClipboard bool

	detectCmd = &cobra.Command{
		Use:   "detect [TEXT...]",
		Short: "Show the detected language of some text",
		Long: paragraph(fmt.Sprintf("\nClassify text with the configured classifier and %s, and list the raw candidates.",
			keyword("whitelist"))),
		Example: paragraph("langspeak detect Guten Morgen\nlangspeak detect --clipboard"),
		RunE:    runDetect,
	}
)

func init() {
	detectCmd.Flags().BoolVarP(&fromClipboard, "clipboard", "c", false, "classify the clipboard contents")
}

func runDetect(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if fromClipboard {
		s, err := clipboard.ReadAll()
		if err != nil {
			return fmt.Errorf("unable to read clipboard: %w", err)
		}
		text = s
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to detect: pass text or use --clipboard")
	}

	services, err := setupServices(cmd.Context(), false)
	if err != nil {
		return err
	}
	adapter := services.Classifier()
	if err := adapter.Err(); err != nil {
		return err
	}

	policy := services.Config().DetectPolicy()
	code := adapter.Classify(text, policy)
	candidates, err := adapter.Candidates(text, detect.Policy{})
	if err != nil {
		return err
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	return printDetection(cmd.OutOrStdout(), code, candidates, policy, styled)
}

func printDetection(w io.Writer, code lang.Code, candidates []detect.Candidate, policy detect.Policy, styled bool) error {
	heading, dim := fmt.Sprint, fmt.Sprint
	if styled {
		heading = func(a ...any) string { return lipgloss.NewStyle().Bold(true).Render(fmt.Sprint(a...)) }
		dim = func(a ...any) string { return faint(fmt.Sprint(a...)) }
	}

	result := "unknown"
	if code != detect.Unknown {
		result = fmt.Sprintf("%s (%s)", code, lang.DisplayName(code))
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", heading("Language:"), result); err != nil {
		return err
	}

	for _, c := range candidates {
		note := ""
		if !policy.Allows(c.Code) {
			note = " " + dim("not whitelisted")
		} else if c.Confidence < policy.MinConfidence {
			note = " " + dim("below threshold")
		}
		if _, err := fmt.Fprintf(w, "  %-8s %.3f%s\n", c.Code, c.Confidence, note); err != nil {
			return err
		}
	}
	return nil
}
