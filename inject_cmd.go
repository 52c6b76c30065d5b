package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/langspeak/internal/pipeline"
	"github.com/dgnsrekt/langspeak/internal/speech"
)

// maxLineSize bounds one JSON line read by filter.
const maxLineSize = 4 * 1024 * 1024

var (
	injectTexts []string
	dispatch    bool

	injectCmd = &cobra.Command{
		Use:   "inject [FILE|-]",
		Short: "Insert language changes into one speech sequence",
		Long: paragraph(fmt.Sprintf("\nRead a speech sequence as a JSON array and print it with %s inserted.",
			keyword("language changes"))),
		Example: paragraph(`langspeak inject sequence.json
langspeak inject --text "Bonjour" --text "Hello there"
echo '[{"type":"text","text":"Hallo Welt"}]' | langspeak inject -`),
		Args: cobra.MaximumNArgs(1),
		RunE: runInject,
	}

	filterCmd = &cobra.Command{
		Use:   "filter",
		Short: "Rewrite a stream of speech sequences, one JSON array per line",
		Long: paragraph(fmt.Sprintf("\nRewrite every line of stdin and write it to stdout. Lines that cannot be read are %s, never dropped. Config file edits apply from the next line.",
			keyword("passed through"))),
		Args: cobra.NoArgs,
		RunE: runFilter,
	}
)

func init() {
	injectCmd.Flags().StringArrayVar(&injectTexts, "text", nil, "text run to inject (repeatable)")
	injectCmd.Flags().BoolVar(&dispatch, "dispatch", false, "also correct the result against the active voice")
	filterCmd.Flags().BoolVar(&dispatch, "dispatch", false, "also correct each result against the active voice")
}

func runInject(cmd *cobra.Command, args []string) error {
	seq, err := readSequence(args)
	if err != nil {
		return err
	}

	services, err := setupServices(cmd.Context(), false)
	if err != nil {
		return err
	}
	in := pipeline.NewInterceptor(services, speech.NewEncoderSink(cmd.OutOrStdout()), log.Default())
	return forward(cmd.Context(), in, services, seq)
}

func readSequence(args []string) (speech.Sequence, error) {
	if len(injectTexts) > 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("cannot use both --text and %s", args[0])
		}
		return speech.Text(injectTexts...), nil
	}

	var r io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("unable to open file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read from reader: %w", err)
	}
	return speech.Unmarshal(b)
}

func runFilter(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	services, err := setupServices(ctx, true)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	in := pipeline.NewInterceptor(services, speech.NewEncoderSink(w), log.Default())
	defer logStats(services)
	return filterLines(ctx, in, services, cmd.InOrStdin(), w)
}

// logStats reports classifier cache and voice enumeration counts at debug level.
func logStats(services *pipeline.Services) {
	fields := []any{"voice_queries", services.Resolver().Queries()}
	if c := services.Classifier().Cache(); c != nil {
		s := c.Stats()
		fields = append(fields, "cache_items", s.ItemCount, "cache_hits", s.Hits, "cache_misses", s.Misses, "cache_hit_rate", s.HitRate)
	}
	log.Debug("Filter finished", fields...)
}

// filterLines rewrites one sequence per line. A line that does not decode is
// written back unchanged.
func filterLines(ctx context.Context, in *pipeline.Interceptor, services *pipeline.Services, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		seq, err := speech.Unmarshal(line)
		if err != nil {
			log.Warn("Passing through unreadable line", "error", err)
			if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
				return fmt.Errorf("unable to write to writer: %w", err)
			}
			continue
		}
		if err := forward(ctx, in, services, seq); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to read from reader: %w", err)
	}
	return nil
}

func forward(ctx context.Context, in *pipeline.Interceptor, services *pipeline.Services, seq speech.Sequence) error {
	if !dispatch {
		return in.Submit(ctx, seq)
	}
	return in.Dispatch(ctx, services.Engine(), in.Rewrite(ctx, seq))
}
