// Package espeak reports the languages of an espeak-ng installation.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/langspeak/internal/lang"
	"github.com/dgnsrekt/langspeak/internal/speech"
	"github.com/dgnsrekt/langspeak/internal/voices"
)

// Engine lists voices by running "espeak-ng --voices". The active voice is
// an espeak voice name such as "en-us".
type Engine struct {
	binary string
	voice  string
	logger *log.Logger
}

// New creates an engine for binary.
func New(binary, voice string, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{binary: binary, voice: voice, logger: logger.WithPrefix("espeak")}
}

// ID implements voices.Engine.
func (e *Engine) ID() string {
	return "espeak/" + e.voice
}

// DefaultLanguage implements voices.Engine. espeak voices are named after
// their language.
func (e *Engine) DefaultLanguage() lang.Code {
	code, err := parseLanguage(e.voice)
	if err != nil {
		return lang.Default
	}
	return code
}

// Voices implements voices.EnumerableVoices. A missing binary counts as an
// engine that cannot be queried.
func (e *Engine) Voices(ctx context.Context) ([]voices.Voice, error) {
	path, err := exec.LookPath(e.binary)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", e.binary, speech.ErrCapabilityQueryUnsupported)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--voices")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s --voices failed: %w (stderr: %s)", e.binary, err, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("failed to run %s: %w", e.binary, err)
	}

	list := ParseVoices(stdout.Bytes())
	e.logger.Debug("Listed voices", "binary", path, "count", len(list))
	return preferActive(list, e.voice), nil
}

// ParseVoices reads the table printed by "espeak-ng --voices":
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
//
// Lines whose language column cannot be parsed are skipped.
func ParseVoices(out []byte) []voices.Voice {
	var list []voices.Voice
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		code, err := parseLanguage(fields[1])
		if err != nil {
			continue
		}
		list = append(list, voices.Voice{
			ID:       fields[1],
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: code,
		})
	}
	return list
}

// parseLanguage accepts espeak names such as "en-gb-scotland" by retrying
// with the language and region only.
func parseLanguage(s string) (lang.Code, error) {
	code, err := lang.Parse(s)
	if err == nil {
		return code, nil
	}
	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return lang.Parse(strings.Join(parts[:2], "-"))
	}
	return lang.Default, err
}

func preferActive(list []voices.Voice, active string) []voices.Voice {
	for i, v := range list {
		if strings.EqualFold(v.ID, active) {
			out := make([]voices.Voice, 0, len(list))
			out = append(out, v)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}
