package speech

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		seq     Sequence
		wantErr bool
	}{
		{name: "empty", seq: Sequence{}, wantErr: false},
		{name: "text and directives", seq: Sequence{LanguageChange{Code: "fr"}, TextRun{Content: "Bonjour"}, LanguageChange{}}, wantErr: false},
		{name: "nil item", seq: Sequence{TextRun{Content: "a"}, nil}, wantErr: true},
		{name: "invalid utf8", seq: Sequence{TextRun{Content: "\xff\xfe"}}, wantErr: true},
		{name: "unnormalized code", seq: Sequence{LanguageChange{Code: "en_US"}}, wantErr: true},
		{name: "negative break", seq: Sequence{Break{Duration: -time.Second}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seq.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrMalformedSequence) {
				t.Errorf("expected ErrMalformedSequence, got %v", err)
			}
		})
	}
}

func TestMalformedErrorMessage(t *testing.T) {
	err := Sequence{TextRun{Content: "a"}, nil}.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "at item 1") || !strings.Contains(msg, "nil item") {
		t.Errorf("unexpected message: %s", msg)
	}
	var se *Error
	if !errors.As(err, &se) {
		t.Fatal("expected *Error")
	}
	if !se.IsRecoverable() {
		t.Error("expected malformed sequence to be recoverable")
	}
}

func TestSequenceHelpers(t *testing.T) {
	seq := Sequence{PitchChange{Offset: 10}, TextRun{Content: "one"}, LanguageChange{Code: "de"}, TextRun{Content: "two"}}
	if !seq.HasText() {
		t.Error("expected HasText")
	}
	if (Sequence{LanguageChange{}}).HasText() {
		t.Error("directive-only sequence should have no text")
	}
	texts := seq.Texts()
	if len(texts) != 2 || texts[0] != "one" || texts[1] != "two" {
		t.Errorf("unexpected texts: %v", texts)
	}
	if lcs := seq.LanguageChanges(); len(lcs) != 1 || lcs[0].Code != "de" {
		t.Errorf("unexpected language changes: %v", lcs)
	}

	clone := seq.Clone()
	clone[0] = TextRun{Content: "changed"}
	if _, ok := seq[0].(PitchChange); !ok {
		t.Error("clone must not alias the original")
	}

	if s := seq.String(); s != `[pitch(10) "one" lang(de) "two"]` {
		t.Errorf("unexpected String(): %s", s)
	}
}

func TestUnmarshal(t *testing.T) {
	input := `[{"type":"lang","code":"en_GB"},{"type":"text","text":"Hello"},{"type":"break","ms":250},{"type":"lang"},{"type":"chars","on":true}]`
	seq, err := Unmarshal([]byte(input))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	expected := Sequence{
		LanguageChange{Code: "en-GB"},
		TextRun{Content: "Hello"},
		Break{Duration: 250 * time.Millisecond},
		LanguageChange{},
		CharacterMode{On: true},
	}
	if len(seq) != len(expected) {
		t.Fatalf("expected %d items, got %d", len(expected), len(seq))
	}
	for i := range expected {
		if seq[i] != expected[i] {
			t.Errorf("item %d: expected %#v, got %#v", i, expected[i], seq[i])
		}
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "not json", input: `{`, want: ErrMalformedSequence},
		{name: "unknown type", input: `[{"type":"ssml"}]`, want: ErrUnknownItem},
		{name: "bad code", input: `[{"type":"lang","code":"??"}]`, want: ErrMalformedSequence},
		{name: "negative break", input: `[{"type":"break","ms":-1}]`, want: ErrMalformedSequence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEncoderSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewEncoderSink(&buf)
	seq := Sequence{LanguageChange{Code: "fr-FR"}, TextRun{Content: "Bonjour"}}
	if err := sink.Speak(context.Background(), seq); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	line := buf.String()
	if !strings.HasSuffix(line, "\n") {
		t.Error("expected trailing newline")
	}
	back, err := Unmarshal([]byte(strings.TrimSpace(line)))
	if err != nil {
		t.Fatalf("written line does not decode: %v", err)
	}
	if len(back) != 2 || back[0] != seq[0] || back[1] != seq[1] {
		t.Errorf("unexpected decoded sequence: %v", back)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sink.Speak(ctx, seq); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSinkFunc(t *testing.T) {
	var got Sequence
	sink := SinkFunc(func(_ context.Context, seq Sequence) error {
		got = seq
		return nil
	})
	_ = sink.Speak(context.Background(), Text("a", "b"))
	if len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}
}
