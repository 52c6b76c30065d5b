package speech

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/dgnsrekt/langspeak/internal/lang"
)

// Item type names on the wire.
const (
	TypeText          = "text"
	TypeLanguage      = "lang"
	TypePitch         = "pitch"
	TypeRate          = "rate"
	TypeVolume        = "volume"
	TypeBreak         = "break"
	TypeIndex         = "index"
	TypeCharacterMode = "chars"
)

// wireItem is the JSON shape of a single item, e.g. {"type":"lang","code":"fr"}.
// A lang item without code reverts to the default language.
type wireItem struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Code  string `json:"code,omitempty"`
	Value int    `json:"value,omitempty"`
	Ms    int64  `json:"ms,omitempty"`
	On    bool   `json:"on,omitempty"`
}

// Marshal encodes s as a JSON array of items.
func Marshal(s Sequence) ([]byte, error) {
	wire := make([]wireItem, 0, len(s))
	for i, it := range s {
		w, err := toWire(it)
		if err != nil {
			return nil, NewError(err, "codec", "marshal").WithContext("index", i)
		}
		wire = append(wire, w)
	}
	return sonic.Marshal(wire)
}

// Unmarshal decodes a JSON array of items. Language codes are normalized.
func Unmarshal(data []byte) (Sequence, error) {
	var wire []wireItem
	if err := sonic.Unmarshal(data, &wire); err != nil {
		return nil, NewError(ErrMalformedSequence, "codec", "unmarshal").
			WithContext("reason", err.Error())
	}
	seq := make(Sequence, 0, len(wire))
	for i, w := range wire {
		it, err := fromWire(w)
		if err != nil {
			return nil, NewError(err, "codec", "unmarshal").WithContext("index", i)
		}
		seq = append(seq, it)
	}
	return seq, nil
}

func toWire(it Item) (wireItem, error) {
	switch v := it.(type) {
	case TextRun:
		return wireItem{Type: TypeText, Text: v.Content}, nil
	case LanguageChange:
		return wireItem{Type: TypeLanguage, Code: string(v.Code)}, nil
	case PitchChange:
		return wireItem{Type: TypePitch, Value: v.Offset}, nil
	case RateChange:
		return wireItem{Type: TypeRate, Value: v.Offset}, nil
	case VolumeChange:
		return wireItem{Type: TypeVolume, Value: v.Offset}, nil
	case Break:
		return wireItem{Type: TypeBreak, Ms: v.Duration.Milliseconds()}, nil
	case Index:
		return wireItem{Type: TypeIndex, Value: v.Mark}, nil
	case CharacterMode:
		return wireItem{Type: TypeCharacterMode, On: v.On}, nil
	default:
		return wireItem{}, fmt.Errorf("%w: %T", ErrUnknownItem, it)
	}
}

func fromWire(w wireItem) (Item, error) {
	switch w.Type {
	case TypeText:
		return TextRun{Content: w.Text}, nil
	case TypeLanguage:
		if w.Code == "" {
			return LanguageChange{}, nil
		}
		code, err := lang.Parse(w.Code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSequence, err)
		}
		return LanguageChange{Code: code}, nil
	case TypePitch:
		return PitchChange{Offset: w.Value}, nil
	case TypeRate:
		return RateChange{Offset: w.Value}, nil
	case TypeVolume:
		return VolumeChange{Offset: w.Value}, nil
	case TypeBreak:
		if w.Ms < 0 {
			return nil, fmt.Errorf("%w: negative break", ErrMalformedSequence)
		}
		return Break{Duration: time.Duration(w.Ms) * time.Millisecond}, nil
	case TypeIndex:
		return Index{Mark: w.Value}, nil
	case TypeCharacterMode:
		return CharacterMode{On: w.On}, nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnknownItem, w.Type)
	}
}
