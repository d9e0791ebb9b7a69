package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// QuestionKind discriminates the two question shapes a soal can hold.
type QuestionKind string

const (
	// QuestionKindMultipleChoice has options and an answer key naming one of them.
	QuestionKindMultipleChoice QuestionKind = "pilihan_ganda"
	// QuestionKindOpenResponse has no options; the answer key is the expected answer text.
	QuestionKindOpenResponse QuestionKind = "uraian"
)

// Option is one answer choice of a multiple-choice question.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Options is an ordered key → text mapping. It is encoded as a JSON object
// whose member order is the display order.
type Options []Option

// Keys returns the option keys in display order.
func (o Options) Keys() []string {
	keys := make([]string, len(o))
	for i, opt := range o {
		keys[i] = opt.Key
	}
	return keys
}

// Has reports whether key is one of the options.
func (o Options) Has(key string) bool {
	return o.index(key) >= 0
}

// Text returns the text of the option with the given key.
func (o Options) Text(key string) (string, bool) {
	if i := o.index(key); i >= 0 {
		return o[i].Text, true
	}
	return "", false
}

// Set replaces the text of an existing option. It returns false when the key is unknown.
func (o Options) Set(key, text string) bool {
	i := o.index(key)
	if i < 0 {
		return false
	}
	o[i].Text = text
	return true
}

func (o Options) index(key string) int {
	for i, opt := range o {
		if opt.Key == key {
			return i
		}
	}
	return -1
}

// MarshalJSON writes the options as a JSON object preserving order.
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, opt := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(opt.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(opt.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping member order. Keys are
// normalized to lower case; duplicate keys are rejected. A JSON null
// decodes to nil options.
func (o *Options) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("opsi must be a JSON object")
	}

	out := Options{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in opsi", tok)
		}
		if norm := NormalizeOptionKey(key); ValidOptionKey(norm) {
			key = norm
		} else {
			return fmt.Errorf("opsi key %q is not a single letter", key)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("opsi %q: %w", key, err)
		}
		text, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("opsi %q: %w", key, err)
		}

		if out.Has(key) {
			return fmt.Errorf("duplicate opsi key %q", key)
		}
		out = append(out, Option{Key: key, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*o = out
	return nil
}

// NormalizeOptionKey lower-cases and trims an option key so "B", " b" and
// "b." all address the same option.
func NormalizeOptionKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.TrimRight(key, ".)")
}

// ValidOptionKey reports whether a normalized key is one letter a-z.
func ValidOptionKey(key string) bool {
	return len(key) == 1 && key[0] >= 'a' && key[0] <= 'z'
}

// FlexString accepts either a JSON string or a JSON number and keeps it as text.
// The generator emits "kelas" unquoted.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return err
	}
	*f = FlexString(text)
	return nil
}

// FlexInt accepts a JSON number or a numeric string. Integral floats
// such as 1.0 are accepted.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	text, err := scalarText(data)
	if err != nil {
		return err
	}
	if text == "" {
		*f = 0
		return nil
	}
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		*f = FlexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return fmt.Errorf("not an integer: %q", text)
	}
	*f = FlexInt(v)
	return nil
}

func scalarText(raw []byte) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("expected a string or number")
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			var b bool
			if errB := json.Unmarshal(raw, &b); errB == nil {
				return strconv.FormatBool(b), nil
			}
			return "", err
		}
		return n.String(), nil
	}
}

// Question is one item of a soal document.
type Question struct {
	Number         FlexInt      `json:"nomor"`
	Kind           QuestionKind `json:"jenis"`
	CognitiveLevel string       `json:"level_kognitif"`
	Indicator      string       `json:"indikator"`
	PromptText     string       `json:"soal"`
	Options        Options      `json:"opsi,omitempty"`
	AnswerKey      string       `json:"kunci_jawaban"`
	Explanation    string       `json:"pembahasan"`
}

// IsMultipleChoice reports whether the question is graded against its options.
func (q *Question) IsMultipleChoice() bool {
	return q.Kind == QuestionKindMultipleChoice
}

// UnmarshalJSON decodes a question and derives Kind from the presence of
// options, so every use site sees an explicit variant.
func (q *Question) UnmarshalJSON(data []byte) error {
	type alias Question
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*q = Question(a)
	q.Classify()
	return nil
}

// Classify sets Kind from the option set and normalizes the answer key
// of multiple-choice questions.
func (q *Question) Classify() {
	if len(q.Options) > 0 {
		q.Kind = QuestionKindMultipleChoice
		q.AnswerKey = NormalizeOptionKey(q.AnswerKey)
		return
	}
	q.Kind = QuestionKindOpenResponse
	q.Options = nil
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	if q.Options != nil {
		opts := make(Options, len(q.Options))
		copy(opts, q.Options)
		q.Options = opts
	}
	return q
}

// RubricEntry is a "kisi-kisi" row. It is descriptive only.
type RubricEntry struct {
	Index               FlexInt `json:"no"`
	CompetencyReference string  `json:"cp_kd"`
	MaterialTopic       string  `json:"materi"`
	IndicatorText       string  `json:"indikator"`
	CognitiveLevel      string  `json:"level_kognitif"`
	QuestionFormat      string  `json:"bentuk_soal"`
	QuestionNumber      FlexInt `json:"nomor_soal,omitempty"`
}

// SoalMetadata describes the learning context a soal was generated for.
type SoalMetadata struct {
	Curriculum string     `json:"kurikulum,omitempty"`
	Level      string     `json:"jenjang,omitempty"`
	Phase      string     `json:"fase,omitempty"`
	Grade      FlexString `json:"kelas,omitempty"`
	Subject    string     `json:"mapel,omitempty"`
	Topic      string     `json:"materi,omitempty"`
}

// SoalContent is the structured content of a soal document.
type SoalContent struct {
	Metadata  SoalMetadata  `json:"metadata"`
	Rubric    []RubricEntry `json:"kisi_kisi"`
	Questions []Question    `json:"soal"`
}

// Clone returns a deep copy of the content.
func (s *SoalContent) Clone() *SoalContent {
	out := &SoalContent{Metadata: s.Metadata}
	if s.Rubric != nil {
		out.Rubric = make([]RubricEntry, len(s.Rubric))
		copy(out.Rubric, s.Rubric)
	}
	if s.Questions != nil {
		out.Questions = make([]Question, len(s.Questions))
		for i, q := range s.Questions {
			out.Questions[i] = q.Clone()
		}
	}
	return out
}

// ModulContent is the content of a modul ajar document.
type ModulContent struct {
	Text string `json:"text"`
}
