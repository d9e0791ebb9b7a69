// Package content validates generated soal and modul content before it is
// accepted into the document store.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gurukit/gurukit-backend/internal/model"
)

// GenerationFormatError reports generator output that could not be
// accepted. Raw holds the text as received for diagnostics.
type GenerationFormatError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *GenerationFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation format: %s: %v", e.Reason, e.Err)
	}
	return "generation format: " + e.Reason
}

func (e *GenerationFormatError) Unwrap() error { return e.Err }

// IsFormatError reports whether err is (or wraps) a GenerationFormatError.
func IsFormatError(err error) bool {
	var fe *GenerationFormatError
	return errors.As(err, &fe)
}

// ValidationError lists every invariant a soal violates.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid soal: " + strings.Join(e.Problems, "; ")
}

// ParseResult is an accepted soal with any non-blocking rubric warnings.
type ParseResult struct {
	Soal     *model.SoalContent
	Warnings []string
}

// StripFences removes markdown code fence markers the generator tends to
// wrap JSON in. Nothing else is repaired.
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// soalEnvelope decodes the rubric lazily so a malformed rubric does not
// reject the questions.
type soalEnvelope struct {
	Metadata  json.RawMessage  `json:"metadata"`
	Rubric    json.RawMessage  `json:"kisi_kisi"`
	Questions []model.Question `json:"soal"`
}

// ParseSoal parses generator output into soal content and checks its invariants.
func ParseSoal(raw []byte) (*ParseResult, error) {
	text := StripFences(string(raw))
	if text == "" {
		return nil, &GenerationFormatError{Reason: "empty response", Raw: string(raw)}
	}

	var env soalEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, &GenerationFormatError{Reason: "invalid JSON", Raw: string(raw), Err: err}
	}

	result := &ParseResult{Soal: &model.SoalContent{Questions: env.Questions}}

	if len(env.Metadata) > 0 && !isNull(env.Metadata) {
		if err := json.Unmarshal(env.Metadata, &result.Soal.Metadata); err != nil {
			result.Warnings = append(result.Warnings, "metadata ignored: "+err.Error())
		}
	}

	rubric, warnings := decodeRubric(env.Rubric)
	result.Soal.Rubric = rubric
	result.Warnings = append(result.Warnings, warnings...)

	if err := ValidateSoal(result.Soal); err != nil {
		return nil, &GenerationFormatError{Reason: "content rejected", Raw: string(raw), Err: err}
	}
	return result, nil
}

// ValidateSoal checks the question invariants: at least one question,
// positive unique numbers, non-empty prompts and, for multiple-choice
// questions, an answer key that names one of the options.
func ValidateSoal(s *model.SoalContent) error {
	if s == nil || len(s.Questions) == 0 {
		return &ValidationError{Problems: []string{"soal must not be empty"}}
	}

	var problems []string
	seen := make(map[int]bool, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		q.Classify()

		n := int(q.Number)
		switch {
		case n <= 0:
			problems = append(problems, fmt.Sprintf("question %d: nomor must be positive", i+1))
		case seen[n]:
			problems = append(problems, fmt.Sprintf("question %d: duplicate nomor %d", i+1, n))
		}
		seen[n] = true

		if strings.TrimSpace(q.PromptText) == "" {
			problems = append(problems, fmt.Sprintf("question %d: soal text is empty", i+1))
		}
		if q.IsMultipleChoice() && !q.Options.Has(q.AnswerKey) {
			problems = append(problems, fmt.Sprintf("question %d: kunci_jawaban %q is not one of %v",
				i+1, q.AnswerKey, q.Options.Keys()))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func decodeRubric(raw json.RawMessage) ([]model.RubricEntry, []string) {
	if len(raw) == 0 || isNull(raw) {
		return []model.RubricEntry{}, nil
	}

	var rubric []model.RubricEntry
	if err := json.Unmarshal(raw, &rubric); err != nil {
		return []model.RubricEntry{}, []string{"kisi_kisi ignored: " + err.Error()}
	}

	var warnings []string
	seen := make(map[int]bool, len(rubric))
	for _, r := range rubric {
		idx := int(r.Index)
		if seen[idx] {
			warnings = append(warnings, fmt.Sprintf("kisi_kisi: duplicate no %d", idx))
		}
		seen[idx] = true
	}
	return rubric, warnings
}

// ParseModul accepts generator output as modul text.
func ParseModul(raw string) (*model.ModulContent, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &GenerationFormatError{Reason: "empty response", Raw: raw}
	}
	return &model.ModulContent{Text: text}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
