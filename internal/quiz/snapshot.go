package quiz

import "github.com/gurukit/gurukit-backend/internal/model"

// QuestionView is the current question as shown to the test-taker. It
// carries no answer key.
type QuestionView struct {
	Number         int                `json:"nomor"`
	Kind           model.QuestionKind `json:"jenis"`
	CognitiveLevel string             `json:"level_kognitif"`
	Indicator      string             `json:"indikator"`
	PromptText     string             `json:"soal"`
	Options        model.Options      `json:"opsi,omitempty"`
}

// Feedback is shown after a question has been answered or revealed.
type Feedback struct {
	SelectedKey string `json:"selected_key,omitempty"`
	CorrectKey  string `json:"correct_key"`
	WasCorrect  bool   `json:"was_correct"`
	SelfGraded  bool   `json:"self_graded,omitempty"`
	Explanation string `json:"pembahasan"`
}

// Snapshot is the observable state of a Session.
type Snapshot struct {
	Phase               Phase          `json:"phase"`
	Index               int            `json:"index"`
	Total               int            `json:"total"`
	Score               int            `json:"score"`
	Violations          int            `json:"violations"`
	ViolationActive     bool           `json:"violation_active"`
	ElapsedSeconds      int64          `json:"elapsed_seconds"`
	SuppressContextMenu bool           `json:"suppress_context_menu"`
	Question            *QuestionView  `json:"question,omitempty"`
	Feedback            *Feedback      `json:"feedback,omitempty"`
	Result              *Result        `json:"result,omitempty"`
	Answers             []AnswerRecord `json:"answers,omitempty"`
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Phase:               s.phase,
		Index:               s.index,
		Total:               len(s.questions),
		Score:               s.score,
		Violations:          s.violations,
		ViolationActive:     s.violationActive,
		ElapsedSeconds:      int64(s.elapsed().Seconds()),
		SuppressContextMenu: s.phase != PhaseFinished && !s.closed,
	}

	switch s.phase {
	case PhaseAwaitingAnswer, PhaseShowingFeedback:
		q := s.questions[s.index]
		snap.Question = &QuestionView{
			Number:         int(q.Number),
			Kind:           q.Kind,
			CognitiveLevel: q.CognitiveLevel,
			Indicator:      q.Indicator,
			PromptText:     q.PromptText,
			Options:        q.Clone().Options,
		}
		if s.phase == PhaseShowingFeedback && len(s.answers) > 0 {
			last := s.answers[len(s.answers)-1]
			snap.Feedback = &Feedback{
				SelectedKey: last.SelectedKey,
				CorrectKey:  last.CorrectKey,
				WasCorrect:  last.WasCorrect,
				SelfGraded:  last.SelfGraded,
				Explanation: q.Explanation,
			}
		}
	case PhaseFinished:
		res := s.result()
		snap.Result = &res
		snap.Answers = make([]AnswerRecord, len(s.answers))
		copy(snap.Answers, s.answers)
	}
	return snap
}
