// Package quiz plays a soal document back as a sequential, scored and
// timed quiz. A Session is in-memory only and is never persisted.
package quiz

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/model"
)

// DefaultFeedbackDelay is how long feedback stays on screen before the
// session advances on its own.
const DefaultFeedbackDelay = 1500 * time.Millisecond

// Phase is the state of a Session.
type Phase string

const (
	PhaseAwaitingAnswer  Phase = "awaiting_answer"
	PhaseShowingFeedback Phase = "showing_feedback"
	PhaseFinished        Phase = "finished"
)

// Session errors. An action rejected with one of these leaves the session unchanged.
var (
	ErrNoQuestions       = errors.New("quiz: document has no questions")
	ErrNotAwaitingAnswer = errors.New("quiz: not awaiting an answer")
	ErrRevealRequired    = errors.New("quiz: open-response question must be revealed")
	ErrSelectionRequired = errors.New("quiz: multiple-choice question needs a selected option")
	ErrUnknownOption     = errors.New("quiz: option does not exist")
	ErrSessionClosed     = errors.New("quiz: session closed")
)

// AnswerRecord is the log entry written when a question is answered.
type AnswerRecord struct {
	QuestionNumber int    `json:"question_number"`
	SelectedKey    string `json:"selected_key"`
	CorrectKey     string `json:"correct_key"`
	WasCorrect     bool   `json:"was_correct"`
	SelfGraded     bool   `json:"self_graded,omitempty"`
}

// Result summarizes a finished session.
type Result struct {
	Score      int `json:"score"`
	Correct    int `json:"correct"`
	Incorrect  int `json:"incorrect"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
	Violations int `json:"violations"`
}

// Observer receives a snapshot after every state change. It is called with
// the session lock held and must not call back into the Session.
type Observer func(Snapshot)

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithFeedbackDelay sets how long feedback is shown before advancing.
func WithFeedbackDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithObserver registers a state change observer.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// Session is one playthrough of a soal document. Questions are played in
// array order, forward only.
type Session struct {
	mu       sync.Mutex
	clock    Clock
	delay    time.Duration
	observer Observer

	documentID uuid.UUID
	questions  []model.Question

	phase           Phase
	index           int
	score           int
	answers         []AnswerRecord
	violations      int
	violationActive bool
	startedAt       time.Time
	finishedAt      time.Time
	closed          bool

	timer Timer
	// epoch invalidates feedback timers scheduled before a restart or close.
	epoch uint64
}

// New starts a session over the questions of soal.
func New(documentID uuid.UUID, soal *model.SoalContent, opts ...Option) (*Session, error) {
	if soal == nil || len(soal.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	s := &Session{
		clock:      SystemClock{},
		delay:      DefaultFeedbackDelay,
		documentID: documentID,
		questions:  make([]model.Question, len(soal.Questions)),
	}
	for i, q := range soal.Questions {
		s.questions[i] = q.Clone()
		s.questions[i].Classify()
	}
	for _, opt := range opts {
		opt(s)
	}

	s.reset()
	return s, nil
}

// DocumentID returns the id of the document being played.
func (s *Session) DocumentID() uuid.UUID { return s.documentID }

// Select answers the current multiple-choice question with key.
func (s *Session) Select(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.current()
	if err != nil {
		return err
	}
	if !q.IsMultipleChoice() {
		return ErrRevealRequired
	}

	key = model.NormalizeOptionKey(key)
	if !q.Options.Has(key) {
		return ErrUnknownOption
	}

	rec := AnswerRecord{
		QuestionNumber: int(q.Number),
		SelectedKey:    key,
		CorrectKey:     q.AnswerKey,
		WasCorrect:     key == q.AnswerKey,
	}
	if rec.WasCorrect {
		s.score++
	}
	s.answers = append(s.answers, rec)
	s.enterFeedback()
	return nil
}

// Reveal shows the expected answer of the current open-response question.
// It is neither correct nor incorrect and leaves the score unchanged.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.current()
	if err != nil {
		return err
	}
	if q.IsMultipleChoice() {
		return ErrSelectionRequired
	}

	s.answers = append(s.answers, AnswerRecord{
		QuestionNumber: int(q.Number),
		CorrectKey:     q.AnswerKey,
		SelfGraded:     true,
	})
	s.enterFeedback()
	return nil
}

// ReportHidden records that the page lost foreground visibility. It returns
// false once the session is finished or closed. Scoring is not affected.
func (s *Session) ReportHidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.phase == PhaseFinished {
		return false
	}
	s.violations++
	s.violationActive = true
	s.notify()
	return true
}

// DismissViolation clears the violation warning. The tally is kept.
func (s *Session) DismissViolation() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.violationActive {
		return
	}
	s.violationActive = false
	s.notify()
}

// Restart returns to the first question of the same document.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.reset()
	s.notify()
	return nil
}

// Close ends the session and cancels any pending transition.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancelTimer()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Elapsed is the time since the session started, frozen once it finishes.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed()
}

// Answers returns a copy of the answer log in presentation order.
func (s *Session) Answers() []AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AnswerRecord, len(s.answers))
	copy(out, s.answers)
	return out
}

// Result returns the summary once the session is finished.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseFinished {
		return Result{}, false
	}
	return s.result(), true
}

// Snapshot returns the observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) current() (*model.Question, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.phase != PhaseAwaitingAnswer {
		return nil, ErrNotAwaitingAnswer
	}
	return &s.questions[s.index], nil
}

func (s *Session) reset() {
	s.cancelTimer()
	s.phase = PhaseAwaitingAnswer
	s.index = 0
	s.score = 0
	s.answers = []AnswerRecord{}
	s.violations = 0
	s.violationActive = false
	s.startedAt = s.clock.Now()
	s.finishedAt = time.Time{}
}

func (s *Session) enterFeedback() {
	s.phase = PhaseShowingFeedback
	s.cancelTimer()
	epoch := s.epoch
	s.timer = s.clock.AfterFunc(s.delay, func() { s.advance(epoch) })
	s.notify()
}

// advance runs when the feedback timer fires.
func (s *Session) advance(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || epoch != s.epoch || s.phase != PhaseShowingFeedback {
		return
	}
	s.timer = nil

	if s.index == len(s.questions)-1 {
		s.phase = PhaseFinished
		s.finishedAt = s.clock.Now()
		s.violationActive = false
	} else {
		s.index++
		s.phase = PhaseAwaitingAnswer
	}
	s.notify()
}

func (s *Session) cancelTimer() {
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) elapsed() time.Duration {
	if s.phase == PhaseFinished {
		return s.finishedAt.Sub(s.startedAt)
	}
	return s.clock.Now().Sub(s.startedAt)
}

func (s *Session) result() Result {
	total := len(s.questions)
	return Result{
		Score:      s.score,
		Correct:    s.score,
		Incorrect:  total - s.score,
		Total:      total,
		Percentage: int(math.Round(float64(s.score) / float64(total) * 100)),
		Violations: s.violations,
	}
}

func (s *Session) notify() {
	if s.observer != nil {
		s.observer(s.snapshot())
	}
}
