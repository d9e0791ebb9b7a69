package websocket

import "github.com/gurukit/gurukit-backend/internal/quiz"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer           Action = "answer"
	ActionReveal           Action = "reveal"
	ActionVisibility       Action = "visibility"
	ActionDismissViolation Action = "dismiss_violation"
	ActionRestart          Action = "restart"
	ActionExit             Action = "exit"
	ActionPing             Action = "ping"
)

// RequestPayload is every client message. Key is used by answer and Hidden
// by visibility.
type RequestPayload struct {
	Action Action `json:"action"`
	Key    string `json:"key,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventTick      Event = "tick"
	EventViolation Event = "violation"
	EventFinished  Event = "finished"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// ErrorCode identifies why an action was rejected.
type ErrorCode string

const (
	CodeQuizNotFound      ErrorCode = "QUIZ_NOT_FOUND"
	CodeNotAwaitingAnswer ErrorCode = "NOT_AWAITING_ANSWER"
	CodeRevealRequired    ErrorCode = "REVEAL_REQUIRED"
	CodeSelectionRequired ErrorCode = "SELECTION_REQUIRED"
	CodeUnknownOption     ErrorCode = "UNKNOWN_OPTION"
	CodeSessionClosed     ErrorCode = "SESSION_CLOSED"
	CodeUnknownAction     ErrorCode = "UNKNOWN_ACTION"
	CodeInvalidMessage    ErrorCode = "INVALID_MESSAGE"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type StateResponse struct {
	Event Event         `json:"event"`
	State quiz.Snapshot `json:"state"`
}

type TickResponse struct {
	Event          Event `json:"event"`
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

type ViolationResponse struct {
	Event  Event `json:"event"`
	Count  int   `json:"count"`
	Active bool  `json:"active"`
}

type FinishedResponse struct {
	Event          Event               `json:"event"`
	Score          int                 `json:"score"`
	Correct        int                 `json:"correct"`
	Incorrect      int                 `json:"incorrect"`
	Total          int                 `json:"total"`
	Percentage     int                 `json:"percentage"`
	Violations     int                 `json:"violations"`
	ElapsedSeconds int64               `json:"elapsed_seconds"`
	Answers        []quiz.AnswerRecord `json:"answers"`
}

type ErrorResponse struct {
	Event Event     `json:"event"`
	Code  ErrorCode `json:"code"`
	Error string    `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// Finished builds the finished event from a terminal snapshot.
func Finished(s quiz.Snapshot) FinishedResponse {
	out := FinishedResponse{
		Event:          EventFinished,
		ElapsedSeconds: s.ElapsedSeconds,
		Answers:        s.Answers,
	}
	if s.Result != nil {
		out.Score = s.Result.Score
		out.Correct = s.Result.Correct
		out.Incorrect = s.Result.Incorrect
		out.Total = s.Result.Total
		out.Percentage = s.Result.Percentage
		out.Violations = s.Result.Violations
	}
	return out
}
