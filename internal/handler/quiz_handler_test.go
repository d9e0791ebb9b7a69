package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/gurukit/gurukit-backend/internal/quiz"
	ws "github.com/gurukit/gurukit-backend/internal/websocket"
)

type event struct {
	Event      ws.Event        `json:"event"`
	Code       ws.ErrorCode    `json:"code"`
	Count      int             `json:"count"`
	Score      int             `json:"score"`
	Total      int             `json:"total"`
	Violations int             `json:"violations"`
	State      json.RawMessage `json:"state"`
}

type quizState struct {
	Phase string `json:"phase"`
	Index int    `json:"index"`
}

func dialQuiz(t *testing.T, f *fixture, user uuid.UUID, docID uuid.UUID) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(f.engine)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/quiz/" + docID.String()
	header := http.Header{"X-Test-User": {user.String()}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads events until match accepts one. Ticks are skipped unless
// match asks for them.
func next(t *testing.T, conn *websocket.Conn, match func(ev event) bool) event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var ev event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(ev) {
			return ev
		}
	}
}

func isEvent(name ws.Event) func(ev event) bool {
	return func(ev event) bool { return ev.Event == name }
}

func stateIs(phase string, index int) func(ev event) bool {
	return func(ev event) bool {
		if ev.Event != ws.EventState {
			return false
		}
		var s quizState
		_ = json.Unmarshal(ev.State, &s)
		return s.Phase == phase && s.Index == index
	}
}

func send(t *testing.T, conn *websocket.Conn, msg ws.RequestPayload) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestQuizPlaythrough(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	conn := dialQuiz(t, f, f.owner, doc.ID)

	next(t, conn, stateIs("awaiting_answer", 0))

	send(t, conn, ws.RequestPayload{Action: ws.ActionVisibility, Hidden: true})
	if ev := next(t, conn, isEvent(ws.EventViolation)); ev.Count != 1 {
		t.Errorf("violation count = %d", ev.Count)
	}

	send(t, conn, ws.RequestPayload{Action: ws.ActionReveal})
	if ev := next(t, conn, isEvent(ws.EventError)); ev.Code != ws.CodeSelectionRequired {
		t.Errorf("reveal on multiple choice: %s", ev.Code)
	}

	send(t, conn, ws.RequestPayload{Action: ws.ActionAnswer, Key: "A"})
	next(t, conn, stateIs("showing_feedback", 0))

	next(t, conn, stateIs("awaiting_answer", 1))
	send(t, conn, ws.RequestPayload{Action: ws.ActionReveal})

	ev := next(t, conn, isEvent(ws.EventFinished))
	if ev.Score != 1 || ev.Total != 2 || ev.Violations != 1 {
		t.Errorf("finished = %+v", ev)
	}

	send(t, conn, ws.RequestPayload{Action: ws.ActionRestart})
	next(t, conn, stateIs("awaiting_answer", 0))

	send(t, conn, ws.RequestPayload{Action: ws.ActionExit})
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Errorf("close = %v", err)
			}
			return
		}
	}
}

func TestQuizTicks(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	conn := dialQuiz(t, f, f.owner, doc.ID)

	next(t, conn, isEvent(ws.EventTick))
}

func TestQuizRejectsBadMessages(t *testing.T) {
	f := newFixture(t)
	doc := f.seed(t, model.DocumentTypeSoal, playableSoal)
	conn := dialQuiz(t, f, f.owner, doc.ID)
	next(t, conn, isEvent(ws.EventState))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if ev := next(t, conn, isEvent(ws.EventError)); ev.Code != ws.CodeInvalidMessage {
		t.Errorf("code = %s", ev.Code)
	}

	send(t, conn, ws.RequestPayload{Action: "teleport"})
	if ev := next(t, conn, isEvent(ws.EventError)); ev.Code != ws.CodeUnknownAction {
		t.Errorf("code = %s", ev.Code)
	}

	send(t, conn, ws.RequestPayload{Action: ws.ActionPing})
	next(t, conn, isEvent(ws.EventPong))
}

func TestQuizNotFound(t *testing.T) {
	f := newFixture(t)
	modul := f.seed(t, model.DocumentTypeModul, `{"text":"# Modul"}`)
	soal := f.seed(t, model.DocumentTypeSoal, playableSoal)

	cases := map[string]struct {
		user uuid.UUID
		doc  uuid.UUID
	}{
		"missing":       {f.owner, uuid.New()},
		"modul":         {f.owner, modul.ID},
		"other teacher": {uuid.New(), soal.ID},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			conn := dialQuiz(t, f, tc.user, tc.doc)
			ev := next(t, conn, func(event) bool { return true })
			if ev.Event != ws.EventError || ev.Code != ws.CodeQuizNotFound {
				t.Fatalf("first event = %+v", ev)
			}
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Errorf("expected normal close, got %v", err)
			}
		})
	}
}

func TestQuizObserverKeepsFinishedWhenOutboxIsFull(t *testing.T) {
	out := make(chan interface{}, outboxSize)
	for i := 0; i < outboxSize-outboxReserve; i++ {
		out <- ws.PongResponse{Event: ws.EventPong}
	}
	observe := newQuizObserver(out, nopLog)

	observe(quiz.Snapshot{Phase: quiz.PhaseAwaitingAnswer, Index: 1, Total: 2})
	if len(out) != outboxSize-outboxReserve {
		t.Fatalf("state queued into the reserve: len = %d", len(out))
	}

	observe(quiz.Snapshot{
		Phase:  quiz.PhaseFinished,
		Total:  2,
		Result: &quiz.Result{Score: 1, Correct: 1, Incorrect: 1, Total: 2, Percentage: 50},
	})
	if len(out) != outboxSize-outboxReserve+1 {
		t.Fatalf("len = %d", len(out))
	}
	var last interface{}
	for len(out) > 0 {
		last = <-out
	}
	fin, ok := last.(ws.FinishedResponse)
	if !ok || fin.Score != 1 || fin.Total != 2 {
		t.Errorf("last event = %#v", last)
	}
}
