package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/gurukit/gurukit-backend/internal/middleware"
	"github.com/gurukit/gurukit-backend/internal/quiz"
	"github.com/gurukit/gurukit-backend/internal/response"
	"github.com/gurukit/gurukit-backend/internal/service"
	ws "github.com/gurukit/gurukit-backend/internal/websocket"
	"github.com/rs/zerolog"
)

const (
	tickInterval = time.Second
	outboxSize   = 64

	// outboxReserve slots are kept free for finished events.
	outboxReserve = 8
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// QuizHandler plays soal documents as interactive quizzes over WebSocket.
type QuizHandler struct {
	documentService *service.DocumentService
	feedbackDelay   time.Duration
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(documentService *service.DocumentService, feedbackDelay time.Duration, log zerolog.Logger, allowedOrigins []string) *QuizHandler {
	return &QuizHandler{
		documentService: documentService,
		feedbackDelay:   feedbackDelay,
		log:             log.With().Str("component", "quiz_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/quiz/:document_id
// Upgrades to WebSocket and runs one quiz session for the connection. The
// session lives as long as the socket and is never persisted.
func (h *QuizHandler) Stream(c *gin.Context) {
	ownerID := middleware.OwnerID(c)
	if ownerID == uuid.Nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	documentID, err := uuid.Parse(c.Param("document_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", ownerID.String()).
		Str("document_id", documentID.String()).
		Logger()

	soal, err := h.documentService.LoadQuiz(c.Request.Context(), ownerID, documentID)
	if err != nil {
		if !errors.Is(err, service.ErrQuizNotFound) {
			wsLog.Error().Err(err).Msg("Failed to load quiz")
		}
		ws.WriteError(conn, ws.CodeQuizNotFound, "soal tidak ditemukan")
		ws.CloseNormal(conn, "quiz not found")
		return
	}

	out := make(chan interface{}, outboxSize)
	sess, err := quiz.New(documentID, soal,
		quiz.WithFeedbackDelay(h.feedbackDelay),
		quiz.WithObserver(newQuizObserver(out, wsLog)),
	)
	if err != nil {
		ws.WriteError(conn, ws.CodeQuizNotFound, "soal tidak memiliki pertanyaan")
		ws.CloseNormal(conn, "quiz not found")
		return
	}
	defer sess.Close()

	wsLog.Info().Msg("Quiz started")

	done := make(chan struct{})
	writerDone := make(chan struct{})
	go h.writeLoop(conn, sess, out, done, writerDone, wsLog)
	defer func() {
		close(done)
		<-writerDone
	}()

	out <- ws.StateResponse{Event: ws.EventState, State: sess.Snapshot()}

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if ws.IsMalformed(err) {
				enqueue(out, ws.NewError(ws.CodeInvalidMessage, "invalid message"), wsLog)
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if msg.Action == ws.ActionExit {
			sess.Close()
			wsLog.Info().Msg("Quiz exited")
			ws.CloseNormal(conn, "exit")
			return
		}
		h.dispatch(sess, &msg, out, wsLog)
	}
}

// dispatch applies one client action. State changes reach the client via
// the observer; rejected actions are answered with an error event.
func (h *QuizHandler) dispatch(sess *quiz.Session, msg *ws.RequestPayload, out chan interface{}, log zerolog.Logger) {
	var err error
	switch msg.Action {
	case ws.ActionAnswer:
		err = sess.Select(msg.Key)
	case ws.ActionReveal:
		err = sess.Reveal()
	case ws.ActionVisibility:
		if msg.Hidden {
			sess.ReportHidden()
		}
	case ws.ActionDismissViolation:
		sess.DismissViolation()
	case ws.ActionRestart:
		err = sess.Restart()
	case ws.ActionPing:
		enqueue(out, ws.PongResponse{Event: ws.EventPong}, log)
	default:
		enqueue(out, ws.NewError(ws.CodeUnknownAction, "unknown action: "+string(msg.Action)), log)
		return
	}

	if err != nil {
		enqueue(out, actionError(err), log)
	}
}

// writeLoop owns every data frame written to conn. It forwards queued
// events and emits a tick each second while the quiz runs.
func (h *QuizHandler) writeLoop(conn *websocket.Conn, sess *quiz.Session, out <-chan interface{}, done <-chan struct{}, writerDone chan<- struct{}, log zerolog.Logger) {
	defer close(writerDone)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg := <-out:
			if err := ws.WriteTyped(conn, msg); err != nil {
				log.Debug().Err(err).Msg("Write failed")
				return
			}
		case <-ticker.C:
			if sess.Closed() || sess.Phase() == quiz.PhaseFinished {
				continue
			}
			tick := ws.TickResponse{Event: ws.EventTick, ElapsedSeconds: int64(sess.Elapsed().Seconds())}
			if err := ws.WriteTyped(conn, tick); err != nil {
				log.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

// newQuizObserver turns session snapshots into outgoing events. It runs
// under the session lock, so it only enqueues. The finished event may use
// the reserved outbox slots.
func newQuizObserver(out chan interface{}, log zerolog.Logger) quiz.Observer {
	lastViolations := 0
	finishedSent := false

	return func(snap quiz.Snapshot) {
		enqueue(out, ws.StateResponse{Event: ws.EventState, State: snap}, log)

		if snap.Violations > lastViolations {
			enqueue(out, ws.ViolationResponse{Event: ws.EventViolation, Count: snap.Violations, Active: snap.ViolationActive}, log)
		}
		lastViolations = snap.Violations

		if snap.Phase == quiz.PhaseFinished {
			if !finishedSent {
				finishedSent = true
				log.Info().Int("score", snap.Result.Score).Int("violations", snap.Violations).Msg("Quiz finished")
				enqueueFinal(out, ws.Finished(snap), log)
			}
		} else {
			finishedSent = false
		}
	}
}

// enqueue queues msg unless the outbox is down to its reserve. A dropped
// state is superseded by the next one.
func enqueue(out chan interface{}, msg interface{}, log zerolog.Logger) {
	if len(out) >= cap(out)-outboxReserve {
		log.Warn().Type("message", msg).Msg("Outbox full, event dropped")
		return
	}
	enqueueFinal(out, msg, log)
}

// enqueueFinal queues msg using the whole outbox, reserve included. It never
// blocks because it runs under the session lock.
func enqueueFinal(out chan interface{}, msg interface{}, log zerolog.Logger) {
	select {
	case out <- msg:
	default:
		log.Warn().Type("message", msg).Msg("Outbox full, event dropped")
	}
}

func actionError(err error) ws.ErrorResponse {
	switch {
	case errors.Is(err, quiz.ErrNotAwaitingAnswer):
		return ws.NewError(ws.CodeNotAwaitingAnswer, err.Error())
	case errors.Is(err, quiz.ErrRevealRequired):
		return ws.NewError(ws.CodeRevealRequired, err.Error())
	case errors.Is(err, quiz.ErrSelectionRequired):
		return ws.NewError(ws.CodeSelectionRequired, err.Error())
	case errors.Is(err, quiz.ErrUnknownOption):
		return ws.NewError(ws.CodeUnknownOption, err.Error())
	case errors.Is(err, quiz.ErrSessionClosed):
		return ws.NewError(ws.CodeSessionClosed, err.Error())
	default:
		return ws.NewError(ws.CodeInternal, err.Error())
	}
}
