package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/certbible/certprep/internal/middleware"
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/response"
	"github.com/certbible/certprep/internal/service"
	ws "github.com/certbible/certprep/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
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

// WSHandler drives one exam session over a WebSocket.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream
// Every client action is answered with a state, feedback, graded or error
// event. The connection stays open after submit so the learner can keep
// reviewing.
func (h *WSHandler) SessionStream(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	learnerID := middleware.GetLearnerID(c)

	// Reject unknown sessions before upgrading so the client gets a REST error.
	view, err := h.sessions.View(c.Request.Context(), learnerID, id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("learner_id", learnerID).Str("session_id", id).Logger()
	wsLog.Info().Msg("Learner connected")

	if err := ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, Session: view}); err != nil {
		return
	}

	// The request context is cancelled once the handler returns; session
	// writes made during the connection must not inherit a dead context.
	ctx := context.WithoutCancel(c.Request.Context())

	for {
		msg, err := ws.ReadRequest(conn)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if ws.WriteError(conn, string(response.ErrInvalidPayload), response.GetMessage(response.ErrInvalidPayload)) != nil {
					break
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		if err := ws.WriteTyped(conn, h.dispatch(ctx, learnerID, id, msg)); err != nil {
			wsLog.Debug().Err(err).Msg("Write failed")
			break
		}
	}
}

// dispatch runs one client action and returns the event to send back.
func (h *WSHandler) dispatch(ctx context.Context, learnerID, id string, msg ws.Request) any {
	var (
		view model.SessionView
		err  error
	)

	switch msg.Action {
	case ws.ActionPing:
		return ws.PongResponse{Event: ws.EventPong}
	case ws.ActionState:
		view, err = h.sessions.View(ctx, learnerID, id)
	case ws.ActionSelect:
		view, err = h.sessions.Answer(ctx, learnerID, id, model.AnswerRequest{Answer: msg.Answer})
	case ws.ActionClear:
		view, err = h.sessions.Answer(ctx, learnerID, id, model.AnswerRequest{Clear: true})
	case ws.ActionNext:
		view, err = h.sessions.Navigate(ctx, learnerID, id, model.NavigateRequest{Action: model.NavigateNext})
	case ws.ActionPrevious:
		view, err = h.sessions.Navigate(ctx, learnerID, id, model.NavigateRequest{Action: model.NavigatePrevious})
	case ws.ActionGoTo:
		view, err = h.sessions.Navigate(ctx, learnerID, id, model.NavigateRequest{Action: model.NavigateGoTo, Index: msg.Index})
	case ws.ActionCheck:
		out, err := h.sessions.Check(ctx, learnerID, id)
		if err != nil {
			return h.errorEvent(err)
		}
		return ws.FeedbackResponse{Event: ws.EventFeedback, Index: out.Index, Feedback: out.Feedback}
	case ws.ActionSubmit:
		out, err := h.sessions.Submit(ctx, learnerID, id)
		if err != nil {
			return h.errorEvent(err)
		}
		return ws.GradedResponse{Event: ws.EventGraded, Result: out.Result, Review: out.Review}
	default:
		return ws.ErrorResponse{Event: ws.EventError, Code: string(response.ErrInvalidPayload), Error: "unknown action"}
	}

	if err != nil {
		return h.errorEvent(err)
	}
	return ws.StateResponse{Event: ws.EventState, Session: view}
}

func (h *WSHandler) errorEvent(err error) ws.ErrorResponse {
	code, errCode, msg := classify(err)
	if code == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Session action failed")
	}
	return ws.ErrorResponse{Event: ws.EventError, Code: string(errCode), Error: msg}
}
