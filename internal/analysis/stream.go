package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"
	"github.com/2beens/formcheck/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	streamReadTimeout     = 60 * time.Second
	streamWriteTimeout    = 10 * time.Second
	streamPingPeriod      = 25 * time.Second
	streamMaxMessageBytes = 1 << 20
)

const (
	StreamActionAnalyze = "analyze"
	StreamActionReset   = "reset"
)

// StreamMessage is one client frame on the websocket. An empty action means analyze.
type StreamMessage struct {
	Action       string           `json:"action,omitempty"`
	ExerciseType string           `json:"exercise_type"`
	Observation  pose.Observation `json:"observation"`
}

// StreamReply answers exactly one StreamMessage, in order.
type StreamReply struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
	Reset     bool   `json:"reset,omitempty"`
	*AnalyzeResponse
}

// HandleStream upgrades to a websocket and analyzes every received frame in
// the session from the path. Without a session id in the path an anonymous
// session is created and ended when the connection closes.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sid"]
	anonymous := sessionID == ""
	if anonymous {
		sessionID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already replied with an http error
		log.Errorf("stream [%s], websocket upgrade: %s", sessionID, err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Tracef("stream [%s], close conn: %s", sessionID, err)
		}
	}()

	if anonymous {
		defer func() {
			err := h.service.EndSession(context.Background(), sessionID)
			if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
				log.Errorf("stream [%s], end anonymous session: %s", sessionID, err)
			}
		}()
	}

	log.Debugf("stream [%s] connected", sessionID)

	conn.SetReadLimit(streamMaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	ctx := r.Context()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("stream [%s], read: %s", sessionID, err)
			}
			log.Debugf("stream [%s] disconnected", sessionID)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

		reply := h.streamReply(ctx, sessionID, payload)

		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			log.Warnf("stream [%s], write: %s", sessionID, err)
			return
		}
	}
}

func (h *Handler) streamReply(ctx context.Context, sessionID string, payload []byte) StreamReply {
	reply := StreamReply{SessionID: sessionID}

	var msg StreamMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		reply.Error = "invalid message"
		return reply
	}

	exType, err := exercise.ParseType(msg.ExerciseType)
	if err != nil {
		reply.Error = err.Error()
		return reply
	}

	switch msg.Action {
	case "", StreamActionAnalyze:
		resp, err := h.service.AnalyzeFrame(ctx, sessionID, exType, msg.Observation)
		if err != nil {
			log.Errorf("stream [%s], analyze %s: %s", sessionID, exType, err)
			reply.Error = "failed to analyze frame"
			return reply
		}
		reply.AnalyzeResponse = resp
	case StreamActionReset:
		err := h.service.Reset(ctx, sessionID, exType)
		if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			log.Errorf("stream [%s], reset %s: %s", sessionID, exType, err)
			reply.Error = "failed to reset"
			return reply
		}
		reply.Reset = true
	default:
		reply.Error = "unknown action: " + msg.Action
	}

	return reply
}

func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(streamWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
