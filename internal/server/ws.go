package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"retailiq/internal/agent"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
}

type chatWSOutbound struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId,omitempty"`
	Answer    *agent.Answer `json:"answer,omitempty"`
	Code      string        `json:"code,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// handleChatWS runs a conversation over one websocket connection. The session
// comes from the session_id query parameter; a missing id starts a new one.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.resolveSession(r.URL.Query().Get("session_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		s.log.Printf("chat ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chatWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	pushChatWS(writeCh, chatWSOutbound{
		Type:      "connected",
		SessionID: sess.ID,
	})

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushChatWS(writeCh, chatWSOutbound{Type: "pong"})
		case "ask":
			question := strings.TrimSpace(in.Question)
			if question == "" {
				pushChatWS(writeCh, chatWSOutbound{
					Type:    "error",
					Code:    "invalid_argument",
					Message: "question is required",
				})
				continue
			}
			ans, askErr := s.agent.Ask(ctx, sess, question)
			if askErr != nil {
				pushChatWS(writeCh, chatWSOutbound{
					Type:    "error",
					Code:    "internal",
					Message: askErr.Error(),
				})
				continue
			}
			pushChatWS(writeCh, chatWSOutbound{
				Type:      "answer",
				SessionID: sess.ID,
				Answer:    ans,
			})
		default:
			pushChatWS(writeCh, chatWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unknown message type",
			})
		}
	}
}

func pushChatWS(ch chan<- chatWSOutbound, out chatWSOutbound) {
	select {
	case ch <- out:
	default:
	}
}
