package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mockinterview/middlewares"
	"mockinterview/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Client -> server event types.
const (
	eventResult = "result"
	eventReset  = "reset"
	eventSend   = "send"
	eventStop   = "stop"
)

// transcriptionEvent relays a browser SpeechRecognitionEvent; Results is its complete result list.
type transcriptionEvent struct {
	Type        string                       `json:"type"`
	ResultIndex int                          `json:"result_index"`
	Results     []services.RecognitionResult `json:"results"`
}

type transcriptionReply struct {
	Type  string               `json:"type"`
	Text  string               `json:"text,omitempty"`
	Turn  *services.TurnResult `json:"turn,omitempty"`
	Error string               `json:"error,omitempty"`
}

type TranscriptionController struct {
	interviews *services.InterviewService
	upgrader   websocket.Upgrader
}

func NewTranscriptionController(interviews *services.InterviewService) *TranscriptionController {
	return &TranscriptionController{
		interviews: interviews,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades to a websocket that accumulates speech recognition results
// and submits the transcript as the candidate's answer on "send".
func (tc *TranscriptionController) Handle(c *gin.Context) {
	userID := middlewares.UserID(c)
	sessionID := c.Param("id")
	if _, err := tc.interviews.GetSession(c.Request.Context(), userID, sessionID); err != nil {
		respondError(c, err)
		return
	}

	ws, err := tc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed for interview %s: %v", sessionID, err)
		return
	}
	defer ws.Close()

	ws.SetReadLimit(64 << 10)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	// Pings run on their own goroutine; WriteControl is safe to call concurrently with WriteJSON.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	var buf services.TranscriptBuffer
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Transcription socket for interview %s closed: %v", sessionID, err)
			}
			return
		}

		var ev transcriptionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			tc.write(ws, transcriptionReply{Type: "error", Error: "invalid event"})
			continue
		}

		switch ev.Type {
		case eventResult:
			tc.write(ws, transcriptionReply{Type: "transcript", Text: buf.Apply(ev.ResultIndex, ev.Results)})
		case eventReset:
			buf.Reset()
			tc.write(ws, transcriptionReply{Type: "transcript", Text: ""})
		case eventSend:
			text := strings.TrimSpace(buf.Text())
			if text == "" {
				tc.write(ws, transcriptionReply{Type: "error", Error: services.ErrEmptyMessage.Error()})
				continue
			}
			turn, err := tc.interviews.SendMessage(c.Request.Context(), userID, sessionID, text)
			if err != nil {
				tc.write(ws, transcriptionReply{Type: "error", Error: err.Error()})
				continue
			}
			buf.Reset()
			tc.write(ws, transcriptionReply{Type: "reply", Turn: &turn})
		case eventStop:
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stopped"), time.Now().Add(writeWait))
			return
		default:
			tc.write(ws, transcriptionReply{Type: "error", Error: "unknown event type " + ev.Type})
		}
	}
}

func (tc *TranscriptionController) write(ws *websocket.Conn, reply transcriptionReply) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(reply); err != nil {
		log.Printf("Transcription write failed: %v", err)
	}
}
