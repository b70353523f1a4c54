package statews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/service"
)

// Actions is what attached displays may read and trigger. RingingMachine
// implements it.
type Actions interface {
	View(now time.Time) service.View
	Snooze(ctx context.Context, now time.Time, minutes int) (domain.RingingState, error)
	Stop(ctx context.Context, now time.Time) error
	DeleteAlarm(ctx context.Context, now time.Time, id int64) error
}

// Message types on the wire. Every frame is an envelope {type, ts, data}.
const (
	TypeStateInit    = "state_init"
	TypeStateChanged = "state_changed"
	TypeError        = "error"

	TypeSnooze      = "snooze"
	TypeStop        = "stop"
	TypeDeleteAlarm = "delete_alarm"
)

type envelope struct {
	Type string          `json:"type"`
	Ts   *time.Time      `json:"ts,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type snoozeRequest struct {
	Minutes int `json:"minutes"`
}

type deleteRequest struct {
	AlarmID int64 `json:"alarm_id"`
}

type errorData struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}

// ViewData is the JSON form of service.View.
type ViewData struct {
	Phase            string     `json:"phase"`
	AlarmID          *int64     `json:"alarm_id"`
	Label            string     `json:"label,omitempty"`
	SnoozeUntil      *time.Time `json:"snooze_until,omitempty"`
	Next             *NextData  `json:"next"`
	SecondsUntilNext int64      `json:"seconds_until_next"`
	AudioPlaying     bool       `json:"audio_playing"`
	Volume           float64    `json:"volume"`
	Night            bool       `json:"night"`
}

type NextData struct {
	AlarmID   int64     `json:"alarm_id"`
	Label     string    `json:"label"`
	TriggerAt time.Time `json:"trigger_at"`
}

func NewViewData(v service.View) ViewData {
	d := ViewData{
		Phase:        string(v.Phase),
		AlarmID:      v.AlarmID,
		Label:        v.Label,
		SnoozeUntil:  v.SnoozeUntil,
		AudioPlaying: v.Audio.Playing,
		Volume:       v.Audio.Volume,
		Night:        v.Night,
	}
	if v.Next != nil {
		d.Next = &NextData{AlarmID: v.Next.Alarm.ID, Label: v.Next.Alarm.Label, TriggerAt: v.Next.TriggerAt}
		d.SecondsUntilNext = int64(v.UntilNext / time.Second)
	}
	return d
}

func encode(typ string, at time.Time, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ts := at.UTC()
	return json.Marshal(envelope{Type: typ, Ts: &ts, Data: raw})
}

// Server exposes the ringing state over a websocket: a state_init frame on
// connect, state_changed on every published View, and snooze/stop actions
// inbound.
type Server struct {
	logger  *slog.Logger
	hub     *Hub
	actions Actions
	now     func() time.Time

	upgrader websocket.Upgrader
}

type ServerConfig struct {
	Hub HubConfig
	Now func() time.Time
}

func NewServer(logger *slog.Logger, actions Actions, cfg ServerConfig) *Server {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		logger:  logger,
		hub:     NewHub(logger, cfg.Hub),
		actions: actions,
		now:     now,
		upgrader: websocket.Upgrader{
			// The display is on the same device or LAN; there is no browser session to protect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register installs the websocket handler on mux at path.
func (s *Server) Register(mux *http.ServeMux, path string) {
	if mux == nil {
		return
	}
	mux.HandleFunc(path, s.handleStateWS)
}

// Publish broadcasts v to every client. Pass it to RingingMachine.Subscribe.
func (s *Server) Publish(v service.View) {
	msg, err := encode(TypeStateChanged, v.At, NewViewData(v))
	if err != nil {
		s.logger.Warn("state broadcast marshal failed", "error", err)
		return
	}
	s.hub.BroadcastBytes(msg)
}

// ListenAndServe runs the hub and an HTTP server on addr (websocket at /ws)
// until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	s.Register(mux, "/ws")
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	hubCtx, cancelHub := context.WithCancel(ctx)
	defer cancelHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("state websocket listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("state websocket server: %w", err)
	}
}

func (s *Server) handleStateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("state websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn, r.RemoteAddr, s.logger)

	// Queue the snapshot before registering so it is the first frame the client sees.
	now := s.now()
	if msg, err := encode(TypeStateInit, now, NewViewData(s.actions.View(now))); err == nil {
		client.enqueue(msg)
	}
	s.hub.register <- client

	// Pump lifetimes follow the connection, not the request context.
	go client.writePump()
	go client.readPump(s.handleAction)
}

func (s *Server) handleAction(c *Client, msg []byte) {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		s.reply(c, "", fmt.Errorf("malformed message: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch env.Type {
	case TypeSnooze:
		var req snoozeRequest
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &req); err != nil {
				s.reply(c, env.Type, fmt.Errorf("malformed snooze data: %w", err))
				return
			}
		}
		if _, err := s.actions.Snooze(ctx, s.now(), req.Minutes); err != nil {
			s.reply(c, env.Type, err)
		}
	case TypeStop:
		if err := s.actions.Stop(ctx, s.now()); err != nil {
			s.reply(c, env.Type, err)
		}
	case TypeDeleteAlarm:
		var req deleteRequest
		if err := json.Unmarshal(env.Data, &req); err != nil || req.AlarmID <= 0 {
			s.reply(c, env.Type, errors.New("delete_alarm needs a positive alarm_id"))
			return
		}
		if err := s.actions.DeleteAlarm(ctx, s.now(), req.AlarmID); err != nil {
			s.reply(c, env.Type, err)
		}
	default:
		s.reply(c, env.Type, fmt.Errorf("unknown message type %q", env.Type))
	}
	s.logger.Debug("state client action", "remote_addr", c.remoteAddr, "type", env.Type)
}

func (s *Server) reply(c *Client, request string, err error) {
	s.logger.Warn("state client action failed", "remote_addr", c.remoteAddr, "request", request, "error", err)
	msg, mErr := encode(TypeError, s.now(), errorData{Request: request, Message: err.Error()})
	if mErr != nil {
		return
	}
	if !c.enqueue(msg) && c.hub != nil {
		c.hub.unregister <- c
	}
}
