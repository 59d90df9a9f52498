// Package ws exposes the mixer over HTTP and websockets: live frames,
// diagnostics, control, sensor input and telemetry.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-arcaluminis/internal/audio"
	"github.com/coreman2200/funtimes-arcaluminis/internal/control"
	diag "github.com/coreman2200/funtimes-arcaluminis/internal/diagnostics"
	"github.com/coreman2200/funtimes-arcaluminis/internal/layout"
	"github.com/coreman2200/funtimes-arcaluminis/internal/mixer"
)

type Server struct {
	mx     *mixer.Mixer
	layout *layout.Layout

	// Driver names the active output, reported in the topology message.
	Driver string
	// OnControl runs after a control event is accepted, e.g. to persist settings.
	OnControl func(control.Event)
	// FrameInterval throttles frame broadcasts. Zero sends every frame.
	FrameInterval time.Duration

	up        websocket.Upgrader
	frames    *hub
	diags     *hub
	telemetry *hub

	frameMu   sync.Mutex
	lastFrame time.Time
	frameID   atomic.Uint64
	startTime time.Time
}

// NewServer serves mx. l may be nil for a headless mixer.
func NewServer(mx *mixer.Mixer, l *layout.Layout) *Server {
	return &Server{
		mx:            mx,
		layout:        l,
		FrameInterval: 50 * time.Millisecond, // ~20 FPS to viewers
		up:            websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		frames:        newHub("frames"),
		diags:         newHub("diag"),
		telemetry:     newHub("telemetry"),
		startTime:     time.Now(),
	}
}

// Routes registers every endpoint on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/sensor", s.HandleSensorWS)
	mux.HandleFunc("/telemetry", s.HandleTelemetryWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/stats", s.HandleStats)
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := s.frames.add(conn)
	c.send <- s.topology()
	go s.frames.readUntilClosed(c)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	go s.diags.readUntilClosed(s.diags.add(conn))
}

func (s *Server) HandleTelemetryWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	go s.telemetry.readUntilClosed(s.telemetry.add(conn))
}

type ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// HandleControlWS applies one control.Event per message and acks each one.
func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		res := ack{OK: true}
		if err := s.control(data); err != nil {
			res = ack{Error: err.Error()}
		}
		b, _ := json.Marshal(res)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func (s *Server) control(data []byte) error {
	ev, err := control.Decode(data)
	if err == nil {
		err = control.ApplyReport(s.mx, ev, func(ev control.Event, err error) {
			s.PushDiag(diag.Rejected("CONTROL.REJECTED", err, data))
		})
	}
	if err != nil {
		log.Warn().Err(err).Msg("control message rejected")
		s.PushDiag(diag.Rejected("CONTROL.INVALID", err, data))
		return err
	}
	if s.OnControl != nil {
		s.OnControl(ev)
	}
	return nil
}

// HandleSensorWS feeds audio features to the mixer. Malformed records are
// dropped and reported on /diag.
func (s *Server) HandleSensorWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.sensor(data)
	}
}

func (s *Server) sensor(data []byte) {
	f, err := audio.ParseFeature(data, time.Now())
	if err == nil {
		err = s.mx.FeatureReceived(f)
	}
	if err != nil {
		log.Debug().Err(err).Msg("sensor message rejected")
		s.PushDiag(diag.Rejected("SENSOR.INVALID", err, data))
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.mx.Stats()
	resp := map[string]any{
		"frame_id": s.frameID.Load(),
		"frames":   st.Frames,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"running":  s.mx.Running(),
		"paused":   st.Paused,
		"dimmer":   st.Dimmer,
		"count":    s.count(),
	}
	if err := s.mx.Err(); err != nil {
		resp["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.mx.Stats())
}

func (s *Server) count() int {
	if s.layout == nil {
		return 0
	}
	return s.layout.Count()
}

func (s *Server) topology() []byte {
	top := map[string]any{"driver": s.Driver}
	if l := s.layout; l != nil {
		top["dim"] = map[string]int{"x": l.Dim.X, "y": l.Dim.Y, "z": l.Dim.Z}
		top["order"] = map[string]bool{"xFlipEveryRow": l.Order.XFlipEveryRow, "yFlipEveryPanel": l.Order.YFlipEveryPanel}
		top["panelGapMM"] = l.PanelGapMM
		top["pitchMM"] = l.PitchMM
	}
	b, _ := json.Marshal(top)
	return b
}

// Write broadcasts a packed RGB frame to /ws viewers. It satisfies led.Driver
// so the server can sit next to hardware drivers in a led.Multi.
func (s *Server) Write(rgb []byte) error {
	id := s.frameID.Add(1)
	if s.frames.len() == 0 {
		return nil
	}
	s.frameMu.Lock()
	now := time.Now()
	if s.FrameInterval > 0 && s.lastFrame.Add(s.FrameInterval).After(now) {
		s.frameMu.Unlock()
		return nil
	}
	s.lastFrame = now
	s.frameMu.Unlock()

	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: now.UnixNano(), FrameID: id, RGB: rgb})
	s.frames.broadcast(b)
	return nil
}

func (s *Server) Close() error { return nil }

// PublishTargets satisfies mixer.Telemetry. It sends one control update per
// axis, addressed "<group>,position_x" and so on.
func (s *Server) PublishTargets(targets []audio.Target) {
	if s.telemetry.len() == 0 {
		return
	}
	type update struct {
		Address string  `json:"address"`
		Value   float64 `json:"value"`
	}
	out := make([]update, 0, len(targets)*3)
	for _, t := range targets {
		out = append(out,
			update{t.Group + ",position_x", t.Position.X},
			update{t.Group + ",position_y", t.Position.Y},
			update{t.Group + ",position_z", t.Position.Z},
		)
	}
	b, _ := json.Marshal(out)
	s.telemetry.broadcast(b)
}

// PushDiag sends d to every /diag client.
func (s *Server) PushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.diags.broadcast(b)
}

var _ mixer.Telemetry = (*Server)(nil)
