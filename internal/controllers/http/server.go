package httpctrl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Agrid-Dev/envelope/internal/envelope"
	"github.com/Agrid-Dev/envelope/internal/export"
	"github.com/Agrid-Dev/envelope/internal/ports"
)

type Config struct {
	Addr     string
	DeviceID string
	// CalculateRate limits stateless calculations per client, in requests per second.
	// Zero disables the limit.
	CalculateRate  float64
	CalculateBurst int
}

type Server struct {
	svc      ports.EstimatorService
	srv      *http.Server
	deviceID string
	log      *zap.Logger
}

// New returns a runnable server.
func New(svc ports.EstimatorService, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	s := &Server{svc: svc, deviceID: cfg.DeviceID, log: logger}

	var calculate http.Handler = http.HandlerFunc(s.handleCalculate)
	if cfg.CalculateRate > 0 {
		burst := cfg.CalculateBurst
		if burst <= 0 {
			burst = 1
		}
		calculate = newClientRateLimiter(rate.Limit(cfg.CalculateRate), burst).Middleware(calculate)
	}

	// Read
	mux.HandleFunc("GET /v1", s.handleGet)
	mux.HandleFunc("GET /v1/presets", s.handleGetPresets)
	mux.HandleFunc("GET /v1/report", s.handleGetReport)

	// Stateless calculation
	mux.Handle("POST /v1/calculate", calculate)

	// Write: one endpoint per variable
	mux.HandleFunc("POST /v1/room", s.handlePostRoom)
	mux.HandleFunc("POST /v1/optimize", s.handlePostOptimize)
	mux.HandleFunc("POST /v1/params/{param}", s.handlePostParam)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("http listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ---- DTOs ----

type calculateRequest struct {
	Room   *export.RoomDTO  `json:"room"`
	Params *json.RawMessage `json:"params"`
}

type presetsDTO struct {
	Walls    []envelope.Preset  `json:"walls"`
	Windows  []envelope.Preset  `json:"windows"`
	Climates []envelope.Climate `json:"climates"`
}

// ---- Handlers ----

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	s.respondSnapshot(w)
}

func (s *Server) handleGetPresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, presetsDTO{
		Walls:    envelope.WallPresets(),
		Windows:  envelope.WindowPresets(),
		Climates: envelope.ClimatePresets(),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := s.svc.Get()

	var buf bytes.Buffer
	if err := export.Write(&buf, f, snap.ID, snap.Room, snap.Params, snap.Result); err != nil {
		s.log.Error("report export failed", zap.String("format", f.String()), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "report generation error")
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	if f == export.FormatPDF || f == export.FormatXLSX || f == export.FormatCSV {
		w.Header().Set("Content-Disposition", `attachment; filename="report`+f.Extension()+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	// body: {"room": {"length": 5, "width": 4, "height": 2.5}, "params": {...}}
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Room == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'room'")
		return
	}
	params := envelope.DefaultParams()
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid params: "+err.Error())
			return
		}
	}

	room := req.Room.Room()
	res, err := s.svc.Evaluate(room, params)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, export.NewDocument("", room, params, res))
}

func (s *Server) handlePostRoom(w http.ResponseWriter, r *http.Request) {
	// body: {"value": {"length": 5, "width": 4, "height": 2.5}}
	postValue(s, w, r, func(v export.RoomDTO) error {
		return s.svc.SetRoom(v.Room())
	})
}

func (s *Server) handlePostOptimize(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, func(v bool) error {
		return s.svc.SetOptimize(v)
	})
}

func (s *Server) handlePostParam(w http.ResponseWriter, r *http.Request) {
	// body: {"value": 0.25}
	name, err := envelope.ParseParam(r.PathValue("param"))
	if err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	postValue(s, w, r, func(v float64) error {
		return s.svc.SetParam(name, v)
	})
}

// ---- generic helpers ----
func (s *Server) respondSnapshot(w http.ResponseWriter) {
	snap := s.svc.Get()
	doc := export.NewDocument(snap.ID, snap.Room, snap.Params, snap.Result)
	writeJSON(w, http.StatusOK, struct {
		DeviceID string `json:"device_id"`
		export.Document
	}{DeviceID: s.deviceID, Document: doc})
}

func postValue[T any](s *Server, w http.ResponseWriter, r *http.Request, apply func(T) error) {
	dec := json.NewDecoder(r.Body)
	var req struct {
		Value *T `json:"value"`
	}
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Value == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'value'")
		return
	}

	if err := apply(*req.Value); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondSnapshot(w)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
