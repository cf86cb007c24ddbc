// Package control serves a JSON HTTP API over a running sequencer. Every
// write is queued as a runner command; reads return the last status.
package control

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"

	"go-rho/debug"
	"go-rho/sequencer"
)

// DefaultVelocity is used when a note-on gives none
const DefaultVelocity = 100

// Runner is the part of sequencer.Runner the API needs
type Runner interface {
	Send(cmd sequencer.Command) error
	Status() *sequencer.Status
}

type Server struct {
	runner  Runner
	router  *mux.Router
	handler http.Handler
}

// NewServer builds the routes. allowedOrigins feeds CORS; empty allows any.
func NewServer(runner Runner, allowedOrigins []string) *Server {
	s := &Server{runner: runner}

	router := mux.NewRouter().StrictSlash(true)
	router.Use(logRequests)
	router.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	router.HandleFunc("/notes/{note:[0-9]+}/on", s.handleNoteOn).Methods(http.MethodPost)
	router.HandleFunc("/notes/{note:[0-9]+}/off", s.handleNoteOff).Methods(http.MethodPost)
	router.HandleFunc("/rows/{row:[0-9]+}/active", s.handleRowActive).Methods(http.MethodPut)
	router.HandleFunc("/rows/{row:[0-9]+}/steps/{step:[0-9]+}", s.handleStep).Methods(http.MethodPut)
	router.HandleFunc("/rows/{row:[0-9]+}/length", s.handleRowLength).Methods(http.MethodPut)
	router.HandleFunc("/density", s.handleDensity).Methods(http.MethodPut)
	router.HandleFunc("/regenerate", s.handleRegenerate).Methods(http.MethodPost)
	router.HandleFunc("/randomize", s.handleRandomize).Methods(http.MethodPost)
	router.HandleFunc("/hold", s.handleHold).Methods(http.MethodPut)
	router.HandleFunc("/ordering", s.handleOrdering).Methods(http.MethodPut)
	router.HandleFunc("/wrapping", s.handleWrapping).Methods(http.MethodPut)
	router.HandleFunc("/clock", s.handleClock).Methods(http.MethodPut)
	s.router = router

	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	}
	if len(allowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s.handler = cors.New(opts).Handler(router)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		debug.Log("http", "listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		debug.Log("http", "%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.Status())
}

func (s *Server) handleNoteOn(w http.ResponseWriter, r *http.Request) {
	note, err := noteVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	velocity := DefaultVelocity
	if v := r.URL.Query().Get("velocity"); v != "" {
		velocity, err = strconv.Atoi(v)
		if err != nil || velocity < 1 || velocity > 127 {
			writeError(w, http.StatusBadRequest, errors.Errorf("velocity %q out of range 1-127", v))
			return
		}
	}
	s.send(w, sequencer.NoteOnCmd{Note: note, Velocity: velocity})
}

func (s *Server) handleNoteOff(w http.ResponseWriter, r *http.Request) {
	note, err := noteVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.send(w, sequencer.NoteOffCmd{Note: note})
}

func (s *Server) handleRowActive(w http.ResponseWriter, r *http.Request) {
	row, err := rowVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Active *bool `json:"active"`
	}
	if err := decode(r, &body); err != nil || body.Active == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"active": bool}`))
		return
	}
	s.send(w, sequencer.RowActiveCmd{Row: row, Active: *body.Active})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	row, err := rowVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	step, _ := strconv.Atoi(mux.Vars(r)["step"])
	if st := s.runner.Status(); st != nil && step >= len(st.Rows[row].Steps) {
		writeError(w, http.StatusBadRequest, errors.Wrapf(sequencer.ErrInvalidStep, "row %d has %d steps", row, len(st.Rows[row].Steps)))
		return
	}
	var body struct {
		On *bool `json:"on"`
	}
	if err := decode(r, &body); err != nil || body.On == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"on": bool}`))
		return
	}
	s.send(w, sequencer.SetStepCmd{Row: row, Step: step, On: *body.On})
}

func (s *Server) handleRowLength(w http.ResponseWriter, r *http.Request) {
	row, err := rowVar(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Length int `json:"length"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Length < sequencer.MinRowLength || body.Length > sequencer.MaxRowLength {
		writeError(w, http.StatusBadRequest, errors.Wrapf(sequencer.ErrInvalidLength,
			"length %d not in %d-%d", body.Length, sequencer.MinRowLength, sequencer.MaxRowLength))
		return
	}
	s.send(w, sequencer.RowLengthCmd{Row: row, Length: body.Length})
}

func (s *Server) handleDensity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Density *float64 `json:"density"`
	}
	if err := decode(r, &body); err != nil || body.Density == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"density": 0-1}`))
		return
	}
	if *body.Density < 0 || *body.Density > 1 {
		writeError(w, http.StatusBadRequest, errors.Errorf("density %v out of range 0-1", *body.Density))
		return
	}
	s.send(w, sequencer.DensityCmd{Density: *body.Density})
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	s.send(w, sequencer.RegenerateCmd{})
}

func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	s.send(w, sequencer.RandomizeCmd{})
}

func (s *Server) handleHold(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decode(r, &body); err != nil || body.Enabled == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"enabled": bool}`))
		return
	}
	s.send(w, sequencer.HoldCmd{Enabled: *body.Enabled})
}

type modeBody struct {
	Mode string `json:"mode"`
}

func (s *Server) handleOrdering(w http.ResponseWriter, r *http.Request) {
	var body modeBody
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	o, err := sequencer.ParseOrdering(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.send(w, sequencer.OrderingCmd{Ordering: o})
}

func (s *Server) handleWrapping(w http.ResponseWriter, r *http.Request) {
	var body modeBody
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	wr, err := sequencer.ParseWrapping(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.send(w, sequencer.WrappingCmd{Wrapping: wr})
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rate *float64 `json:"rate"`
		Duty *float64 `json:"duty"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Rate == nil && body.Duty == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body needs "rate" and/or "duty"`))
		return
	}
	if body.Rate != nil && *body.Rate < 0 {
		writeError(w, http.StatusBadRequest, errors.Errorf("rate %v is negative", *body.Rate))
		return
	}
	if st := s.runner.Status(); body.Rate != nil && st != nil && st.SampleRate > 0 && *body.Rate >= st.SampleRate {
		writeError(w, http.StatusBadRequest, errors.Errorf("rate %v must stay below the %v Hz wake rate", *body.Rate, st.SampleRate))
		return
	}
	if body.Duty != nil && (*body.Duty < 0 || *body.Duty > 1) {
		writeError(w, http.StatusBadRequest, errors.Errorf("duty %v out of range 0-1", *body.Duty))
		return
	}

	var cmds []sequencer.Command
	if body.Rate != nil {
		cmds = append(cmds, sequencer.ClockRateCmd{Rate: *body.Rate})
	}
	if body.Duty != nil {
		cmds = append(cmds, sequencer.DutyCycleCmd{Duty: *body.Duty})
	}
	s.send(w, cmds...)
}

// send queues cmds and answers 202, or 503 once the queue is full
func (s *Server) send(w http.ResponseWriter, cmds ...sequencer.Command) {
	for _, cmd := range cmds {
		if err := s.runner.Send(cmd); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, sequencer.ErrQueueFull) {
				status = http.StatusServiceUnavailable
			}
			writeError(w, status, err)
			return
		}
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func noteVar(r *http.Request) (int, error) {
	note, err := strconv.Atoi(mux.Vars(r)["note"])
	if err != nil || note > 127 {
		return 0, errors.Errorf("note %q out of range 0-127", mux.Vars(r)["note"])
	}
	return note, nil
}

func rowVar(r *http.Request) (int, error) {
	row, err := strconv.Atoi(mux.Vars(r)["row"])
	if err != nil || row >= sequencer.NumRows {
		return 0, errors.Wrapf(sequencer.ErrInvalidRow, "row %q", mux.Vars(r)["row"])
	}
	return row, nil
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return errors.Wrap(dec.Decode(v), "decode body")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Log("http", "encode: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
