package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/bootstrap"
	"github.com/muurk/blegw/internal/cfgjson"
	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
	"github.com/muurk/blegw/internal/version"
)

// Status is the body of GET /status and of websocket status messages.
type Status struct {
	Version             string `json:"version"`
	Hostname            string `json:"hostname"`
	Mode                string `json:"mode"`
	EthLink             bool   `json:"eth_link"`
	APClients           int    `json:"ap_clients"`
	HotspotCountdown    bool   `json:"hotspot_countdown"`
	FirstBootAfterErase bool   `json:"first_boot_after_erase"`
	Disconnects         uint64 `json:"disconnects"`
	ConfigEmpty         bool   `json:"config_empty"`
	StorageReady        bool   `json:"storage_ready"`
}

// CheckResult is the body of POST /api/check-mqtt.
type CheckResult struct {
	Status     string `json:"status"`
	Broker     string `json:"broker"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) status(st bootstrap.State) Status {
	out := Status{
		Version:             version.Version,
		Mode:                st.Mode.String(),
		EthLink:             st.EthLink,
		APClients:           st.APClients,
		HotspotCountdown:    st.Countdown,
		FirstBootAfterErase: st.FirstBootAfterErase,
		Disconnects:         st.Disconnects,
		ConfigEmpty:         s.store.IsEmpty(),
		StorageReady:        s.storageStatus().Ready,
	}
	if cfg, err := s.store.Get(); err == nil {
		out.Hostname = cfg.Device.Hostname
	}
	return out
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Get()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	doc, err := cfgjson.EncodeForUI(cfg, s.storageStatus())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeRaw(w, http.StatusOK, doc)
}

// handlePostConfig decodes a posted document over the running configuration.
// Secrets absent from the document keep their current values.
func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	next, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	if err := gwcfg.ValidateAll(next); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.Update(next); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	cfg, err := s.store.Get()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	doc, err := cfgjson.EncodeForUI(cfg, s.storageStatus())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeRaw(w, http.StatusOK, doc)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status(s.networkState()))
}

// handleCheckMQTT checks the broker described by the posted document, which
// is decoded over the running configuration without being applied. An empty
// body checks the stored settings.
func (s *Server) handleCheckMQTT(w http.ResponseWriter, r *http.Request) {
	next, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	res := s.checkMQTT(r.Context(), next.MQTT)
	writeJSON(w, http.StatusOK, CheckResult{
		Status:     res.Status.String(),
		Broker:     res.Broker,
		Message:    res.Message,
		DurationMS: res.Duration.Milliseconds(),
	})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (*gwcfg.Config, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return nil, false
	}

	prev, err := s.store.Get()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return nil, false
	}
	if len(body) == 0 {
		return prev, true
	}

	next, err := cfgjson.Decode(prev, body)
	if err != nil {
		status := http.StatusBadRequest
		if gwcfg.IsAllocError(err) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err)
		return nil, false
	}
	return next, true
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error("Failed to marshal message", zap.Error(err))
		return nil
	}
	return data
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
