package web

import (
	"net/http"
	"strings"

	"csvserve/internal/dataset"
)

// handleRecords serves the published dataset as a JSON array of records.
//
// Before publication it answers 503 with code NOT_READY; after a failed
// load, 503 with the failure category. A published dataset never changes,
// so the response carries the load ID as a strong ETag and honors
// If-None-Match with 304.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Read()

	switch snap.State {
	case dataset.StateLoaded:
		etag := `"` + snap.Data.LoadID() + `"`
		w.Header().Set("ETag", etag)
		if etagMatch(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		writeJSON(w, snap.Data)

	case dataset.StateFailed:
		code, message := loadFailure(snap.Err)
		respondError(w, r, http.StatusServiceUnavailable, code, message, snap.Err)

	default:
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", "dataset is still loading")
	}
}

// etagMatch reports whether any entry of an If-None-Match header matches
// the given strong ETag. A bare * matches any representation.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "W/")
		if part == "*" || part == etag {
			return true
		}
	}
	return false
}

// healthResponse is the /healthz body. Records is a pointer so a loaded
// header-only dataset still reports an explicit zero instead of omitting
// the count.
type healthResponse struct {
	Status  string `json:"status"`
	Dataset string `json:"dataset"`
	Records *int   `json:"records,omitempty"`
	LoadID  string `json:"load_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleHealth reports liveness plus the dataset readiness state. The
// process stays healthy across a failed load; orchestrators that gate on
// data readiness can inspect the dataset field instead.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Read()

	resp := healthResponse{
		Status:  "ok",
		Dataset: snap.State.String(),
	}
	switch snap.State {
	case dataset.StateLoaded:
		n := snap.Data.Len()
		resp.Records = &n
		resp.LoadID = snap.Data.LoadID()
	case dataset.StateFailed:
		_, message := loadFailure(snap.Err)
		resp.Error = message
	}

	writeJSON(w, resp)
}
