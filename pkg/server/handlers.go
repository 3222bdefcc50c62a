package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/RaphScript0/flint"
)

// Validation bounds for the bulk ingest and search endpoints.
const (
	maxBatchSize = 1000
	maxIDBytes   = 256
	maxTextBytes = 200000
	minTopK      = 1
	maxTopK      = 100
	defaultTopK  = 10
)

// ═══════════════════════════════════════════════════════════════════════════════
// REQUEST / RESPONSE SHAPES
// ═══════════════════════════════════════════════════════════════════════════════

type documentPayload struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type ingestOptions struct {
	OnDuplicate string `json:"onDuplicate"`
}

type documentsRequest struct {
	Documents []documentPayload `json:"documents"`
	Options   *ingestOptions    `json:"options,omitempty"`
}

type ingestFailure struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type documentsResponse struct {
	Ingested int             `json:"ingested"`
	Failed   int             `json:"failed"`
	Failures []ingestFailure `json:"failures"`
}

type searchRequest struct {
	Query string       `json:"query"`
	TopK  *int         `json:"topK,omitempty"`
	Mode  string       `json:"mode,omitempty"`
	Page  *pageRequest `json:"page,omitempty"`
}

type pageRequest struct {
	Cursor string `json:"cursor"`
}

type searchResultItem struct {
	ID         string         `json:"id"`
	Score      float64        `json:"score"`
	Highlights []string       `json:"highlights"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type pageResponse struct {
	NextCursor *string `json:"nextCursor"`
}

type searchResponse struct {
	Results []searchResultItem `json:"results"`
	Page    pageResponse       `json:"page"`
	TookMs  int64              `json:"tookMs"`
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Documents     int    `json:"documents"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// CURSOR ENVELOPE
// ═══════════════════════════════════════════════════════════════════════════════
// The engine's cursor is a raw docID token; on the wire it travels as
// base64(JSON {"token": ...}). A cursor that fails to decode is treated as
// absent: pagination resets instead of erroring, matching the engine's own
// invalid-cursor behavior.

type cursorEnvelope struct {
	Token string `json:"token"`
}

func encodeCursor(token string) string {
	data, _ := json.Marshal(cursorEnvelope{Token: token})
	return base64.StdEncoding.EncodeToString(data)
}

func decodeCursor(wire string) string {
	if wire == "" {
		return ""
	}
	data, err := base64.StdEncoding.DecodeString(wire)
	if err != nil {
		return ""
	}
	var envelope cursorEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	return envelope.Token
}

// ═══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ═══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	docs := s.engine.Stats().DocCount
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Documents:     docs,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.MetricsEnabled {
		writeProblem(w, r, http.StatusNotFound, CodeNotFound, "metrics are disabled")
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	s.collector.WriteMetrics(w)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	var req documentsRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if len(req.Documents) < 1 || len(req.Documents) > maxBatchSize {
		writeProblem(w, r, http.StatusUnprocessableEntity, CodeUnprocessableEntity,
			fmt.Sprintf("documents must contain between 1 and %d entries", maxBatchSize))
		return
	}

	onDuplicate := "replace"
	if req.Options != nil && req.Options.OnDuplicate != "" {
		onDuplicate = req.Options.OnDuplicate
	}
	if onDuplicate != "replace" && onDuplicate != "skip" {
		writeProblem(w, r, http.StatusUnprocessableEntity, CodeUnprocessableEntity,
			fmt.Sprintf("onDuplicate must be \"replace\" or \"skip\", got %q", onDuplicate))
		return
	}

	resp := documentsResponse{Failures: []ingestFailure{}}

	s.mu.Lock()
	for i, payload := range req.Documents {
		if msg := validateDocument(payload); msg != "" {
			resp.Failed++
			resp.Failures = append(resp.Failures, ingestFailure{
				Index:   i,
				ID:      payload.ID,
				Code:    CodeInvalidArgument,
				Message: msg,
			})
			continue
		}

		// "skip" short-circuits at the engine boundary: existing
		// documents are left untouched but still count as ingested.
		if onDuplicate == "skip" && s.engine.Has(payload.ID) {
			resp.Ingested++
			continue
		}

		s.engine.UpsertDocuments([]flint.DocumentInput{{
			ID:       payload.ID,
			Text:     payload.Text,
			Metadata: payload.Metadata,
		}})
		resp.Ingested++
	}
	s.mu.Unlock()

	s.collector.RecordIngest(resp.Ingested, resp.Failed)

	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

func validateDocument(payload documentPayload) string {
	if len(payload.ID) < 1 || len(payload.ID) > maxIDBytes {
		return fmt.Sprintf("id must be between 1 and %d bytes", maxIDBytes)
	}
	if len(payload.Text) < 1 || len(payload.Text) > maxTextBytes {
		return fmt.Sprintf("text must be between 1 and %d bytes", maxTextBytes)
	}
	return ""
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	topK := defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < minTopK || topK > maxTopK {
		writeProblem(w, r, http.StatusUnprocessableEntity, CodeUnprocessableEntity,
			fmt.Sprintf("topK must be between %d and %d", minTopK, maxTopK))
		return
	}

	var enablePrefix bool
	switch req.Mode {
	case "", "fulltext":
		enablePrefix = false
	case "prefix":
		enablePrefix = true
	default:
		writeProblem(w, r, http.StatusUnprocessableEntity, CodeUnprocessableEntity,
			fmt.Sprintf("mode must be \"fulltext\" or \"prefix\", got %q", req.Mode))
		return
	}

	cursor := ""
	if req.Page != nil {
		cursor = decodeCursor(req.Page.Cursor)
	}

	started := time.Now()
	s.mu.RLock()
	result := s.engine.Search(req.Query, flint.SearchOptions{
		Limit:        topK,
		Cursor:       cursor,
		EnablePrefix: enablePrefix,
		PrefixLimit:  flint.DefaultPrefixLimit,
	})
	s.mu.RUnlock()
	took := time.Since(started)

	s.collector.RecordSearch(took)

	resp := searchResponse{
		Results: make([]searchResultItem, 0, len(result.Hits)),
		TookMs:  took.Milliseconds(),
	}
	for _, hit := range result.Hits {
		item := searchResultItem{
			ID:         hit.DocID,
			Score:      hit.Score,
			Highlights: []string{},
		}
		s.mu.RLock()
		if stored, ok := s.engine.Document(hit.DocID); ok {
			item.Metadata = stored.Metadata
		}
		s.mu.RUnlock()
		resp.Results = append(resp.Results, item)
	}
	if result.NextCursor != "" {
		wire := encodeCursor(result.NextCursor)
		resp.Page.NextCursor = &wire
	}

	writeJSON(w, http.StatusOK, resp)
}

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED HELPERS
// ═══════════════════════════════════════════════════════════════════════════════

// decodeJSONBody enforces the JSON media type and decodes the body,
// writing the appropriate problem on failure.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	contentType := r.Header.Get("Content-Type")
	mediaType := ""
	if contentType != "" {
		mediaType, _, _ = mime.ParseMediaType(contentType)
	}
	if mediaType != "application/json" {
		writeProblem(w, r, http.StatusUnsupportedMediaType, CodeUnsupportedMediaType,
			"request body must be application/json")
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, r, http.StatusBadRequest, CodeInvalidArgument,
			fmt.Sprintf("malformed request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
