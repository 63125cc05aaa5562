// Package handler provides HTTP request handlers for the engine API.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	apierrors "github.com/signalworks/flux-matrix/internal/errors"
	"github.com/signalworks/flux-matrix/internal/model"
	"github.com/signalworks/flux-matrix/internal/service"
	"github.com/signalworks/flux-matrix/internal/validation"
	"go.uber.org/zap"
)

// MatrixHandler exposes the engine's operations over JSON/HTTP.
type MatrixHandler struct {
	matrix    *service.MatrixService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewMatrixHandler creates a new handler.
func NewMatrixHandler(matrixSvc *service.MatrixService, logger *zap.Logger) *MatrixHandler {
	return &MatrixHandler{
		matrix:    matrixSvc,
		validator: validation.NewValidator(matrixSvc.PositionSpace()),
		logger:    logger,
	}
}

// insertRequest is the body of POST /v1/records.
type insertRequest struct {
	Position   int                `json:"position"`
	Subject    string             `json:"subject"`
	Payload    []byte             `json:"payload,omitempty"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

type insertResponse struct {
	Version uint64 `json:"version"`
}

// recordResponse is the JSON form of a VersionedRecord.
type recordResponse struct {
	Subject    string             `json:"subject"`
	Payload    []byte             `json:"payload,omitempty"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
	Version    uint64             `json:"version"`
	Timestamp  time.Time          `json:"timestamp"`
}

func toRecordResponse(rec *model.VersionedRecord) recordResponse {
	return recordResponse{
		Subject:    rec.Record.Subject,
		Payload:    rec.Record.Payload,
		Attributes: rec.Record.Attributes,
		Version:    rec.Version,
		Timestamp:  rec.Timestamp,
	}
}

// Insert handles POST /v1/records.
func (h *MatrixHandler) Insert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apierrors.InvalidArgument("malformed request body", err))
		return
	}

	if err := h.validator.ValidateInsert(req.Position, req.Subject, req.Payload, req.Attributes); err != nil {
		h.writeError(w, r, err)
		return
	}

	version := h.matrix.Insert(req.Position, &model.Record{
		Subject:    req.Subject,
		Payload:    req.Payload,
		Attributes: req.Attributes,
	})

	h.writeJSON(w, http.StatusCreated, insertResponse{Version: version})
}

// Get handles GET /v1/records/{position}.
func (h *MatrixHandler) Get(w http.ResponseWriter, r *http.Request) {
	position, err := h.pathInt(r, "position")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.ValidatePosition(position); err != nil {
		h.writeError(w, r, err)
		return
	}

	rec := h.matrix.Get(position)
	if rec == nil {
		h.writeError(w, r, apierrors.PositionNotFound(position))
		return
	}

	h.writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// Query handles GET /v1/query?attribute=...&min=...&max=...
func (h *MatrixHandler) Query(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("attribute")
	min, errMin := strconv.ParseFloat(r.URL.Query().Get("min"), 64)
	max, errMax := strconv.ParseFloat(r.URL.Query().Get("max"), 64)
	if errMin != nil || errMax != nil {
		h.writeError(w, r, apierrors.InvalidArgument("min and max must be numbers", nil))
		return
	}
	if err := h.validator.ValidateRange(name, min, max); err != nil {
		h.writeError(w, r, err)
		return
	}

	records := h.matrix.QueryByAttribute(name, min, max)
	results := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		results = append(results, toRecordResponse(rec))
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// anchorRequest is the body of POST /v1/anchors.
type anchorRequest struct {
	Position          int     `json:"position"`
	OrbitalRadius     float64 `json:"orbital_radius"`
	JudgmentThreshold float64 `json:"judgment_threshold"`
}

// RegisterAnchor handles POST /v1/anchors.
func (h *MatrixHandler) RegisterAnchor(w http.ResponseWriter, r *http.Request) {
	var req anchorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apierrors.InvalidArgument("malformed request body", err))
		return
	}
	if err := h.validator.ValidateAnchor(req.Position, req.OrbitalRadius, req.JudgmentThreshold); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.matrix.RegisterAnchor(req.Position, req.OrbitalRadius, req.JudgmentThreshold)
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"position": req.Position})
}

// judgeRequest is the body of POST /v1/judge.
type judgeRequest struct {
	Position int     `json:"position"`
	Entropy  float64 `json:"entropy"`
}

// Judge handles POST /v1/judge.
func (h *MatrixHandler) Judge(w http.ResponseWriter, r *http.Request) {
	var req judgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apierrors.InvalidArgument("malformed request body", err))
		return
	}
	if err := h.validator.ValidateEntropy(req.Entropy); err != nil {
		h.writeError(w, r, err)
		return
	}

	judgment := h.matrix.Judge(req.Position, req.Entropy)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"position": req.Position,
		"entropy":  req.Entropy,
		"judgment": judgment.String(),
	})
}

// CreateSnapshot handles POST /v1/snapshots.
func (h *MatrixHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	version := h.matrix.Snapshot()
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"version": version})
}

// ListSnapshots handles GET /v1/snapshots.
func (h *MatrixHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	versions := h.matrix.SnapshotVersions()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"versions": versions,
		"count":    len(versions),
	})
}

// GetFromSnapshot handles GET /v1/snapshots/{version}/records/{position}.
func (h *MatrixHandler) GetFromSnapshot(w http.ResponseWriter, r *http.Request) {
	versionStr := mux.Vars(r)["version"]
	version, err := strconv.ParseUint(versionStr, 10, 64)
	if err != nil {
		h.writeError(w, r, apierrors.InvalidArgument("version must be an unsigned integer", err))
		return
	}
	position, perr := h.pathInt(r, "position")
	if perr != nil {
		h.writeError(w, r, perr)
		return
	}

	rec := h.matrix.GetFromSnapshot(version, position)
	if rec == nil {
		h.writeError(w, r, apierrors.SnapshotNotFound(version))
		return
	}

	h.writeJSON(w, http.StatusOK, toRecordResponse(rec))
}

// gcRequest is the body of POST /v1/snapshots/gc.
type gcRequest struct {
	KeepLatest int `json:"keep_latest"`
}

// GCSnapshots handles POST /v1/snapshots/gc.
func (h *MatrixHandler) GCSnapshots(w http.ResponseWriter, r *http.Request) {
	var req gcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apierrors.InvalidArgument("malformed request body", err))
		return
	}

	dropped := h.matrix.GCSnapshots(req.KeepLatest)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"dropped":  dropped,
		"retained": len(h.matrix.SnapshotVersions()),
	})
}

// Stats handles GET /v1/stats.
func (h *MatrixHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.matrix.Stats()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"subject":          stats.Subject,
		"total_nodes":      stats.TotalNodes,
		"anchor_positions": stats.AnchorPositions,
		"current_version":  stats.CurrentVersion,
		"snapshot_count":   stats.SnapshotCount,
		"log_length":       stats.LogLength,
	})
}

func (h *MatrixHandler) pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, apierrors.InvalidArgument(name+" must be an integer", err)
	}
	return v, nil
}

func (h *MatrixHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *MatrixHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := apierrors.ErrCodeInternal
	if ee, ok := err.(*apierrors.EngineError); ok {
		status = ee.HTTPStatus()
		code = ee.Code
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Error(err))
	}

	h.writeJSON(w, status, map[string]interface{}{
		"status":     "error",
		"error_code": int(code),
		"message":    err.Error(),
		"request_id": r.Header.Get("X-Request-ID"),
	})
}
