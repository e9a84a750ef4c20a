package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/podium/internal/adapters/table"
	"github.com/okian/podium/internal/domain/podium"
)

const contentTypeCSV = "text/csv; charset=utf-8"

// FeaturesHandler turns an uploaded results table into a feature table.
type FeaturesHandler struct {
	runner FeatureRunner
}

// NewFeaturesHandler creates a new features handler.
func NewFeaturesHandler(runner FeatureRunner) *FeaturesHandler {
	return &FeaturesHandler{runner: runner}
}

// HandleFeatures handles POST /features. The body is a results CSV and the
// response is the feature CSV in input row order.
func (h *FeaturesHandler) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	res, err := table.ReadResults(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}

	records, err := h.runner.Features(r.Context(), res.Rows, res.Raw)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}

	var buf bytes.Buffer
	if err := table.WriteFeatures(&buf, records, res.ExtraColumns); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	w.Header().Set("Content-Type", contentTypeCSV)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// SelectHandler picks the predicted podium from scored rows.
type SelectHandler struct {
	policy podium.Policy
}

// NewSelectHandler creates a new select handler.
func NewSelectHandler(policy podium.Policy) *SelectHandler {
	return &SelectHandler{policy: policy}
}

// HandleSelect handles POST /select. The body is a predictions CSV; the
// optional threshold and size query parameters override the policy.
func (h *SelectHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	policy, err := h.policyFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err)
		return
	}

	entries, err := table.ReadPredictions(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	picked, err := podium.Select(entries, policy)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}

	var buf bytes.Buffer
	if err := table.WriteSelection(&buf, picked); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	w.Header().Set("Content-Type", contentTypeCSV)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *SelectHandler) policyFor(r *http.Request) (podium.Policy, error) {
	p := h.policy
	q := r.URL.Query()
	if v := q.Get("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || t < 0 || t > 1 {
			return p, fmt.Errorf("%w: threshold %q", ErrBadRequest, v)
		}
		p.Threshold = t
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: size %q", ErrBadRequest, v)
		}
		p.Size = n
	}
	return p, nil
}
