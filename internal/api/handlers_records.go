// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/models"
	"github.com/tomtom215/meridian/internal/validation"
)

// IngestRequest is the body of POST /api/v1/records/{kind}. Records holds an
// array of the record type named by kind.
type IngestRequest struct {
	Records json.RawMessage `json:"records"`
}

// parseRecordKind resolves the {kind} path parameter. "funnels" is accepted
// as an alias of "funnel".
func parseRecordKind(s string) (models.RecordKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "funnels" {
		return models.KindFunnel, true
	}
	for _, kind := range models.AllRecordKinds {
		if string(kind) == s {
			return kind, true
		}
	}
	return "", false
}

// decodeRecordSet unmarshals raw into the slice of rs selected by kind and
// returns the number of records decoded.
func decodeRecordSet(kind models.RecordKind, raw json.RawMessage) (models.RecordSet, int, error) {
	var rs models.RecordSet
	var err error
	switch kind {
	case models.KindRevenue:
		err = json.Unmarshal(raw, &rs.Revenue)
	case models.KindAcquisition:
		err = json.Unmarshal(raw, &rs.Acquisition)
	case models.KindEngagement:
		err = json.Unmarshal(raw, &rs.Engagement)
	case models.KindRetention:
		err = json.Unmarshal(raw, &rs.Retention)
	case models.KindFunnel:
		err = json.Unmarshal(raw, &rs.Funnels)
	default:
		err = fmt.Errorf("unknown record kind %q", kind)
	}
	if err != nil {
		return models.RecordSet{}, 0, err
	}
	return rs, countRecords(rs), nil
}

// countRecords counts records with each funnel counted once.
func countRecords(rs models.RecordSet) int {
	return len(rs.Revenue) + len(rs.Acquisition) + len(rs.Engagement) + len(rs.Retention) + len(rs.Funnels)
}

// IngestRecords validates and stores a batch of records of one kind.
//
// Malformed records are skipped and counted; the batch is rejected only when
// none of its records is valid. Funnels replace any stored funnel of the
// same name. The series cache is purged after every successful ingest.
func (h *Handler) IngestRecords(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	kind, ok := parseRecordKind(chi.URLParam(r, "kind"))
	if !ok {
		rw.NotFound("Unknown record kind: " + sanitizeLogValue(chi.URLParam(r, "kind")))
		return
	}

	if h.records == nil {
		rw.ServiceUnavailable("Record store is not available")
		return
	}

	var req IngestRequest
	if !decodeJSON(rw, r, &req) {
		return
	}
	if len(req.Records) == 0 || string(req.Records) == "null" {
		rw.BadRequest("records is required")
		return
	}

	rs, n, err := decodeRecordSet(kind, req.Records)
	if err != nil {
		rw.BadRequest(fmt.Sprintf("records must be an array of %s records", kind))
		return
	}
	if n == 0 {
		rw.BadRequest("records must not be empty")
		return
	}
	if n > maxIngestBatch {
		rw.BadRequest(fmt.Sprintf("at most %d records per request", maxIngestBatch))
		return
	}

	clean, skipped := validation.SanitizeRecords(rs)
	accepted := countRecords(clean)
	if accepted == 0 {
		rw.ValidationError("No valid records in request", skipReasons(skipped))
		return
	}

	inserted, err := h.records.InsertRecordSet(r.Context(), &clean)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	h.ClearCache()

	reasons := make(map[string]int)
	for _, e := range skipped.Entries() {
		reasons[e.Reason] += e.Count
	}

	logging.Ctx(r.Context()).Info().
		Str("kind", string(kind)).
		Int("accepted", accepted).
		Int("skipped", skipped.Total()).
		Msg("Records ingested")

	rw.Created(IngestResponse{
		Kind:     string(kind),
		Accepted: accepted,
		Skipped:  skipped.Total(),
		Inserted: inserted,
		Reasons:  reasons,
	})
}
