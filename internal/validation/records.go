// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package validation

import (
	"sort"

	"github.com/tomtom215/meridian/internal/models"
)

// SkipReport counts records rejected at the boundary, by kind and by the
// validation rule that rejected them.
type SkipReport struct {
	counts map[models.RecordKind]map[string]int
}

// NewSkipReport returns an empty report.
func NewSkipReport() *SkipReport {
	return &SkipReport{counts: make(map[models.RecordKind]map[string]int)}
}

// Add records one rejected record.
func (r *SkipReport) Add(kind models.RecordKind, reason string) {
	byReason, ok := r.counts[kind]
	if !ok {
		byReason = make(map[string]int)
		r.counts[kind] = byReason
	}
	byReason[reason]++
}

// Total returns the number of rejected records across all kinds.
func (r *SkipReport) Total() int {
	total := 0
	for _, byReason := range r.counts {
		for _, n := range byReason {
			total += n
		}
	}
	return total
}

// ByKind returns rejected record counts keyed by record kind, the form the
// dashboard's data-quality report uses.
func (r *SkipReport) ByKind() map[string]int {
	out := make(map[string]int, len(r.counts))
	for kind, byReason := range r.counts {
		for _, n := range byReason {
			out[string(kind)] += n
		}
	}
	return out
}

// SkipCount is one (kind, reason) bucket of a SkipReport.
type SkipCount struct {
	Kind   models.RecordKind
	Reason string
	Count  int
}

// Entries returns every (kind, reason) bucket sorted by kind then reason.
func (r *SkipReport) Entries() []SkipCount {
	entries := make([]SkipCount, 0)
	for kind, byReason := range r.counts {
		for reason, n := range byReason {
			entries = append(entries, SkipCount{Kind: kind, Reason: reason, Count: n})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		return entries[i].Reason < entries[j].Reason
	})
	return entries
}

// SanitizeRecords validates every record of rs and returns a new set holding
// only the valid ones. Malformed records are never fatal: each one is left out
// and counted in the returned report.
//
// A funnel is kept or dropped as a whole, since removing one stage would change
// the meaning of the stages after it. A dropped funnel counts once.
func SanitizeRecords(rs models.RecordSet) (models.RecordSet, *SkipReport) {
	report := NewSkipReport()
	out := models.RecordSet{
		Revenue:     filterValid(rs.Revenue, models.KindRevenue, report),
		Acquisition: filterValid(rs.Acquisition, models.KindAcquisition, report),
		Engagement:  filterValid(rs.Engagement, models.KindEngagement, report),
		Retention:   filterValid(rs.Retention, models.KindRetention, report),
		Funnels:     filterValid(rs.Funnels, models.KindFunnel, report),
	}
	return out, report
}

// filterValid returns the records of in that pass struct validation.
func filterValid[T any](in []T, kind models.RecordKind, report *SkipReport) []T {
	out := make([]T, 0, len(in))
	for i := range in {
		if err := ValidateStruct(&in[i]); err != nil {
			report.Add(kind, err.Reason())
			continue
		}
		out = append(out, in[i])
	}
	return out
}
