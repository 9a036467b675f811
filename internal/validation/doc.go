// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

// Package validation checks records and API requests at the boundary where
// external data enters Meridian.
//
// It wraps go-playground/validator v10 with a thread-safe singleton that
// reports fields by their JSON names and registers the record validators:
//
//   - calendardate: a date in any layout the analytics bucketer accepts
//   - cohortmonth: a YYYY-MM signup month
//   - finite: a float that is neither NaN nor infinite
//
// SanitizeRecords applies these rules to a whole models.RecordSet. Invalid
// records are dropped and counted in a SkipReport rather than failing the
// load, so a single malformed row never blanks the dashboard.
//
// # Request Validation
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
