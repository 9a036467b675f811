// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/meridian/internal/validation"
)

var errEmptyBody = errors.New("request body is empty")

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeJSON decodes the request body into v and writes a 400 or 413 on failure.
// It reports whether decoding succeeded.
func decodeJSON(rw *ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		rw.PayloadTooLarge(maxErr.Limit)
	case errors.Is(err, io.EOF):
		rw.BadRequest(errEmptyBody.Error())
	default:
		rw.BadRequest("Invalid JSON body")
	}
	return false
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	out := &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
	}
	if len(apiErr.Details) > 0 {
		out.Details = apiErr.Details
	}
	return out
}

// decodeAndValidate decodes and validates a request body, writing the error
// response itself. It reports whether the handler may proceed.
func decodeAndValidate(rw *ResponseWriter, r *http.Request, v interface{}) bool {
	if !decodeJSON(rw, r, v) {
		return false
	}
	if apiErr := validateRequest(v); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// getIntParam extracts an integer query parameter with a default value.
// The second return is false when the parameter is present but not an integer.
func getIntParam(r *http.Request, key string, defaultValue int) (int, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, true
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, false
	}
	return intValue, true
}
