// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"monthledger/internal/services"
)

// paymentFieldPrefix names the per-month payment inputs: paid_0, paid_1, ...
const paymentFieldPrefix = "paid_"

// ParseGenerateForm extracts the generation fields from a parsed form.
func ParseGenerateForm(form url.Values) services.GenerateInput {
	return services.GenerateInput{
		Recipient: sanitizeInput(form.Get("recipient")),
		Payor:     sanitizeInput(form.Get("payor")),
		Accrual:   sanitizeInput(form.Get("accrual")),
		StartDate: sanitizeInput(form.Get("start_date")),
		EndDate:   sanitizeInput(form.Get("end_date")),
	}
}

// ParsePaymentForm collects paid_0..paid_n in index order, stopping at the
// first missing index. Blank values are kept as "" and treated as zero
// downstream.
func ParsePaymentForm(form url.Values) []string {
	var amounts []string
	for i := 0; ; i++ {
		values, ok := form[paymentFieldPrefix+strconv.Itoa(i)]
		if !ok {
			return amounts
		}
		v := ""
		if len(values) > 0 {
			v = sanitizeInput(values[0])
		}
		amounts = append(amounts, v)
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET accepts GET and HEAD.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
