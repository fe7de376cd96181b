// Package web embeds the ledger page templates and static assets.
package web

import "embed"

// TemplatesFS holds index.html and the ledger.html partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js).
//
//go:embed static/*
var StaticFS embed.FS
