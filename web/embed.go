// Package web holds the page templates and static assets served by the
// tracker, embedded into the binary.
package web

import "embed"

// TemplatesFS embeds the page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the browser script.
//
//go:embed static/*
var StaticFS embed.FS
