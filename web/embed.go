// Package web embeds the page templates and static assets served by the
// HTTP front end.
package web

import "embed"

// TemplatesFS holds the page and the answer partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the page script.
//
//go:embed static/*
var StaticFS embed.FS
