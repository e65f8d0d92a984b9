// Package web embeds the HTML templates and static assets.
package web

import "embed"

//go:embed templates/*.html assets/*
var FS embed.FS
