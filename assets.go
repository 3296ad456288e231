// Package hotelweb provides the embedded templates and static assets.
package hotelweb

import "embed"

// StaticFS holds frontend/static, served under /static/ outside dev mode.
//
//go:embed all:frontend/static
var StaticFS embed.FS

// TemplateFS holds the page templates.
//
//go:embed all:frontend/templates
var TemplateFS embed.FS
