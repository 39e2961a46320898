// Package api carries the document describing the /api routes.
package api

import _ "embed"

//go:embed openapi.json
var Document []byte
