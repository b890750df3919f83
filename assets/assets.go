// Package assets holds files compiled into the binary.
package assets

import _ "embed"

// RoadTile is the default tile texture (PNG, RGBA, transparent outside the road diamond).
//
//go:embed roads1a.png
var RoadTile []byte
