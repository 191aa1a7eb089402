// Package terrain provides the ground heights used to place footholds.
package terrain

import (
	"github.com/golang/geo/r2"
)

// A Provider reports the height of the terrain under a planar world position.
type Provider interface {
	// HasTerrainData returns false when the provider knows nothing about the terrain, in which case
	// callers fall back to their own ground model.
	HasTerrainData() bool
	TerrainHeight(pos r2.Point) float64
}

// Flat is a horizontal ground plane.
type Flat struct {
	Height float64
}

// HasTerrainData always returns true.
func (f Flat) HasTerrainData() bool {
	return true
}

// TerrainHeight returns the height of the plane.
func (f Flat) TerrainHeight(pos r2.Point) float64 {
	return f.Height
}

// Select returns the provider if it has terrain data, and the fallback otherwise.
func Select(provider Provider, fallback Provider) Provider {
	if provider != nil && provider.HasTerrainData() {
		return provider
	}
	return fallback
}
