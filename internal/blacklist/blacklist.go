// Package blacklist computes the monsters that an overlay content pack adds
// on top of a base pack and renders them as a MONSTER_BLACKLIST document.
package blacklist

import (
	"github.com/hupe1980/veilbreak/internal/monster"
)

// Stats summarises a base/overlay comparison.
type Stats struct {
	BaseCount      int `json:"baseCount"`
	OverlayCount   int `json:"overlayCount"`
	OverlapCount   int `json:"overlapCount"`
	ExclusiveCount int `json:"exclusiveCount"`
}

// Result holds the overlay-exclusive identifiers and the comparison stats.
type Result struct {
	// ExclusiveIDs are the overlay identifiers absent from the base,
	// sorted ascending. Never nil.
	ExclusiveIDs []string
	Stats        Stats
}

// Compute returns the identifiers of overlay that are not in base.
func Compute(base, overlay monster.Set) *Result {
	exclusive := overlay.Difference(base)

	return &Result{
		ExclusiveIDs: exclusive.Sorted(),
		Stats: Stats{
			BaseCount:      base.Len(),
			OverlayCount:   overlay.Len(),
			OverlapCount:   overlay.Len() - exclusive.Len(),
			ExclusiveCount: exclusive.Len(),
		},
	}
}
