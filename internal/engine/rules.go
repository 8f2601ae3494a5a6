package engine

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/cardhall/internal/models"
)

// Variant tags one of the closed set of rule engines.
type Variant string

const (
	VariantVietCong Variant = "vietcong"
	VariantFish     Variant = "fish"
	VariantSimple   Variant = "simple"
)

// PlayerCounts is the number of seats each variant requires.
var PlayerCounts = map[Variant]int{
	VariantVietCong: 4,
	VariantFish:     6,
	VariantSimple:   2,
}

// ParseVariant accepts the canonical tag as well as display spellings like "Viet Cong".
func ParseVariant(s string) (Variant, error) {
	norm := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s))
	switch Variant(norm) {
	case VariantVietCong, VariantFish, VariantSimple:
		return Variant(norm), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// CheckPlayers validates the seat list for a variant: right count, no blanks, no duplicates.
func CheckPlayers(v Variant, players []string) error {
	want, ok := PlayerCounts[v]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	if len(players) != want {
		return fmt.Errorf("%w: %s needs %d players, got %d", ErrInvalidPlayerCount, v, want, len(players))
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p == "" || seen[p] {
			return fmt.Errorf("%w: player ids must be unique and non-empty", ErrInvalidPlayerCount)
		}
		seen[p] = true
	}
	return nil
}

// Rules is the capability every variant engine provides. Validate never mutates; it returns
// the normalized turn (success flags and rerouted destinations filled in) that Apply must be
// given. Apply is only called with a turn Validate accepted.
type Rules interface {
	Variant() Variant
	Machine() *Machine
	Validate(t models.Turn) (models.Turn, error)
	Apply(t models.Turn) error
	Finished() bool
	Results() models.Results
	// Extras returns the variant-specific part of the exported state.
	Extras() interface{}
}

// Redactor is implemented by variant extras that carry per-viewer information.
type Redactor interface {
	Redact(viewer string) interface{}
}
