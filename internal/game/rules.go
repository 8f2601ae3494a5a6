// internal/game/rules.go
package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/engine/fish"
	"github.com/jason-s-yu/cardhall/internal/engine/simple"
	"github.com/jason-s-yu/cardhall/internal/engine/vietcong"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// Options are the house rules a table is created with. Fields that do not apply to a
// variant are ignored by it.
type Options struct {
	DeckSize    int    `json:"deckSize"`    // Viet Cong: 52 or 56
	OpeningCard string `json:"openingCard"` // Viet Cong: short form, e.g. "3S"
	SuitOrder   string `json:"suitOrder"`   // Viet Cong: suit letters lowest first, e.g. "SCDH"
	Seed        int64  `json:"seed"`        // shuffle seed; 0 picks one from the clock
}

// DefaultOptions mirrors the standard Viet Cong table.
func DefaultOptions() Options {
	return Options{
		DeckSize:    52,
		OpeningCard: "3S",
		SuitOrder:   "SCDH",
	}
}

// Update will update the options with the new values provided.
// If a key is not set, it is ignored and the old value persists.
func (o *Options) Update(newOpts map[string]interface{}) error {
	assignString := func(field *string, key string, validate func(string) error) error {
		if val, exists := newOpts[key]; exists && val != nil {
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			s = strings.ToUpper(strings.TrimSpace(s))
			if err := validate(s); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*field = s
		}
		return nil
	}

	assignInt := func(key string) (int64, bool, error) {
		val, exists := newOpts[key]
		if !exists || val == nil {
			return 0, false, nil
		}
		// JSON numbers decode as float64
		switch v := val.(type) {
		case float64:
			return int64(v), true, nil
		case int:
			return int64(v), true, nil
		case int64:
			return v, true, nil
		}
		return 0, false, fmt.Errorf("invalid type for %s", key)
	}

	if n, ok, err := assignInt("deckSize"); err != nil {
		return err
	} else if ok {
		if n != 52 && n != 56 {
			return fmt.Errorf("deckSize must be 52 or 56")
		}
		o.DeckSize = int(n)
	}
	if n, ok, err := assignInt("seed"); err != nil {
		return err
	} else if ok {
		o.Seed = n
	}
	if err := assignString(&o.OpeningCard, "openingCard", func(s string) error {
		_, err := models.ParseCard(s)
		return err
	}); err != nil {
		return err
	}
	return assignString(&o.SuitOrder, "suitOrder", func(s string) error {
		_, err := parseSuitOrder(s)
		return err
	})
}

// ParseOptions converts a loose map to Options on top of current, checking types.
func ParseOptions(opts map[string]interface{}, current Options) (Options, error) {
	out := current
	err := out.Update(opts)
	return out, err
}

func parseSuitOrder(s string) ([]models.Suit, error) {
	if s == "" {
		return vietcong.DefaultSuitOrder, nil
	}
	if len(s) != 4 {
		return nil, fmt.Errorf("suitOrder must name all four suits once")
	}
	seen := map[models.Suit]bool{}
	out := make([]models.Suit, 0, 4)
	for _, r := range s {
		c, err := models.ParseCard("2" + string(r))
		if err != nil || c.Suit == models.SuitNone || seen[c.Suit] {
			return nil, fmt.Errorf("suitOrder must name all four suits once")
		}
		seen[c.Suit] = true
		out = append(out, c.Suit)
	}
	return out, nil
}

func (o Options) rand() *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// newRules picks the variant engine and deals it.
func newRules(v engine.Variant, players []string, o Options) (engine.Rules, error) {
	switch v {
	case engine.VariantVietCong:
		def := DefaultOptions()
		if o.OpeningCard == "" {
			o.OpeningCard = def.OpeningCard
		}
		if o.DeckSize == 0 {
			o.DeckSize = def.DeckSize
		}
		opening, err := models.ParseCard(o.OpeningCard)
		if err != nil {
			return nil, fmt.Errorf("openingCard: %w", err)
		}
		order, err := parseSuitOrder(o.SuitOrder)
		if err != nil {
			return nil, err
		}
		return vietcong.New(players, vietcong.Options{
			DeckSize:    o.DeckSize,
			OpeningCard: opening,
			SuitOrder:   order,
			Rand:        o.rand(),
		})
	case engine.VariantFish:
		return fish.New(players, fish.Options{Rand: o.rand()})
	case engine.VariantSimple:
		return simple.New(players)
	}
	return nil, fmt.Errorf("%w: %q", engine.ErrUnknownVariant, v)
}
