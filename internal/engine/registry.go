// internal/engine/registry.go
package engine

import (
	"fmt"

	"github.com/jason-s-yu/cardhall/internal/models"
)

// Owner is anything that holds cards: a player hand, the discard pile, a team bucket.
// Cards keeps insertion order; variants sort externally when they need to.
type Owner struct {
	ID       string
	IsPlayer bool
	Cards    []models.Card
}

// Registry is the single source of truth for card ownership. belongsTo is authoritative and
// owner card lists are views kept in step by Transact, the only mutation path after dealing.
type Registry struct {
	owners    map[string]*Owner
	order     []string
	belongsTo map[models.Card]string
}

func NewRegistry() *Registry {
	return &Registry{
		owners:    make(map[string]*Owner),
		belongsTo: make(map[models.Card]string),
	}
}

// AddOwner registers an empty owner. Owner ids are unique.
func (r *Registry) AddOwner(id string, isPlayer bool) error {
	if id == "" {
		return fmt.Errorf("owner id must not be empty")
	}
	if _, exists := r.owners[id]; exists {
		return fmt.Errorf("duplicate owner %q", id)
	}
	r.owners[id] = &Owner{ID: id, IsPlayer: isPlayer, Cards: []models.Card{}}
	r.order = append(r.order, id)
	return nil
}

// Deal places cards that are not yet in the game with an owner. Setup only.
func (r *Registry) Deal(ownerID string, cards ...models.Card) error {
	o, ok := r.owners[ownerID]
	if !ok {
		return fmt.Errorf("unknown owner %q", ownerID)
	}
	for _, c := range cards {
		if cur, dealt := r.belongsTo[c]; dealt {
			return fmt.Errorf("card %s already dealt to %q", c, cur)
		}
		r.belongsTo[c] = ownerID
		o.Cards = append(o.Cards, c)
	}
	return nil
}

// OwnerOf returns the owner id currently holding c.
func (r *Registry) OwnerOf(c models.Card) (string, bool) {
	id, ok := r.belongsTo[c]
	return id, ok
}

// Holds reports whether ownerID currently holds c.
func (r *Registry) Holds(ownerID string, c models.Card) bool {
	id, ok := r.belongsTo[c]
	return ok && id == ownerID
}

// HasOwner reports whether id is a registered owner.
func (r *Registry) HasOwner(id string) bool {
	_, ok := r.owners[id]
	return ok
}

// Cards returns a copy of the owner's cards in insertion order.
func (r *Registry) Cards(ownerID string) []models.Card {
	o, ok := r.owners[ownerID]
	if !ok {
		return nil
	}
	out := make([]models.Card, len(o.Cards))
	copy(out, o.Cards)
	return out
}

// Count returns how many cards the owner holds.
func (r *Registry) Count(ownerID string) int {
	if o, ok := r.owners[ownerID]; ok {
		return len(o.Cards)
	}
	return 0
}

// OwnerIDs returns owner ids in registration order.
func (r *Registry) OwnerIDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Total is the number of cards dealt into the game.
func (r *Registry) Total() int {
	return len(r.belongsTo)
}

// Transact moves card from one owner to another. It fails with ErrOwnershipViolation and
// changes nothing unless the registry currently maps card to from.
func (r *Registry) Transact(card models.Card, from, to string) error {
	if cur, ok := r.belongsTo[card]; !ok || cur != from {
		return fmt.Errorf("%w: %s is not held by %q", ErrOwnershipViolation, card, from)
	}
	src := r.owners[from]
	dst, ok := r.owners[to]
	if !ok {
		return fmt.Errorf("%w: unknown destination %q", ErrOwnershipViolation, to)
	}

	idx := -1
	for i, c := range src.Cards {
		if c == card {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s mapped to %q but missing from its hand", ErrRegistryDesync, card, from)
	}

	src.Cards = append(src.Cards[:idx], src.Cards[idx+1:]...)
	dst.Cards = append(dst.Cards, card)
	r.belongsTo[card] = to
	return nil
}

// Verify checks that txs could be applied in order without touching the registry.
// Only success-flagged transactions are considered unless all is true.
func (r *Registry) Verify(txs []models.Transaction, all bool) error {
	overlay := make(map[models.Card]string)
	for _, tx := range txs {
		if !tx.Success && !all {
			continue
		}
		cur, moved := overlay[tx.Card]
		if !moved {
			cur = r.belongsTo[tx.Card]
		}
		if cur == "" || cur != tx.From {
			return fmt.Errorf("%w: %s is not held by %q", ErrOwnershipViolation, tx.Card, tx.From)
		}
		if !r.HasOwner(tx.To) {
			return fmt.Errorf("%w: unknown destination %q", ErrOwnershipViolation, tx.To)
		}
		overlay[tx.Card] = tx.To
	}
	return nil
}

// Check verifies totality and uniqueness: every registered card sits in exactly one owner
// view, namely the one the registry names, and no view holds an unregistered card.
func (r *Registry) Check() error {
	seen := make(map[models.Card]string, len(r.belongsTo))
	for _, id := range r.order {
		for _, c := range r.owners[id].Cards {
			if prev, dup := seen[c]; dup {
				return fmt.Errorf("%w: %s held by both %q and %q", ErrRegistryDesync, c, prev, id)
			}
			seen[c] = id
			if r.belongsTo[c] != id {
				return fmt.Errorf("%w: %s in %q but registry says %q", ErrRegistryDesync, c, id, r.belongsTo[c])
			}
		}
	}
	if len(seen) != len(r.belongsTo) {
		return fmt.Errorf("%w: %d cards registered, %d held", ErrRegistryDesync, len(r.belongsTo), len(seen))
	}
	return nil
}
