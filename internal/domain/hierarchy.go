package domain

import "context"

// ParentLookup returns the origin of an item, nil when it has none.
type ParentLookup func(ctx context.Context, id string) (*string, error)

// CheckOrigin verifies that linking itemID to originID keeps the origin graph
// acyclic. It walks the ancestors of originID; reaching itemID means the new
// edge would close a cycle. itemID may be empty for items not yet stored.
func CheckOrigin(ctx context.Context, itemID, originID string, parentOf ParentLookup) error {
	if itemID != "" && itemID == originID {
		return ErrSelfOrigin
	}

	seen := map[string]bool{originID: true}
	current := originID

	for {
		parent, err := parentOf(ctx, current)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil
		}

		if *parent == itemID {
			return ErrOriginCycle
		}
		// Existing data already loops; refuse to extend it.
		if seen[*parent] {
			return ErrOriginCycle
		}

		seen[*parent] = true
		current = *parent
	}
}
