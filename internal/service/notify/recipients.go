package notify

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/repository"
)

// Selector names recipients by explicit identity, by role, or everyone.
// The parts are combined as a union.
type Selector struct {
	UserIDs []uuid.UUID
	Roles   []string
	All     bool
}

func Users(ids ...uuid.UUID) Selector { return Selector{UserIDs: ids} }

func Roles(roles ...string) Selector { return Selector{Roles: roles} }

func (s Selector) Empty() bool {
	return !s.All && len(s.UserIDs) == 0 && len(s.Roles) == 0
}

// ResolveRecipients expands sel into unique recipient identities, sorted.
// It reads the directory and keeps no state between calls.
func ResolveRecipients(
	ctx context.Context,
	dir repository.DirectoryRepository,
	sel Selector,
) ([]uuid.UUID, error) {
	const op = "service.notify.ResolveRecipients"

	ids := slices.Clone(sel.UserIDs)

	if len(sel.Roles) > 0 {
		byRole, err := dir.UserIDsByRoles(ctx, sel.Roles)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, byRole...)
	}

	if sel.All {
		all, err := dir.AllUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, all...)
	}

	ids = slices.DeleteFunc(ids, func(id uuid.UUID) bool { return id == uuid.Nil })
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	return slices.Compact(ids), nil
}
