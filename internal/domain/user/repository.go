package user

import "context"

// Repository is the read side of the external account store.
type Repository interface {
	Exists(ctx context.Context, userID string) (bool, error)
}
