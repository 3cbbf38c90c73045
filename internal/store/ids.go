package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// idLength is the number of hex characters in a goal or story id.
const idLength = 8

// maxIDAttempts bounds the collision-retry loop in nextID.
const maxIDAttempts = 8

// randomID produces a candidate id. Swapped in tests to force collisions.
var randomID = func() string {
	return uuid.NewString()[:idLength]
}

// nextID returns an id not used by any goal or story. Goals and stories
// share one id space so a bare id is never ambiguous.
func nextID(ctx context.Context, tx *sql.Tx) (string, error) {
	for range maxIDAttempts {
		id := randomID()
		taken, err := idTaken(ctx, tx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", &Error{
		Kind:    ErrStorageFailure,
		Message: fmt.Sprintf("could not allocate a unique id after %d attempts", maxIDAttempts),
		Err:     errors.New("id space exhausted"),
	}
}
