package patient

import (
	"context"
	"errors"
	"testing"
)

func TestGetByID_MalformedID(t *testing.T) {
	repo := NewRepository(nil)

	// Path segments like "abc" can never match a uuid primary key; they must
	// read as not-found without reaching the database.
	for _, id := range []string{"abc", "", "123", "not-a-uuid'--"} {
		if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("id %q: expected ErrNotFound, got %v", id, err)
		}
	}
}
