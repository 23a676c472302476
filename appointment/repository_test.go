package appointment

import (
	"context"
	"errors"
	"testing"
)

func TestGetByID_MalformedID(t *testing.T) {
	repo := NewRepository(nil)

	for _, id := range []string{"abc", "", "42", "deadbeef"} {
		if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("id %q: expected ErrNotFound, got %v", id, err)
		}
	}
}
