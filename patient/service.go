package patient

import "context"

// ProfileReader abstracts repository operations for the service.
type ProfileReader interface {
	GetByID(ctx context.Context, id string) (Profile, error)
	Search(ctx context.Context, query string, limit int) ([]Profile, error)
}

// Service exposes business-level patient directory operations.
type Service struct {
	repo ProfileReader
}

// NewService builds a Service using the provided repository.
func NewService(repo ProfileReader) *Service {
	return &Service{repo: repo}
}

// GetByID returns the patient profile for the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// Search returns up to limit patient profiles matching the query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Profile, error) {
	return s.repo.Search(ctx, query, limit)
}
