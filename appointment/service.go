package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidSlot signals a malformed booking window.
	ErrInvalidSlot = errors.New("appointment: invalid time slot")
	// ErrNotOwned signals an attempt to touch someone else's appointment.
	ErrNotOwned = errors.New("appointment: not owned by user")
	// ErrAlreadyCancelled signals a cancel of an already-cancelled appointment.
	ErrAlreadyCancelled = errors.New("appointment: already cancelled")
)

// Service exposes business-level appointment operations.
type Service struct {
	repo Repository
}

// NewService builds a Service using the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Book creates a pending appointment for the user.
func (s *Service) Book(ctx context.Context, userID string, params CreateParams) (Record, error) {
	if userID == "" {
		return Record{}, fmt.Errorf("appointment: user id required")
	}
	if params.Procedure == "" || params.Box == "" {
		return Record{}, fmt.Errorf("appointment: procedure and box are required")
	}
	if params.StartsAt.IsZero() || params.EndsAt.IsZero() || !params.EndsAt.After(params.StartsAt) {
		return Record{}, ErrInvalidSlot
	}

	return s.repo.Insert(ctx, Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		PatientID: params.PatientID,
		Procedure: params.Procedure,
		Box:       params.Box,
		StartsAt:  params.StartsAt,
		EndsAt:    params.EndsAt,
		Status:    StatusPending,
	})
}

// ListForUser returns the caller's own appointments.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Record, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Cancel cancels an appointment. Owners may cancel their own; admins may
// cancel any. Cancelling twice is rejected.
func (s *Service) Cancel(ctx context.Context, userID string, isAdmin bool, id string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !isAdmin && rec.UserID != userID {
		return Record{}, ErrNotOwned
	}
	if rec.Status == StatusCancelled {
		return Record{}, ErrAlreadyCancelled
	}
	return s.repo.UpdateStatus(ctx, id, StatusCancelled)
}

// Confirm marks a pending appointment confirmed. Admin-only at the route
// layer.
func (s *Service) Confirm(ctx context.Context, id string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.Status == StatusCancelled {
		return Record{}, ErrAlreadyCancelled
	}
	return s.repo.UpdateStatus(ctx, id, StatusConfirmed)
}

// AdminOverview loads the full appointment list and the status counters for
// the dashboard. The four queries are independent, so they run concurrently.
func (s *Service) AdminOverview(ctx context.Context) (Overview, error) {
	var overview Overview

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.repo.ListAll(ctx)
		if err != nil {
			return err
		}
		overview.Appointments = records
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountByStatus(ctx, StatusConfirmed)
		overview.Confirmed = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountByStatus(ctx, StatusPending)
		overview.Pending = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountByStatus(ctx, StatusCancelled)
		overview.Cancelled = n
		return err
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	overview.Total = overview.Confirmed + overview.Pending + overview.Cancelled
	return overview, nil
}
