// Package directory holds the reference data (users and their housing units)
// that bookings are attributed to.
package directory

import (
	"context"
	"fmt"

	"booking-warden/internal/logger"
	"booking-warden/internal/models"
)

type Store interface {
	UpsertLocation(ctx context.Context, location *models.Location) error
	UpsertUser(ctx context.Context, user *models.User) error
	ListLocations(ctx context.Context) ([]models.Location, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Source is the remote side of the reference import.
type Source interface {
	FetchLocations(ctx context.Context, token string) ([]models.Location, error)
	FetchUsers(ctx context.Context, token string) ([]models.User, error)
}

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type BackfillResult struct {
	Locations int
	Users     int
}

type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// LoadIndex reads the stored reference data into a lookup index.
func (s *Service) LoadIndex(ctx context.Context) (*Index, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.store.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(users, locations), nil
}

// Backfill imports every location and then every user from the source.
// Locations go first so users can be attributed as soon as they land.
func (s *Service) Backfill(ctx context.Context, src Source, tokens TokenSource) (BackfillResult, error) {
	var result BackfillResult

	token, err := tokens.Token(ctx)
	if err != nil {
		return result, fmt.Errorf("backfill: %w", err)
	}

	locations, err := src.FetchLocations(ctx, token)
	if err != nil {
		return result, fmt.Errorf("backfill: %w", err)
	}
	for i := range locations {
		if err := s.store.UpsertLocation(ctx, &locations[i]); err != nil {
			return result, fmt.Errorf("backfill: %w", err)
		}
		result.Locations++
	}
	s.logger.Info("BACKFILL", fmt.Sprintf("Upserted %d locations.", result.Locations))

	users, err := src.FetchUsers(ctx, token)
	if err != nil {
		return result, fmt.Errorf("backfill: %w", err)
	}
	s.logger.Info("BACKFILL", fmt.Sprintf("Fetched %d users from API.", len(users)))
	for i := range users {
		if err := s.store.UpsertUser(ctx, &users[i]); err != nil {
			return result, fmt.Errorf("backfill: %w", err)
		}
		result.Users++
	}
	s.logger.Info("BACKFILL", fmt.Sprintf("Upserted %d users.", result.Users))

	return result, nil
}
