package service

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"kudos/events"
	"kudos/models"
)

type seasonService struct {
	uowFactory UnitOfWorkFactory
}

// NewSeasonService creates a new season service
func NewSeasonService(uowFactory UnitOfWorkFactory) SeasonService {
	return &seasonService{
		uowFactory: uowFactory,
	}
}

func (s *seasonService) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.SeasonRepository().GetActive(ctx)
}

func (s *seasonService) GetSeason(ctx context.Context, id int64) (*models.Season, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	season, err := uow.SeasonRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, models.ErrSeasonNotFound
	}
	return season, nil
}

func (s *seasonService) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.SeasonRepository().List(ctx)
}

// CreateSeason stores a new inactive season
func (s *seasonService) CreateSeason(ctx context.Context, name string, defaultBalance int64, description string) (*models.Season, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("season name cannot be empty")
	}
	if defaultBalance < 0 {
		return nil, models.ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	season := &models.Season{
		Name:           name,
		DefaultBalance: defaultBalance,
		Description:    strings.TrimSpace(description),
	}
	if err := uow.SeasonRepository().Create(ctx, season); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return season, nil
}

// Activate deactivates every other season, activates the target and overwrites
// every balance with its default, all in one transaction.
func (s *seasonService) Activate(ctx context.Context, seasonID int64) (*models.Season, error) {
	return retryOnConflict(ctx, "activate_season", func() (*models.Season, error) {
		return s.activate(ctx, seasonID)
	})
}

func (s *seasonService) activate(ctx context.Context, seasonID int64) (*models.Season, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	season, err := uow.SeasonRepository().GetByID(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, models.ErrSeasonNotFound
	}

	if err := uow.SeasonRepository().DeactivateAll(ctx); err != nil {
		return nil, err
	}
	if err := uow.SeasonRepository().SetActive(ctx, seasonID, true); err != nil {
		return nil, err
	}

	reset, err := uow.UserRepository().ResetAllBalances(ctx, season.DefaultBalance)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.SeasonActivatedEvent{
		SeasonID:       season.ID,
		Name:           season.Name,
		DefaultBalance: season.DefaultBalance,
		UsersReset:     reset,
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	season.Active = true
	log.WithFields(log.Fields{
		"seasonID":       season.ID,
		"name":           season.Name,
		"defaultBalance": season.DefaultBalance,
		"usersReset":     reset,
	}).Info("Activated season")

	return season, nil
}

// Deactivate clears the active flag. Balances are left as they are.
func (s *seasonService) Deactivate(ctx context.Context, seasonID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	season, err := uow.SeasonRepository().GetByID(ctx, seasonID)
	if err != nil {
		return err
	}
	if season == nil {
		return models.ErrSeasonNotFound
	}
	if !season.Active {
		return nil
	}

	if err := uow.SeasonRepository().SetActive(ctx, seasonID, false); err != nil {
		return err
	}
	uow.EventBus().Publish(events.SeasonDeactivatedEvent{SeasonID: season.ID, Name: season.Name})

	if err := uow.Commit(); err != nil {
		return err
	}

	log.WithField("seasonID", seasonID).Info("Deactivated season")
	return nil
}
