package drinks

import (
	"context"
	"errors"
	"strings"

	"github.com/upb/coffee-shop/models"
	"github.com/upb/coffee-shop/repositories"
	"github.com/upb/coffee-shop/services"
	"go.uber.org/zap"
)

// CreateInput carries the fields of a new drink
type CreateInput struct {
	Title  string
	Recipe models.Recipe
}

// UpdateInput carries a partial update. Nil or empty fields are left unchanged.
type UpdateInput struct {
	Title  *string
	Recipe models.Recipe
}

// Service implements the drink menu operations
type Service struct {
	drinks repositories.DrinkRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewService creates a new drink Service
func NewService(drinks repositories.DrinkRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		drinks: drinks,
		txMgr:  txMgr,
		logger: logger,
	}
}

// ListDrinks returns the whole menu
func (s *Service) ListDrinks(ctx context.Context) ([]*models.Drink, error) {
	drinks, err := s.drinks.List(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list drinks", err)
	}
	return drinks, nil
}

// CreateDrink stores a new drink. A duplicate title is a conflict; any other
// storage failure is unprocessable.
func (s *Service) CreateDrink(ctx context.Context, input CreateInput) (*models.Drink, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || len(input.Recipe) == 0 {
		return nil, services.ErrMissingDrinkFields
	}

	drink := models.NewDrink(title, input.Recipe)
	if err := s.drinks.Create(ctx, drink); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, services.NewDomainError(services.ErrorTypeConflict, services.ErrDuplicateTitle.Message, err).
				WithDetail("title", title)
		}
		s.logger.Error("failed to store drink", zap.String("title", title), zap.Error(err))
		return nil, services.NewDomainError(services.ErrorTypeUnprocessable, services.ErrDrinkNotStored.Message, err).
			WithDetail("title", title)
	}

	s.logger.Info("drink created", zap.Int64("id", drink.ID), zap.String("title", drink.Title))
	return drink, nil
}

// UpdateDrink applies a partial update inside a transaction
func (s *Service) UpdateDrink(ctx context.Context, id int64, input UpdateInput) (*models.Drink, error) {
	return services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) (*models.Drink, error) {
		repo := s.drinks.WithTx(tx)

		drink, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, s.lookupError(id, err)
		}

		if input.Title != nil {
			if title := strings.TrimSpace(*input.Title); title != "" {
				drink.Title = title
			}
		}
		if len(input.Recipe) > 0 {
			drink.Recipe = input.Recipe
		}

		if err := repo.Update(ctx, drink); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, services.WrapError(services.ErrorTypeNotFound, services.ErrDrinkNotFound.Message, err)
			}
			// Duplicate titles fall here too
			return nil, services.NewDomainError(services.ErrorTypeValidation, "drink could not be updated", err).
				WithDetail("id", id)
		}

		s.logger.Info("drink updated", zap.Int64("id", drink.ID))
		return drink, nil
	})
}

// DeleteDrink removes a drink. The delete runs on the transaction carried
// by the context.
func (s *Service) DeleteDrink(ctx context.Context, id int64) error {
	err := s.txMgr.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		return s.drinks.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.WrapError(services.ErrorTypeNotFound, services.ErrDrinkNotFound.Message, err)
		}
		return services.WrapError(services.ErrorTypeValidation, "drink could not be deleted", err)
	}

	s.logger.Info("drink deleted", zap.Int64("id", id))
	return nil
}

func (s *Service) lookupError(id int64, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.WrapError(services.ErrorTypeNotFound, services.ErrDrinkNotFound.Message, err)
	}
	s.logger.Error("failed to load drink", zap.Int64("id", id), zap.Error(err))
	return services.WrapInternal("failed to load drink", err)
}
