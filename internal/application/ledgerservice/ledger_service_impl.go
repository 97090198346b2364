package ledgerservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/ledgerrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/notificationrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/userrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/websocket"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/currency"
)

type LedgerService struct {
	ledgerRepo       ledgerrepo.ILedgerRepository
	userRepo         userrepo.IUserRepository
	notificationRepo notificationrepo.INotificationRepository
	hub              *websocket.WsHub
	logger           zerolog.Logger
}

func New(
	ledgerRepo ledgerrepo.ILedgerRepository,
	userRepo userrepo.IUserRepository,
	notificationRepo notificationrepo.INotificationRepository,
	hub *websocket.WsHub,
	logger zerolog.Logger,
) ILedgerService {
	return &LedgerService{
		ledgerRepo:       ledgerRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *LedgerService) ManualCredit(ctx context.Context, admin *domain.User, userID uuid.UUID, amountCents int64, description string) (*domain.LedgerEvent, error) {
	event, err := s.manualAdjust(ctx, admin, userID, amountCents, domain.ComponentAdminCredit, description)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, "Crédito manual",
		fmt.Sprintf("Sua conta recebeu um crédito de %s.", currency.FormatBRL(amountCents)))
	s.hub.PublishBalance(userID.String(), event.BalanceAfterCents)

	s.logger.Info().
		Str("admin_id", admin.ID.String()).
		Str("user_id", userID.String()).
		Int64("amount_cents", amountCents).
		Msg("Manual credit applied")
	return event, nil
}

func (s *LedgerService) ManualDebit(ctx context.Context, admin *domain.User, userID uuid.UUID, amountCents int64, description string) (*domain.LedgerEvent, error) {
	event, err := s.manualAdjust(ctx, admin, userID, amountCents, domain.ComponentAdminDebit, description)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userID, "Débito manual",
		fmt.Sprintf("Sua conta sofreu um débito de %s.", currency.FormatBRL(amountCents)))
	s.hub.PublishBalance(userID.String(), event.BalanceAfterCents)

	s.logger.Info().
		Str("admin_id", admin.ID.String()).
		Str("user_id", userID.String()).
		Int64("amount_cents", amountCents).
		Msg("Manual debit applied")
	return event, nil
}

// manualAdjust commits the balance delta and its audit event together, so an
// admin adjustment can never land without a ledger row.
func (s *LedgerService) manualAdjust(ctx context.Context, admin *domain.User, userID uuid.UUID, amountCents int64, component domain.LedgerComponent, description string) (*domain.LedgerEvent, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if amountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := s.ledgerRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var balanceAfter int64
	deltaCents := amountCents
	if component == domain.ComponentAdminDebit {
		deltaCents = -amountCents
		balanceAfter, err = s.ledgerRepo.DebitTx(ctx, tx, userID, amountCents)
	} else {
		balanceAfter, err = s.ledgerRepo.CreditTx(ctx, tx, userID, amountCents)
	}
	if err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		ID:                uuid.New(),
		UserID:            userID,
		Component:         component,
		DeltaCents:        deltaCents,
		BalanceAfterCents: balanceAfter,
		ReferenceID:       admin.ID.String(),
		Description:       description,
	}
	if err := s.ledgerRepo.AppendEventTx(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit manual adjustment: %v", err)
	}
	return event, nil
}

func (s *LedgerService) Balance(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *LedgerService) Events(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.LedgerEvent, error) {
	return s.ledgerRepo.ListEvents(ctx, userID, limit, offset)
}

func (s *LedgerService) notify(ctx context.Context, userID uuid.UUID, title, message string) {
	err := s.notificationRepo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create notification")
	}
}
