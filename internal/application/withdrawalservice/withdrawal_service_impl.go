package withdrawalservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/splitservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/ledgerrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/notificationrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/withdrawalrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/websocket"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/config"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/currency"
)

type WithdrawalService struct {
	withdrawalRepo   withdrawalrepo.IWithdrawalRepository
	ledgerRepo       ledgerrepo.ILedgerRepository
	notificationRepo notificationrepo.INotificationRepository
	splitSvc         splitservice.ISplitService
	platform         config.PlatformConfig
	hub              *websocket.WsHub
	logger           zerolog.Logger
}

func New(
	withdrawalRepo withdrawalrepo.IWithdrawalRepository,
	ledgerRepo ledgerrepo.ILedgerRepository,
	notificationRepo notificationrepo.INotificationRepository,
	splitSvc splitservice.ISplitService,
	platform config.PlatformConfig,
	hub *websocket.WsHub,
	logger zerolog.Logger,
) IWithdrawalService {
	return &WithdrawalService{
		withdrawalRepo:   withdrawalRepo,
		ledgerRepo:       ledgerRepo,
		notificationRepo: notificationRepo,
		splitSvc:         splitSvc,
		platform:         platform,
		hub:              hub,
		logger:           logger,
	}
}

func (s *WithdrawalService) Request(ctx context.Context, user *domain.User, input RequestInput) (*domain.Withdrawal, error) {
	if !input.PixKeyType.Valid() {
		return nil, domain.ErrInvalidPixKey
	}
	if input.AmountCents < s.platform.MinWithdrawalCents || input.AmountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	feeCents := currency.CashOutFee(input.AmountCents, s.platform.CashOutFeePercent, s.platform.CashOutFeeFixedCents)
	if feeCents >= input.AmountCents {
		return nil, domain.ErrInvalidAmount
	}

	// The reservation is the admission check: it only succeeds when the
	// available balance covers the amount, atomically.
	if err := s.ledgerRepo.Reserve(ctx, user.ID, input.AmountCents); err != nil {
		return nil, err
	}

	withdrawal := &domain.Withdrawal{
		ID:                  uuid.New(),
		UserID:              user.ID,
		AmountCents:         input.AmountCents,
		FeeCents:            feeCents,
		NetAmountCents:      input.AmountCents - feeCents,
		BeneficiaryName:     input.BeneficiaryName,
		BeneficiaryDocument: input.BeneficiaryDocument,
		PixKeyType:          input.PixKeyType,
		PixKey:              input.PixKey,
		Status:              domain.WithdrawalStatusPending,
	}
	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		if releaseErr := s.ledgerRepo.Release(ctx, user.ID, input.AmountCents); releaseErr != nil {
			s.logger.Error().Err(releaseErr).
				Str("user_id", user.ID.String()).
				Msg("Failed to release reservation after create failure")
		}
		return nil, err
	}

	s.notify(ctx, user.ID, "Saque solicitado",
		fmt.Sprintf("Sua solicitação de saque de %s está em análise.", currency.FormatBRL(input.AmountCents)))
	s.hub.PublishWithdrawal(withdrawal)

	s.logger.Info().
		Str("withdrawal_id", withdrawal.ID.String()).
		Str("user_id", user.ID.String()).
		Int64("amount_cents", input.AmountCents).
		Msg("Withdrawal requested")
	return withdrawal, nil
}

// Approve settles a pending withdrawal: debit the gross amount, release the
// reservation and mark the row completed, all in one transaction over a
// locked row. A second call finds a non-pending status and fails with
// ErrAlreadyProcessed without touching the balance.
func (s *WithdrawalService) Approve(ctx context.Context, withdrawalID uuid.UUID, admin *domain.User) (*domain.Withdrawal, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	tx, err := s.withdrawalRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	withdrawal, err := s.withdrawalRepo.GetByIDTx(ctx, tx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if err := withdrawal.CanTransition(domain.WithdrawalStatusCompleted); err != nil {
		return nil, err
	}

	balanceAfter, err := s.ledgerRepo.DebitTx(ctx, tx, withdrawal.UserID, withdrawal.AmountCents)
	if err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.ReleaseTx(ctx, tx, withdrawal.UserID, withdrawal.AmountCents); err != nil {
		return nil, err
	}

	withdrawal.Status = domain.WithdrawalStatusCompleted
	withdrawal.ExecutorOrdem = admin.Username
	withdrawal.ProcessedAt = time.Now()
	if err := s.withdrawalRepo.UpdateStatusTx(ctx, tx, withdrawal); err != nil {
		return nil, err
	}

	event := &domain.LedgerEvent{
		ID:                uuid.New(),
		UserID:            withdrawal.UserID,
		Component:         domain.ComponentWithdrawal,
		DeltaCents:        -withdrawal.AmountCents,
		BalanceAfterCents: balanceAfter,
		ReferenceID:       withdrawal.ID.String(),
		Description:       fmt.Sprintf("Saque aprovado por %s", admin.Username),
	}
	if err := s.ledgerRepo.AppendEventTx(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %v", err)
	}

	if err := s.splitSvc.PayoutFee(ctx, withdrawal.UserID, withdrawal.FeeCents, domain.SplitFeeCashOut, withdrawal.ID.String()); err != nil {
		s.logger.Error().Err(err).
			Str("withdrawal_id", withdrawal.ID.String()).
			Msg("Failed to pay cash-out splits")
	}

	s.notify(ctx, withdrawal.UserID, "Saque aprovado",
		fmt.Sprintf("Seu saque de %s foi aprovado e pago.", currency.FormatBRL(withdrawal.AmountCents)))
	s.hub.PublishWithdrawal(withdrawal)
	s.hub.PublishBalance(withdrawal.UserID.String(), balanceAfter)

	s.logger.Info().
		Str("withdrawal_id", withdrawal.ID.String()).
		Str("admin", admin.Username).
		Msg("Withdrawal approved")
	return withdrawal, nil
}

// Reject cancels a pending withdrawal and releases the reservation without
// debiting. Same one-shot semantics as Approve.
func (s *WithdrawalService) Reject(ctx context.Context, withdrawalID uuid.UUID, admin *domain.User) (*domain.Withdrawal, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	tx, err := s.withdrawalRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	withdrawal, err := s.withdrawalRepo.GetByIDTx(ctx, tx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if err := withdrawal.CanTransition(domain.WithdrawalStatusCancelled); err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.ReleaseTx(ctx, tx, withdrawal.UserID, withdrawal.AmountCents); err != nil {
		return nil, err
	}

	withdrawal.Status = domain.WithdrawalStatusCancelled
	withdrawal.ExecutorOrdem = admin.Username
	withdrawal.ProcessedAt = time.Now()
	if err := s.withdrawalRepo.UpdateStatusTx(ctx, tx, withdrawal); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %v", err)
	}

	s.notify(ctx, withdrawal.UserID, "Saque recusado",
		fmt.Sprintf("Sua solicitação de saque de %s foi recusada.", currency.FormatBRL(withdrawal.AmountCents)))
	s.hub.PublishWithdrawal(withdrawal)

	s.logger.Info().
		Str("withdrawal_id", withdrawal.ID.String()).
		Str("admin", admin.Username).
		Msg("Withdrawal rejected")
	return withdrawal, nil
}

func (s *WithdrawalService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Withdrawal, error) {
	return s.withdrawalRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *WithdrawalService) List(ctx context.Context, status domain.WithdrawalStatus, limit, offset int) ([]*domain.Withdrawal, error) {
	return s.withdrawalRepo.List(ctx, status, limit, offset)
}

func (s *WithdrawalService) notify(ctx context.Context, userID uuid.UUID, title, message string) {
	err := s.notificationRepo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create notification")
	}
}
