package depositservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sqlc-dev/pqtype"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/splitservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/depositrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/infractionrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/ledgerrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/notificationrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/websocket"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/config"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/currency"
)

type DepositService struct {
	depositRepo      depositrepo.IDepositRepository
	ledgerRepo       ledgerrepo.ILedgerRepository
	infractionRepo   infractionrepo.IInfractionRepository
	notificationRepo notificationrepo.INotificationRepository
	splitSvc         splitservice.ISplitService
	platform         config.PlatformConfig
	hub              *websocket.WsHub
	logger           zerolog.Logger
}

func New(
	depositRepo depositrepo.IDepositRepository,
	ledgerRepo ledgerrepo.ILedgerRepository,
	infractionRepo infractionrepo.IInfractionRepository,
	notificationRepo notificationrepo.INotificationRepository,
	splitSvc splitservice.ISplitService,
	platform config.PlatformConfig,
	hub *websocket.WsHub,
	logger zerolog.Logger,
) IDepositService {
	return &DepositService{
		depositRepo:      depositRepo,
		ledgerRepo:       ledgerRepo,
		infractionRepo:   infractionRepo,
		notificationRepo: notificationRepo,
		splitSvc:         splitSvc,
		platform:         platform,
		hub:              hub,
		logger:           logger,
	}
}

func (s *DepositService) Create(ctx context.Context, user *domain.User, amountCents int64) (*domain.Deposit, error) {
	if amountCents < s.platform.MinDepositCents || amountCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	externalRef := strings.ReplaceAll(uuid.New().String(), "-", "")
	deposit := &domain.Deposit{
		ID:             uuid.New(),
		UserID:         user.ID,
		AmountCents:    amountCents,
		NetAmountCents: currency.CashInNet(amountCents, s.platform.CashInFeePercent),
		Status:         domain.DepositStatusPending,
		ExternalRef:    externalRef,
		PixPayload:     pixCopyPaste(externalRef, amountCents),
	}

	if err := s.depositRepo.Create(ctx, deposit); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("deposit_id", deposit.ID.String()).
		Str("user_id", user.ID.String()).
		Int64("amount_cents", amountCents).
		Msg("Deposit created")
	return deposit, nil
}

// ApplyCallback ingests a gateway status update. The deposit row stays locked
// for the whole transaction, so duplicate deliveries of the same settlement
// serialize and the second one fails the transition check.
func (s *DepositService) ApplyCallback(ctx context.Context, callback *domain.GatewayCallback) (*domain.Deposit, error) {
	tx, err := s.depositRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deposit, err := s.depositRepo.GetByExternalRefTx(ctx, tx, callback.ExternalRef)
	if err != nil {
		return nil, err
	}

	// A gateway reporting a different amount than the charge is never
	// settled as-is; the credit is always the stored net.
	if callback.AmountCents != 0 && callback.AmountCents != deposit.AmountCents {
		s.logger.Warn().
			Str("external_ref", callback.ExternalRef).
			Int64("charge_cents", deposit.AmountCents).
			Int64("callback_cents", callback.AmountCents).
			Msg("Gateway callback amount mismatch")
		return nil, domain.ErrInvalidAmount
	}

	if callback.TransactionID != "" {
		deposit.TransactionID = callback.TransactionID
	}
	if err := deposit.Transition(callback.Status); err != nil {
		return nil, err
	}

	if len(callback.Raw) > 0 {
		deposit.CallbackPayload = pqtype.NullRawMessage{RawMessage: callback.Raw, Valid: true}
	}

	var balanceAfter int64
	if deposit.Status == domain.DepositStatusCompleted {
		deposit.PaidAt = time.Now()
		balanceAfter, err = s.ledgerRepo.CreditTx(ctx, tx, deposit.UserID, deposit.NetAmountCents)
		if err != nil {
			return nil, err
		}

		event := &domain.LedgerEvent{
			ID:                uuid.New(),
			UserID:            deposit.UserID,
			Component:         domain.ComponentDeposit,
			DeltaCents:        deposit.NetAmountCents,
			BalanceAfterCents: balanceAfter,
			ReferenceID:       deposit.ID.String(),
			Description:       fmt.Sprintf("Depósito PIX %s", deposit.TransactionID),
		}
		if err := s.ledgerRepo.AppendEventTx(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := s.depositRepo.UpdateStatusTx(ctx, tx, deposit); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit callback: %v", err)
	}

	if deposit.Status == domain.DepositStatusCompleted {
		feeCents := deposit.AmountCents - deposit.NetAmountCents
		if err := s.splitSvc.PayoutFee(ctx, deposit.UserID, feeCents, domain.SplitFeeCashIn, deposit.ID.String()); err != nil {
			s.logger.Error().Err(err).
				Str("deposit_id", deposit.ID.String()).
				Msg("Failed to pay cash-in splits")
		}

		s.notify(ctx, deposit.UserID, "Depósito confirmado",
			fmt.Sprintf("Seu depósito de %s foi confirmado.", currency.FormatBRL(deposit.AmountCents)))
		s.hub.PublishBalance(deposit.UserID.String(), balanceAfter)
	}
	s.hub.PublishDeposit(deposit)

	s.logger.Info().
		Str("deposit_id", deposit.ID.String()).
		Str("status", string(deposit.Status)).
		Msg("Gateway callback applied")
	return deposit, nil
}

// OpenInfraction moves a settled deposit into a dispute sub-state and files
// the infraction case. A chargeback claws the credited net amount back; if
// the balance no longer covers it the chargeback is refused.
func (s *DepositService) OpenInfraction(ctx context.Context, user *domain.User, depositID uuid.UUID, kind domain.DepositStatus, reason string) (*domain.Infraction, error) {
	switch kind {
	case domain.DepositStatusMediation, domain.DepositStatusChargeback, domain.DepositStatusDispute:
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTransition, kind)
	}

	tx, err := s.depositRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deposit, err := s.depositRepo.GetByIDTx(ctx, tx, depositID)
	if err != nil {
		return nil, err
	}
	// Cross-user access reads as not found, never as forbidden.
	if !user.IsAdmin() && deposit.UserID != user.ID {
		return nil, domain.ErrNotFound
	}

	if err := deposit.Transition(kind); err != nil {
		return nil, err
	}

	if kind == domain.DepositStatusChargeback {
		balanceAfter, err := s.ledgerRepo.DebitTx(ctx, tx, deposit.UserID, deposit.NetAmountCents)
		if err != nil {
			return nil, err
		}
		event := &domain.LedgerEvent{
			ID:                uuid.New(),
			UserID:            deposit.UserID,
			Component:         domain.ComponentChargeback,
			DeltaCents:        -deposit.NetAmountCents,
			BalanceAfterCents: balanceAfter,
			ReferenceID:       deposit.ID.String(),
			Description:       "Estorno por chargeback",
		}
		if err := s.ledgerRepo.AppendEventTx(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := s.depositRepo.UpdateStatusTx(ctx, tx, deposit); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit infraction: %v", err)
	}

	infraction := &domain.Infraction{
		ID:          uuid.New(),
		UserID:      deposit.UserID,
		DepositID:   &deposit.ID,
		Kind:        kind,
		Reason:      reason,
		AmountCents: deposit.NetAmountCents,
	}
	if err := s.infractionRepo.Create(ctx, infraction); err != nil {
		return nil, err
	}

	s.notify(ctx, deposit.UserID, "Infração PIX aberta",
		fmt.Sprintf("Uma infração (%s) foi aberta sobre seu depósito de %s.", kind, currency.FormatBRL(deposit.AmountCents)))
	s.hub.PublishDeposit(deposit)

	s.logger.Info().
		Str("deposit_id", deposit.ID.String()).
		Str("kind", string(kind)).
		Msg("Infraction opened")
	return infraction, nil
}

func (s *DepositService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Deposit, error) {
	return s.depositRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *DepositService) List(ctx context.Context, status domain.DepositStatus, limit, offset int) ([]*domain.Deposit, error) {
	return s.depositRepo.List(ctx, status, limit, offset)
}

func (s *DepositService) ListInfractions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Infraction, error) {
	return s.infractionRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *DepositService) notify(ctx context.Context, userID uuid.UUID, title, message string) {
	err := s.notificationRepo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create notification")
	}
}

// pixCopyPaste builds the static copy-paste payload for the charge. Rendering
// an actual QR image is out of scope for the API.
func pixCopyPaste(externalRef string, amountCents int64) string {
	return fmt.Sprintf("00020126580014br.gov.bcb.pix0136%s5204000053039865406%s6304",
		externalRef, currency.CentsToBRL(amountCents))
}
