package splitservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/ledgerrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/splitrepo"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/currency"
)

const AssignmentStream = "stream:splits"

type SplitService struct {
	splitRepo  splitrepo.ISplitRepository
	ledgerRepo ledgerrepo.ILedgerRepository
	rdb        redis.UniversalClient
	logger     zerolog.Logger
}

func New(
	splitRepo splitrepo.ISplitRepository,
	ledgerRepo ledgerrepo.ILedgerRepository,
	rdb redis.UniversalClient,
	logger zerolog.Logger,
) ISplitService {
	return &SplitService{
		splitRepo:  splitRepo,
		ledgerRepo: ledgerRepo,
		rdb:        rdb,
		logger:     logger,
	}
}

func (s *SplitService) EnqueueAssignment(ctx context.Context, split *domain.SplitInterno) error {
	if split.ID == uuid.Nil {
		split.ID = uuid.New()
	}

	err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: AssignmentStream,
		Values: map[string]interface{}{
			"id":             split.ID.String(),
			"payer_id":       split.PayerID.String(),
			"beneficiary_id": split.BeneficiaryID.String(),
			"percent":        split.Percent,
			"fee_type":       string(split.FeeType),
		},
	}).Err()
	if err == nil {
		return nil
	}

	s.logger.Error().Err(err).
		Str("payer_id", split.PayerID.String()).
		Msg("Failed to enqueue split assignment, falling back to direct insert")

	if insertErr := s.splitRepo.CreateIfAbsent(ctx, split); insertErr != nil {
		return fmt.Errorf("split assignment failed: enqueue: %v, insert: %v", err, insertErr)
	}
	return nil
}

// PayoutFee credits each beneficiary of the payer's splits with their share
// of the fee just collected. Payouts are best effort per beneficiary; a
// failed credit is logged and does not block the others.
func (s *SplitService) PayoutFee(ctx context.Context, payerID uuid.UUID, feeCents int64, feeType domain.SplitFeeType, referenceID string) error {
	if feeCents <= 0 {
		return nil
	}

	splits, err := s.splitRepo.ListByPayer(ctx, payerID)
	if err != nil {
		return err
	}

	for _, split := range splits {
		if split.FeeType != feeType {
			continue
		}
		shareCents := currency.PercentOf(feeCents, split.Percent)
		if shareCents <= 0 {
			continue
		}

		balanceAfter, err := s.ledgerRepo.Credit(ctx, split.BeneficiaryID, shareCents)
		if err != nil {
			s.logger.Error().Err(err).
				Str("beneficiary_id", split.BeneficiaryID.String()).
				Int64("share_cents", shareCents).
				Msg("Failed to pay split share")
			continue
		}

		event := &domain.LedgerEvent{
			ID:                uuid.New(),
			UserID:            split.BeneficiaryID,
			Component:         domain.ComponentSplit,
			DeltaCents:        shareCents,
			BalanceAfterCents: balanceAfter,
			ReferenceID:       referenceID,
			Description:       fmt.Sprintf("Split %s de %s", feeType, payerID),
		}
		if err := s.ledgerRepo.AppendEvent(ctx, event); err != nil {
			s.logger.Error().Err(err).
				Str("beneficiary_id", split.BeneficiaryID.String()).
				Msg("Failed to append split ledger event")
		}
	}
	return nil
}
