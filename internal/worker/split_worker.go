package worker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/splitservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/splitrepo"
)

type Options struct {
	Stream  string        // default: splitservice.AssignmentStream
	Group   string        // default: "splits_cg"
	Block   time.Duration // default: 5s
	Batch   int64         // default: 100
	MinIdle time.Duration // default: 30s
}

// SplitAssignmentWorker drains the registration split queue. A message is
// acked only after the insert succeeds, so a crashed or failed attempt is
// redelivered and retried; the insert itself is idempotent.
type SplitAssignmentWorker struct {
	rdb    redis.UniversalClient
	repo   splitrepo.ISplitRepository
	opt    Options
	logger zerolog.Logger
}

func NewSplitAssignmentWorker(rdb redis.UniversalClient, repo splitrepo.ISplitRepository, opt *Options, logger zerolog.Logger) *SplitAssignmentWorker {
	o := Options{
		Stream:  splitservice.AssignmentStream,
		Group:   "splits_cg",
		Block:   5 * time.Second,
		Batch:   100,
		MinIdle: 30 * time.Second,
	}
	if opt != nil {
		if opt.Stream != "" {
			o.Stream = opt.Stream
		}
		if opt.Group != "" {
			o.Group = opt.Group
		}
		if opt.Block != 0 {
			o.Block = opt.Block
		}
		if opt.Batch != 0 {
			o.Batch = opt.Batch
		}
		if opt.MinIdle != 0 {
			o.MinIdle = opt.MinIdle
		}
	}
	return &SplitAssignmentWorker{rdb: rdb, repo: repo, opt: o, logger: logger}
}

func (w *SplitAssignmentWorker) ensureGroup(ctx context.Context) {
	err := w.rdb.XGroupCreateMkStream(ctx, w.opt.Stream, w.opt.Group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		w.logger.Error().Err(err).Msg("Failed to create consumer group")
	}
}

func (w *SplitAssignmentWorker) reclaimPending(ctx context.Context, consumer string) {
	start := "0-0"
	for {
		msgs, next, err := w.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   w.opt.Stream,
			Group:    w.opt.Group,
			Consumer: consumer,
			MinIdle:  w.opt.MinIdle,
			Start:    start,
			Count:    w.opt.Batch,
		}).Result()
		if err != nil {
			if err != redis.Nil {
				w.logger.Error().Err(err).Msg("XAutoClaim error")
			}
			return
		}
		if len(msgs) == 0 {
			return
		}
		for _, m := range msgs {
			w.handleMessage(ctx, m)
		}
		start = next
	}
}

func (w *SplitAssignmentWorker) handleMessage(ctx context.Context, m redis.XMessage) {
	split, err := splitFromValues(m.Values)
	if err != nil {
		// Malformed message: ack it away, it will never succeed.
		w.logger.Error().Err(err).Str("msg_id", m.ID).Msg("Dropping malformed split message")
		_ = w.rdb.XAck(ctx, w.opt.Stream, w.opt.Group, m.ID).Err()
		return
	}

	if err := w.repo.CreateIfAbsent(ctx, split); err != nil {
		w.logger.Error().Err(err).Str("msg_id", m.ID).Msg("Failed to persist split, will retry")
		return // no ack, redelivered later
	}

	if err := w.rdb.XAck(ctx, w.opt.Stream, w.opt.Group, m.ID).Err(); err != nil {
		w.logger.Error().Err(err).Str("msg_id", m.ID).Msg("XAck error")
	}
}

func splitFromValues(values map[string]interface{}) (*domain.SplitInterno, error) {
	id, err := uuid.Parse(getStr(values, "id"))
	if err != nil {
		return nil, err
	}
	payerID, err := uuid.Parse(getStr(values, "payer_id"))
	if err != nil {
		return nil, err
	}
	beneficiaryID, err := uuid.Parse(getStr(values, "beneficiary_id"))
	if err != nil {
		return nil, err
	}
	percent, err := strconv.ParseFloat(getStr(values, "percent"), 64)
	if err != nil {
		return nil, err
	}

	return &domain.SplitInterno{
		ID:            id,
		PayerID:       payerID,
		BeneficiaryID: beneficiaryID,
		Percent:       percent,
		FeeType:       domain.SplitFeeType(getStr(values, "fee_type")),
	}, nil
}

func getStr(m map[string]interface{}, key string) string {
	switch t := m[key].(type) {
	case string:
		return t
	case []byte:
		return string(t)
	}
	return ""
}

func (w *SplitAssignmentWorker) Run(ctx context.Context, consumerName string) {
	w.ensureGroup(ctx)
	w.reclaimPending(ctx, consumerName)

	backoff := 200 * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		res, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.opt.Group,
			Consumer: consumerName,
			Streams:  []string{w.opt.Stream, ">"},
			Count:    w.opt.Batch,
			Block:    w.opt.Block,
		}).Result()
		if err != nil {
			if err != redis.Nil && ctx.Err() == nil {
				w.logger.Error().Err(err).Msg("XReadGroup error")
				time.Sleep(backoff)
				if backoff < 5*time.Second {
					backoff *= 2
				}
			}
			continue
		}
		backoff = 200 * time.Millisecond
		for _, strm := range res {
			for _, msg := range strm.Messages {
				w.handleMessage(ctx, msg)
			}
		}
	}
}
