package service

import (
	"context"
	"fmt"

	"anoa.com/betpoints/internal/events"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/pkg/apperror"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

// PointService is the public face of the ledger. All balance mutations go
// through here; nothing else writes balances or transactions.
type PointService interface {
	// Award credits an earn-kind amount (rule awards, achievement bonuses).
	Award(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string, ref *model.Reference) (*model.Transaction, error)
	// Purchase credits betcoins after an externally verified payment.
	Purchase(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string) (*model.Transaction, error)
	// Refund restores a previously debited amount (compensating action).
	Refund(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string, ref *model.Reference) (*model.Transaction, error)
	// Deduct debits; fails with apperror.ErrInsufficientFunds when the
	// balance cannot cover the amount.
	Deduct(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string, ref *model.Reference) (*model.Transaction, error)
	// Adjust applies a signed admin correction. Credits are unbounded;
	// debits are still bounded by the non-negative balance invariant.
	Adjust(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string, adminID uuid.UUID) (*model.Transaction, error)
	GetBalance(ctx context.Context, userID uuid.UUID, pointType string) (*model.UserBalance, error)
	GetHistory(ctx context.Context, userID uuid.UUID, filter repository.HistoryFilter) ([]model.Transaction, int64, error)

	// AttachRankService wires the rank recomputation hook. Setter rather
	// than constructor argument because rank reads route back through
	// PointService.
	AttachRankService(ranks RankService)
}

type pointService struct {
	ledger    repository.LedgerRepository
	registry  *Registry
	ranks     RankService
	search    SearchService
	publisher events.Publisher
	sanitizer *bluemonday.Policy
	log       *logrus.Logger
}

func NewPointService(ledger repository.LedgerRepository, registry *Registry, search SearchService, publisher events.Publisher, log *logrus.Logger) PointService {
	return &pointService{
		ledger:    ledger,
		registry:  registry,
		search:    search,
		publisher: publisher,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
}

func (s *pointService) AttachRankService(ranks RankService) {
	s.ranks = ranks
}

func (s *pointService) Award(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string, ref *model.Reference) (*model.Transaction, error) {
	return s.credit(ctx, userID, amount, pointType, model.TransactionKindEarn, reason, ref)
}

func (s *pointService) Purchase(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string) (*model.Transaction, error) {
	return s.credit(ctx, userID, amount, pointType, model.TransactionKindPurchase, reason, nil)
}

func (s *pointService) Refund(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string, ref *model.Reference) (*model.Transaction, error) {
	return s.credit(ctx, userID, amount, pointType, model.TransactionKindRefund, reason, ref)
}

func (s *pointService) credit(ctx context.Context, userID uuid.UUID, amount int64, pointType string, kind model.TransactionKind, reason string, ref *model.Reference) (*model.Transaction, error) {
	if err := s.validate(userID, amount, pointType); err != nil {
		return nil, err
	}

	txn, err := s.ledger.AtomicMutate(ctx, userID, pointType, amount, kind, s.sanitizer.Sanitize(reason), ref, nil)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, userID, pointType, txn)
	return txn, nil
}

func (s *pointService) Deduct(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string, ref *model.Reference) (*model.Transaction, error) {
	if err := s.validate(userID, amount, pointType); err != nil {
		return nil, err
	}

	txn, err := s.ledger.AtomicMutate(ctx, userID, pointType, -amount, model.TransactionKindSpend, s.sanitizer.Sanitize(reason), ref, nil)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, userID, pointType, txn)
	return txn, nil
}

func (s *pointService) Adjust(ctx context.Context, userID uuid.UUID, amount int64, pointType, reason string, adminID uuid.UUID) (*model.Transaction, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: adjustment amount must be non-zero", apperror.ErrInvalidInput)
	}
	if userID == uuid.Nil {
		return nil, apperror.ErrInvalidUser
	}
	if _, ok := s.registry.PointType(pointType); !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidPointType, pointType)
	}

	txn, err := s.ledger.AtomicMutate(ctx, userID, pointType, amount, model.TransactionKindAdjust, s.sanitizer.Sanitize(reason), nil, &adminID)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, userID, pointType, txn)

	s.publisher.Publish(ctx, events.Event{
		Type:   events.TypePointsAdjusted,
		UserID: userID,
		Payload: map[string]any{
			"point_type": pointType,
			"amount":     amount,
			"admin_id":   adminID.String(),
		},
	})

	return txn, nil
}

func (s *pointService) GetBalance(ctx context.Context, userID uuid.UUID, pointType string) (*model.UserBalance, error) {
	if _, ok := s.registry.PointType(pointType); !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidPointType, pointType)
	}
	return s.ledger.GetBalance(ctx, userID, pointType)
}

func (s *pointService) GetHistory(ctx context.Context, userID uuid.UUID, filter repository.HistoryFilter) ([]model.Transaction, int64, error) {
	return s.ledger.GetHistory(ctx, userID, filter)
}

func (s *pointService) validate(userID uuid.UUID, amount int64, pointType string) error {
	if userID == uuid.Nil {
		return apperror.ErrInvalidUser
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", apperror.ErrInvalidInput)
	}
	if _, ok := s.registry.PointType(pointType); !ok {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidPointType, pointType)
	}
	return nil
}

// afterMutation runs the synchronous side effects of a committed mutation:
// rank recomputation for experience changes and audit-search indexing. Both
// are log-and-continue, never failing the mutation they follow.
func (s *pointService) afterMutation(ctx context.Context, userID uuid.UUID, pointType string, txn *model.Transaction) {
	if pointType == model.PointTypeExperience && s.ranks != nil {
		if err := s.ranks.RecomputeRank(ctx, userID); err != nil {
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err,
			}).Warn("rank recomputation failed")
		}
	}

	if s.search != nil {
		if err := s.search.IndexTransaction(txn); err != nil {
			s.log.WithError(err).Warn("failed to index transaction")
		}
	}
}
