package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/betpoints/internal/events"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BettingService interface {
	// PlaceBet debits the stake, persists the bet, and refunds the stake if
	// persistence fails. A debit is never left stranded: the caller either
	// gets a pending bet or their betcoins back.
	PlaceBet(ctx context.Context, userID, predictionID uuid.UUID, amount int64, choice string) (*model.Bet, error)
	// ResolveBet is idempotent: resolving an already-resolved bet returns
	// its terminal state without touching the ledger.
	ResolveBet(ctx context.Context, betID uuid.UUID, outcome string) (*model.Bet, error)
	// ResolvePrediction settles every pending bet on the prediction.
	ResolvePrediction(ctx context.Context, predictionID uuid.UUID, outcome string) error
	// CancelPrediction refunds every pending stake and closes the market.
	CancelPrediction(ctx context.Context, predictionID uuid.UUID) error
	// SweepStrandedBets re-settles pending bets on already-resolved
	// predictions. Run periodically; returns how many bets were settled.
	SweepStrandedBets(ctx context.Context) (int, error)

	CreatePrediction(ctx context.Context, title string, choices []string, oddsBps int64, closesAt *time.Time) (*model.Prediction, error)
	ListOpenPredictions(ctx context.Context) ([]model.Prediction, error)
	ListBets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Bet, int64, error)
}

type bettingService struct {
	betRepo      repository.BetRepository
	statsRepo    repository.StatsRepository
	points       PointService
	rules        EarningRuleService
	achievements AchievementService
	publisher    events.Publisher
	redisClient  *redis.Client
	betGap       time.Duration
	log          *logrus.Logger
}

func NewBettingService(betRepo repository.BetRepository, statsRepo repository.StatsRepository, points PointService, rules EarningRuleService, achievements AchievementService, publisher events.Publisher, redisClient *redis.Client, betGap time.Duration, log *logrus.Logger) BettingService {
	return &bettingService{
		betRepo:      betRepo,
		statsRepo:    statsRepo,
		points:       points,
		rules:        rules,
		achievements: achievements,
		publisher:    publisher,
		redisClient:  redisClient,
		betGap:       betGap,
		log:          log,
	}
}

func (s *bettingService) PlaceBet(ctx context.Context, userID, predictionID uuid.UUID, amount int64, choice string) (*model.Bet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: bet amount must be positive", apperror.ErrInvalidInput)
	}

	prediction, err := s.betRepo.FindPrediction(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("%w: prediction not found", apperror.ErrNotFound)
	}
	if prediction.Status != model.PredictionStatusOpen {
		return nil, fmt.Errorf("%w: prediction is not open", apperror.ErrBadRequest)
	}
	if prediction.ClosesAt != nil && time.Now().After(*prediction.ClosesAt) {
		return nil, fmt.Errorf("%w: prediction is closed", apperror.ErrBadRequest)
	}
	if !validChoice(prediction.Choices, choice) {
		return nil, fmt.Errorf("%w: unknown choice %q", apperror.ErrInvalidInput, choice)
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, userID, "place_bet", s.betGap)
	if err != nil {
		s.log.WithError(err).Warn("bet rate limit check failed, continuing")
	} else if !allowed {
		return nil, apperror.ErrRateLimitExceeded
	}

	bet := &model.Bet{
		ID:           uuid.New(),
		UserID:       userID,
		PredictionID: predictionID,
		Amount:       amount,
		Choice:       choice,
		Status:       model.BetStatusPending,
	}
	ref := &model.Reference{Type: model.ReferenceTypeBet, ID: bet.ID.String()}

	// 1. Debit first: fails fast on insufficient funds with no state change.
	if _, err := s.points.Deduct(ctx, userID, amount, model.PointTypeBetcoins, "bet placed: "+prediction.Title, ref); err != nil {
		return nil, err
	}

	// 2. Persist the bet. On failure the debit is compensated with a refund
	// transaction before the error reaches the caller.
	if err := s.betRepo.Insert(ctx, bet); err != nil {
		if _, refundErr := s.points.Refund(ctx, userID, amount, model.PointTypeBetcoins, "bet refund: storage failure", ref); refundErr != nil {
			// Stranded debit. The transaction log still holds the spend row,
			// so reconciliation can repair this, but it needs eyes now.
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"bet_id":  bet.ID,
				"amount":  amount,
				"error":   refundErr,
			}).Error("refund after bet storage failure also failed")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrBetStorage, err)
	}

	// 3. Best-effort side effects: stats, earning rules, notification.
	if err := s.statsRepo.RecordBetPlaced(ctx, userID, amount); err != nil {
		s.log.WithError(err).Warn("failed to record bet placement stats")
	}
	s.rules.ProcessAction(ctx, model.TriggerBetPlaced, userID, map[string]any{"bet_id": bet.ID.String()})
	s.achievements.Evaluate(ctx, userID)

	s.publisher.Publish(ctx, events.Event{
		Type:   events.TypeBetPlaced,
		UserID: userID,
		Payload: map[string]any{
			"bet_id":        bet.ID.String(),
			"prediction_id": predictionID.String(),
			"amount":        amount,
			"choice":        choice,
		},
	})

	return bet, nil
}

func (s *bettingService) ResolveBet(ctx context.Context, betID uuid.UUID, outcome string) (*model.Bet, error) {
	bet, err := s.betRepo.FindByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("%w: bet not found", apperror.ErrNotFound)
	}
	if bet.Status.Terminal() {
		// Already settled: idempotent no-op.
		return bet, nil
	}

	prediction, err := s.betRepo.FindPrediction(ctx, bet.PredictionID)
	if err != nil {
		return nil, fmt.Errorf("%w: prediction not found", apperror.ErrNotFound)
	}

	won := bet.Choice == outcome
	status := model.BetStatusLost
	var payout int64
	if won {
		status = model.BetStatusWon
		payout = bet.Amount * prediction.OddsBps / 10000
	}

	// The pending->terminal transition is the idempotency gate: only the
	// caller that wins it credits the payout.
	if err := s.betRepo.MarkResolved(ctx, betID, status, payout); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.betRepo.FindByID(ctx, betID)
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	if won {
		ref := &model.Reference{Type: model.ReferenceTypeBet, ID: bet.ID.String()}
		if _, err := s.points.Award(ctx, bet.UserID, payout, model.PointTypeBetcoins, "bet won: "+prediction.Title, ref); err != nil {
			// Bet is marked won but the payout credit failed. The audit
			// trail has no credit row for this bet, which is what the
			// reconciliation report keys on.
			s.log.WithFields(logrus.Fields{
				"bet_id": betID,
				"payout": payout,
				"error":  err,
			}).Error("payout credit failed after bet marked won")
			return nil, fmt.Errorf("%w: payout credit failed", apperror.ErrStorage)
		}

		if err := s.statsRepo.RecordBetWon(ctx, bet.UserID, payout); err != nil {
			s.log.WithError(err).Warn("failed to record bet win stats")
		}
		s.rules.ProcessAction(ctx, model.TriggerBetWon, bet.UserID, map[string]any{"bet_id": bet.ID.String()})
	} else {
		if err := s.statsRepo.RecordBetLost(ctx, bet.UserID); err != nil {
			s.log.WithError(err).Warn("failed to record bet loss stats")
		}
	}

	s.achievements.Evaluate(ctx, bet.UserID)

	s.publisher.Publish(ctx, events.Event{
		Type:   events.TypeBetSettled,
		UserID: bet.UserID,
		Payload: map[string]any{
			"bet_id": bet.ID.String(),
			"status": string(status),
			"payout": payout,
		},
	})

	return s.betRepo.FindByID(ctx, betID)
}

func (s *bettingService) ResolvePrediction(ctx context.Context, predictionID uuid.UUID, outcome string) error {
	prediction, err := s.betRepo.FindPrediction(ctx, predictionID)
	if err != nil {
		return fmt.Errorf("%w: prediction not found", apperror.ErrNotFound)
	}
	if prediction.Status != model.PredictionStatusOpen {
		return fmt.Errorf("%w: prediction already %s", apperror.ErrBadRequest, prediction.Status)
	}
	if !validChoice(prediction.Choices, outcome) {
		return fmt.Errorf("%w: outcome %q is not a choice", apperror.ErrInvalidInput, outcome)
	}

	bets, err := s.betRepo.FindPendingByPrediction(ctx, predictionID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	for _, bet := range bets {
		if _, err := s.ResolveBet(ctx, bet.ID, outcome); err != nil {
			// Keep settling the remaining bets; the failed one stays
			// pending and is picked up by the sweep job.
			s.log.WithFields(logrus.Fields{
				"bet_id": bet.ID,
				"error":  err,
			}).Error("bet settlement failed, continuing")
		}
	}

	return s.betRepo.UpdatePredictionStatus(ctx, predictionID, model.PredictionStatusResolved, &outcome)
}

// SweepStrandedBets picks up bets left pending after a settlement failure
// during ResolvePrediction, for example a payout credit that hit a storage
// error. The prediction's recorded outcome makes the retry deterministic.
func (s *bettingService) SweepStrandedBets(ctx context.Context) (int, error) {
	bets, err := s.betRepo.FindStrandedPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	settled := 0
	for _, bet := range bets {
		prediction, err := s.betRepo.FindPrediction(ctx, bet.PredictionID)
		if err != nil || prediction.Outcome == nil {
			s.log.WithFields(logrus.Fields{
				"bet_id": bet.ID,
				"error":  err,
			}).Error("stranded bet has no usable prediction outcome")
			continue
		}

		if _, err := s.ResolveBet(ctx, bet.ID, *prediction.Outcome); err != nil {
			s.log.WithFields(logrus.Fields{"bet_id": bet.ID, "error": err}).Warn("stranded bet settlement failed, will retry next sweep")
			continue
		}
		settled++
	}

	return settled, nil
}

func (s *bettingService) CancelPrediction(ctx context.Context, predictionID uuid.UUID) error {
	prediction, err := s.betRepo.FindPrediction(ctx, predictionID)
	if err != nil {
		return fmt.Errorf("%w: prediction not found", apperror.ErrNotFound)
	}
	if prediction.Status != model.PredictionStatusOpen {
		return fmt.Errorf("%w: prediction already %s", apperror.ErrBadRequest, prediction.Status)
	}

	bets, err := s.betRepo.FindPendingByPrediction(ctx, predictionID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	for _, bet := range bets {
		if err := s.betRepo.MarkResolved(ctx, bet.ID, model.BetStatusRefunded, bet.Amount); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			s.log.WithFields(logrus.Fields{"bet_id": bet.ID, "error": err}).Error("failed to mark bet refunded")
			continue
		}

		ref := &model.Reference{Type: model.ReferenceTypeBet, ID: bet.ID.String()}
		if _, err := s.points.Refund(ctx, bet.UserID, bet.Amount, model.PointTypeBetcoins, "bet refund: prediction cancelled", ref); err != nil {
			s.log.WithFields(logrus.Fields{"bet_id": bet.ID, "error": err}).Error("stake refund failed")
			continue
		}

		s.publisher.Publish(ctx, events.Event{
			Type:   events.TypeBetRefunded,
			UserID: bet.UserID,
			Payload: map[string]any{
				"bet_id": bet.ID.String(),
				"amount": bet.Amount,
			},
		})
	}

	return s.betRepo.UpdatePredictionStatus(ctx, predictionID, model.PredictionStatusCancelled, nil)
}

func (s *bettingService) CreatePrediction(ctx context.Context, title string, choices []string, oddsBps int64, closesAt *time.Time) (*model.Prediction, error) {
	if len(choices) < 2 {
		return nil, fmt.Errorf("%w: a prediction needs at least two choices", apperror.ErrInvalidInput)
	}
	if oddsBps <= 10000 {
		return nil, fmt.Errorf("%w: odds must pay more than the stake", apperror.ErrInvalidInput)
	}

	prediction := &model.Prediction{
		Title:    title,
		Choices:  strings.Join(choices, ","),
		OddsBps:  oddsBps,
		Status:   model.PredictionStatusOpen,
		ClosesAt: closesAt,
	}
	if err := s.betRepo.CreatePrediction(ctx, prediction); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	return prediction, nil
}

func (s *bettingService) ListOpenPredictions(ctx context.Context) ([]model.Prediction, error) {
	return s.betRepo.FindOpenPredictions(ctx)
}

func (s *bettingService) ListBets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Bet, int64, error) {
	return s.betRepo.FindByUser(ctx, userID, limit, offset)
}

func validChoice(choices, choice string) bool {
	for _, c := range strings.Split(choices, ",") {
		if strings.TrimSpace(c) == choice {
			return true
		}
	}
	return false
}
