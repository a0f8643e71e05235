package service

import (
	"context"
	"strconv"
	"time"

	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// EarningRuleService fans a trigger action out to all matching active rules.
// Each rule application is independently atomic; a capped or failing rule
// never blocks its siblings.
type EarningRuleService interface {
	// ProcessAction applies every active rule for the trigger in priority
	// order and returns how many awards were applied. It never returns an
	// error: per-rule failures are logged and skipped.
	ProcessAction(ctx context.Context, triggerAction string, userID uuid.UUID, context map[string]any) int
}

type earningRuleService struct {
	registry    *Registry
	ledger      repository.LedgerRepository
	points      PointService
	redisClient *redis.Client
	triggerGap  time.Duration
	log         *logrus.Logger
}

func NewEarningRuleService(registry *Registry, ledger repository.LedgerRepository, points PointService, redisClient *redis.Client, triggerGap time.Duration, log *logrus.Logger) EarningRuleService {
	return &earningRuleService{
		registry:    registry,
		ledger:      ledger,
		points:      points,
		redisClient: redisClient,
		triggerGap:  triggerGap,
		log:         log,
	}
}

func (s *earningRuleService) ProcessAction(ctx context.Context, triggerAction string, userID uuid.UUID, triggerContext map[string]any) int {
	// Burst guard: the daily/lifetime caps are the real business control,
	// the redis gate only absorbs rapid-fire duplicate triggers.
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, userID, "trigger:"+triggerAction, s.triggerGap)
	if err != nil {
		s.log.WithError(err).Warn("trigger rate limit check failed, continuing")
	} else if !allowed {
		return 0
	}

	awarded := 0
	for _, rule := range s.registry.RulesFor(triggerAction) {
		capped, err := s.capReached(ctx, userID, rule)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"rule_id": rule.ID,
				"user_id": userID,
				"error":   err,
			}).Warn("cap check failed, skipping rule")
			continue
		}
		if capped {
			continue
		}

		ref := &model.Reference{
			Type: model.ReferenceTypeEarningRule,
			ID:   strconv.FormatUint(uint64(rule.ID), 10),
		}
		if _, err := s.points.Award(ctx, userID, rule.PointsAwarded, rule.PointTypeSlug, rule.Name, ref); err != nil {
			s.log.WithFields(logrus.Fields{
				"rule_id": rule.ID,
				"trigger": triggerAction,
				"user_id": userID,
				"error":   err,
			}).Warn("rule award failed, continuing with remaining rules")
			continue
		}
		awarded++
	}

	if awarded > 0 {
		s.log.WithFields(logrus.Fields{
			"trigger": triggerAction,
			"user_id": userID,
			"awards":  awarded,
			"context": triggerContext,
		}).Debug("trigger processed")
	}

	return awarded
}

func (s *earningRuleService) capReached(ctx context.Context, userID uuid.UUID, rule model.EarningRule) (bool, error) {
	ruleID := strconv.FormatUint(uint64(rule.ID), 10)

	if rule.MaxDailyAwards != nil {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		count, err := s.ledger.CountEarnsByReference(ctx, userID, model.ReferenceTypeEarningRule, ruleID, &startOfDay)
		if err != nil {
			return false, err
		}
		if count >= int64(*rule.MaxDailyAwards) {
			return true, nil
		}
	}

	if rule.MaxTotalAwards != nil {
		count, err := s.ledger.CountEarnsByReference(ctx, userID, model.ReferenceTypeEarningRule, ruleID, nil)
		if err != nil {
			return false, err
		}
		if count >= int64(*rule.MaxTotalAwards) {
			return true, nil
		}
	}

	return false, nil
}
