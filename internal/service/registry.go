package service

import (
	"context"
	"sync"

	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"github.com/sirupsen/logrus"
)

// Registry holds an immutable in-memory snapshot of the point type, rank and
// earning rule tables. Lookups during request handling never hit the
// database; Refresh is called at startup, after admin changes and from the
// hourly cron job.
type Registry struct {
	mu             sync.RWMutex
	pointTypes     map[string]model.PointType
	ranks          []model.Rank
	rulesByTrigger map[string][]model.EarningRule

	pointTypeRepo repository.PointTypeRepository
	rankRepo      repository.RankRepository
	ruleRepo      repository.EarningRuleRepository
	log           *logrus.Logger
}

func NewRegistry(pointTypeRepo repository.PointTypeRepository, rankRepo repository.RankRepository, ruleRepo repository.EarningRuleRepository, log *logrus.Logger) *Registry {
	return &Registry{
		pointTypes:     map[string]model.PointType{},
		rulesByTrigger: map[string][]model.EarningRule{},
		pointTypeRepo:  pointTypeRepo,
		rankRepo:       rankRepo,
		ruleRepo:       ruleRepo,
		log:            log,
	}
}

func (r *Registry) Refresh(ctx context.Context) error {
	pointTypes, err := r.pointTypeRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	ranks, err := r.rankRepo.FindAllOrdered(ctx)
	if err != nil {
		return err
	}

	rules, err := r.ruleRepo.FindAll(ctx)
	if err != nil {
		return err
	}

	typeMap := make(map[string]model.PointType, len(pointTypes))
	for _, pt := range pointTypes {
		typeMap[pt.Slug] = pt
	}

	ruleMap := make(map[string][]model.EarningRule)
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		ruleMap[rule.TriggerAction] = append(ruleMap[rule.TriggerAction], rule)
	}

	r.mu.Lock()
	r.pointTypes = typeMap
	r.ranks = ranks
	r.rulesByTrigger = ruleMap
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"point_types": len(typeMap),
		"ranks":       len(ranks),
		"rules":       len(rules),
	}).Info("registry snapshot refreshed")

	return nil
}

// PointType returns the active point type for slug, if any.
func (r *Registry) PointType(slug string) (model.PointType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pt, ok := r.pointTypes[slug]
	if !ok || !pt.Active {
		return model.PointType{}, false
	}
	return pt, true
}

// Ranks returns the rank ladder ordered by points required ascending.
func (r *Registry) Ranks() []model.Rank {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Rank, len(r.ranks))
	copy(out, r.ranks)
	return out
}

// RulesFor returns the active rules for a trigger, priority ascending.
func (r *Registry) RulesFor(triggerAction string) []model.EarningRule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := r.rulesByTrigger[triggerAction]
	out := make([]model.EarningRule, len(rules))
	copy(out, rules)
	return out
}
