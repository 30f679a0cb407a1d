package store

import (
	"context"
	"fmt"

	"github.com/ACTO-LLC/modern-accounting-sub000/internal/id"
	"github.com/ACTO-LLC/modern-accounting-sub000/internal/model"
)

// RuleStore provides typed access to bank rule records.
type RuleStore struct {
	s Store
}

// NewRuleStore wraps a generic store.
func NewRuleStore(s Store) *RuleStore {
	return &RuleStore{s: s}
}

// Create persists a rule, assigning an id if absent. Authoring validation
// is the caller's responsibility (rules.Validate).
func (rs *RuleStore) Create(ctx context.Context, rule model.BankRule) (model.BankRule, error) {
	if rule.ID == "" {
		rule.ID = id.NewRule()
	}
	if _, err := rs.s.Create(ctx, EntityRules, EncodeRule(rule)); err != nil {
		return model.BankRule{}, err
	}
	return rule, nil
}

// Get returns one rule by id.
func (rs *RuleStore) Get(ctx context.Context, ruleID string) (model.BankRule, error) {
	recs, err := rs.s.Query(ctx, EntityRules, Filter{}.Eq("id", ruleID))
	if err != nil {
		return model.BankRule{}, err
	}
	if len(recs) == 0 {
		return model.BankRule{}, fmt.Errorf("rule %s: %w", ruleID, ErrNotFound)
	}
	return DecodeRule(recs[0])
}

// Save writes back every field of an existing rule.
func (rs *RuleStore) Save(ctx context.Context, rule model.BankRule) error {
	return rs.s.Update(ctx, EntityRules, rule.ID, EncodeRule(rule))
}

// Delete removes a rule.
func (rs *RuleStore) Delete(ctx context.Context, ruleID string) error {
	return rs.s.Delete(ctx, EntityRules, ruleID)
}

// All returns every stored rule.
func (rs *RuleStore) All(ctx context.Context) ([]model.BankRule, error) {
	return rs.query(ctx, nil)
}

// Enabled returns the currently enabled rule set, the engine's input.
func (rs *RuleStore) Enabled(ctx context.Context) ([]model.BankRule, error) {
	return rs.query(ctx, Filter{}.Eq("enabled", true))
}

func (rs *RuleStore) query(ctx context.Context, filter Filter) ([]model.BankRule, error) {
	recs, err := rs.s.Query(ctx, EntityRules, filter)
	if err != nil {
		return nil, err
	}
	out := make([]model.BankRule, 0, len(recs))
	for _, rec := range recs {
		rule, err := DecodeRule(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}
