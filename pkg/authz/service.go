package authz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/sirupsen/logrus"
)

const modelText = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act
`

// Policy maps an action to the subjects (roles) allowed to perform it.
type Policy map[string][]string

// Service enforces a Policy through a casbin enforcer.
type Service struct {
	enforcer *casbin.Enforcer
	actions  []string
	logger   *logrus.Entry
	mu       sync.RWMutex
}

// NewService builds an enforcer with policy loaded from code.
func NewService(policy Policy, logger *logrus.Logger) (*Service, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}

	normalized := make(map[string][]string, len(policy))
	for action, subjects := range policy {
		key := NormalizeAction(action)
		normalized[key] = append(normalized[key], subjects...)
	}
	actions := make([]string, 0, len(normalized))
	for action := range normalized {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	rules := make([][]string, 0, len(normalized))
	for _, action := range actions {
		for _, subject := range normalized[action] {
			rules = append(rules, []string{subject, action})
		}
	}
	if len(rules) > 0 {
		if _, err := enf.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("authz: failed to load policies: %w", err)
		}
	}

	return &Service{
		enforcer: enf,
		actions:  actions,
		logger:   logger.WithField("component", "authz"),
	}, nil
}

// Authorize returns a forbidden error if the request is denied.
func (s *Service) Authorize(ctx context.Context, req Request) error {
	allowed, err := s.Check(ctx, req)
	if err != nil {
		return err
	}
	if !allowed {
		s.logger.WithContext(ctx).WithFields(logrus.Fields{
			"subject": req.Subject,
			"action":  req.Action,
		}).Warn("authz denied request")
		return forbiddenError(req)
	}
	return nil
}

// Check evaluates a request without returning an authorization error.
func (s *Service) Check(ctx context.Context, req Request) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	res, err := s.enforcer.Enforce(req.Subject, req.Action)
	if err != nil {
		return false, fmt.Errorf("authz: enforce failed: %w", err)
	}
	recordDecision(req.Action, res, time.Since(start))
	return res, nil
}

// Actions lists the actions subject may perform, sorted.
func (s *Service) Actions(subject string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.actions))
	for _, action := range s.actions {
		ok, err := s.enforcer.Enforce(subject, action)
		if err != nil {
			return nil, fmt.Errorf("authz: enforce failed: %w", err)
		}
		if ok {
			out = append(out, action)
		}
	}
	return out, nil
}
