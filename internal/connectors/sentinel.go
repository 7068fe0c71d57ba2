package connectors

import (
	"context"

	"github.com/driftwatch-systems/driftwatch/internal/models"
)

// SentinelConfig carries the Azure AD app registration used to reach
// Microsoft Sentinel.
type SentinelConfig struct {
	BaseURL      string
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Sentinel fetches analytics rules from Microsoft Sentinel. Rules and
// auth are mocked until a real Log Analytics client lands.
type Sentinel struct {
	cfg   SentinelConfig
	token string
}

func NewSentinel(cfg SentinelConfig) *Sentinel {
	return &Sentinel{cfg: cfg}
}

func (s *Sentinel) Name() string { return "Sentinel" }

// Authenticate obtains an API token from Azure AD. Mocked.
func (s *Sentinel) Authenticate(ctx context.Context) (string, error) {
	s.token = "mock-sentinel-token"
	return s.token, nil
}

func (s *Sentinel) ListRules(ctx context.Context) ([]models.SourceRule, error) {
	return []models.SourceRule{
		{ID: "rule-101", Query: "SecurityEvent | where EventID == 4625", Source: s.Name()},
		{ID: "rule-102", Query: "SigninLogs | where ResultType == 50074", Source: s.Name()},
	}, nil
}

// AlertCounts reports per-rule alert counts. Mocked.
func (s *Sentinel) AlertCounts(ctx context.Context) (map[string]int, error) {
	return map[string]int{
		"rule-101": 120,
		"rule-102": 45,
	}, nil
}
