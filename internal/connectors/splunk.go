package connectors

import (
	"context"

	"github.com/driftwatch-systems/driftwatch/internal/models"
)

// SplunkConfig carries the credentials for a Splunk deployment.
type SplunkConfig struct {
	BaseURL  string
	Username string
	Password string
}

// Splunk fetches saved searches from a Splunk instance. The rules list
// is mocked until a real management-port client lands.
type Splunk struct {
	cfg SplunkConfig
}

func NewSplunk(cfg SplunkConfig) *Splunk {
	return &Splunk{cfg: cfg}
}

func (s *Splunk) Name() string { return "Splunk" }

func (s *Splunk) ListRules(ctx context.Context) ([]models.SourceRule, error) {
	return []models.SourceRule{
		{ID: "Block_Brute_Force", Query: "index=auth action=failure | stats count by user", Source: s.Name()},
		{ID: "Rare_Process_Spawn", Query: "index=proc parent=cmd.exe | stats count by process_name", Source: s.Name()},
	}, nil
}

// AlertCounts reports per-rule alert counts. Stubbed pending a real
// Splunk search-job client.
func (s *Splunk) AlertCounts(ctx context.Context, searchQuery string) (map[string]int, error) {
	return map[string]int{"count": 150}, nil
}
