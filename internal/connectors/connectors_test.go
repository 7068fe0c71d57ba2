package connectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry(
		NewSplunk(SplunkConfig{BaseURL: "https://splunk-instance:8089"}),
		NewSentinel(SentinelConfig{BaseURL: "https://management.azure.com"}),
	)
}

func TestRegistryNames(t *testing.T) {
	registry := testRegistry()
	assert.Equal(t, []string{"Sentinel", "Splunk"}, registry.Names())
}

func TestRegistryGet(t *testing.T) {
	registry := testRegistry()

	// Lookup is case-insensitive.
	for _, name := range []string{"Splunk", "splunk", "SPLUNK"} {
		conn, err := registry.Get(name)
		require.NoError(t, err)
		assert.Equal(t, "Splunk", conn.Name())
	}

	_, err := registry.Get("qradar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestRegistryAll(t *testing.T) {
	registry := testRegistry()

	conns := registry.All()
	require.Len(t, conns, 2)
	assert.Equal(t, "Sentinel", conns[0].Name())
	assert.Equal(t, "Splunk", conns[1].Name())
}

func TestSplunkListRules(t *testing.T) {
	splunk := NewSplunk(SplunkConfig{})

	rules, err := splunk.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Block_Brute_Force", rules[0].ID)
	assert.Equal(t, "Splunk", rules[0].Source)
	assert.NotEmpty(t, rules[0].Query)
}

func TestSentinelListRules(t *testing.T) {
	sentinel := NewSentinel(SentinelConfig{})

	rules, err := sentinel.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "rule-101", rules[0].ID)
	assert.Equal(t, "Sentinel", rules[0].Source)
}

func TestSplunkAlertCounts(t *testing.T) {
	splunk := NewSplunk(SplunkConfig{})

	counts, err := splunk.AlertCounts(context.Background(), "index=auth action=failure | stats count by user")
	require.NoError(t, err)
	assert.Equal(t, 150, counts["count"])
}

func TestSentinelAlertCounts(t *testing.T) {
	sentinel := NewSentinel(SentinelConfig{})

	counts, err := sentinel.AlertCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, counts["rule-101"])
	assert.Equal(t, 45, counts["rule-102"])
}

func TestSentinelAuthenticate(t *testing.T) {
	sentinel := NewSentinel(SentinelConfig{TenantID: "t1", ClientID: "c1"})

	token, err := sentinel.Authenticate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}
