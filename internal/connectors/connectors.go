// Package connectors holds the SIEM product connectors rules are synced
// from. Each connector is constructed with an explicit config and
// registered once per deployment; the current implementations are stubs
// returning fixed mock rules in the shape the real APIs would.
package connectors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/driftwatch-systems/driftwatch/internal/models"
)

// Connector is a rule source for one SIEM product.
type Connector interface {
	Name() string
	ListRules(ctx context.Context) ([]models.SourceRule, error)
}

// Registry maps connector names (lowercased) to instances.
type Registry struct {
	connectors map[string]Connector
	order      []string
}

func NewRegistry(conns ...Connector) *Registry {
	r := &Registry{connectors: make(map[string]Connector, len(conns))}
	for _, c := range conns {
		r.connectors[normalize(c.Name())] = c
		r.order = append(r.order, c.Name())
	}
	sort.Strings(r.order)
	return r
}

// Names lists registered connector names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Get looks a connector up by name, case-insensitively.
func (r *Registry) Get(name string) (Connector, error) {
	c, ok := r.connectors[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("SIEM %q not supported", name)
	}
	return c, nil
}

// All returns every registered connector in name order.
func (r *Registry) All() []Connector {
	conns := make([]Connector, 0, len(r.order))
	for _, name := range r.order {
		conns = append(conns, r.connectors[normalize(name)])
	}
	return conns
}

func normalize(name string) string {
	return strings.ToLower(name)
}
