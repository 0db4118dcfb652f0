// Package mock provides test doubles for advisor interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/advisor"
)

// Interface compliance checks.
var (
	_ advisor.Generator    = (*Generator)(nil)
	_ advisor.RosterSource = (*RosterSource)(nil)
)

// Generator is a test double for advisor.Generator.
// Set GenerateFn before calling Generate.
type Generator struct {
	GenerateFn func(ctx context.Context, req advisor.GenerationRequest) (advisor.Answer, error)
}

// Generate delegates to GenerateFn.
func (g *Generator) Generate(ctx context.Context, req advisor.GenerationRequest) (advisor.Answer, error) {
	return g.GenerateFn(ctx, req)
}

// RosterSource is a test double for advisor.RosterSource.
// Set LoadFn before calling Load.
type RosterSource struct {
	LoadFn func(ctx context.Context) (*advisor.Roster, error)
}

// Load delegates to LoadFn.
func (s *RosterSource) Load(ctx context.Context) (*advisor.Roster, error) {
	return s.LoadFn(ctx)
}
