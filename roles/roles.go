// Package roles provides the role-administration service: loading a
// role's permission matrix into an editor and persisting the edited
// matrix in canonical storage shape.
package roles

import (
	"context"
	"fmt"

	access "github.com/fieldline/access-go"
	"github.com/fieldline/access-go/matrix"
)

// Backend defines the contract for pluggable role persistence backends.
// Implementations: httpapi/ (REST), fake/ (testing).
type Backend interface {
	// Permissions returns the stored matrix for a role.
	Permissions(ctx context.Context, roleID string) (access.StoredMatrix, error)

	// SavePermissions persists a role's matrix wholesale.
	SavePermissions(ctx context.Context, roleID string, m access.StoredMatrix) error
}

// Service implements access.RoleService with a configurable backend.
type Service struct {
	backend Backend
	catalog matrix.Catalog
}

// compile-time check
var _ access.RoleService = (*Service)(nil)

// New creates a role service over the given backend and module catalog.
func New(backend Backend, catalog matrix.Catalog) *Service {
	return &Service{backend: backend, catalog: catalog}
}

// Permissions returns the stored matrix for a role.
func (s *Service) Permissions(ctx context.Context, roleID string) (access.StoredMatrix, error) {
	if roleID == "" {
		return nil, fmt.Errorf("access/roles: roleID cannot be empty")
	}

	m, err := s.backend.Permissions(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("access/roles: %w", err)
	}
	return m, nil
}

// SavePermissions persists a role's matrix wholesale. Matrices are never
// partially persisted.
func (s *Service) SavePermissions(ctx context.Context, roleID string, m access.StoredMatrix) error {
	if roleID == "" {
		return fmt.Errorf("access/roles: roleID cannot be empty")
	}

	if err := s.backend.SavePermissions(ctx, roleID, m); err != nil {
		return fmt.Errorf("access/roles: %w", err)
	}
	return nil
}

// Editor returns a matrix editor for the role. An empty roleID yields a
// freshly seeded editor for a role being created; otherwise the stored
// matrix is loaded and rehydrated.
func (s *Service) Editor(ctx context.Context, roleID string) (*matrix.Editor, error) {
	if roleID == "" {
		return matrix.New(s.catalog), nil
	}

	stored, err := s.Permissions(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return matrix.Load(s.catalog, stored), nil
}

// SaveEditor persists the editor's current matrix for the role.
func (s *Service) SaveEditor(ctx context.Context, roleID string, e *matrix.Editor) error {
	return s.SavePermissions(ctx, roleID, e.ToStorage())
}
