package service

import (
	"context"

	"instantwin-bot/internal/common/logger"
	"instantwin-bot/internal/features/state/models"
	statestore "instantwin-bot/internal/features/state/service"
)

// PermissionService answers whether a principal may run management commands.
// A principal is authorized when the platform marks them as administrator or
// when any of their roles is in the persisted manager-role set.
type PermissionService struct {
	store *statestore.Store
}

func NewPermissionService(store *statestore.Store) *PermissionService {
	return &PermissionService{store: store}
}

// IsAuthorized checks the super-admin bypass first, then role membership.
func (s *PermissionService) IsAuthorized(ctx context.Context, isSuperAdmin bool, roles []string) bool {
	if isSuperAdmin {
		return true
	}

	allowed := make(map[string]struct{})
	for _, roleID := range s.store.Snapshot().AllowedRoles {
		allowed[roleID] = struct{}{}
	}
	for _, roleID := range roles {
		if _, ok := allowed[roleID]; ok {
			return true
		}
	}
	return false
}

// AddRole grants manager rights to a role. Adding an existing role is a
// no-op but still reports success.
func (s *PermissionService) AddRole(ctx context.Context, roleID string) error {
	err := s.store.Update(ctx, func(state *models.BotState) error {
		for _, existing := range state.AllowedRoles {
			if existing == roleID {
				return nil
			}
		}
		state.AllowedRoles = append(state.AllowedRoles, roleID)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Str("role_id", roleID).Msg("Manager role added")
	return nil
}

// RemoveRole revokes manager rights from a role; absent roles are ignored.
func (s *PermissionService) RemoveRole(ctx context.Context, roleID string) error {
	err := s.store.Update(ctx, func(state *models.BotState) error {
		filtered := state.AllowedRoles[:0]
		for _, existing := range state.AllowedRoles {
			if existing != roleID {
				filtered = append(filtered, existing)
			}
		}
		state.AllowedRoles = filtered
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Str("role_id", roleID).Msg("Manager role removed")
	return nil
}

// ListRoles returns the manager-role set in insertion order.
func (s *PermissionService) ListRoles(ctx context.Context) []string {
	return s.store.Snapshot().AllowedRoles
}
