package auth

import (
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
)

// Resources guarded by the API.
const (
	ResourceAssistant = "assistant"
	ResourceMemory    = "memory"
	ResourceEvents    = "events"
)

// Actions on a resource.
const (
	ActionUse   = "use"
	ActionRead  = "read"
	ActionWrite = "write"
)

// Permission represents a single resource-action pair.
type Permission struct {
	Resource string
	Action   string
}

// RBACService maps roles to their allowed permissions.
//
// The owner may use the assistant, read and write session memory and watch
// the event feed. A guest may only talk to the assistant.
type RBACService struct {
	permissions map[domain.UserRole][]Permission
	log         *zap.Logger
}

func NewRBACService(log *zap.Logger) *RBACService {
	permissions := map[domain.UserRole][]Permission{
		domain.UserRoleOwner: {
			{Resource: ResourceAssistant, Action: ActionUse},
			{Resource: ResourceMemory, Action: ActionRead},
			{Resource: ResourceMemory, Action: ActionWrite},
			{Resource: ResourceEvents, Action: ActionRead},
		},
		domain.UserRoleGuest: {
			{Resource: ResourceAssistant, Action: ActionUse},
		},
	}

	log.Info("RBAC service initialized", zap.Int("roles", len(permissions)))
	return &RBACService{permissions: permissions, log: log}
}

func (s *RBACService) CheckPermission(role domain.UserRole, resource, action string) bool {
	perms, exists := s.permissions[role]
	if !exists {
		s.log.Warn("unknown role attempted access",
			zap.String("role", string(role)),
			zap.String("resource", resource),
		)
		return false
	}

	for _, p := range perms {
		if p.Resource == resource && p.Action == action {
			return true
		}
	}

	s.log.Warn("permission denied",
		zap.String("role", string(role)),
		zap.String("resource", resource),
		zap.String("action", action),
	)
	return false
}

// GetPermissions returns a copy of the role's permissions, or nil.
func (s *RBACService) GetPermissions(role domain.UserRole) []Permission {
	perms, exists := s.permissions[role]
	if !exists {
		return nil
	}
	result := make([]Permission, len(perms))
	copy(result, perms)
	return result
}
