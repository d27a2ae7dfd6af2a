package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// PermissionSource loads the permission names granted to a role
type PermissionSource interface {
	PermissionNames(ctx context.Context, roleID int64) ([]string, error)
}

type cacheEntry struct {
	permissions map[string]struct{}
	expiration  time.Time
}

// AuthorizationService answers permission checks, caching each role's grants for a TTL
type AuthorizationService struct {
	source        PermissionSource
	superuserRole string
	ttl           time.Duration
	now           func() time.Time

	mu    sync.RWMutex
	items map[int64]cacheEntry
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(source PermissionSource, superuserRole string, ttl time.Duration) *AuthorizationService {
	return &AuthorizationService{
		source:        source,
		superuserRole: superuserRole,
		ttl:           ttl,
		now:           time.Now,
		items:         make(map[int64]cacheEntry),
	}
}

// IsSuperuser reports whether roleName bypasses permission checks
func (s *AuthorizationService) IsSuperuser(roleName string) bool {
	return roleName != "" && roleName == s.superuserRole
}

// SuperuserRole returns the configured superuser role name
func (s *AuthorizationService) SuperuserRole() string {
	return s.superuserRole
}

func (s *AuthorizationService) load(ctx context.Context, roleID int64) (map[string]struct{}, error) {
	s.mu.RLock()
	entry, ok := s.items[roleID]
	s.mu.RUnlock()
	if ok && s.now().Before(entry.expiration) {
		return entry.permissions, nil
	}

	names, err := s.source.PermissionNames(ctx, roleID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	s.mu.Lock()
	s.items[roleID] = cacheEntry{permissions: set, expiration: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return set, nil
}

// HasPermission reports whether the role grants permission
func (s *AuthorizationService) HasPermission(ctx context.Context, roleID int64, roleName, permission string) (bool, error) {
	if s.IsSuperuser(roleName) {
		return true, nil
	}
	set, err := s.load(ctx, roleID)
	if err != nil {
		return false, err
	}
	_, ok := set[permission]
	return ok, nil
}

// Require returns a forbidden error unless the role grants permission
func (s *AuthorizationService) Require(ctx context.Context, roleID int64, roleName, permission string) error {
	ok, err := s.HasPermission(ctx, roleID, roleName, permission)
	if err != nil {
		return err
	}
	if !ok {
		logger.Debug().Int64("roleID", roleID).Str("permission", permission).Msg("Permission denied")
		return apperrors.NewForbiddenError("You do not have the " + permission + " permission")
	}
	return nil
}

// Permissions lists the role's grants, sorted. The superuser gets the whole catalog.
func (s *AuthorizationService) Permissions(ctx context.Context, roleID int64, roleName string) ([]string, error) {
	if s.IsSuperuser(roleName) {
		defs := Catalog()
		names := make([]string, len(defs))
		for i, d := range defs {
			names[i] = d.Name
		}
		return names, nil
	}

	set, err := s.load(ctx, roleID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Invalidate drops the cached grants of a role
func (s *AuthorizationService) Invalidate(roleID int64) {
	s.mu.Lock()
	delete(s.items, roleID)
	s.mu.Unlock()
}

// InvalidateAll empties the cache
func (s *AuthorizationService) InvalidateAll() {
	s.mu.Lock()
	s.items = make(map[int64]cacheEntry)
	s.mu.Unlock()
}
