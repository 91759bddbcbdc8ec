package permission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sgdocumental/document-tracking/internal"
)

// GrantCache caches resolved permission sets. A nil cache disables caching.
type GrantCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelByPattern(ctx context.Context, pattern string) error
}

type Service struct {
	repo     Repository
	cache    GrantCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewService(repo Repository, cache GrantCache, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func userCacheKey(userID int64) string {
	return fmt.Sprintf("permisos:user:%d", userID)
}

// EffectivePermissions resolves the permissions a user actually holds: the
// union of their role's active grants and their direct active grants,
// restricted to permissions that are themselves active.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]Permiso, error) {
	if s.cache != nil {
		if b, err := s.cache.Get(ctx, userCacheKey(userID)); err == nil && b != nil {
			var cached []Permiso
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("discarding malformed cached permission set", "user_id", userID)
		}
	}

	rol, err := s.repo.GetUserRol(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve user role", err)
	}
	if rol == "" {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}

	permisos, err := s.repo.GetEffectivePermisos(NormalizeRole(rol), userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve permissions", err)
	}

	if s.cache != nil {
		if b, err := json.Marshal(permisos); err == nil {
			if err := s.cache.Set(ctx, userCacheKey(userID), b, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache permission set", "user_id", userID, "error", err)
			}
		}
	}

	return permisos, nil
}

func (s *Service) GetAllPermisos() ([]Permiso, error) {
	permisos, err := s.repo.GetAllPermisos()
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	return permisos, nil
}

// AssignToRole grants a permission to a role. Assigning an already active
// grant is a no-op; a revoked grant is reactivated.
func (s *Service) AssignToRole(ctx context.Context, dto AssignRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if err := s.requirePermiso(dto.PermisoID); err != nil {
		return err
	}

	grant, err := s.repo.GetRoleGrant(dto.Rol, dto.PermisoID)
	if err != nil {
		return internal.NewInternalError("failed to look up role grant", err)
	}

	switch {
	case grant == nil:
		grant = &RolPermiso{
			Rol:             dto.Rol,
			PermisoID:       dto.PermisoID,
			Activo:          true,
			FechaAsignacion: time.Now().UTC(),
		}
	case grant.Activo:
		return nil
	default:
		grant.Activo = true
		grant.FechaAsignacion = time.Now().UTC()
	}

	if err := s.repo.SaveRoleGrant(grant); err != nil {
		return internal.NewInternalError("failed to save role grant", err)
	}

	s.logger.Info("permission assigned to role", "rol", dto.Rol, "permiso_id", dto.PermisoID)
	s.invalidateAll(ctx)
	return nil
}

// RevokeFromRole deactivates a role grant. Revoking an already inactive
// grant is a no-op; a grant that never existed is NotFound.
func (s *Service) RevokeFromRole(ctx context.Context, dto AssignRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	grant, err := s.repo.GetRoleGrant(dto.Rol, dto.PermisoID)
	if err != nil {
		return internal.NewInternalError("failed to look up role grant", err)
	}
	if grant == nil {
		return internal.NewNotFoundError("role grant not found", internal.ErrCodeGrantNotFound)
	}
	if !grant.Activo {
		return nil
	}

	grant.Activo = false
	if err := s.repo.SaveRoleGrant(grant); err != nil {
		return internal.NewInternalError("failed to save role grant", err)
	}

	s.logger.Info("permission revoked from role", "rol", dto.Rol, "permiso_id", dto.PermisoID)
	s.invalidateAll(ctx)
	return nil
}

// BulkAssignToRole replaces the role's active grant set with exactly the
// listed permissions.
func (s *Service) BulkAssignToRole(ctx context.Context, dto BulkAssignRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	for _, id := range dto.PermisoIDs {
		if err := s.requirePermiso(id); err != nil {
			return err
		}
	}

	if err := s.repo.ReplaceRoleGrants(dto.Rol, dto.PermisoIDs); err != nil {
		return internal.NewInternalError("failed to replace role grants", err)
	}

	s.logger.Info("role grants replaced", "rol", dto.Rol, "count", len(dto.PermisoIDs))
	s.invalidateAll(ctx)
	return nil
}

// AssignToUser grants a permission directly to a user, same idempotence
// rules as role grants.
func (s *Service) AssignToUser(ctx context.Context, dto AssignUserDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if err := s.requirePermiso(dto.PermisoID); err != nil {
		return err
	}

	grant, err := s.repo.GetUserGrant(dto.UsuarioID, dto.PermisoID)
	if err != nil {
		return internal.NewInternalError("failed to look up user grant", err)
	}

	switch {
	case grant == nil:
		grant = &UsuarioPermiso{
			UsuarioID:       dto.UsuarioID,
			PermisoID:       dto.PermisoID,
			Activo:          true,
			FechaAsignacion: time.Now().UTC(),
		}
	case grant.Activo:
		return nil
	default:
		grant.Activo = true
		grant.FechaAsignacion = time.Now().UTC()
	}

	if err := s.repo.SaveUserGrant(grant); err != nil {
		return internal.NewInternalError("failed to save user grant", err)
	}

	s.logger.Info("permission assigned to user", "usuario_id", dto.UsuarioID, "permiso_id", dto.PermisoID)
	s.invalidateUser(ctx, dto.UsuarioID)
	return nil
}

func (s *Service) RevokeFromUser(ctx context.Context, dto AssignUserDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	grant, err := s.repo.GetUserGrant(dto.UsuarioID, dto.PermisoID)
	if err != nil {
		return internal.NewInternalError("failed to look up user grant", err)
	}
	if grant == nil {
		return internal.NewNotFoundError("user grant not found", internal.ErrCodeGrantNotFound)
	}
	if !grant.Activo {
		return nil
	}

	grant.Activo = false
	if err := s.repo.SaveUserGrant(grant); err != nil {
		return internal.NewInternalError("failed to save user grant", err)
	}

	s.logger.Info("permission revoked from user", "usuario_id", dto.UsuarioID, "permiso_id", dto.PermisoID)
	s.invalidateUser(ctx, dto.UsuarioID)
	return nil
}

// RolesMatrix builds the roles x permissions grid for the admin screen.
func (s *Service) RolesMatrix() ([]RoleMatrixEntry, error) {
	permisos, err := s.repo.GetAllPermisos()
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}

	matrix := make([]RoleMatrixEntry, 0, len(GrantRoles))
	for _, rol := range GrantRoles {
		granted, err := s.repo.GetActiveRolePermisoIDs(rol)
		if err != nil {
			return nil, internal.NewInternalError("failed to list role grants", err)
		}
		grantedSet := make(map[int64]bool, len(granted))
		for _, id := range granted {
			grantedSet[id] = true
		}

		entry := RoleMatrixEntry{Rol: rol, Permisos: make([]MatrixPermiso, 0, len(permisos))}
		for _, p := range permisos {
			entry.Permisos = append(entry.Permisos, MatrixPermiso{
				ID:           p.ID,
				Codigo:       p.Codigo,
				Nombre:       p.Nombre,
				Modulo:       p.Modulo,
				TienePermiso: grantedSet[p.ID],
			})
		}
		matrix = append(matrix, entry)
	}

	return matrix, nil
}

// UserDetail reports, per permission, whether the user's role grants it and
// whether a direct grant exists.
func (s *Service) UserDetail(userID int64) (*UserPermissionDetail, error) {
	rol, err := s.repo.GetUserRol(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve user role", err)
	}
	if rol == "" {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}

	roleGranted, err := s.repo.GetActiveRolePermisoIDs(NormalizeRole(rol))
	if err != nil {
		return nil, internal.NewInternalError("failed to list role grants", err)
	}
	userGranted, err := s.repo.GetActiveUserPermisoIDs(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list user grants", err)
	}

	roleSet := make(map[int64]bool, len(roleGranted))
	for _, id := range roleGranted {
		roleSet[id] = true
	}
	userSet := make(map[int64]bool, len(userGranted))
	for _, id := range userGranted {
		userSet[id] = true
	}

	permisos, err := s.repo.GetAllPermisos()
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}

	detail := &UserPermissionDetail{
		UsuarioID: userID,
		Rol:       rol,
		Permisos:  make([]UserPermisoDetail, 0, len(permisos)),
	}
	for _, p := range permisos {
		porRol := roleSet[p.ID]
		porUsuario := userSet[p.ID]
		detail.Permisos = append(detail.Permisos, UserPermisoDetail{
			ID:          p.ID,
			Codigo:      p.Codigo,
			Nombre:      p.Nombre,
			Modulo:      p.Modulo,
			Descripcion: p.Descripcion,
			PorRol:      porRol,
			PorUsuario:  porUsuario,
			Efectivo:    p.Activo && (porRol || porUsuario),
		})
	}

	return detail, nil
}

func (s *Service) requirePermiso(id int64) error {
	permiso, err := s.repo.GetPermisoByID(id)
	if err != nil {
		return internal.NewInternalError("failed to look up permission", err)
	}
	if permiso == nil {
		return internal.NewNotFoundError(fmt.Sprintf("permission %d not found", id), internal.ErrCodePermissionNotFound)
	}
	return nil
}

// Role grants affect every user with that role, so any role mutation drops
// every cached set.
func (s *Service) invalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelByPattern(ctx, "permisos:user:*"); err != nil {
		s.logger.Warn("failed to invalidate permission cache", "error", err)
	}
}

func (s *Service) invalidateUser(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, userCacheKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate permission cache", "user_id", userID, "error", err)
	}
}
