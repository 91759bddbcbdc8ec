package permission_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sgdocumental/document-tracking/internal"
	"github.com/sgdocumental/document-tracking/internal/permission"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPermissionService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Service Suite")
}

type roleKey struct {
	rol       string
	permisoID int64
}

type userKey struct {
	userID    int64
	permisoID int64
}

// MockRepository implements permission.Repository over maps.
type MockRepository struct {
	permisos   map[int64]*permission.Permiso
	userRoles  map[int64]string
	roleGrants map[roleKey]*permission.RolPermiso
	userGrants map[userKey]*permission.UsuarioPermiso
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		permisos:   make(map[int64]*permission.Permiso),
		userRoles:  make(map[int64]string),
		roleGrants: make(map[roleKey]*permission.RolPermiso),
		userGrants: make(map[userKey]*permission.UsuarioPermiso),
		nextID:     1,
	}
}

func (m *MockRepository) SetShouldFail(fail bool, err error) {
	m.shouldFail = fail
	m.failError = err
}

func (m *MockRepository) AddPermiso(p *permission.Permiso) {
	m.permisos[p.ID] = p
}

func (m *MockRepository) GetAllPermisos() ([]permission.Permiso, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []permission.Permiso
	for _, p := range m.permisos {
		out = append(out, *p)
	}
	return out, nil
}

func (m *MockRepository) GetPermisoByID(id int64) (*permission.Permiso, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.permisos[id], nil
}

func (m *MockRepository) GetEffectivePermisos(rol string, userID int64) ([]permission.Permiso, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	seen := make(map[int64]bool)
	var out []permission.Permiso
	add := func(permisoID int64) {
		p, ok := m.permisos[permisoID]
		if !ok || !p.Activo || seen[permisoID] {
			return
		}
		seen[permisoID] = true
		out = append(out, *p)
	}
	for key, g := range m.roleGrants {
		if key.rol == rol && g.Activo {
			add(key.permisoID)
		}
	}
	for key, g := range m.userGrants {
		if key.userID == userID && g.Activo {
			add(key.permisoID)
		}
	}
	return out, nil
}

func (m *MockRepository) GetUserRol(userID int64) (string, error) {
	if m.shouldFail {
		return "", m.failError
	}
	return m.userRoles[userID], nil
}

func (m *MockRepository) GetRoleGrant(rol string, permisoID int64) (*permission.RolPermiso, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.roleGrants[roleKey{rol, permisoID}], nil
}

func (m *MockRepository) SaveRoleGrant(grant *permission.RolPermiso) error {
	if m.shouldFail {
		return m.failError
	}
	if grant.ID == 0 {
		grant.ID = m.nextID
		m.nextID++
	}
	m.roleGrants[roleKey{grant.Rol, grant.PermisoID}] = grant
	return nil
}

func (m *MockRepository) GetActiveRolePermisoIDs(rol string) ([]int64, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []int64
	for key, g := range m.roleGrants {
		if key.rol == rol && g.Activo {
			out = append(out, key.permisoID)
		}
	}
	return out, nil
}

func (m *MockRepository) ReplaceRoleGrants(rol string, permisoIDs []int64) error {
	if m.shouldFail {
		return m.failError
	}
	for key, g := range m.roleGrants {
		if key.rol == rol {
			g.Activo = false
		}
	}
	now := time.Now().UTC()
	for _, id := range permisoIDs {
		key := roleKey{rol, id}
		if g, ok := m.roleGrants[key]; ok {
			g.Activo = true
			g.FechaAsignacion = now
			continue
		}
		m.roleGrants[key] = &permission.RolPermiso{
			ID:              m.nextID,
			Rol:             rol,
			PermisoID:       id,
			Activo:          true,
			FechaAsignacion: now,
		}
		m.nextID++
	}
	return nil
}

func (m *MockRepository) GetUserGrant(userID, permisoID int64) (*permission.UsuarioPermiso, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.userGrants[userKey{userID, permisoID}], nil
}

func (m *MockRepository) SaveUserGrant(grant *permission.UsuarioPermiso) error {
	if m.shouldFail {
		return m.failError
	}
	if grant.ID == 0 {
		grant.ID = m.nextID
		m.nextID++
	}
	m.userGrants[userKey{grant.UsuarioID, grant.PermisoID}] = grant
	return nil
}

func (m *MockRepository) GetActiveUserPermisoIDs(userID int64) ([]int64, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []int64
	for key, g := range m.userGrants {
		if key.userID == userID && g.Activo {
			out = append(out, key.permisoID)
		}
	}
	return out, nil
}

// MockCache records invalidations.
type MockCache struct {
	store           map[string][]byte
	patternDeletes  []string
	explicitDeletes []string
}

func NewMockCache() *MockCache {
	return &MockCache{store: make(map[string][]byte)}
}

func (c *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.store[key], nil
}

func (c *MockCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	c.store[key] = val
	return nil
}

func (c *MockCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
		c.explicitDeletes = append(c.explicitDeletes, k)
	}
	return nil
}

func (c *MockCache) DelByPattern(ctx context.Context, pattern string) error {
	c.patternDeletes = append(c.patternDeletes, pattern)
	c.store = make(map[string][]byte)
	return nil
}

var _ = Describe("Permission Service", func() {
	var (
		mockRepo *MockRepository
		cache    *MockCache
		service  *permission.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		cache = NewMockCache()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = permission.NewService(mockRepo, cache, time.Minute, logger)

		mockRepo.AddPermiso(&permission.Permiso{ID: 5, Codigo: "documentos.crear", Nombre: "Registrar", Modulo: "documentos", Activo: true})
		mockRepo.AddPermiso(&permission.Permiso{ID: 7, Codigo: "documentos.editar", Nombre: "Editar", Modulo: "documentos", Activo: true})
		mockRepo.AddPermiso(&permission.Permiso{ID: 9, Codigo: "usuarios.gestionar", Nombre: "Gestionar usuarios", Modulo: "usuarios", Activo: true})
		mockRepo.AddPermiso(&permission.Permiso{ID: 11, Codigo: "permisos.legacy", Nombre: "Legacy", Modulo: "permisos", Activo: false})
	})

	Describe("EffectivePermissions", func() {
		BeforeEach(func() {
			mockRepo.userRoles[1] = permission.RoleAdministrador
			mockRepo.userRoles[2] = permission.RoleUsuario
		})

		It("unions role grants and direct user grants", func() {
			Expect(service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleUsuario, PermisoID: 5})).To(Succeed())
			Expect(service.AssignToUser(ctx, permission.AssignUserDTO{UsuarioID: 2, PermisoID: 9})).To(Succeed())

			permisos, err := service.EffectivePermissions(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			codes := make([]string, len(permisos))
			for i, p := range permisos {
				codes[i] = p.Codigo
			}
			Expect(codes).To(ConsistOf("documentos.crear", "usuarios.gestionar"))
		})

		It("normalizes Administrador to AdministradorSistema for role grants", func() {
			Expect(service.AssignToRole(ctx, permission.AssignRoleDTO{
				Rol: permission.RoleAdministradorSistema, PermisoID: 7,
			})).To(Succeed())

			permisos, err := service.EffectivePermissions(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(permisos).To(HaveLen(1))
			Expect(permisos[0].Codigo).To(Equal("documentos.editar"))
		})

		It("excludes globally inactive permissions even when granted", func() {
			Expect(service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleUsuario, PermisoID: 11})).To(Succeed())

			permisos, err := service.EffectivePermissions(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(permisos).To(BeEmpty())
		})

		It("deduplicates a permission granted by both role and user", func() {
			Expect(service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleUsuario, PermisoID: 5})).To(Succeed())
			Expect(service.AssignToUser(ctx, permission.AssignUserDTO{UsuarioID: 2, PermisoID: 5})).To(Succeed())

			permisos, err := service.EffectivePermissions(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(permisos).To(HaveLen(1))
		})

		It("returns NotFound for an unknown user", func() {
			_, err := service.EffectivePermissions(ctx, 404)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})

		It("propagates repository failures instead of returning an empty set", func() {
			mockRepo.SetShouldFail(true, errors.New("db down"))
			_, err := service.EffectivePermissions(ctx, 2)
			Expect(err).To(HaveOccurred())
		})

		It("serves the second call from cache", func() {
			Expect(service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleUsuario, PermisoID: 5})).To(Succeed())

			_, err := service.EffectivePermissions(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			// With the set cached a repo failure goes unnoticed.
			mockRepo.SetShouldFail(true, errors.New("db down"))
			permisos, err := service.EffectivePermissions(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(permisos).To(HaveLen(1))
		})
	})

	Describe("AssignToRole", func() {
		It("creates a new active grant", func() {
			err := service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 5})
			Expect(err).NotTo(HaveOccurred())

			grant, _ := mockRepo.GetRoleGrant(permission.RoleSupervisor, 5)
			Expect(grant).NotTo(BeNil())
			Expect(grant.Activo).To(BeTrue())
		})

		It("is a no-op when the grant is already active", func() {
			dto := permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 5}
			Expect(service.AssignToRole(ctx, dto)).To(Succeed())
			first, _ := mockRepo.GetRoleGrant(permission.RoleSupervisor, 5)
			firstAssigned := first.FechaAsignacion

			Expect(service.AssignToRole(ctx, dto)).To(Succeed())
			second, _ := mockRepo.GetRoleGrant(permission.RoleSupervisor, 5)
			Expect(second.FechaAsignacion).To(Equal(firstAssigned))
		})

		It("reactivates a revoked grant", func() {
			dto := permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 5}
			Expect(service.AssignToRole(ctx, dto)).To(Succeed())
			Expect(service.RevokeFromRole(ctx, dto)).To(Succeed())
			Expect(service.AssignToRole(ctx, dto)).To(Succeed())

			grant, _ := mockRepo.GetRoleGrant(permission.RoleSupervisor, 5)
			Expect(grant.Activo).To(BeTrue())
		})

		It("rejects an unknown permission", func() {
			err := service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 999})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePermissionNotFound))
		})

		It("rejects an unknown role", func() {
			err := service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: "Becario", PermisoID: 5})
			Expect(err).To(HaveOccurred())
		})

		It("invalidates every cached permission set", func() {
			Expect(service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 5})).To(Succeed())
			Expect(cache.patternDeletes).To(ContainElement("permisos:user:*"))
		})
	})

	Describe("RevokeFromRole", func() {
		It("deactivates an active grant", func() {
			dto := permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 5}
			Expect(service.AssignToRole(ctx, dto)).To(Succeed())
			Expect(service.RevokeFromRole(ctx, dto)).To(Succeed())

			grant, _ := mockRepo.GetRoleGrant(permission.RoleSupervisor, 5)
			Expect(grant.Activo).To(BeFalse())
		})

		It("is a no-op when the grant is already inactive", func() {
			dto := permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 5}
			Expect(service.AssignToRole(ctx, dto)).To(Succeed())
			Expect(service.RevokeFromRole(ctx, dto)).To(Succeed())
			Expect(service.RevokeFromRole(ctx, dto)).To(Succeed())
		})

		It("returns NotFound when the grant never existed", func() {
			err := service.RevokeFromRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 7})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeGrantNotFound))
		})
	})

	Describe("BulkAssignToRole", func() {
		It("replaces the active grant set", func() {
			rol := permission.RoleAdministradorDocumentos
			Expect(service.BulkAssignToRole(ctx, permission.BulkAssignRoleDTO{Rol: rol, PermisoIDs: []int64{5, 9}})).To(Succeed())
			Expect(service.BulkAssignToRole(ctx, permission.BulkAssignRoleDTO{Rol: rol, PermisoIDs: []int64{5, 7}})).To(Succeed())

			ids, err := mockRepo.GetActiveRolePermisoIDs(rol)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(5), int64(7)))
		})

		It("rejects the whole batch when a permission is unknown", func() {
			err := service.BulkAssignToRole(ctx, permission.BulkAssignRoleDTO{
				Rol: permission.RoleSupervisor, PermisoIDs: []int64{5, 999},
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AssignToUser and RevokeFromUser", func() {
		It("follows the same idempotence rules as role grants", func() {
			dto := permission.AssignUserDTO{UsuarioID: 3, PermisoID: 5}
			Expect(service.AssignToUser(ctx, dto)).To(Succeed())
			Expect(service.AssignToUser(ctx, dto)).To(Succeed())
			Expect(service.RevokeFromUser(ctx, dto)).To(Succeed())
			Expect(service.RevokeFromUser(ctx, dto)).To(Succeed())

			err := service.RevokeFromUser(ctx, permission.AssignUserDTO{UsuarioID: 3, PermisoID: 7})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeGrantNotFound))
		})

		It("invalidates only the affected user's cached set", func() {
			Expect(service.AssignToUser(ctx, permission.AssignUserDTO{UsuarioID: 3, PermisoID: 5})).To(Succeed())
			Expect(cache.explicitDeletes).To(ContainElement("permisos:user:3"))
			Expect(cache.patternDeletes).To(BeEmpty())
		})
	})

	Describe("RolesMatrix", func() {
		It("flags granted permissions per role", func() {
			Expect(service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleSupervisor, PermisoID: 5})).To(Succeed())

			matrix, err := service.RolesMatrix()
			Expect(err).NotTo(HaveOccurred())
			Expect(matrix).To(HaveLen(len(permission.GrantRoles)))

			var supervisor *permission.RoleMatrixEntry
			for i := range matrix {
				if matrix[i].Rol == permission.RoleSupervisor {
					supervisor = &matrix[i]
				}
			}
			Expect(supervisor).NotTo(BeNil())
			for _, p := range supervisor.Permisos {
				if p.ID == 5 {
					Expect(p.TienePermiso).To(BeTrue())
				} else {
					Expect(p.TienePermiso).To(BeFalse())
				}
			}
		})
	})

	Describe("UserDetail", func() {
		BeforeEach(func() {
			mockRepo.userRoles[2] = permission.RoleUsuario
		})

		It("distinguishes role grants from direct grants", func() {
			Expect(service.AssignToRole(ctx, permission.AssignRoleDTO{Rol: permission.RoleUsuario, PermisoID: 5})).To(Succeed())
			Expect(service.AssignToUser(ctx, permission.AssignUserDTO{UsuarioID: 2, PermisoID: 9})).To(Succeed())

			detail, err := service.UserDetail(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Rol).To(Equal(permission.RoleUsuario))

			byID := map[int64]permission.UserPermisoDetail{}
			for _, p := range detail.Permisos {
				byID[p.ID] = p
			}
			Expect(byID[5].PorRol).To(BeTrue())
			Expect(byID[5].PorUsuario).To(BeFalse())
			Expect(byID[5].Efectivo).To(BeTrue())
			Expect(byID[9].PorRol).To(BeFalse())
			Expect(byID[9].PorUsuario).To(BeTrue())
			Expect(byID[7].Efectivo).To(BeFalse())
		})

		It("returns NotFound for an unknown user", func() {
			_, err := service.UserDetail(404)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})
})
