package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/sgdocumental/document-tracking/internal/permission"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with reference data and sample users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			clearTables(db)
		}

		seedAreas(db)
		seedTipos(db)
		seedPermisos(db)
		seedUsers(db, cfg.Security.BCryptCost)

		fmt.Println("Seeding complete")
	},
}

func clearTables(db *gorm.DB) {
	// Order respects foreign keys.
	tables := []string{
		"alertas", "historial_documento", "movimientos", "documentos",
		"usuario_permisos", "rol_permisos", "permisos",
		"usuarios", "tipos_documento", "areas",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedAreas(db *gorm.DB) {
	areas := []struct{ Nombre, Codigo, Descripcion string }{
		{"Secretaría General", "SG", "Mesa de entradas y despacho"},
		{"Contabilidad", "CONT", "Registro contable y presupuesto"},
		{"Recursos Humanos", "RRHH", "Gestión de personal"},
		{"Asesoría Legal", "LEG", "Dictámenes y contratos"},
	}
	for _, a := range areas {
		if exists(db, "areas", "codigo", a.Codigo) {
			continue
		}
		if err := db.Exec(
			"INSERT INTO areas (nombre, codigo, descripcion, activo) VALUES (?, ?, ?, true)",
			a.Nombre, a.Codigo, a.Descripcion,
		).Error; err != nil {
			log.Fatalf("failed to seed area %s: %v", a.Codigo, err)
		}
		fmt.Println("Seeded area:", a.Nombre)
	}
}

func seedTipos(db *gorm.DB) {
	tipos := []struct{ Nombre, Codigo, Descripcion string }{
		{"Nota Interna", "NI", "Comunicación entre áreas"},
		{"Resolución", "RES", "Acto administrativo resolutivo"},
		{"Factura", "FAC", "Comprobante de gasto"},
		{"Contrato", "CTR", "Contrato con terceros"},
	}
	for _, t := range tipos {
		if exists(db, "tipos_documento", "codigo", t.Codigo) {
			continue
		}
		if err := db.Exec(
			"INSERT INTO tipos_documento (nombre, codigo, descripcion, activo) VALUES (?, ?, ?, true)",
			t.Nombre, t.Codigo, t.Descripcion,
		).Error; err != nil {
			log.Fatalf("failed to seed tipo %s: %v", t.Codigo, err)
		}
		fmt.Println("Seeded tipo de documento:", t.Nombre)
	}
}

func seedPermisos(db *gorm.DB) {
	permisos := []struct{ Codigo, Nombre, Modulo string }{
		{permission.CodeDocumentosCrear, "Registrar documentos", "documentos"},
		{permission.CodeDocumentosEditar, "Editar documentos", "documentos"},
		{permission.CodeDocumentosEliminar, "Archivar documentos", "documentos"},
		{permission.CodeMovimientosCrear, "Registrar movimientos", "movimientos"},
		{permission.CodeUsuariosGestionar, "Gestionar usuarios", "usuarios"},
		{permission.CodePermisosGestionar, "Gestionar permisos", "permisos"},
	}
	for _, p := range permisos {
		if !exists(db, "permisos", "codigo", p.Codigo) {
			if err := db.Exec(
				"INSERT INTO permisos (codigo, nombre, modulo, activo) VALUES (?, ?, ?, true)",
				p.Codigo, p.Nombre, p.Modulo,
			).Error; err != nil {
				log.Fatalf("failed to seed permiso %s: %v", p.Codigo, err)
			}
			fmt.Println("Seeded permiso:", p.Codigo)
		}
	}

	// The system administrator role holds every seeded permission.
	now := time.Now().UTC()
	for _, p := range permisos {
		var permisoID int64
		row := db.Raw("SELECT id FROM permisos WHERE codigo = ?", p.Codigo).Row()
		if err := row.Scan(&permisoID); err != nil {
			log.Fatalf("failed to resolve permiso %s: %v", p.Codigo, err)
		}

		var one int
		row = db.Raw("SELECT 1 FROM rol_permisos WHERE rol = ? AND permiso_id = ?",
			permission.RoleAdministradorSistema, permisoID).Row()
		if err := row.Scan(&one); err == nil {
			continue
		}
		if err := db.Exec(
			"INSERT INTO rol_permisos (rol, permiso_id, activo, fecha_asignacion) VALUES (?, ?, true, ?)",
			permission.RoleAdministradorSistema, permisoID, now,
		).Error; err != nil {
			log.Fatalf("failed to seed rol_permiso %s: %v", p.Codigo, err)
		}
	}
	fmt.Println("Seeded role grants for", permission.RoleAdministradorSistema)
}

func seedUsers(db *gorm.DB, bcryptCost int) {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := []struct {
		Username, Nombre, Email, Rol string
		AreaCodigo                   string
	}{
		{"admin", "Administrador del Sistema", "admin@sgdocumental.gob", permission.RoleAdministrador, "SG"},
		{"mgarcia", "María García", "mgarcia@sgdocumental.gob", permission.RoleUsuario, "CONT"},
	}
	for _, u := range users {
		if exists(db, "usuarios", "nombre_usuario", u.Username) {
			fmt.Println("User already exists:", u.Username)
			continue
		}

		var areaID *int64
		var id int64
		row := db.Raw("SELECT id FROM areas WHERE codigo = ?", u.AreaCodigo).Row()
		if err := row.Scan(&id); err == nil {
			areaID = &id
		}

		if err := db.Exec(
			`INSERT INTO usuarios (nombre_usuario, nombre_completo, email, password_hash, rol, area_id,
			 activo, intentos_fallidos, fecha_registro, fecha_actualizacion)
			 VALUES (?, ?, ?, ?, ?, ?, true, 0, now(), now())`,
			u.Username, u.Nombre, u.Email, string(hash), u.Rol, areaID,
		).Error; err != nil {
			log.Fatalf("failed to seed user %s: %v", u.Username, err)
		}
		fmt.Println("Seeded user:", u.Username)
	}
}

func exists(db *gorm.DB, table, column, value string) bool {
	var one int
	row := db.Raw(fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", table, column), value).Row()
	return row.Scan(&one) == nil
}
