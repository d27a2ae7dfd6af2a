package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appauth "github.com/Azechum30/npresec-app/internal/app/auth"
	"github.com/Azechum30/npresec-app/internal/app/controllers"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/middleware"
)

// Controllers groups the handler sets the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Role       *controllers.RoleController
	Department *controllers.DepartmentController
	Class      *controllers.ClassController
	Course     *controllers.CourseController
	Student    *controllers.StudentController
	Teacher    *controllers.TeacherController
	Staff      *controllers.StaffController
	Dashboard  *controllers.DashboardController
	Page       *controllers.PageController
}

// moduleHandlers are the handlers every admin module exposes
type moduleHandlers struct {
	list, get, create, update, remove, bulkDelete, export gin.HandlerFunc
}

// registerModule mounts the standard admin routes of one resource, each guarded by its permission
func registerModule(api *gin.RouterGroup, m *middleware.AuthMiddleware, resource string, h moduleHandlers) *gin.RouterGroup {
	perm := func(action string) gin.HandlerFunc {
		return m.PermissionRequired(appauth.Name(resource, action))
	}

	g := api.Group("/" + resource)
	g.GET("", perm(appauth.ActionView), h.list)
	g.GET("/export", perm(appauth.ActionExport), h.export)
	g.POST("/bulk-delete", perm(appauth.ActionDelete), h.bulkDelete)
	g.GET("/:id", perm(appauth.ActionView), h.get)
	g.POST("", perm(appauth.ActionCreate), h.create)
	g.PUT("/:id", perm(appauth.ActionUpdate), h.update)
	g.DELETE("/:id", perm(appauth.ActionDelete), h.remove)
	return g
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c *Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
		auth.GET("/me", authMiddleware.JWTAuth(), c.Auth.Me)
		auth.PUT("/password", authMiddleware.JWTAuth(), c.Auth.ChangePassword)
	}

	// --- Authenticated routes ---
	api := v1.Group("")
	api.Use(authMiddleware.JWTAuth())

	registerModule(api, authMiddleware, appauth.ResourceDepartments, moduleHandlers{
		list: c.Department.ListDepartments, get: c.Department.GetDepartment,
		create: c.Department.CreateDepartment, update: c.Department.UpdateDepartment,
		remove: c.Department.DeleteDepartment, bulkDelete: c.Department.BulkDeleteDepartments,
		export: c.Department.ExportDepartments,
	})
	registerModule(api, authMiddleware, appauth.ResourceClasses, moduleHandlers{
		list: c.Class.ListClasses, get: c.Class.GetClass,
		create: c.Class.CreateClass, update: c.Class.UpdateClass,
		remove: c.Class.DeleteClass, bulkDelete: c.Class.BulkDeleteClasses,
		export: c.Class.ExportClasses,
	})
	registerModule(api, authMiddleware, appauth.ResourceCourses, moduleHandlers{
		list: c.Course.ListCourses, get: c.Course.GetCourse,
		create: c.Course.CreateCourse, update: c.Course.UpdateCourse,
		remove: c.Course.DeleteCourse, bulkDelete: c.Course.BulkDeleteCourses,
		export: c.Course.ExportCourses,
	})
	registerModule(api, authMiddleware, appauth.ResourceTeachers, moduleHandlers{
		list: c.Teacher.ListTeachers, get: c.Teacher.GetTeacher,
		create: c.Teacher.CreateTeacher, update: c.Teacher.UpdateTeacher,
		remove: c.Teacher.DeleteTeacher, bulkDelete: c.Teacher.BulkDeleteTeachers,
		export: c.Teacher.ExportTeachers,
	})
	registerModule(api, authMiddleware, appauth.ResourceStaff, moduleHandlers{
		list: c.Staff.ListStaff, get: c.Staff.GetStaff,
		create: c.Staff.CreateStaff, update: c.Staff.UpdateStaff,
		remove: c.Staff.DeleteStaff, bulkDelete: c.Staff.BulkDeleteStaff,
		export: c.Staff.ExportStaff,
	})

	students := registerModule(api, authMiddleware, appauth.ResourceStudents, moduleHandlers{
		list: c.Student.ListStudents, get: c.Student.GetStudent,
		create: c.Student.CreateStudent, update: c.Student.UpdateStudent,
		remove: c.Student.DeleteStudent, bulkDelete: c.Student.BulkDeleteStudents,
		export: c.Student.ExportStudents,
	})
	students.POST("/import",
		authMiddleware.PermissionRequired(appauth.Name(appauth.ResourceStudents, appauth.ActionCreate)),
		c.Student.ImportStudents)

	users := registerModule(api, authMiddleware, appauth.ResourceUsers, moduleHandlers{
		list: c.User.ListUsers, get: c.User.GetUserByID,
		create: c.User.CreateUser, update: c.User.UpdateUser,
		remove: c.User.DeleteUser, bulkDelete: c.User.BulkDeleteUsers,
		export: c.User.ExportUsers,
	})
	{
		canUpdate := authMiddleware.PermissionRequired(appauth.Name(appauth.ResourceUsers, appauth.ActionUpdate))
		users.PATCH("/:id/status", canUpdate, c.User.SetUserStatus)
		users.PUT("/:id/password", canUpdate, c.User.ResetUserPassword)
	}

	registerModule(api, authMiddleware, appauth.ResourceRoles, moduleHandlers{
		list: c.Role.ListRoles, get: c.Role.GetRole,
		create: c.Role.CreateRole, update: c.Role.UpdateRole,
		remove: c.Role.DeleteRole, bulkDelete: c.Role.BulkDeleteRoles,
		export: c.Role.ExportRoles,
	})

	// Permissions are seeded; only their descriptions are editable
	permissions := api.Group("/" + appauth.ResourcePermissions)
	{
		perm := func(action string) gin.HandlerFunc {
			return authMiddleware.PermissionRequired(appauth.Name(appauth.ResourcePermissions, action))
		}
		permissions.GET("", perm(appauth.ActionView), c.Role.ListPermissions)
		permissions.GET("/export", perm(appauth.ActionExport), c.Role.ExportPermissions)
		permissions.GET("/:id", perm(appauth.ActionView), c.Role.GetPermission)
		permissions.PATCH("/:id", perm(appauth.ActionUpdate), c.Role.UpdatePermission)
	}

	api.GET("/dashboard/stats",
		authMiddleware.PermissionRequired(appauth.Name(appauth.ResourceDashboard, appauth.ActionView)),
		c.Dashboard.GetStats)

	// Health check endpoint (public)
	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}, ""))
	})

	SetupAdminPages(router, c.Page, authMiddleware)
}

// SetupAdminPages mounts the server-rendered admin pages
func SetupAdminPages(router *gin.Engine, page *controllers.PageController, authMiddleware *middleware.AuthMiddleware) {
	router.GET(controllers.LoginPath, page.LoginForm)
	router.POST(controllers.LoginPath, page.Login)
	router.POST(controllers.AdminPath+"/logout", page.Logout)

	admin := router.Group(controllers.AdminPath)
	admin.Use(authMiddleware.PageAuth(controllers.LoginPath))
	{
		admin.GET("", page.Dashboard)
		admin.GET("/:module", page.Module)
	}
}
