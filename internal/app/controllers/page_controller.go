package controllers

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appauth "github.com/Azechum30/npresec-app/internal/app/auth"
	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/middleware"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/export"
	"github.com/Azechum30/npresec-app/internal/pkg/logger"
)

// Admin page paths
const (
	AdminPath          = "/admin"
	LoginPath          = "/admin/login"
	RefreshTokenCookie = "refresh_token"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageTemplates parses the embedded admin page templates
func PageTemplates() (*template.Template, error) {
	return template.New("admin").ParseFS(templateFS, "templates/*.html")
}

type pageLoader func(ctx *gin.Context) (*export.Table, dto.PaginationInfo, error)

// listPage renders one page of a module's list as a table
func listPage[T any, Q any](svc records[T, Q], table func([]*T) *export.Table) pageLoader {
	return func(ctx *gin.Context) (*export.Table, dto.PaginationInfo, error) {
		var q Q
		if err := ctx.ShouldBindQuery(&q); err != nil {
			detail := dto.HandleValidationError(err)
			return nil, dto.PaginationInfo{}, apperrors.NewCustomError(apperrors.ErrBadRequest, detail.Message)
		}
		page, err := svc.List(ctx.Request.Context(), q)
		if err != nil {
			return nil, dto.PaginationInfo{}, err
		}
		return table(page.Items), page.Pagination, nil
	}
}

type modulePage struct {
	Module   string
	Title    string
	resource string
	load     pageLoader
}

type navItem struct {
	Title  string
	Href   string
	Active bool
}

// PageServices are the services the admin pages read from
type PageServices struct {
	Auth        AuthService
	Dashboard   DashboardService
	Departments DepartmentService
	Classes     ClassService
	Courses     CourseService
	Students    StudentService
	Teachers    TeacherService
	Staff       StaffService
	Users       UserService
	Roles       RoleService
	Permissions PermissionService
}

// PageController renders the server-side admin pages
type PageController struct {
	auth         AuthService
	dashboard    DashboardService
	authz        middleware.Authorizer
	schoolName   string
	secureCookie bool
	pages        []modulePage
}

// NewPageController creates a new PageController
func NewPageController(services PageServices, authz middleware.Authorizer, schoolName string, secureCookie bool) *PageController {
	return &PageController{
		auth:         services.Auth,
		dashboard:    services.Dashboard,
		authz:        authz,
		schoolName:   schoolName,
		secureCookie: secureCookie,
		pages: []modulePage{
			{"students", "Students", appauth.ResourceStudents, listPage[models.Student, dto.StudentListQuery](services.Students, dto.StudentTable)},
			{"teachers", "Teachers", appauth.ResourceTeachers, listPage[models.Teacher, dto.TeacherListQuery](services.Teachers, dto.TeacherTable)},
			{"staff", "Staff", appauth.ResourceStaff, listPage[models.Staff, dto.StaffListQuery](services.Staff, dto.StaffTable)},
			{"classes", "Classes", appauth.ResourceClasses, listPage[models.Class, dto.ClassListQuery](services.Classes, dto.ClassTable)},
			{"courses", "Courses", appauth.ResourceCourses, listPage[models.Course, dto.CourseListQuery](services.Courses, dto.CourseTable)},
			{"departments", "Departments", appauth.ResourceDepartments, listPage[models.Department, dto.DepartmentListQuery](services.Departments, dto.DepartmentTable)},
			{"users", "Users", appauth.ResourceUsers, listPage[models.User, dto.UserListQuery](services.Users, dto.UserTable)},
			{"roles", "Roles", appauth.ResourceRoles, listPage[models.Role, dto.RoleListQuery](services.Roles, dto.RoleTable)},
			{"permissions", "Permissions", appauth.ResourcePermissions, listPage[models.Permission, dto.PermissionListQuery](services.Permissions, dto.PermissionTable)},
		},
	}
}

func (c *PageController) allowed(ctx *gin.Context, id middleware.Identity, resource, action string) bool {
	err := c.authz.Require(ctx.Request.Context(), id.RoleID, id.RoleName, appauth.Name(resource, action))
	if err != nil && !apperrors.Is(err, apperrors.ErrPermissionDenied) {
		logger.Error().Err(err).Int64("roleID", id.RoleID).Msg("Permission check failed")
	}
	return err == nil
}

// nav lists the pages the caller may open
func (c *PageController) nav(ctx *gin.Context, id middleware.Identity, current string) []navItem {
	items := make([]navItem, 0, len(c.pages)+1)
	if c.allowed(ctx, id, appauth.ResourceDashboard, appauth.ActionView) {
		items = append(items, navItem{Title: "Dashboard", Href: AdminPath, Active: current == ""})
	}
	for _, p := range c.pages {
		if c.allowed(ctx, id, p.resource, appauth.ActionView) {
			items = append(items, navItem{Title: p.Title, Href: AdminPath + "/" + p.Module, Active: current == p.Module})
		}
	}
	return items
}

func (c *PageController) render(ctx *gin.Context, status int, name string, data gin.H) {
	data["School"] = c.schoolName
	ctx.HTML(status, name, data)
}

func (c *PageController) renderError(ctx *gin.Context, id middleware.Identity, err error) {
	status, detail := middleware.ErrorResponseFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("Admin page failed")
	}
	c.render(ctx, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": detail.Message,
		"User":    id,
		"Nav":     c.nav(ctx, id, ""),
	})
}

func (c *PageController) setCookies(ctx *gin.Context, access string, accessAge int, refresh string, refreshAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.AccessTokenCookie, access, accessAge, "/", "", c.secureCookie, true)
	ctx.SetCookie(RefreshTokenCookie, refresh, refreshAge, AdminPath, "", c.secureCookie, true)
}

// safeNext keeps post-login redirects inside the admin pages
func safeNext(next string) string {
	if next == AdminPath || (strings.HasPrefix(next, AdminPath+"/") && !strings.HasPrefix(next, "//")) {
		if u, err := url.Parse(next); err == nil && u.Host == "" && u.Scheme == "" {
			return next
		}
	}
	return AdminPath
}

type loginForm struct {
	Login    string `form:"login" binding:"required,notblank"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// LoginForm shows the login page
func (c *PageController) LoginForm(ctx *gin.Context) {
	c.render(ctx, http.StatusOK, "login.html", gin.H{"Title": "Sign in", "Next": safeNext(ctx.Query("next")), "Login": ""})
}

// Login signs in from the login form and redirects to the requested page
func (c *PageController) Login(ctx *gin.Context) {
	var form loginForm
	if err := ctx.ShouldBind(&form); err != nil {
		c.render(ctx, http.StatusBadRequest, "login.html", gin.H{
			"Title": "Sign in", "Next": safeNext(form.Next), "Login": form.Login,
			"Error": "Enter your email or username and your password",
		})
		return
	}

	resp, err := c.auth.Login(ctx.Request.Context(), &dto.LoginRequest{Login: form.Login, Password: form.Password})
	if err != nil {
		status, detail := middleware.ErrorResponseFor(err)
		if status == http.StatusInternalServerError {
			logger.Error().Err(err).Msg("Admin login failed")
		}
		c.render(ctx, status, "login.html", gin.H{
			"Title": "Sign in", "Next": safeNext(form.Next), "Login": form.Login, "Error": detail.Message,
		})
		return
	}

	c.setCookies(ctx, resp.Token.AccessToken, int(resp.Token.ExpiresIn), resp.Token.RefreshToken, int(resp.Token.RefreshTokenExpiresIn))
	ctx.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

// Logout revokes the page session and returns to the login page
func (c *PageController) Logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(RefreshTokenCookie); err == nil && token != "" {
		if err := c.auth.Logout(ctx.Request.Context(), token); err != nil {
			logger.Warn().Err(err).Msg("Failed to revoke admin session")
		}
	}
	c.setCookies(ctx, "", -1, "", -1)
	ctx.Redirect(http.StatusSeeOther, LoginPath)
}

// Dashboard shows the record counters
func (c *PageController) Dashboard(ctx *gin.Context) {
	id, _ := middleware.CurrentIdentity(ctx)
	if !c.allowed(ctx, id, appauth.ResourceDashboard, appauth.ActionView) {
		c.renderError(ctx, id, apperrors.ErrPermissionDenied)
		return
	}
	stats, err := c.dashboard.Stats(ctx.Request.Context())
	if err != nil {
		c.renderError(ctx, id, err)
		return
	}
	c.render(ctx, http.StatusOK, "dashboard.html", gin.H{
		"Title": "Dashboard",
		"User":  id,
		"Nav":   c.nav(ctx, id, ""),
		"Stats": stats,
	})
}

// Module shows one page of a module's records
func (c *PageController) Module(ctx *gin.Context) {
	id, _ := middleware.CurrentIdentity(ctx)
	name := ctx.Param("module")

	var page *modulePage
	for i := range c.pages {
		if c.pages[i].Module == name {
			page = &c.pages[i]
			break
		}
	}
	if page == nil {
		c.renderError(ctx, id, apperrors.NewResourceNotFoundError("Page not found"))
		return
	}
	if !c.allowed(ctx, id, page.resource, appauth.ActionView) {
		c.renderError(ctx, id, apperrors.ErrPermissionDenied)
		return
	}

	table, pagination, err := page.load(ctx)
	if err != nil {
		c.renderError(ctx, id, err)
		return
	}

	query := ctx.Request.URL.Query()
	data := gin.H{
		"Title":      page.Title,
		"Module":     page.Module,
		"User":       id,
		"Nav":        c.nav(ctx, id, page.Module),
		"Table":      table,
		"Pagination": pagination,
		"Search":     query.Get("search"),
	}
	if pagination.CurrentPage > 1 {
		data["PrevURL"] = pageURL(ctx.Request.URL, pagination.CurrentPage-1)
	}
	if pagination.CurrentPage < pagination.TotalPages {
		data["NextURL"] = pageURL(ctx.Request.URL, pagination.CurrentPage+1)
	}
	if c.allowed(ctx, id, page.resource, appauth.ActionExport) {
		data["ExportCSV"] = exportURL(page.Module, query, export.FormatCSV)
		data["ExportXLSX"] = exportURL(page.Module, query, export.FormatXLSX)
	}
	c.render(ctx, http.StatusOK, "table.html", data)
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}

// exportURL points at the API export with the page's filters; the API accepts the session cookie
func exportURL(module string, query url.Values, format export.Format) string {
	q := url.Values{}
	for k, v := range query {
		if k != "page" && k != "pageSize" {
			q[k] = v
		}
	}
	q.Set("format", string(format))
	return "/api/v1/" + module + "/export?" + q.Encode()
}
