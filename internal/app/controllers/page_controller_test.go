package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models"
	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/middleware"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
)

type stubAuth struct {
	loggedOut []string
}

func (s *stubAuth) Login(_ context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	switch req.Login {
	case "kofi":
		return &dto.AuthResponse{
			Token: dto.TokenResponse{AccessToken: "access", ExpiresIn: 3600, RefreshToken: "refresh", RefreshTokenExpiresIn: 7200},
			User:  &models.User{ID: 3, Username: "kofi"},
		}, nil
	case "disabled":
		return nil, apperrors.ErrAccountDisabled
	}
	return nil, apperrors.ErrInvalidCredentials
}

func (s *stubAuth) RefreshToken(context.Context, string) (*dto.TokenResponse, error) {
	return &dto.TokenResponse{AccessToken: "access2", ExpiresIn: 3600}, nil
}

func (s *stubAuth) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAuth) Me(_ context.Context, userID int64) (*dto.MeResponse, error) {
	return &dto.MeResponse{User: &models.User{ID: userID}}, nil
}

func (s *stubAuth) ChangePassword(context.Context, int64, *dto.ChangePasswordRequest) error {
	return nil
}

type stubDashboard struct{}

func (stubDashboard) Stats(context.Context) (*dto.DashboardStats, error) {
	return &dto.DashboardStats{Students: 812, StudentsByStatus: map[string]int64{"ACTIVE": 800}}, nil
}

// grants allows the listed permissions to every caller
type grants map[string]bool

func (g grants) Require(_ context.Context, _ int64, _ string, permission string) error {
	if g[permission] {
		return nil
	}
	return apperrors.ErrPermissionDenied
}

func pageRouter(t *testing.T, auth *stubAuth, allowed grants) *gin.Engine {
	t.Helper()
	tmpl, err := PageTemplates()
	require.NoError(t, err)

	c := NewPageController(PageServices{
		Auth:      auth,
		Dashboard: stubDashboard{},
		Students:  newStubStudents(),
	}, allowed, "NPRESEC", false)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET(LoginPath, c.LoginForm)
	r.POST(LoginPath, c.Login)
	r.POST(AdminPath+"/logout", c.Logout)
	pages := r.Group(AdminPath, func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserID, int64(3))
		ctx.Set(middleware.ContextEmail, "kofi@npresec.edu.gh")
		ctx.Set(middleware.ContextRoleID, int64(2))
		ctx.Set(middleware.ContextRoleName, "teacher")
	})
	pages.GET("", c.Dashboard)
	pages.GET("/:module", c.Module)
	return r
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestPageController_LoginForm(t *testing.T) {
	r := pageRouter(t, &stubAuth{}, nil)
	w := perform(r, http.MethodGet, LoginPath+"?next=/admin/students", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="next" value="/admin/students"`)
	assert.Contains(t, w.Body.String(), "NPRESEC")
}

func TestPageController_Login(t *testing.T) {
	auth := &stubAuth{}
	r := pageRouter(t, auth, nil)

	w := postForm(r, LoginPath, url.Values{"login": {"kofi"}, "password": {"x"}, "next": {"/admin/students?page=2"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/students?page=2", w.Header().Get("Location"))
	access := cookieNamed(w, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "access", access.Value)
	assert.True(t, access.HttpOnly)
	refresh := cookieNamed(w, RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, AdminPath, refresh.Path)

	tests := []struct {
		name    string
		form    url.Values
		status  int
		message string
	}{
		{"wrong password", url.Values{"login": {"ama"}, "password": {"x"}}, http.StatusUnauthorized, "Invalid login or password"},
		{"disabled", url.Values{"login": {"disabled"}, "password": {"x"}}, http.StatusForbidden, "The account is disabled"},
		{"blank", url.Values{"login": {" "}, "password": {"x"}}, http.StatusBadRequest, "Enter your email or username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(r, LoginPath, tt.form)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Nil(t, cookieNamed(w, middleware.AccessTokenCookie))
		})
	}
}

func TestPageController_Logout(t *testing.T) {
	auth := &stubAuth{}
	r := pageRouter(t, auth, nil)

	w := postForm(r, AdminPath+"/logout", url.Values{}, &http.Cookie{Name: RefreshTokenCookie, Value: "refresh"})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
	assert.Equal(t, []string{"refresh"}, auth.loggedOut)
	access := cookieNamed(w, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.True(t, access.MaxAge < 0)
}

func TestPageController_Pages(t *testing.T) {
	r := pageRouter(t, &stubAuth{}, grants{"students:view": true, "dashboard:view": true})

	w := perform(r, http.MethodGet, "/admin/students?search=ama", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<th>Index Number</th>")
	assert.Contains(t, body, "NPR250001")
	assert.Contains(t, body, `value="ama"`)
	assert.Contains(t, body, `href="/admin/students"`)
	assert.NotContains(t, body, `href="/admin/teachers"`)
	assert.NotContains(t, body, "Export CSV")

	w = perform(r, http.MethodGet, "/admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "812")

	tests := []struct {
		path   string
		status int
	}{
		{"/admin/teachers", http.StatusForbidden},
		{"/admin/timetable", http.StatusNotFound},
		{"/admin/students?gender=OTHER", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := perform(r, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestPageController_ExportLinks(t *testing.T) {
	r := pageRouter(t, &stubAuth{}, grants{"students:view": true, "students:export": true})
	w := perform(r, http.MethodGet, "/admin/students?status=ACTIVE&page=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/students/export?format=csv&amp;status=ACTIVE")
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     AdminPath,
		"/admin":               "/admin",
		"/admin/students?x=1":  "/admin/students?x=1",
		"//evil.example/admin": AdminPath,
		"https://evil.example": AdminPath,
		"/adminx":              AdminPath,
		"/api/v1/users":        AdminPath,
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}

func TestAuthController_LoginSetsCookie(t *testing.T) {
	c := NewAuthController(&stubAuth{}, true, zerolog.Nop())
	r := gin.New()
	r.POST("/auth/login", c.Login)

	w := perform(r, http.MethodPost, "/auth/login", `{"login":"kofi","password":"Passw0rd"}`)
	require.Equal(t, http.StatusOK, w.Code)
	access := cookieNamed(w, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	assert.True(t, access.Secure)
	assert.Equal(t, 3600, access.MaxAge)
	assert.Contains(t, w.Body.String(), `"refreshToken":"refresh"`)

	w = perform(r, http.MethodPost, "/auth/login", `{"login":"ama","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, errorBody(t, w).Error.Code)
}
