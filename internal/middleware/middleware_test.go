package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/pkg/apperrors"
	"github.com/Azechum30/npresec-app/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type authorizerFunc func(roleName, permission string) error

func (f authorizerFunc) Require(_ context.Context, _ int64, roleName, permission string) error {
	return f(roleName, permission)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "npresec-test",
	})
}

func newRouter(m *AuthMiddleware, permission string) *gin.Engine {
	r := gin.New()
	r.GET("/protected", m.JWTAuth(), m.PermissionRequired(permission), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "role": id.RoleName})
	})
	r.GET("/page", m.PageAuth("/admin/login"), func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuth(t *testing.T) {
	jwt := newJWT()
	pair, err := jwt.GenerateTokenPair(auth.Subject{UserID: 7, Email: "a@b.c", RoleID: 2, RoleName: "teacher"})
	require.NoError(t, err)

	allow := authorizerFunc(func(string, string) error { return nil })
	router := newRouter(NewAuthMiddleware(jwt, allow), "students:view")

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		code   dto.ErrorCode
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+pair.AccessToken) }, http.StatusOK, ""},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: pair.AccessToken}) }, http.StatusOK, ""},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc.def.ghi") }, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
			} else {
				assert.JSONEq(t, `{"userId":7,"role":"teacher"}`, w.Body.String())
			}
		})
	}
}

func TestPermissionRequired_Denied(t *testing.T) {
	jwt := newJWT()
	pair, err := jwt.GenerateTokenPair(auth.Subject{UserID: 7, Email: "a@b.c", RoleID: 2, RoleName: "teacher"})
	require.NoError(t, err)

	var asked string
	deny := authorizerFunc(func(_ string, permission string) error {
		asked = permission
		return apperrors.NewForbiddenError("You do not have the " + permission + " permission")
	})
	router := newRouter(NewAuthMiddleware(jwt, deny), "students:delete")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "students:delete", asked)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeForbidden, resp.Error.Code)
	assert.Equal(t, "You do not have the students:delete permission", resp.Error.Message)
}

func TestPageAuth_RedirectsToLogin(t *testing.T) {
	router := newRouter(NewAuthMiddleware(newJWT(), nil), "")

	req := httptest.NewRequest(http.MethodGet, "/page?x=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fpage%3Fx%3D1", w.Header().Get("Location"))
}

func TestErrorResponseFor(t *testing.T) {
	dup := apperrors.NewDuplicateError("student")
	dup.Add("email", "email")

	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
		field   string
	}{
		{"duplicate", dup, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "A student with this email already exists", "email"},
		{"module not found", apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found", ""},
		{"missing ids", &apperrors.MissingIDsError{IDs: []int64{4}}, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Some records were not found, nothing was deleted", ""},
		{"validation", apperrors.NewValidationError("capacity", "capacity is too small"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "capacity is too small", "capacity"},
		{"reference", apperrors.NewInvalidReferenceError("classId", "The selected class (id 9) does not exist"), http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "The selected class (id 9) does not exist", "classId"},
		{"stale", apperrors.NewCustomError(apperrors.ErrStaleRecord, ""), http.StatusConflict, dto.ErrorCodeConflict, "The record was changed by someone else, reload and try again", ""},
		{"in use", apperrors.ErrHasRelations, http.StatusConflict, dto.ErrorCodeConflict, "The record is still in use by other records", ""},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid login or password", ""},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "The account is disabled", ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ErrorResponseFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.message, detail.Message)
			assert.Equal(t, tt.field, detail.Field)
		})
	}
}

func TestParamID(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := ParamID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, status := range map[string]int{"/items/12": http.StatusOK, "/items/abc": http.StatusBadRequest, "/items/0": http.StatusBadRequest} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
	}
}
