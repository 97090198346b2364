package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/statsrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/handlers"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/websocket"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/config"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

var (
	testUserID  = uuid.New()
	testAdminID = uuid.New()
)

type stubAuth struct {
	loginErr     error
	lastRegister *authservice.RegisterInput
	lastLogin    string
}

func (s *stubAuth) Register(ctx context.Context, input authservice.RegisterInput) (*domain.User, string, error) {
	s.lastRegister = &input
	return &domain.User{ID: testUserID, Username: input.Username}, "tok", nil
}

func (s *stubAuth) Login(ctx context.Context, login, password string) (*authservice.LoginResult, error) {
	s.lastLogin = login
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &authservice.LoginResult{Token: "tok", User: &domain.User{ID: testUserID}}, nil
}

func (s *stubAuth) VerifyTwoFA(ctx context.Context, userID uuid.UUID, code string) (string, error) {
	return "tok", nil
}

func (s *stubAuth) VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error) {
	switch tokenString {
	case userToken:
		return &domain.Claim{UserID: testUserID, Username: "user", Permission: domain.PermissionUser, Scope: "access"}, nil
	case adminToken:
		return &domain.Claim{UserID: testAdminID, Username: "admin", Permission: domain.PermissionAdmin, Scope: "access"}, nil
	}
	return nil, domain.ErrInvalidCredentials
}

func (s *stubAuth) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if userID == testAdminID {
		return &domain.User{ID: testAdminID, Username: "admin", Permission: domain.PermissionAdmin}, nil
	}
	return &domain.User{ID: testUserID, Username: "user", Permission: domain.PermissionUser}, nil
}

type stubStats struct{}

func (stubStats) Dashboard(ctx context.Context) (*statsrepo.DashboardStats, error) {
	return &statsrepo.DashboardStats{TotalUsers: 1}, nil
}

func newRouter(auth *stubAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := handlers.New(
		auth,
		nil,
		nil,
		nil,
		nil,
		nil,
		stubStats{},
		websocket.NewWsHub(zerolog.Nop()),
		zerolog.Nop(),
		&config.Config{Gateway: config.GatewayConfig{CallbackToken: "gw-secret"}},
	)
	h.SetupHandlers(router)
	return router
}

func doJSON(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router := newRouter(&stubAuth{})

	w := doJSON(router, http.MethodGet, "/api/balance", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Fatalf("expected success false, got %v", body["success"])
	}
}

func TestProtectedRouteRejectsBadToken(t *testing.T) {
	router := newRouter(&stubAuth{})

	w := doJSON(router, http.MethodGet, "/api/deposits", "garbage", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminRouteForbiddenForUsers(t *testing.T) {
	router := newRouter(&stubAuth{})

	w := doJSON(router, http.MethodGet, "/api/admin/dashboard/stats", userToken, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAdminRouteUnauthenticated(t *testing.T) {
	router := newRouter(&stubAuth{})

	w := doJSON(router, http.MethodGet, "/api/admin/dashboard/stats", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminRouteAllowsAdmins(t *testing.T) {
	router := newRouter(&stubAuth{})

	w := doJSON(router, http.MethodGet, "/api/admin/dashboard/stats", adminToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCallbackRequiresGatewayToken(t *testing.T) {
	router := newRouter(&stubAuth{})

	w := doJSON(router, http.MethodPost, "/api/callback/pix", "", `{"external_ref":"x","status":"COMPLETED"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	router := newRouter(&stubAuth{})

	for _, password := range []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoDigits!!", "NoSpecial123"} {
		body := `{"username":"fulano","name":"Fulano","email":"fulano@test.local","password":"` + password + `"}`
		w := doJSON(router, http.MethodPost, "/api/auth/register", "", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("password %q: expected 400, got %d", password, w.Code)
		}
	}
}

func TestRegisterReadsReferralQueryParam(t *testing.T) {
	auth := &stubAuth{}
	router := newRouter(auth)

	body := `{"username":"fulano","name":"Fulano","email":"fulano@test.local","password":"Str0ng!Pass"}`
	w := doJSON(router, http.MethodPost, "/api/auth/register?ref=mgr123", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if auth.lastRegister == nil || auth.lastRegister.RefCode != "mgr123" {
		t.Fatalf("expected referral code mgr123 to reach registration, got %+v", auth.lastRegister)
	}
}

func TestRegisterBodyRefCodeWinsOverQuery(t *testing.T) {
	auth := &stubAuth{}
	router := newRouter(auth)

	body := `{"username":"fulano","name":"Fulano","email":"fulano@test.local","password":"Str0ng!Pass","ref_code":"body-ref"}`
	w := doJSON(router, http.MethodPost, "/api/auth/register?ref=query-ref", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if auth.lastRegister == nil || auth.lastRegister.RefCode != "body-ref" {
		t.Fatalf("expected body ref_code to win, got %+v", auth.lastRegister)
	}
}

func TestLoginAcceptsUsernameAlias(t *testing.T) {
	auth := &stubAuth{}
	router := newRouter(auth)

	w := doJSON(router, http.MethodPost, "/api/auth/login", "", `{"username":"fulano","password":"Str0ng!Pass","remember":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if auth.lastLogin != "fulano" {
		t.Fatalf("expected login fulano, got %q", auth.lastLogin)
	}
}

func TestLoginRequiresSomeCredential(t *testing.T) {
	router := newRouter(&stubAuth{})

	w := doJSON(router, http.MethodPost, "/api/auth/login", "", `{"password":"Str0ng!Pass"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRegisterAcceptsStrongPassword(t *testing.T) {
	router := newRouter(&stubAuth{})

	body := `{"username":"fulano","name":"Fulano","email":"fulano@test.local","password":"Str0ng!Pass"}`
	w := doJSON(router, http.MethodPost, "/api/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginFailureKeepsBodyGeneric(t *testing.T) {
	router := newRouter(&stubAuth{loginErr: domain.ErrInvalidCredentials})

	w := doJSON(router, http.MethodPost, "/api/auth/login", "", `{"login":"fulano","password":"Wrong123!"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["success"] != false {
		t.Fatalf("expected success false, got %v", body["success"])
	}
	if msg, _ := body["message"].(string); strings.Contains(msg, "sql") || strings.Contains(msg, "stack") {
		t.Fatalf("response leaks internals: %q", msg)
	}
}
