package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/datagate/internal/access"
	"github.com/dropDatabas3/datagate/internal/config"
	"github.com/dropDatabas3/datagate/internal/domain/repository"
	admindto "github.com/dropDatabas3/datagate/internal/http/dto/admin"
	authdto "github.com/dropDatabas3/datagate/internal/http/dto/auth"
	datadto "github.com/dropDatabas3/datagate/internal/http/dto/data"
	healthdto "github.com/dropDatabas3/datagate/internal/http/dto/health"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/warehouse"
	"github.com/dropDatabas3/datagate/internal/warehouse/warehousetest"
)

type harness struct {
	t   *testing.T
	srv *httptest.Server
	c   *Container
}

func newHarness(t *testing.T, wh warehouse.Client) *harness {
	t.Helper()
	logger.Nop()

	cfg := config.Default()
	cfg.UsersFile = filepath.Join(t.TempDir(), "users.json")
	cfg.Auth.JWTSecret = strings.Repeat("k", 32)
	if wh == nil {
		cfg.Warehouse.Driver = "none"
	}

	c, err := Build(context.Background(), cfg, wh)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	reg := prometheus.NewRegistry()
	a, err := New(c, Options{Version: "test", Registry: reg, Gatherer: reg})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler)
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, c: c}
}

func (h *harness) do(method, path, token string, body any, out any) int {
	h.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(h.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *harness) login(user, pass string) string {
	h.t.Helper()
	var res authdto.LoginResponse
	code := h.do(http.MethodPost, "/v1/auth/login", "", authdto.LoginRequest{Username: user, Password: pass}, &res)
	require.Equal(h.t, http.StatusOK, code)
	require.NotEmpty(h.t, res.Token)
	return res.Token
}

func TestEndToEnd_AdminManagesUserAndFiltersApply(t *testing.T) {
	wh := &warehousetest.Fake{
		Tables: []string{"rawc_data.t1", "rawc_data.t2"},
		Default: &warehouse.Table{
			Columns: []string{"id", "age"},
			Rows:    [][]any{{1, 42}},
		},
	}
	h := newHarness(t, wh)

	// credenciales
	code := h.do(http.MethodPost, "/v1/auth/login", "", authdto.LoginRequest{Username: "admin", Password: "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, code)
	code = h.do(http.MethodPost, "/v1/auth/login", "", authdto.LoginRequest{Username: "Admin", Password: "admin123"}, nil)
	require.Equal(t, http.StatusUnauthorized, code)
	adminTok := h.login("admin", "admin123")

	// el admin inicial recibió las tablas listadas al arrancar
	admin, err := h.c.Users.Get(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, []string{"rawc_data.t1", "rawc_data.t2"}, admin.DataAccess.Tables)

	// alta de bob
	code = h.do(http.MethodPost, "/v1/admin/users", adminTok, admindto.CreateUserRequest{Username: "bob", Password: "pw", Role: "user"}, nil)
	require.Equal(t, http.StatusCreated, code)
	code = h.do(http.MethodPost, "/v1/admin/users", adminTok, admindto.CreateUserRequest{Username: "bob", Password: "pw"}, nil)
	require.Equal(t, http.StatusConflict, code)

	// filtro sobre una tabla fuera de la allow-list
	code = h.do(http.MethodPut, "/v1/admin/users/bob/access", adminTok, admindto.UpdateAccessRequest{
		Tables:     []string{"rawc_data.t1"},
		RowFilters: map[string]string{"rawc_data.t2": "age > 30"},
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)

	var acc admindto.AccessResponse
	code = h.do(http.MethodPut, "/v1/admin/users/bob/access", adminTok, admindto.UpdateAccessRequest{
		Tables:     []string{"rawc_data.t1"},
		RowFilters: map[string]string{"rawc_data.t1": "age > 30"},
	}, &acc)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, []string{"rawc_data.t1"}, acc.Selected)
	require.Equal(t, []string{"rawc_data.t1", "rawc_data.t2"}, acc.Available)

	var list admindto.UserListResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/admin/users", adminTok, nil, &list))
	require.Len(t, list.Users, 2)
	require.Equal(t, "bob", list.Users[1].Username)
	require.True(t, list.Users[1].HasRowFilters)

	// bob ve sólo su tabla y con filtro
	bobTok := h.login("bob", "pw")
	var tables datadto.TablesResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/tables", bobTok, nil, &tables))
	require.Equal(t, []string{"rawc_data.t1"}, tables.Tables)

	var res access.Result
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/tables/rawc_data.t1/rows", bobTok, nil, &res))
	require.Equal(t, access.KindLive, res.Kind)
	require.Equal(t, "SELECT * FROM `proj.rawc_data.t1` WHERE age > 30 LIMIT 100", wh.LastQuery())
	require.Contains(t, res.Notices, access.Notice{Level: access.LevelInfo, Text: "Note: Data is filtered with condition: age > 30"})

	res = access.Result{}
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/tables/rawc_data.t2/rows", bobTok, nil, &res))
	require.Equal(t, access.KindDenied, res.Kind)
	require.Equal(t, "You don't have access to rawc_data.t2.", res.Message)

	// bob no es admin
	require.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/v1/admin/users", bobTok, nil, nil))

	// borrar admin no, bob sí; su sesión deja de servir
	require.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, "/v1/admin/users/admin", adminTok, nil, nil))
	require.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/v1/admin/users/bob", adminTok, nil, nil))
	require.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/v1/admin/users/bob", adminTok, nil, nil))
	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/tables", bobTok, nil, nil))

	// logout revoca el token
	var me authdto.MeResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/auth/me", adminTok, nil, &me))
	require.Equal(t, "admin", me.Username)
	require.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/v1/auth/logout", adminTok, nil, nil))
	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/auth/me", adminTok, nil, nil))
}

func TestEndToEnd_DemoModeWithoutWarehouse(t *testing.T) {
	h := newHarness(t, nil)

	var st healthdto.StatusResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/status", "", nil, &st))
	require.False(t, st.Connected)
	require.Equal(t, "demo", st.Mode)

	// sin warehouse el admin inicial queda con los nombres de demo
	admin, err := h.c.Users.Get(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, []string{"demo_table_1", "demo_table_2", "demo_table_3"}, admin.DataAccess.Tables)

	tok := h.login("admin", "admin123")

	var d access.Dashboard
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/dashboard", tok, nil, &d))
	require.True(t, d.Demo)
	require.Equal(t, []string{"demo_table_1", "demo_table_2", "demo_table_3"}, d.Tables)

	var res access.Result
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/tables/demo_table_2/rows", tok, nil, &res))
	require.Equal(t, access.KindPlaceholder, res.Kind)
	require.NotNil(t, res.Data)
	require.NotEmpty(t, res.Data.Rows)

	var ready healthdto.ReadyzResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/readyz", "", nil, &ready))
	require.Equal(t, "degraded", ready.Status)
	require.Equal(t, "demo", ready.Components["warehouse"])
}

func TestEndToEnd_UserWithoutTablesGetsSample(t *testing.T) {
	h := newHarness(t, &warehousetest.Fake{Tables: []string{"rawc_data.t1"}})
	adminTok := h.login("admin", "admin123")
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/v1/admin/users", adminTok,
		admindto.CreateUserRequest{Username: "carol", Password: "pw"}, nil))

	tok := h.login("carol", "pw")
	var d access.Dashboard
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/dashboard", tok, nil, &d))
	require.Empty(t, d.Tables)
	require.NotNil(t, d.Status)
	require.Equal(t, access.KindEmpty, d.Status.Kind)
	require.NotNil(t, d.Sample)
	require.Equal(t, access.KindPlaceholder, d.Sample.Kind)
}

func TestRoutes_ErrorsAndMetrics(t *testing.T) {
	h := newHarness(t, &warehousetest.Fake{})

	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/dashboard", "", nil, nil))
	require.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/v1/nope", "", nil, nil))
	require.Equal(t, http.StatusMethodNotAllowed, h.do(http.MethodGet, "/v1/auth/login", "", nil, nil))

	resp, err := h.srv.Client().Post(h.srv.URL+"/v1/auth/login", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/v1/auth/login", "",
		authdto.LoginRequest{Username: "ghost", Password: "x"}, nil))

	resp, err = h.srv.Client().Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, buf.String(), "http_requests_total")
	require.Contains(t, buf.String(), "datagate_logins_total")
}

func TestEndToEnd_DeletedAdminLosesAdminRoutes(t *testing.T) {
	h := newHarness(t, &warehousetest.Fake{Tables: []string{"rawc_data.t1"}})
	adminTok := h.login("admin", "admin123")

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/v1/admin/users", adminTok,
		admindto.CreateUserRequest{Username: "alice", Password: "pw", Role: "admin"}, nil))
	aliceTok := h.login("alice", "pw")
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/v1/admin/users", aliceTok, nil, nil))

	require.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/v1/admin/users/alice", adminTok, nil, nil))

	// el token sigue vivo en el cache pero el usuario ya no existe
	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/v1/admin/users", aliceTok,
		admindto.CreateUserRequest{Username: "mallory", Password: "pw", Role: "admin"}, nil))
	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/admin/users", aliceTok, nil, nil))
	require.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/v1/auth/me", aliceTok, nil, nil))

	_, err := h.c.Users.Get(context.Background(), "mallory")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
