package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/utils"
)

const (
	selectUserByName = "SELECT id,username,password_hash,email,role,created_at,updated_at FROM users WHERE username=? LIMIT 1"
	selectUserByID   = "SELECT id,username,password_hash,email,role,created_at,updated_at FROM users WHERE id=? LIMIT 1"
	insertRefresh    = "INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)"
	selectRefresh    = "SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "access-secret",
		RefreshSecret:  "refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // minimum cost keeps the tests fast
	}
}

type authTestDeps struct {
	handler *AuthHandler
	mock    sqlmock.Sqlmock
	cleanup func()
}

func setupAuthTest(t *testing.T) *authTestDeps {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))
	return &authTestDeps{
		handler: h,
		mock:    mock,
		cleanup: func() {
			assert.NoError(t, mock.ExpectationsWereMet())
			db.Close()
		},
	}
}

func userRow(t *testing.T, role model.Role) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword("secret-pw", 4)
	require.NoError(t, err)
	now := time.Now().UTC()
	return sqlmock.NewRows(
		[]string{"id", "username", "password_hash", "email", "role", "created_at", "updated_at"}).
		AddRow(2, "dana", hash, "dana@example.com", string(role), now, now)
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLoginIssuesTokensAndCookie(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	d.mock.ExpectQuery(selectUserByName).WithArgs("dana").WillReturnRows(userRow(t, model.RoleEmployee))
	d.mock.ExpectExec(insertRefresh).WithArgs(uint64(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := postJSON(echo.New(), "/api/login", `{"username":"dana","password":"secret-pw"}`)
	require.NoError(t, d.handler.Login(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, `"accessToken"`)
	assert.Contains(t, body, `"username":"dana"`)
	assert.Contains(t, body, `"role":"Employee"`)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, "refreshToken", ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	// The cookie value is a refresh token: it must verify against the
	// refresh secret and not against the access secret.
	claims, err := utils.VerifyToken(ck.Value, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), claims.ID)
	_, err = utils.VerifyToken(ck.Value, "access-secret")
	assert.Error(t, err)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	d.mock.ExpectQuery(selectUserByName).WithArgs("dana").WillReturnRows(userRow(t, model.RoleEmployee))

	c, rec := postJSON(echo.New(), "/api/login", `{"username":"dana","password":"wrong"}`)
	require.NoError(t, d.handler.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLoginRejectsEmployee(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	d.mock.ExpectQuery(selectUserByName).WithArgs("dana").WillReturnRows(userRow(t, model.RoleEmployee))

	c, rec := postJSON(echo.New(), "/api/admin-login", `{"username":"dana","password":"secret-pw"}`)
	require.NoError(t, d.handler.AdminLogin(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminLoginAcceptsAdmin(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	d.mock.ExpectQuery(selectUserByName).WithArgs("dana").WillReturnRows(userRow(t, model.RoleAdmin))
	d.mock.ExpectExec(insertRefresh).WithArgs(uint64(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := postJSON(echo.New(), "/api/admin-login", `{"username":"dana","password":"secret-pw"}`)
	require.NoError(t, d.handler.AdminLogin(c))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func refreshCookieFor(t *testing.T, secret string, ttl time.Duration) *http.Cookie {
	t.Helper()
	signed, err := utils.NewToken(secret, model.User{
		ID: 2, Username: "dana", Email: "dana@example.com", Role: model.RoleEmployee,
	}, ttl)
	require.NoError(t, err)
	return &http.Cookie{Name: "refreshToken", Value: signed.Token}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	ck := refreshCookieFor(t, "refresh-secret", 24*time.Hour)
	d.mock.ExpectQuery(selectRefresh).WithArgs(utils.HashRefreshRaw(ck.Value)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(2, time.Now().UTC().Add(24*time.Hour), nil))
	d.mock.ExpectQuery(selectUserByID).WithArgs(uint64(2)).WillReturnRows(userRow(t, model.RoleEmployee))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-token", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, d.handler.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"accessToken"`)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-token", nil)
	req.AddCookie(refreshCookieFor(t, "refresh-secret", -time.Hour))
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, d.handler.Refresh(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshRejectsAccessTokenAsRefresh(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	// A token signed with the access secret must not pass the refresh
	// endpoint even though it carries the same claim shape.
	req := httptest.NewRequest(http.MethodPost, "/api/refresh-token", nil)
	req.AddCookie(refreshCookieFor(t, "access-secret", time.Hour))
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, d.handler.Refresh(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	ck := refreshCookieFor(t, "refresh-secret", 24*time.Hour)
	d.mock.ExpectQuery(selectRefresh).WithArgs(utils.HashRefreshRaw(ck.Value)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(2, time.Now().UTC().Add(24*time.Hour), time.Now().UTC()))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-token", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, d.handler.Refresh(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-token", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, d.handler.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	ck := refreshCookieFor(t, "refresh-secret", 24*time.Hour)
	d.mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL").
		WithArgs(utils.HashRefreshRaw(ck.Value)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, d.handler.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "refreshToken", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRegisterDefaultsUnknownRoleToEmployee(t *testing.T) {
	d := setupAuthTest(t)
	defer d.cleanup()

	d.mock.ExpectExec("INSERT INTO users (username, password_hash, email, role) VALUES (?,?,?,?)").
		WithArgs("dana", sqlmock.AnyArg(), "dana@example.com", "Employee").
		WillReturnResult(sqlmock.NewResult(2, 1))

	c, rec := postJSON(echo.New(), "/api/register",
		`{"username":"dana","password":"secret-pw","email":"dana@example.com","role":"Superuser"}`)
	require.NoError(t, d.handler.Register(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
