package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/ccourse/apps/api/echo"
	"github.com/trezcool/ccourse/core/user"
	"github.com/trezcool/ccourse/tests"
)

const pwd = "lol"

func Test_authApi_login(t *testing.T) {
	reset(t)

	usr := testutil.CreateUser(t, usrRepo, "Tutor", "tutor@example.com", pwd, []string{user.RoleTutor}, true)
	testutil.CreateUser(t, usrRepo, "Naughty", "naughty@example.com", pwd, []string{user.RoleStudent}, false)

	tests := []httpTest{
		{
			name: "empty payload", method: "POST", path: "/v1/auth/login", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"this field is required","password":"this field is required"}`),
		},
		{
			name: "invalid email", method: "POST", path: "/v1/auth/login", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Email: "tutor", Password: pwd}),
			wantData: []byte(`{"email":"email must be a valid email address"}`),
		},
		{
			name: "unknown email", method: "POST", path: "/v1/auth/login", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Email: "lol@example.com", Password: pwd}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", method: "POST", path: "/v1/auth/login", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Email: "tutor@example.com", Password: "pwd"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", method: "POST", path: "/v1/auth/login", wantCode: http.StatusForbidden,
			body:     marchallObj(t, LoginRequest{Email: "naughty@example.com", Password: pwd}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := serve("POST", "/v1/auth/login", "", marchallObj(t, LoginRequest{Email: " Tutor@Example.com ", Password: pwd}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		unmarshal(t, rec, &resp)
		claims := new(Claims)
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, usr.ID, claims.Subject)
		assert.Equal(t, usr.Email, claims.Email)
		assert.True(t, claims.IsTutor)
		assert.Equal(t, claims.IssuedAt, claims.OrigIssuedAt)

		// last login recorded
		got, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.True(t, got.LastLogin.Valid)
	})
}

func Test_authApi_refreshToken(t *testing.T) {
	reset(t)

	usr := testutil.CreateUser(t, usrRepo, "Student", "student@example.com", pwd, []string{user.RoleStudent}, true)
	naughty := testutil.CreateUser(t, usrRepo, "Naughty", "naughty@example.com", pwd, []string{user.RoleStudent}, false)

	staleToken, err := issuer.GenerateToken(issuer.UserClaims(usr, time.Now().Add(-(conf.Server.JWTRefreshExpirationDelta + time.Minute)).Unix()))
	require.NoError(t, err)

	tests := []httpTest{
		{name: "auth required", method: "POST", path: "/v1/auth/token-refresh", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "deactivated account", method: "POST", path: "/v1/auth/token-refresh", token: getToken(t, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "refresh expired", method: "POST", path: "/v1/auth/token-refresh", token: staleToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success", func(t *testing.T) {
		origIat := time.Now().Add(-time.Hour).Unix()
		token, err := issuer.GenerateToken(issuer.UserClaims(usr, origIat))
		require.NoError(t, err)

		rec := serve("POST", "/v1/auth/token-refresh", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		unmarshal(t, rec, &resp)
		claims := new(Claims)
		_, err = jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, origIat, claims.OrigIssuedAt)
		assert.False(t, claims.IsTutor)
	})
}

func Test_authApi_session(t *testing.T) {
	reset(t)

	usr := testutil.CreateUser(t, usrRepo, "Student", "student@example.com", pwd, []string{user.RoleStudent}, true)
	ghost := user.User{ID: "ghost", Name: "Ghost", Email: "ghost@example.com", IsActive: true}

	tests := []httpTest{
		{name: "auth required", path: "/v1/auth/session", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "unknown user", path: "/v1/auth/session", token: getToken(t, ghost),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "signed in", path: "/v1/auth/session", token: getToken(t, usr), wantData: marchallObj(t, usr)},
	}
	runHTTPTests(t, tests)
}
