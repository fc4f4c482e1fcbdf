package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/pkg/configpkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	config := configpkg.Config{
		TokenType:         "paseto",
		TokenSymmetricKey: randompkg.String(32),
	}

	server, err := New(db, zerolog.Nop(), config)
	require.NoError(t, err)

	return server, mock
}

func TestNewInvalidTokenKey(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, zerolog.Nop(), configpkg.Config{TokenSymmetricKey: "short"})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	testCases := []struct {
		name           string
		pingErr        error
		wantStatusCode int
	}{
		{name: "OK", wantStatusCode: http.StatusOK},
		{name: "DatabaseDown", pingErr: errors.New("connection refused"), wantStatusCode: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, mock := newTestServer(t)
			mock.ExpectPing().WillReturnError(tc.pingErr)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatusCode, recorder.Code)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoutesRequireAuthorization(t *testing.T) {
	server, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/accounts"},
		{http.MethodGet, "/networth"},
		{http.MethodGet, "/categories"},
		{http.MethodGet, "/transactions/summary"},
		{http.MethodGet, "/recurring-rules"},
		{http.MethodPost, "/goals"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, req)

		require.Equal(t, http.StatusUnauthorized, recorder.Code, "%s %s", p.method, p.path)
	}
}

func TestAuthorizedRequestReachesHandler(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/accounts/not-a-uuid", nil)
	err := middleware.AddAuthorization(req, server.TokenMaker, middleware.AuthTypeBearer, randompkg.UserID(), time.Minute)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
