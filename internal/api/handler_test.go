package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/astraschool/astra-platform/internal/api"
	"github.com/astraschool/astra-platform/internal/api/middleware"
	"github.com/astraschool/astra-platform/internal/config"
	"github.com/astraschool/astra-platform/internal/db"
	"github.com/astraschool/astra-platform/internal/idempotency"
	"github.com/astraschool/astra-platform/internal/models"
	"github.com/astraschool/astra-platform/internal/repository"
	"github.com/astraschool/astra-platform/internal/testutil/dblock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDB *pgxpool.Pool

const (
	testJWTSecret   = "test-secret-0123456789-test-secret"
	testJWTIssuer   = "astra-platform-test"
	testJWTAudience = "astra-api-test"
)

func TestMain(m *testing.M) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		// Every test skips via requireDB.
		os.Exit(m.Run())
	}

	release := dblock.Acquire()
	if err := db.Migrate(connStr); err != nil {
		release()
		fmt.Printf("Unable to migrate database: %v\n", err)
		os.Exit(1)
	}

	var err error
	testDB, err = pgxpool.New(context.Background(), connStr)
	if err != nil {
		release()
		fmt.Printf("Unable to connect to database: %v\n", err)
		os.Exit(1)
	}

	middleware.SetJWTSecret(testJWTSecret)
	middleware.SetJWTValidation(testJWTIssuer, testJWTAudience)

	code := m.Run()
	testDB.Close()
	release()
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}
	_, err := testDB.Exec(context.Background(), `
		TRUNCATE TABLE idempotency_keys, company_payouts, company_earnings,
			company_investments, company_equity_allocations, transactions,
			companies, friendships, users CASCADE
	`)
	require.NoError(t, err)
}

func setupAPI() http.Handler {
	cfg := &config.Config{
		HTTPPort:             "0",
		JWTSecret:            testJWTSecret,
		JWTIssuer:            testJWTIssuer,
		JWTAudience:          testJWTAudience,
		StartingBalance:      2000,
		AdminStartingBalance: 30000,
		StrictFounderEmails:  true,
		PublicRateLimitRPS:   1000,
		AuthRateLimitRPS:     1000,
		IdempotencyTTL:       time.Hour,
	}
	store := repository.NewStore(testDB)
	idemStore := idempotency.NewStore(nil, testDB, cfg.IdempotencyTTL)
	return api.NewRouter(cfg, zap.NewNop(), testDB, store, idemStore, nil).Routes()
}

func generateTokenWithRole(userID, role string) string {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"iss":     testJWTIssuer,
		"aud":     testJWTAudience,
		"sub":     userID,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	})
	tokenString, _ := token.SignedString(middleware.JWTSecret())
	return tokenString
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router http.Handler, email string) (models.User, string) {
	t.Helper()

	w := doJSON(t, router, "POST", "/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct horse battery",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User, resp.Token
}

func befriend(t *testing.T, router http.Handler, sender, recipient models.User, senderToken, recipientToken string) {
	t.Helper()

	w := doJSON(t, router, "POST", "/v1/friends", senderToken, map[string]string{"email": recipient.Email}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "POST", "/v1/friends/requests/"+sender.ID.String(), recipientToken, map[string]bool{"accept": true}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestProblemDetailsOnUnauthorized(t *testing.T) {
	requireDB(t)
	router := setupAPI()

	w := doJSON(t, router, "GET", "/v1/me", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["type"])
	assert.Equal(t, float64(http.StatusUnauthorized), body["status"])
	assert.NotEmpty(t, body["title"])
	assert.Equal(t, "/v1/me", body["instance"])
}

func TestRegisterGrantsStartingBalance(t *testing.T) {
	requireDB(t)
	router := setupAPI()

	user, token := registerUser(t, router, "newkid@school.test")
	assert.Equal(t, int64(2000), user.Balance)
	assert.False(t, user.IsAdmin)

	w := doJSON(t, router, "GET", "/v1/me", token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, user.ID, me.ID)
}

func TestTransferRequiresFriendship(t *testing.T) {
	requireDB(t)
	router := setupAPI()

	alice, aliceToken := registerUser(t, router, "alice@school.test")
	bob, bobToken := registerUser(t, router, "bob@school.test")

	payload := map[string]any{"to_user_id": bob.ID.String(), "amount": 300, "description": "lunch"}
	headers := map[string]string{"Idempotency-Key": uuid.New().String()}

	w := doJSON(t, router, "POST", "/v1/transfers", aliceToken, payload, headers)
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	befriend(t, router, alice, bob, aliceToken, bobToken)

	headers["Idempotency-Key"] = uuid.New().String()
	w = doJSON(t, router, "POST", "/v1/transfers", aliceToken, payload, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "GET", "/v1/me", bobToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, int64(2300), me.Balance)
}

func TestTransferIdempotencyReplay(t *testing.T) {
	requireDB(t)
	router := setupAPI()

	alice, aliceToken := registerUser(t, router, "alice@school.test")
	bob, bobToken := registerUser(t, router, "bob@school.test")
	befriend(t, router, alice, bob, aliceToken, bobToken)

	payload := map[string]any{"to_user_id": bob.ID.String(), "amount": 300, "description": "lunch"}

	// Missing key is rejected outright.
	w := doJSON(t, router, "POST", "/v1/transfers", aliceToken, payload, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	headers := map[string]string{"Idempotency-Key": uuid.New().String()}
	w = doJSON(t, router, "POST", "/v1/transfers", aliceToken, payload, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Replaying the same key returns the recorded response without
	// moving money again.
	w = doJSON(t, router, "POST", "/v1/transfers", aliceToken, payload, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "GET", "/v1/me", aliceToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, int64(1700), me.Balance)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	requireDB(t)
	router := setupAPI()

	user, token := registerUser(t, router, "student@school.test")

	w := doJSON(t, router, "GET", "/v1/admin/users", token, nil, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	adminToken := generateTokenWithRole(user.ID.String(), "admin")
	w = doJSON(t, router, "GET", "/v1/admin/users", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCompanyLifecycleOverAPI(t *testing.T) {
	requireDB(t)
	router := setupAPI()

	creator, creatorToken := registerUser(t, router, "founder@school.test")
	_, investorToken := registerUser(t, router, "investor@school.test")

	headers := map[string]string{"Idempotency-Key": uuid.New().String()}
	w := doJSON(t, router, "POST", "/v1/companies", creatorToken, map[string]any{
		"name":              "Astra Lemonade",
		"description":       "Lemonade stand",
		"category":          "food",
		"funding_goal":      10000,
		"investor_pool_bps": 5000,
		"founder_allocations": []map[string]any{
			{"email": creator.Email, "basis_points": 5000},
		},
	}, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var company models.Company
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &company))

	headers["Idempotency-Key"] = uuid.New().String()
	w = doJSON(t, router, "POST", "/v1/companies/"+company.ID.String()+"/invest", investorToken, map[string]any{"amount": 1000}, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var invested struct {
		BasisPointsGranted int32 `json:"basis_points_granted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invested))
	assert.Equal(t, int32(500), invested.BasisPointsGranted)

	w = doJSON(t, router, "GET", "/v1/companies/"+company.ID.String()+"/equity", investorToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var equity []models.CompanyEquity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &equity))
	assert.Len(t, equity, 2)
}

func TestUserProfileOverAPI(t *testing.T) {
	requireDB(t)
	router := setupAPI()

	alice, aliceToken := registerUser(t, router, "alice@school.test")
	bob, bobToken := registerUser(t, router, "bob@school.test")
	befriend(t, router, alice, bob, aliceToken, bobToken)

	w := doJSON(t, router, "GET", "/v1/users/"+bob.ID.String(), aliceToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, bob.ID, profile.ID)
	assert.Equal(t, bob.Email, profile.Email)
	require.NotNil(t, profile.FriendshipStatus)
	assert.Equal(t, "accepted", *profile.FriendshipStatus)
	assert.True(t, profile.RequestedByViewer)
	require.Len(t, profile.Friends, 1)
	assert.Equal(t, alice.Email, profile.Friends[0].Email)

	w = doJSON(t, router, "GET", "/v1/users/not-a-uuid", aliceToken, nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", "/v1/users/"+uuid.New().String(), aliceToken, nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}
