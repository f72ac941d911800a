package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/openbucketeer/backend/internal/adapter/repository/memory"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/openbucketeer/backend/internal/usecase/balance"
	"github.com/openbucketeer/backend/internal/usecase/distribution"
	"github.com/openbucketeer/backend/internal/usecase/grouping"
	"github.com/openbucketeer/backend/internal/usecase/lifecycle"
	"github.com/openbucketeer/backend/internal/usecase/versioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *memory.Ledger) {
	t.Helper()
	ledger := memory.NewLedger()
	system := domain.DefaultSystemIDs()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(
		grouping.NewService(ledger, system),
		versioning.NewService(ledger, system),
		balance.NewService(ledger),
		lifecycle.NewService(ledger, system),
		distribution.NewService(ledger, system),
		logger,
	)
	return server, ledger
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGroupEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/groups", map[string]any{"name": "Spending"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created groupResponse
	decodeBody(t, rec, &created)
	assert.Equal(t, "Spending", created.Name)
	assert.Equal(t, 1, created.Position)

	rec = doJSON(t, server, http.MethodPost, "/api/groups", map[string]any{"name": "Savings"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/groups/%s/move", created.ID), map[string]any{"delta": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	var moved groupResponse
	decodeBody(t, rec, &moved)
	assert.Equal(t, 2, moved.Position)

	rec = doJSON(t, server, http.MethodGet, "/api/groups", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []groupResponse
	decodeBody(t, rec, &groups)
	require.Len(t, groups, 2)
	assert.Equal(t, "Savings", groups[0].Name)

	rec = doJSON(t, server, http.MethodDelete, "/api/groups/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateGroup_ValidationErrorMapsTo422(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server, http.MethodPost, "/api/groups", map[string]any{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteGroup_ErrorMapping(t *testing.T) {
	server, ledger := newTestServer(t)

	// Unknown id: 404.
	rec := doJSON(t, server, http.MethodDelete, "/api/groups/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed id: 400.
	rec = doJSON(t, server, http.MethodDelete, "/api/groups/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Group still holding buckets: 409.
	rec = doJSON(t, server, http.MethodPost, "/api/groups", map[string]any{"name": "Spending"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var group groupResponse
	decodeBody(t, rec, &group)
	require.NoError(t, ledger.Buckets().Create(context.Background(), &domain.Bucket{
		ID:        uuid.New(),
		GroupID:   group.ID,
		Name:      "Groceries",
		ValidFrom: domain.MustParseMonth("2024-01"),
	}))
	rec = doJSON(t, server, http.MethodDelete, "/api/groups/"+group.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBucketEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/groups", map[string]any{"name": "Spending"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var group groupResponse
	decodeBody(t, rec, &group)

	rec = doJSON(t, server, http.MethodPost, "/api/buckets", map[string]any{
		"name":      "Groceries",
		"groupId":   group.ID.String(),
		"validFrom": "2024-01",
		"version": map[string]any{
			"kind":   "FIXED",
			"amount": "100.50",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bucket bucketResponse
	decodeBody(t, rec, &bucket)
	assert.Equal(t, "Groceries", bucket.Name)
	assert.Equal(t, "2024-01", bucket.ValidFrom.String())

	rec = doJSON(t, server, http.MethodPut, "/api/buckets/"+bucket.ID.String(), map[string]any{
		"name": "Food",
		"version": map[string]any{
			"kind":      "FIXED",
			"amount":    "120",
			"validFrom": "2024-02",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated bucketResponse
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Food", updated.Name)

	rec = doJSON(t, server, http.MethodGet, "/api/buckets?month=2024-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []struct {
		Bucket  bucketResponse  `json:"bucket"`
		Version versionResponse `json:"version"`
	}
	decodeBody(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "Food", listed[0].Bucket.Name)
	assert.Equal(t, 2, listed[0].Version.Version)
	assert.Equal(t, "120", listed[0].Version.Amount)
}

func TestCreateBucket_BadAmountIs400(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doJSON(t, server, http.MethodPost, "/api/buckets", map[string]any{
		"name":      "Groceries",
		"groupId":   uuid.NewString(),
		"validFrom": "2024-01",
		"version":   map[string]any{"kind": "FIXED", "amount": "one hundred"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFiguresEndpoint(t *testing.T) {
	server, ledger := newTestServer(t)

	bucket := &domain.Bucket{
		ID:        uuid.New(),
		GroupID:   uuid.New(),
		Name:      "Groceries",
		ValidFrom: domain.MustParseMonth("2024-01"),
	}
	require.NoError(t, ledger.Buckets().Create(context.Background(), bucket))

	rec := doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/buckets/%s/figures?month=2024-01", bucket.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var figures map[string]string
	decodeBody(t, rec, &figures)
	assert.Equal(t, "0", figures["balance"])
	assert.Equal(t, "0", figures["input"])
	assert.Equal(t, "0", figures["output"])

	// The in/out-only variant omits the balance.
	rec = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/buckets/%s/figures?month=2024-01&balance=false", bucket.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	figures = nil
	decodeBody(t, rec, &figures)
	_, hasBalance := figures["balance"]
	assert.False(t, hasBalance)

	rec = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/buckets/%s/figures", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloseBucket_StateMapping(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/groups", map[string]any{"name": "Spending"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var group groupResponse
	decodeBody(t, rec, &group)

	rec = doJSON(t, server, http.MethodPost, "/api/buckets", map[string]any{
		"name":      "Groceries",
		"groupId":   group.ID.String(),
		"validFrom": "2024-01",
		"version":   map[string]any{"kind": "FIXED", "amount": "100"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var bucket bucketResponse
	decodeBody(t, rec, &bucket)

	// No ledger history: close hard-deletes.
	rec = doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/buckets/%s/close", bucket.ID), map[string]any{"month": "2024-02"})
	require.Equal(t, http.StatusOK, rec.Code)
	var closed map[string]any
	decodeBody(t, rec, &closed)
	assert.Equal(t, true, closed["deleted"])

	// Closing it again: gone, 404.
	rec = doJSON(t, server, http.MethodPost, fmt.Sprintf("/api/buckets/%s/close", bucket.ID), map[string]any{"month": "2024-02"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDistributeEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/groups", map[string]any{"name": "Spending"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var group groupResponse
	decodeBody(t, rec, &group)

	rec = doJSON(t, server, http.MethodPost, "/api/buckets", map[string]any{
		"name":      "Groceries",
		"groupId":   group.ID.String(),
		"validFrom": "2024-01",
		"version":   map[string]any{"kind": "FIXED", "amount": "100"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var bucket bucketResponse
	decodeBody(t, rec, &bucket)

	rec = doJSON(t, server, http.MethodPost, "/api/distribute", map[string]any{"month": "2024-03"})
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]int
	decodeBody(t, rec, &result)
	assert.Equal(t, 1, result["movements"])

	rec = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/buckets/%s/figures?month=2024-03", bucket.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var figures map[string]string
	decodeBody(t, rec, &figures)
	assert.Equal(t, "100", figures["balance"])
	assert.Equal(t, "100", figures["input"])

	rec = doJSON(t, server, http.MethodPost, "/api/distribute", map[string]any{"month": "not-a-month"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
