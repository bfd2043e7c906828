package favorite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdiary/internal/pkg/jwt"
	"weatherdiary/internal/pkg/response"
)

const testSecret = "handler-test-secret"

func setupTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _ := setupTestService(t)
	tokens := jwt.New(testSecret, time.Hour)
	h := NewHandler(svc, NewHub(nil), tokens, nil)

	r := gin.New()
	api := r.Group("/api/v1")
	RegisterStreamRoutes(api, h)

	protected := api.Group("")
	protected.Use(func(c *gin.Context) {
		var id int64
		fmt.Sscan(c.GetHeader("X-Test-User"), &id)
		c.Set("user_id", id)
		c.Next()
	})
	RegisterRoutes(protected, h)
	return r, svc
}

func doRequest(r *gin.Engine, userID int64, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", fmt.Sprint(userID))
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandlerCreateAndList(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":" Seoul ","district":"Mapo","alias":"Home"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created CreatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, MsgCreated, created.Message)

	w = doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Seoul","district":"Jongno"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, 1, http.MethodGet, "/api/v1/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []FavoriteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Seoul", list[0].City)
	assert.Equal(t, "Home", *list[0].Alias)
	assert.Equal(t, 0, list[0].Order)
	assert.Nil(t, list[1].Alias)
	assert.Equal(t, 1, list[1].Order)
	assert.Contains(t, w.Body.String(), `"order":1`)

	w = doRequest(r, 2, http.MethodGet, "/api/v1/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandlerCreateErrors(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Seoul"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)

	w = doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	long := strings.Repeat("a", 51)
	w = doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"`+long+`","district":"Mapo"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusCreated, doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Seoul","district":"Mapo"}`).Code)

	w = doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Seoul","district":"Mapo"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_exists", decodeError(t, w).Error)

	require.Equal(t, http.StatusCreated, doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Seoul","district":"Jongno"}`).Code)
	require.Equal(t, http.StatusCreated, doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Busan","district":"Haeundae"}`).Code)

	w = doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Daegu","district":"Jung"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "limit_exceeded", decodeError(t, w).Error)
}

func TestHandlerRetrieve(t *testing.T) {
	r, svc := setupTestRouter(t)
	f := createTestFavorite(t, svc, 1, "Seoul", "Mapo")

	w := doRequest(r, 1, http.MethodGet, fmt.Sprintf("/api/v1/favorites/%d", f.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got FavoriteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, f.ID, got.ID)

	w = doRequest(r, 2, http.MethodGet, fmt.Sprintf("/api/v1/favorites/%d", f.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, 1, http.MethodGet, "/api/v1/favorites/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Error)
}

func TestHandlerUpdateAlias(t *testing.T) {
	r, svc := setupTestRouter(t)
	a := createTestFavorite(t, svc, 1, "Seoul", "Jongno")
	b := createTestFavorite(t, svc, 1, "Seoul", "Mapo")
	path := fmt.Sprintf("/api/v1/favorites/%d", b.ID)

	w := doRequest(r, 1, http.MethodPatch, path, `{"alias":"Office"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"`+MsgUpdated+`"}`, w.Body.String())

	got, err := svc.Get(t.Context(), 1, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", *got.Alias)
	assert.Equal(t, 1, got.Slot)

	w = doRequest(r, 1, http.MethodPatch, path, `{"alias":"x","order":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "order_not_allowed_here", decodeError(t, w).Error)

	w = doRequest(r, 1, http.MethodPatch, path, `{"slot":0}`)
	assert.Equal(t, "order_not_allowed_here", decodeError(t, w).Error)

	w = doRequest(r, 1, http.MethodPatch, path, `{"alias":"`+strings.Repeat("a", 101)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)

	w = doRequest(r, 1, http.MethodPatch, path, `{}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, 1, http.MethodPatch, path, `{"alias":null}`)
	assert.Equal(t, http.StatusOK, w.Code)
	got, err = svc.Get(t.Context(), 1, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Alias)

	w = doRequest(r, 2, http.MethodPatch, path, `{"alias":"mine"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []int64{a.ID, b.ID}, listIDs(t, svc, 1))
}

func TestHandlerPutIsNotAllowed(t *testing.T) {
	r, svc := setupTestRouter(t)
	f := createTestFavorite(t, svc, 1, "Seoul", "Mapo")

	w := doRequest(r, 1, http.MethodPut, fmt.Sprintf("/api/v1/favorites/%d", f.ID), `{"alias":"x"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "method_not_allowed", decodeError(t, w).Error)
}

func TestHandlerDelete(t *testing.T) {
	r, svc := setupTestRouter(t)
	a := createTestFavorite(t, svc, 1, "Seoul", "Jongno")
	b := createTestFavorite(t, svc, 1, "Seoul", "Mapo")

	w := doRequest(r, 1, http.MethodDelete, fmt.Sprintf("/api/v1/favorites/%d", a.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doRequest(r, 1, http.MethodDelete, fmt.Sprintf("/api/v1/favorites/%d", a.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []int64{b.ID}, listIDs(t, svc, 1))
}

func TestHandlerReorder(t *testing.T) {
	r, svc := setupTestRouter(t)
	a := createTestFavorite(t, svc, 1, "Seoul", "Jongno")
	b := createTestFavorite(t, svc, 1, "Seoul", "Mapo")
	c := createTestFavorite(t, svc, 1, "Busan", "Haeundae")

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "object", body: `{"id":1,"order":0}`, code: "invalid_format"},
		{name: "partial", body: fmt.Sprintf(`[{"id":%d,"order":0}]`, a.ID), code: "invalid_favorite_id"},
		{
			name: "bad orders",
			body: fmt.Sprintf(`[{"id":%d,"order":0},{"id":%d,"order":0},{"id":%d,"order":1}]`, a.ID, b.ID, c.ID),
			code: "invalid_order_values",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, 1, http.MethodPatch, "/api/v1/favorites/reorder", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error)
		})
	}
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, listIDs(t, svc, 1))

	body := fmt.Sprintf(`[{"id":%d,"order":1},{"id":%d,"order":2},{"id":%d,"order":0}]`, a.ID, b.ID, c.ID)
	w := doRequest(r, 1, http.MethodPatch, "/api/v1/favorites/reorder", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"`+MsgReordered+`"}`, w.Body.String())
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, listIDs(t, svc, 1))
}

func TestHandlerScenarioDeleteMiddleThenAdd(t *testing.T) {
	r, _ := setupTestRouter(t)

	ids := make([]int64, 0, 3)
	for _, d := range []string{"A", "B", "C"} {
		w := doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Seoul","district":"`+d+`"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var created CreatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		ids = append(ids, created.ID)
	}

	require.Equal(t, http.StatusNoContent, doRequest(r, 1, http.MethodDelete, fmt.Sprintf("/api/v1/favorites/%d", ids[1]), "").Code)
	require.Equal(t, http.StatusCreated, doRequest(r, 1, http.MethodPost, "/api/v1/favorites", `{"city":"Seoul","district":"D"}`).Code)

	w := doRequest(r, 1, http.MethodGet, "/api/v1/favorites", "")
	var list []FavoriteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	for i, want := range []string{"A", "C", "D"} {
		assert.Equal(t, want, list[i].District)
		assert.Equal(t, i, list[i].Order)
	}
}

func TestHandlerSubscribeRejectsBadToken(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(r, 1, http.MethodGet, "/api/v1/favorites/ws?token=nope", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
