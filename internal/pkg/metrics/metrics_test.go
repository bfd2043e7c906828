package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFavoriteOperationsCounter(t *testing.T) {
	before := testutil.ToFloat64(FavoriteOperations.WithLabelValues("create", "ok"))
	FavoriteOperations.WithLabelValues("create", "ok").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(FavoriteOperations.WithLabelValues("create", "ok")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	FavoriteOperations.WithLabelValues("delete", "ok").Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "favorites_operations_total")
}
