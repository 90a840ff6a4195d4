package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPrediction(t *testing.T) {
	before := testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeFailed))
	RecordPrediction(OutcomeFailed, 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(predictionsTotal.WithLabelValues(OutcomeFailed)))
}

func TestRecordWakeProbe(t *testing.T) {
	before := testutil.ToFloat64(wakeProbesTotal.WithLabelValues("unreachable"))
	RecordWakeProbe(false)
	assert.Equal(t, before+1, testutil.ToFloat64(wakeProbesTotal.WithLabelValues("unreachable")))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.POST("/fields/:name", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/fields/:name", "204"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/fields/Age", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/fields/:name", "204")))
}
