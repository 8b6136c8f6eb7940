package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssg-mis/order-to-dispatch-backend/pkg/events"
)

func TestCorrelationIDPropagatesToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	factory := events.NewFactory("/dispatch-api")
	var captured *events.Envelope

	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/orders", func(c *gin.Context) {
		captured = factory.CreateEvent(c.Request.Context(), "dispatch.order.punched", "DO-416", nil)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(HeaderCorrelationID, "corr-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.NotNil(t, captured)
	assert.Equal(t, "corr-123", captured.CorrelationID)
	assert.Equal(t, "corr-123", rec.Header().Get(HeaderCorrelationID))
}

func TestCorrelationIDMintedWhenHeaderMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	factory := events.NewFactory("/dispatch-api")
	var captured *events.Envelope

	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/orders", func(c *gin.Context) {
		captured = factory.CreateEvent(c.Request.Context(), "dispatch.order.punched", "DO-416", nil)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	require.NotNil(t, captured)
	assert.NotEmpty(t, captured.CorrelationID)
	assert.Equal(t, captured.CorrelationID, rec.Header().Get(HeaderCorrelationID))
}
