package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := ErrInternal("database write failed").Wrap(cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "connection refused")

	wrapped := fmt.Errorf("saving order: %w", appErr)
	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeInternalError, got.Code)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedCode   string
		expectedStatus int
	}{
		{
			name:           "Order not found maps to 404",
			err:            domain.ErrOrderNotFound,
			expectedCode:   CodeNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Stage already done maps to conflict",
			err:            domain.ErrStageAlreadyDone,
			expectedCode:   CodeConflict,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Cancelled order maps to conflict",
			err:            domain.ErrOrderCancelled,
			expectedCode:   CodeConflict,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Out-of-order stage maps to conflict",
			err:            domain.ErrStageOutOfOrder,
			expectedCode:   CodeConflict,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Unplanned stage maps to conflict",
			err:            domain.ErrStageNotPlanned,
			expectedCode:   CodeConflict,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Stage index out of range maps to validation",
			err:            domain.ErrStageOutOfRange,
			expectedCode:   CodeValidationError,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid dispatch quantity maps to validation",
			err:            domain.ErrInvalidDispatch,
			expectedCode:   CodeValidationError,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Wrapped sentinel still classified",
			err:            fmt.Errorf("completing stage: %w", domain.ErrStageAlreadyDone),
			expectedCode:   CodeConflict,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Unknown not-found text falls back to 404",
			err:            errors.New("sku reference not found"),
			expectedCode:   CodeNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Unknown validation text falls back to 400",
			err:            errors.New("quantity must be positive"),
			expectedCode:   CodeValidationError,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unclassified maps to internal",
			err:            errors.New("unexpected driver failure"),
			expectedCode:   CodeInternalError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapDomainError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.expectedCode, appErr.Code)
			assert.Equal(t, tt.expectedStatus, appErr.HTTPStatus)
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
}

func TestMapDomainErrorPassthrough(t *testing.T) {
	original := ErrConflict("duplicate submission")
	assert.Same(t, original, MapDomainError(original))
	assert.Nil(t, MapDomainError(nil))
}
