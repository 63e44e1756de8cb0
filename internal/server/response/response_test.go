package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cofina/leads/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccessAndFail(t *testing.T) {
	ok := Success(map[string]int{"rows": 3})
	assert.NotNil(t, ok.Data)
	assert.Nil(t, ok.Error)

	bad := Fail("BAD_REQUEST", "row out of range", "row 9")
	assert.Nil(t, bad.Data)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "BAD_REQUEST", bad.Error.Code)
	assert.Equal(t, "row 9", bad.Error.Details)
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]string{"status": "healthy"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode(t, w)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"status": "healthy"}, resp.Data)
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NewNotFoundError("category", "Nope"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("show: %w", errors.NewNotFoundError("category", "Nope")), http.StatusNotFound, "NOT_FOUND"},
		{"validation", errors.NewValidationError("row", 9, "out of range"), http.StatusBadRequest, "BAD_REQUEST"},
		{"exists", errors.ErrAlreadyExists, http.StatusConflict, "CONFLICT"},
		{"parse", errors.NewParseError("json", "", "bad body", nil), http.StatusBadRequest, "BAD_REQUEST"},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	InternalError(w, errors.New("password=hunter2"))
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowed(w, http.MethodDelete)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "DELETE")
}
