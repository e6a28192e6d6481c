package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"draft"}`))
	got, err := DecodeJSONBody[payload](req)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"draft","extra":1}`))
	_, err = DecodeJSONBody[payload](req)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	_, err = DecodeJSONBody[payload](req)
	assert.Error(t, err)
}

func TestWriteJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONResponse(w, http.StatusCreated, payload{Name: "x"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"x"}`, w.Body.String())
}

func TestPathInt64(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/processes/7", nil)
	req.SetPathValue("id", "7")
	id, err := PathInt64(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, raw := range []string{"", "abc", "0", "-3"} {
		req.SetPathValue("id", raw)
		_, err := PathInt64(req, "id")
		assert.Error(t, err, raw)
	}
}

func TestQueryInt64(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?decision=4", nil)
	id, ok, err := QueryInt64(req, "decision")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(4), id)

	_, ok, err = QueryInt64(req, "process")
	require.NoError(t, err)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/x?decision=four", nil)
	_, _, err = QueryInt64(req, "decision")
	assert.Error(t, err)
}
