package httpjson_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/echochat/internal/httpjson"
)

func read(body string, limit int64, v any) error {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return httpjson.Read(httptest.NewRecorder(), req, limit, v)
}

func TestRead(t *testing.T) {
	var v map[string]string
	require.NoError(t, read(`{"a": "b"}`+"\n", 1024, &v))
	assert.Equal(t, map[string]string{"a": "b"}, v)
}

func TestReadTrailingData(t *testing.T) {
	for _, body := range []string{`{"a": "b"} junk`, `{"a": "b"}{"a": "c"}`, `{} 1`} {
		var v map[string]string
		err := read(body, 1024, &v)
		assert.ErrorIs(t, err, httpjson.ErrTrailingData, body)
	}
}

func TestReadTooLarge(t *testing.T) {
	var v map[string]string
	err := read(`{"a": "`+strings.Repeat("x", 64)+`"}`, 16, &v)

	var sizeErr *http.MaxBytesError
	assert.True(t, errors.As(err, &sizeErr), "got %v", err)
}
