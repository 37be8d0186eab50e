package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionBody struct {
	MinSupport    float64  `json:"min_support,omitempty" validate:"omitempty,threshold"`
	MinConfidence float64  `json:"min_confidence,omitempty" validate:"omitempty,threshold"`
	Items         []string `json:"items,omitempty" validate:"omitempty,max=500,dive,itemlabel"`
}

func TestDecodeJSON(t *testing.T) {
	vm := NewValidationMiddleware(discardLogger(), newErrorHandler())

	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantField  string
		wantStatus int
	}{
		{name: "empty body", body: "", wantOK: true},
		{name: "valid body", body: `{"min_support":0.01,"items":["whole milk"]}`, wantOK: true},
		{name: "support above one", body: `{"min_support":1.5}`, wantField: "min_support", wantStatus: http.StatusBadRequest},
		{name: "blank item", body: `{"items":["  "]}`, wantField: "items[0]", wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"support":0.1}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"min_support":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst sessionBody
			ok := vm.DecodeJSON(rec, req, &dst)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				return
			}

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantField != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				errs, _ := body["errors"].([]interface{})
				require.Len(t, errs, 1)
				assert.Equal(t, tt.wantField, errs[0].(map[string]interface{})["field"])
			}
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	v := NewQueryParamValidator(discardLogger(), newErrorHandler())

	t.Run("int", func(t *testing.T) {
		rec := httptest.NewRecorder()
		n, ok := v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?limit=25", nil), "limit", 0, 100, 10)
		assert.True(t, ok)
		assert.Equal(t, 25, n)

		n, ok = v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/", nil), "limit", 0, 100, 10)
		assert.True(t, ok)
		assert.Equal(t, 10, n)

		rec = httptest.NewRecorder()
		_, ok = v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?limit=500", nil), "limit", 0, 100, 10)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		_, ok = v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?limit=ten", nil), "limit", 0, 100, 10)
		assert.False(t, ok)
	})

	t.Run("float does not range check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f, ok := v.ValidateFloat(rec, httptest.NewRequest(http.MethodGet, "/?min_support=1.5", nil), "min_support", 0.008)
		assert.True(t, ok)
		assert.Equal(t, 1.5, f)

		_, ok = v.ValidateFloat(rec, httptest.NewRequest(http.MethodGet, "/?min_support=abc", nil), "min_support", 0.008)
		assert.False(t, ok)
	})

	t.Run("enum", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s, ok := v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?sort=Confidence", nil), "sort", []string{"lift", "confidence"}, "lift")
		assert.True(t, ok)
		assert.Equal(t, "confidence", s)

		rec = httptest.NewRecorder()
		_, ok = v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?sort=zeta", nil), "sort", []string{"lift"}, "lift")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("items", func(t *testing.T) {
		rec := httptest.NewRecorder()
		items, ok := v.ValidateItems(rec, httptest.NewRequest(http.MethodGet, "/?items=whole%20milk,%20yogurt&items=soda", nil), "items")
		assert.True(t, ok)
		assert.Equal(t, []string{"whole milk", "yogurt", "soda"}, items)

		items, ok = v.ValidateItems(rec, httptest.NewRequest(http.MethodGet, "/?items=ALL", nil), "items")
		assert.True(t, ok)
		assert.Nil(t, items)

		items, ok = v.ValidateItems(rec, httptest.NewRequest(http.MethodGet, "/", nil), "items")
		assert.True(t, ok)
		assert.Nil(t, items)

		rec = httptest.NewRecorder()
		_, ok = v.ValidateItems(rec, httptest.NewRequest(http.MethodGet, "/?items=,,", nil), "items")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
