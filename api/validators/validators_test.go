package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/surplusmarket-backend/pkg/errors"
)

type itemRequest struct {
	OfferID  string `json:"offer_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type sampleRequest struct {
	Kind  string        `json:"kind" validate:"required,oneof=pickup delivery"`
	Items []itemRequest `json:"items" validate:"required,min=1,dive"`
}

func TestDecodeJSONBodyReportsNestedFields(t *testing.T) {
	body := `{"kind":"boat","items":[{"offer_id":"nope","quantity":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dest sampleRequest
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be one of [pickup delivery]", details["kind"])
	assert.Equal(t, "must be a valid uuid", details["items[0].offer_id"])
	assert.Equal(t, "must be at least 1", details["items[0].quantity"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"pickup","surprise":true}`))
	var dest sampleRequest
	err := DecodeJSONBody(req, &dest)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&unread_only=yes", nil)

	_, err := ParseQueryInt(req, "limit", 25, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	limit, err := ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, limit)

	_, err = ParseQueryBool(req, "unread_only")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseUUIDParam("  ", "order id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "left at door", SanitizeString(" left at door ", 0))
	assert.Equal(t, "Привет", SanitizeString("Привет мир", 6))
	assert.Equal(t, "ring twice", SanitizeString("ring \n\t twice", 0))
	assert.Equal(t, "ab", SanitizeString("a\x00b", 0))
	assert.Equal(t, "ab", SanitizeString("ab cd", 3))
}

func TestDecodeJSONBodyRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"syntax":   `{"kind":`,
		"type":     `{"kind":5}`,
		"trailing": `{"kind":"pickup","items":[{"offer_id":"8a3c1f8e-6f5e-4a9b-9a55-0f2a3b6c7d8e","quantity":1}]} {}`,
	}
	for name, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var dest sampleRequest
		err := DecodeJSONBody(req, &dest)
		require.Error(t, err, name)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, name)
		assert.Equal(t, "invalid request body", typed.Message(), name)
	}
}
