package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/sajith213/fuelstation-backend/pkg/errors"
)

type sampleBody struct {
	NozzleID    string   `json:"nozzle_id" validate:"required,uuid"`
	ReadingDate string   `json:"reading_date" validate:"omitempty,calendar_date"`
	Closing     string   `json:"closing_value" validate:"omitempty,meter_value"`
	Status      string   `json:"status" validate:"omitempty,nozzle_status"`
	Notes       string   `json:"notes" validate:"max=5"`
	ReadingIDs  []string `json:"reading_ids" validate:"omitempty,max=2"`
}

func decodeSample(t *testing.T, body string) (sampleBody, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest sampleBody
	err := DecodeJSONBody(req, &dest)
	return dest, err
}

func validationDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	return details
}

func TestDecodeJSONBody(t *testing.T) {
	body, err := decodeSample(t, `{"nozzle_id":"5b0d8a56-7a59-4b8e-9d34-6f6bd4f0e0b1","reading_date":"2026-10-18","closing_value":"150.25","status":"maintenance","notes":"ok"}`)
	require.NoError(t, err)
	assert.Equal(t, "ok", body.Notes)
	assert.Equal(t, "150.25", body.Closing)
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	_, err := decodeSample(t, `{"nozzle_id":"abc","notes":"too long"}`)
	details := validationDetails(t, err)
	assert.Equal(t, "must be a valid uuid", details["nozzle_id"])
	assert.Equal(t, "must be at most 5", details["notes"])
}

func TestDecodeJSONBodyDomainTags(t *testing.T) {
	_, err := decodeSample(t, `{"nozzle_id":"5b0d8a56-7a59-4b8e-9d34-6f6bd4f0e0b1","reading_date":"18/10/2026","closing_value":"1.00005","status":"broken","reading_ids":["a","b","c"]}`)
	details := validationDetails(t, err)
	assert.Equal(t, "must be YYYY-MM-DD", details["reading_date"])
	assert.Equal(t, "must be a non-negative decimal with at most 4 places", details["closing_value"])
	assert.Equal(t, "must be one of active, inactive, maintenance", details["status"])
	assert.Equal(t, "must contain at most 2 items", details["reading_ids"])
}

func TestDecodeJSONBodyRejectsNegativeMeterValue(t *testing.T) {
	_, err := decodeSample(t, `{"nozzle_id":"5b0d8a56-7a59-4b8e-9d34-6f6bd4f0e0b1","closing_value":"-1"}`)
	assert.Contains(t, validationDetails(t, err), "closing_value")
}

func TestDecodeJSONBodyRejectsOutOfRangeMeterValue(t *testing.T) {
	for _, raw := range []string{"1e20", "100000000000000"} {
		_, err := decodeSample(t, `{"nozzle_id":"5b0d8a56-7a59-4b8e-9d34-6f6bd4f0e0b1","closing_value":"`+raw+`"}`)
		assert.Contains(t, validationDetails(t, err), "closing_value", raw)
	}
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"unknown field": `{"nozzle_id":"5b0d8a56-7a59-4b8e-9d34-6f6bd4f0e0b1","extra":1}`,
		"two objects":   `{"nozzle_id":"5b0d8a56-7a59-4b8e-9d34-6f6bd4f0e0b1"}{"nozzle_id":"x"}`,
		"not json":      `nozzle`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeSample(t, body)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
		})
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&bad=x&big=500", nil)

	v, err := ParseQueryInt(req, "limit", 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	v, err = ParseQueryInt(req, "missing", 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	_, err = ParseQueryInt(req, "bad", 10, 1, 100)
	require.Error(t, err)
	_, err = ParseQueryInt(req, "big", 10, 1, 100)
	require.Error(t, err)
}

func TestParseQueryFilters(t *testing.T) {
	nozzle := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/?nozzle_id="+nozzle.String()+"&from=2026-10-01&bad_id=x&bad_date=2026-13-01", nil)

	id, err := ParseQueryUUID(req, "nozzle_id")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, nozzle, *id)

	missing, err := ParseQueryUUID(req, "pump_id")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = ParseQueryUUID(req, "bad_id")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	from, err := ParseQueryDate(req, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *from)

	_, err = ParseQueryDate(req, "bad_date")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestParsePageParams(t *testing.T) {
	params, err := ParsePageParams(httptest.NewRequest(http.MethodGet, "/?limit=5&cursor=%20abc%20", nil))
	require.NoError(t, err)
	assert.Equal(t, 5, params.Limit)
	assert.Equal(t, "abc", params.Cursor)

	params, err = ParsePageParams(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 25, params.Limit)

	_, err = ParsePageParams(httptest.NewRequest(http.MethodGet, "/?limit=0", nil))
	require.Error(t, err)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "abc", CleanText("  abc  ", 10))
	assert.Equal(t, "ab", CleanText("abcdef", 2))
	assert.Equal(t, "line one\nline two", CleanText("line one\nline\x00 two", 0))
	assert.Equal(t, "dépôt", CleanText("dépôt-7", 5))
}
