package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	EmailOrPhone string `json:"emailOrPhone" validate:"required"`
	Password     string `json:"password"     validate:"required,min=6"`
}

type selfValidating struct {
	Name string `json:"name"`
}

func (s selfValidating) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid json", `{"emailOrPhone":"a@x.com","password":"secret1"}`, false},
		{"trailing comma", `{"emailOrPhone":"a@x.com",}`, true},
		{"empty body", ``, true},
		{"wrong type", `{"password":12}`, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var body loginBody
			err := DecodeJSON(req, &body)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", body.EmailOrPhone)
		})
	}
}

func TestDecodeJSONWithoutBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var body loginBody
	assert.ErrorIs(t, DecodeJSON(req, &body), ErrEmptyBody)
}

func TestDecodeOptionalJSON(t *testing.T) {
	t.Parallel()

	var opts struct {
		Force bool `json:"force"`
	}
	assert.NoError(t, DecodeOptionalJSON(httptest.NewRequest(http.MethodPost, "/", nil), &opts))
	assert.NoError(t, DecodeOptionalJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &opts))
	assert.False(t, opts.Force)

	require.NoError(t, DecodeOptionalJSON(
		httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"force":true}`)), &opts))
	assert.True(t, opts.Force)

	assert.Error(t, DecodeOptionalJSON(
		httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"force":`)), &opts))
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	err := ValidateRequest(&loginBody{EmailOrPhone: "a@x.com", Password: "secret1"})
	assert.NoError(t, err)

	err = ValidateRequest(&loginBody{EmailOrPhone: "a@x.com", Password: "123"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Equal(t, "min", validationErrs[0].Tag())

	assert.EqualError(t, ValidateRequest(selfValidating{}), "name is required")
	assert.NoError(t, ValidateRequest(selfValidating{Name: "x"}))
}

func TestIsMultipart(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.False(t, IsMultipart(req))

	req.Header.Set("Content-Type", "application/json")
	assert.False(t, IsMultipart(req))

	req.Header.Set("Content-Type", "multipart/form-data; boundary=abc")
	assert.True(t, IsMultipart(req))
}
