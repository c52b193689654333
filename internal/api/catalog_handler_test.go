package api

import (
	"net/http"
	"testing"

	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsPublic(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 0, *resp.Count)
	assert.JSONEq(t, `[]`, string(resp.Data))

	api.category("Sửa chữa", 15000)
	api.category("Giao hàng", 5000)

	rec = api.do(http.MethodGet, "/api/categories", nil, nil)
	categories := decodeData[[]domain.JobCategory](t, rec)
	require.Len(t, categories, 2)
	assert.Equal(t, "Giao hàng", categories[0].Name, "sorted by name")
	assert.Equal(t, 5000.0, categories[0].PostingFee)

	rec = api.do(http.MethodGet, "/api/locations", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]domain.Location](t, rec))
}

func TestCatalogStoreFailure(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	api.db.Fail("Locations.List", assert.AnError)

	rec := api.do(http.MethodGet, "/api/locations", nil, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error fetching locations", decode(t, rec).Message)
}
