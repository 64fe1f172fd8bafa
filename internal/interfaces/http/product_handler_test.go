package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
)

func TestListProducts_IncluyeCantidadDisponible(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodGet, "/api/products?limit=500", "", authHeaders(t))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ProductListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out.Total)
	assert.Equal(t, 100, out.Limit, "el límite se acota a 100")
	require.Len(t, out.Items, 1)
	assert.Equal(t, "ATK-001", out.Items[0].Code)
	assert.Equal(t, "ATK", out.Items[0].Category)
	assert.Equal(t, int64(8), out.Items[0].LatestQuantity)
	assert.Empty(t, out.Items[0].Lots, "el listado no trae lotes")
}

func TestGetProduct_LotesMasAntiguoPrimero(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodGet, "/api/products/p-a", "", authHeaders(t))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ProductResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Lots, 2)
	assert.Equal(t, "a-old", out.Lots[0].ID)
	assert.Equal(t, "a-new", out.Lots[1].ID)
}

func TestGetProduct_Inexistente_Retorna404(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodGet, "/api/products/no-existe", "", authHeaders(t))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestListProducts_SinToken_Retorna401(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodGet, "/api/products", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
