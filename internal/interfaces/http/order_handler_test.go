package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	appinventory "github.com/jhoicas/pedidos-api/internal/application/inventory"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pedidos-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/pedidos-api/internal/interfaces/http"
	"github.com/jhoicas/pedidos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testPassword = "rahasia123"

// buildAPI arma la API completa sobre el store en memoria con un usuario activo "ana".
func buildAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	s := memory.New()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	s.AddUser(entity.User{
		ID: testUserID, Username: testUsername, Fullname: "Ana Pérez",
		PasswordHash: string(hash), Role: entity.RoleBodeguero, Status: "active",
	})

	now := time.Now().UTC()
	s.AddCategory(entity.Category{ID: "c-atk", Title: "ATK"})
	s.AddProduct(entity.Product{ID: "p-a", CategoryID: "c-atk", Name: "Kertas HVS", Code: "ATK-001"})
	require.NoError(t, s.AddLot(entity.StockLot{ID: "a-old", ProductID: "p-a", Quantity: 3, Price: decimal.NewFromInt(10), CreatedAt: now.Add(-72 * time.Hour)}))
	require.NoError(t, s.AddLot(entity.StockLot{ID: "a-new", ProductID: "p-a", Quantity: 5, Price: decimal.NewFromInt(12), CreatedAt: now.Add(-24 * time.Hour)}))

	log := logger.Nop()
	createUC := orders.NewCreateOrderUseCase(
		s, s.Products(),
		appinventory.NewAllocateStockUseCase(s, log),
		orders.NewReferenceGenerator(false, time.UTC),
		orders.Config{MaxAttempts: 3, LineConcurrency: 2, Location: time.UTC},
		log,
	)
	authUC := auth.NewAuthUseCase(s.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		CreateOrder: createUC,
		OrderQuery:  orders.NewQueryUseCase(s.Orders()),
		DeliveryPDF: orders.NewDeliveryNotePDFUseCase(s.Orders(), infrapdf.NewMarotoPDFGenerator("Bodega", time.UTC)),
		ProductUC:   usecase.NewProductUseCase(s.Products()),
		Idempotency: memory.NewIdempotencyGuard(time.Hour),
		JWTSecret:   testJWTSecret,
		Log:         log,
	})
	return app, s
}

func send(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func authHeaders(t *testing.T) map[string]string {
	return map[string]string{"Authorization": tokenForRole(t, entity.RoleBodeguero)}
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/orders
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_Exito(t *testing.T) {
	app, s := buildAPI(t)

	resp := send(t, app, http.MethodPost, "/api/orders", `{"products":[{"productId":"p-a","quantity":4}]}`, authHeaders(t))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.CreateOrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Order created", out.Message)
	assert.NotEmpty(t, out.OrderID)
	assert.Regexp(t, `^DN\d{8}000001$`, out.ReferenceNumber)

	order, err := s.Orders().GetByID(context.Background(), out.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, testUserID, order.UserID, "el pedido queda a nombre del usuario del token")
}

func TestCreateOrder_CuerpoMalformado_Retorna400(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodPost, "/api/orders", `{"products":`, authHeaders(t))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, dto.ErrorResponse{Code: "VALIDATION", Message: "Invalid request"}, decodeError(t, resp))
}

func TestCreateOrder_LineasInvalidas_Retorna400(t *testing.T) {
	app, _ := buildAPI(t)

	for _, body := range []string{
		`{"products":[]}`,
		`{"products":[{"productId":"p-a","quantity":0}]}`,
		`{"products":[{"productId":"","quantity":2}]}`,
		`{}`,
	} {
		resp := send(t, app, http.MethodPost, "/api/orders", body, authHeaders(t))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "VALIDATION", decodeError(t, resp).Code, body)
		resp.Body.Close()
	}
}

// El contrato no distingue causas: producto inexistente y stock insuficiente son 500 genérico.
func TestCreateOrder_FallaDeNegocio_Retorna500Generico(t *testing.T) {
	app, _ := buildAPI(t)

	for _, body := range []string{
		`{"products":[{"productId":"no-existe","quantity":1}]}`,
		`{"products":[{"productId":"p-a","quantity":99}]}`,
	} {
		resp := send(t, app, http.MethodPost, "/api/orders", body, authHeaders(t))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, body)
		assert.Equal(t, dto.ErrorResponse{Code: "INTERNAL", Message: "Something went wrong"}, decodeError(t, resp), body)
		resp.Body.Close()
	}
}

func TestCreateOrder_SinToken_Retorna401(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodPost, "/api/orders", `{"products":[{"productId":"p-a","quantity":1}]}`, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateOrder_RolDesconocido_Retorna403(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodPost, "/api/orders", `{"products":[{"productId":"p-a","quantity":1}]}`,
		map[string]string{"Authorization": tokenForRole(t, "auditor")})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotency-Key
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_IdempotencyKeyDuplicada_Retorna409(t *testing.T) {
	app, _ := buildAPI(t)
	h := authHeaders(t)
	h[apphttp.HeaderIdempotencyKey] = "pedido-1"
	body := `{"products":[{"productId":"p-a","quantity":1}]}`

	first := send(t, app, http.MethodPost, "/api/orders", body, h)
	first.Body.Close()
	require.Equal(t, http.StatusOK, first.StatusCode)

	second := send(t, app, http.MethodPost, "/api/orders", body, h)
	defer second.Body.Close()
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	assert.Equal(t, dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "Duplicate request"}, decodeError(t, second))
}

// Un 500 libera la clave: el cliente puede reintentar con la misma.
func TestCreateOrder_IdempotencyKeyLiberadaTrasFallo(t *testing.T) {
	app, _ := buildAPI(t)
	h := authHeaders(t)
	h[apphttp.HeaderIdempotencyKey] = "pedido-2"

	failed := send(t, app, http.MethodPost, "/api/orders", `{"products":[{"productId":"p-a","quantity":99}]}`, h)
	failed.Body.Close()
	require.Equal(t, http.StatusInternalServerError, failed.StatusCode)

	retry := send(t, app, http.MethodPost, "/api/orders", `{"products":[{"productId":"p-a","quantity":2}]}`, h)
	defer retry.Body.Close()
	assert.Equal(t, http.StatusOK, retry.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas y remisión
// ──────────────────────────────────────────────────────────────────────────────

func TestListOrders_IncluyeCarrito(t *testing.T) {
	app, _ := buildAPI(t)
	created := send(t, app, http.MethodPost, "/api/orders", `{"products":[{"productId":"p-a","quantity":2}]}`, authHeaders(t))
	created.Body.Close()
	require.Equal(t, http.StatusOK, created.StatusCode)

	resp := send(t, app, http.MethodGet, "/api/orders", "", authHeaders(t))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []dto.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	require.Len(t, list[0].Carts, 1)
	assert.Equal(t, "ATK-001", list[0].Carts[0].ProductCode)
	assert.Equal(t, "ATK", list[0].Carts[0].ProductCategory)
	assert.Equal(t, int64(2), list[0].Carts[0].ProductQuantity)
}

func TestDeliveryNote_DevuelvePDF(t *testing.T) {
	app, _ := buildAPI(t)
	created := send(t, app, http.MethodPost, "/api/orders", `{"products":[{"productId":"p-a","quantity":1}]}`, authHeaders(t))
	var out dto.CreateOrderResponse
	require.NoError(t, json.NewDecoder(created.Body).Decode(&out))
	created.Body.Close()

	resp := send(t, app, http.MethodGet, "/api/orders/"+out.OrderID+"/delivery-note", "", authHeaders(t))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), out.ReferenceNumber)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestDeliveryNote_PedidoInexistente_Retorna404(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodGet, "/api/orders/no-existe/delivery-note", "", authHeaders(t))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLoginYMe(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodPost, "/api/auth/login", `{"username":"ana","password":"`+testPassword+`"}`, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	require.NotEmpty(t, login.Token)

	me := send(t, app, http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer " + login.Token})
	defer me.Body.Close()
	require.Equal(t, http.StatusOK, me.StatusCode)
	var out dto.MeResponse
	require.NoError(t, json.NewDecoder(me.Body).Decode(&out))
	assert.Equal(t, dto.MeResponse{UserID: testUserID, Username: "ana", Fullname: "Ana Pérez", Role: entity.RoleBodeguero, ID: testUserID}, out)
}

func TestLogin_PasswordIncorrecto_Retorna401(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodPost, "/api/auth/login", `{"username":"ana","password":"otra"}`, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRutaDesconocida_Retorna404(t *testing.T) {
	app, _ := buildAPI(t)

	resp := send(t, app, http.MethodGet, "/api/no-existe", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
