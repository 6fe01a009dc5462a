package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"swiftpos/internal/catalog"
	"swiftpos/internal/receipt"
	"swiftpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.Default()
	session := service.NewSession(cat, receipt.NewFormatter("SWIFTPOS RETAIL", "123 Market Lane", "₵"), "User-1")
	terminal := service.NewTerminalService("Retail Terminal #01", cat, session, service.Dependencies{})

	h := NewHandler(terminal)
	router := gin.New()
	h.SetupRoutes(router)
	return router, h
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type cartBody struct {
	Lines []struct {
		ID        string `json:"id"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
	} `json:"lines"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
}

type commandBody struct {
	Result struct {
		Applied bool   `json:"applied"`
		LineID  string `json:"line_id"`
	} `json:"result"`
	Cart cartBody `json:"cart"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestReadinessFailure(t *testing.T) {
	router, h := setupRouter(t)
	h.AddReadinessCheck("redis", func(context.Context) error { return errors.New("connection refused") })

	w := doJSON(t, router, http.MethodGet, "/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestGetCatalog(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/catalog", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	decode(t, w, &body)
	assert.Len(t, body.Items, 6)
	assert.Equal(t, "Beer", body.Items[0].Name)
}

func TestCartFlowAndCheckout(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"1","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	var cmd commandBody
	decode(t, w, &cmd)
	assert.True(t, cmd.Result.Applied)
	assert.Equal(t, "30", cmd.Cart.Total)

	w = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"4"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/cart/items/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cmd)
	assert.Equal(t, "25", cmd.Cart.Total)

	w = doJSON(t, router, http.MethodPost, "/api/v1/checkout", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var res struct {
		Receipt struct {
			Text        string `json:"text"`
			OrderNumber int64  `json:"order_number"`
		} `json:"receipt"`
	}
	decode(t, w, &res)
	assert.Contains(t, res.Receipt.Text, "TOTAL:          ₵25.00")
	assert.Equal(t, int64(1), res.Receipt.OrderNumber)

	w = doJSON(t, router, http.MethodGet, "/api/v1/receipt", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/receipt", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/receipt", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddUnknownItem(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"99"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemMissingID(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLine(t *testing.T) {
	router, _ := setupRouter(t)
	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"4","quantity":2}`)

	w := doJSON(t, router, http.MethodGet, "/api/v1/cart/items/4", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"quantity":2`)

	w = doJSON(t, router, http.MethodGet, "/api/v1/cart/items/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemHugeQuantityRejected(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"1","quantity":9223372036854775807}`)
	require.Equal(t, http.StatusOK, w.Code)
	var cmd commandBody
	decode(t, w, &cmd)
	assert.False(t, cmd.Result.Applied)
	assert.Empty(t, cmd.Cart.Lines)

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"1","quantity":9999}`)
	w = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"1","quantity":1}`)
	decode(t, w, &cmd)
	assert.False(t, cmd.Result.Applied)
	assert.Equal(t, 9999, cmd.Cart.Lines[0].Quantity)
}

func TestCheckoutEmptyCart(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSetQuantityRawValues(t *testing.T) {
	router, _ := setupRouter(t)
	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"1","quantity":3}`)

	w := doJSON(t, router, http.MethodPut, "/api/v1/cart/items/1/quantity", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	var cmd commandBody
	decode(t, w, &cmd)
	assert.False(t, cmd.Result.Applied)
	assert.Equal(t, 3, cmd.Cart.Lines[0].Quantity)

	w = doJSON(t, router, http.MethodPut, "/api/v1/cart/items/1/quantity", `{"quantity":"5"}`)
	decode(t, w, &cmd)
	assert.True(t, cmd.Result.Applied)
	assert.Equal(t, 5, cmd.Cart.Lines[0].Quantity)

	w = doJSON(t, router, http.MethodPut, "/api/v1/cart/items/1/quantity", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomItemPrice(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/custom-items", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var cmd commandBody
	decode(t, w, &cmd)
	lineID := cmd.Result.LineID
	require.NotEmpty(t, lineID)

	w = doJSON(t, router, http.MethodPut, "/api/v1/cart/items/"+lineID+"/price", `{"price":9.99}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPut, "/api/v1/cart/items/"+lineID+"/quantity", `{"quantity":3}`)
	decode(t, w, &cmd)
	assert.Equal(t, "29.97", cmd.Cart.Total)

	w = doJSON(t, router, http.MethodPut, "/api/v1/cart/items/"+lineID+"/price", `{"price":"-4"}`)
	decode(t, w, &cmd)
	assert.Equal(t, "0", cmd.Cart.Total)
}

func TestUpsellWithoutAdvisor(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/upsell", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/upsell", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":false`)
}

func TestDashboardAndAudit(t *testing.T) {
	router, _ := setupRouter(t)
	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", `{"itemId":"2"}`)
	doJSON(t, router, http.MethodPost, "/api/v1/checkout", "")

	w := doJSON(t, router, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var dash struct {
		Stats struct {
			OrderCount   int    `json:"order_count"`
			TotalRevenue string `json:"total_revenue"`
		} `json:"stats"`
		AuditLog []struct {
			Action string `json:"action"`
		} `json:"audit_log"`
	}
	decode(t, w, &dash)
	assert.Equal(t, 1, dash.Stats.OrderCount)
	assert.Equal(t, "8", dash.Stats.TotalRevenue)
	require.Len(t, dash.AuditLog, 2)
	assert.Equal(t, "Checkout Completed", dash.AuditLog[0].Action)

	w = doJSON(t, router, http.MethodGet, "/api/v1/audit?order=asc", "")
	require.Equal(t, http.StatusOK, w.Code)
	var audit struct {
		Entries []struct {
			Action string `json:"action"`
		} `json:"entries"`
	}
	decode(t, w, &audit)
	assert.Equal(t, "Added to Cart", audit.Entries[0].Action)

	w = doJSON(t, router, http.MethodGet, "/api/v1/audit?order=sideways", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRawInput(t *testing.T) {
	assert.Equal(t, "5", rawInput(json.RawMessage(`5`)))
	assert.Equal(t, "abc", rawInput(json.RawMessage(`"abc"`)))
	assert.Equal(t, "9.99", rawInput(json.RawMessage(` 9.99 `)))
}
