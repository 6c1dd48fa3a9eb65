package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) openSession(t *testing.T) string {
	t.Helper()
	id := uuid.NewString()
	w, _ := s.do(t, http.MethodPost, fmt.Sprintf("/restaurants/%d/tables/%d/sessions", s.restaurant.ID, s.table.ID),
		map[string]interface{}{"session_id": id}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	return id
}

func (s *testServer) ordersPath() string {
	return fmt.Sprintf("/restaurants/%d/tables/%d/orders", s.restaurant.ID, s.table.ID)
}

func TestCreateOrderEndpoint(t *testing.T) {
	s := newTestServer(t)
	sessionID := s.openSession(t)

	w, resp := s.do(t, http.MethodPost, s.ordersPath(), map[string]interface{}{
		"session_id": sessionID,
		"items": []map[string]interface{}{
			{"menu_id": s.menu.ID, "quantity": 2, "unit_price": 1, "notes": "less oil"},
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, resp)
	order := dataOf(t, resp)
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, float64(40000), order["total"])
	items := order["order_items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Nasi Goreng", items[0].(map[string]interface{})["name"])

	w, _ = s.do(t, http.MethodPost, s.ordersPath(), map[string]interface{}{"session_id": sessionID, "items": []interface{}{}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderFromCartEndpoint(t *testing.T) {
	s := newTestServer(t)
	sessionID := s.openSession(t)

	w, _ := s.do(t, http.MethodPost, s.ordersPath(), map[string]interface{}{"session_id": sessionID, "from_cart": true}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/sessions/"+sessionID+"/cart", map[string]interface{}{"menu_id": s.menu.ID, "quantity": 3}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := s.do(t, http.MethodPost, s.ordersPath(), map[string]interface{}{"session_id": sessionID, "from_cart": true}, "")
	require.Equal(t, http.StatusCreated, w.Code, resp)
	assert.Equal(t, float64(60000), dataOf(t, resp)["total"])

	w, resp = s.do(t, http.MethodGet, "/sessions/"+sessionID+"/cart", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataOf(t, resp)["items"])
}

func TestStaffOrderEndpoints(t *testing.T) {
	s := newTestServer(t)
	sessionID := s.openSession(t)
	w, resp := s.do(t, http.MethodPost, s.ordersPath(), map[string]interface{}{
		"session_id": sessionID,
		"items":      []map[string]interface{}{{"menu_id": s.menu.ID, "quantity": 1}},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := int(dataOf(t, resp)["id"].(float64))
	staffToken := s.tokenFor(t, s.staff)
	outsiderToken := s.tokenFor(t, s.outsider)
	orderPath := fmt.Sprintf("/admin/orders/%d", orderID)

	w, _ = s.do(t, http.MethodGet, orderPath, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, orderPath, nil, outsiderToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, http.MethodPatch, orderPath+"/status", map[string]interface{}{"status": "confirmed"}, outsiderToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = s.do(t, http.MethodGet, orderPath, nil, staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", dataOf(t, resp)["status"])

	w, _ = s.do(t, http.MethodPatch, orderPath+"/status", map[string]interface{}{"status": "ready"}, staffToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPatch, orderPath+"/status", map[string]interface{}{"status": "bogus"}, staffToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = s.do(t, http.MethodPatch, orderPath+"/status", map[string]interface{}{"status": "confirmed"}, staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", dataOf(t, resp)["status"])

	w, resp = s.do(t, http.MethodGet, fmt.Sprintf("/admin/restaurants/%d/sessions/%s/orders", s.restaurant.ID, sessionID), nil, staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"], 1)

	w, _ = s.do(t, http.MethodGet, "/admin/orders/9999", nil, staffToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettleEndpoint(t *testing.T) {
	s := newTestServer(t)
	sessionID := s.openSession(t)
	w, _ := s.do(t, http.MethodPost, s.ordersPath(), map[string]interface{}{
		"session_id": sessionID,
		"items":      []map[string]interface{}{{"menu_id": s.menu.ID, "quantity": 1}},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	settlePath := fmt.Sprintf("/admin/restaurants/%d/sessions/%s/settle", s.restaurant.ID, sessionID)

	w, _ = s.do(t, http.MethodPost, settlePath, nil, s.tokenFor(t, s.outsider))
	assert.Equal(t, http.StatusForbidden, w.Code)

	staffToken := s.tokenFor(t, s.staff)
	w, resp := s.do(t, http.MethodPost, settlePath, nil, staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bill settled", resp["message"])
	assert.Equal(t, float64(1), dataOf(t, resp)["orders_completed"])

	w, resp = s.do(t, http.MethodPost, settlePath, nil, staffToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, dataOf(t, resp)["already_closed"])
}
