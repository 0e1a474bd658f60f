package sweetshop_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	sweetshop "github.com/goliatone/go-sweetshop"
)

type fakeUser struct {
	identity sweetshop.Identity
	password string
}

// fakeAPI is an in-memory stand-in for the remote inventory API.
type fakeAPI struct {
	mu     sync.Mutex
	users  map[string]*fakeUser
	items  map[int]*sweetshop.Item
	nextID int
	calls  map[string]int
	last   *http.Request
	body   map[string]any
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{
		users: map[string]*fakeUser{
			"alice@example.com": {identity: *alice, password: "alice-pass"},
			"admin@example.com": {identity: *root, password: "admin-pass"},
		},
		items: map[int]*sweetshop.Item{
			1: {ID: 1, Name: "Gulab Jamun", Category: "Traditional", Price: 12.5, Quantity: 5},
			2: {ID: 2, Name: "Chocolate Bar", Category: "Chocolate", Price: 3, Quantity: 40},
		},
		nextID: 3,
		calls:  map[string]int{},
	}

	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) count(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[key]
}

func (a *fakeAPI) lastRequest() (*http.Request, map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, a.body
}

func (a *fakeAPI) stock(id int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if item, ok := a.items[id]; ok {
		return item.Quantity
	}
	return -1
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.last = r
	a.body = nil
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(r.Body).Decode(&a.body)
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	key := r.Method + " " + r.URL.Path
	a.calls[key]++

	switch {
	case key == "POST /api/auth/register":
		a.register(w)
	case key == "POST /api/auth/login":
		a.login(w, r)
	case key == "GET /api/auth/me":
		if user := a.authenticate(w, r); user != nil {
			writeJSON(w, http.StatusOK, user.identity)
		}
	case key == "GET /api/sweets":
		if a.authenticate(w, r) != nil {
			writeJSON(w, http.StatusOK, a.list(func(sweetshop.Item) bool { return true }))
		}
	case key == "GET /api/sweets/search":
		if a.authenticate(w, r) != nil {
			a.search(w, r)
		}
	case key == "POST /api/sweets":
		if a.admin(w, r) {
			a.create(w)
		}
	case len(parts) >= 3 && parts[0] == "api" && parts[1] == "sweets":
		a.item(w, r, parts)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
	}
}

func (a *fakeAPI) register(w http.ResponseWriter) {
	email, _ := a.body["email_address"].(string)
	if _, exists := a.users[email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Email already registered"})
		return
	}
	if password, _ := a.body["password"].(string); len(password) < 8 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{
			{"loc": []string{"body", "password"}, "msg": "String should have at least 8 characters"},
		}})
		return
	}
	name, _ := a.body["full_name"].(string)
	password, _ := a.body["password"].(string)
	identity := sweetshop.Identity{ID: 100 + len(a.users), Email: email, Name: name}
	a.users[email] = &fakeUser{identity: identity, password: password}
	writeJSON(w, http.StatusCreated, identity)
}

func (a *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "bad form"})
		return
	}
	user, ok := a.users[r.PostForm.Get("username")]
	if !ok || user.password != r.PostForm.Get("password") {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Incorrect email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": fmt.Sprintf("tok-%d", user.identity.ID),
		"token_type":   "bearer",
	})
}

func (a *fakeAPI) authenticate(w http.ResponseWriter, r *http.Request) *fakeUser {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	for _, user := range a.users {
		if token == fmt.Sprintf("tok-%d", user.identity.ID) {
			return user
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Could not validate credentials"})
	return nil
}

func (a *fakeAPI) admin(w http.ResponseWriter, r *http.Request) bool {
	user := a.authenticate(w, r)
	if user == nil {
		return false
	}
	if !user.identity.IsAdministrator {
		writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Admin access required"})
		return false
	}
	return true
}

func (a *fakeAPI) list(keep func(sweetshop.Item) bool) []sweetshop.Item {
	out := []sweetshop.Item{}
	for _, item := range a.items {
		if keep(*item) {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (a *fakeAPI) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minPrice, hasMin := parseQueryFloat(q.Get("min_price"))
	maxPrice, hasMax := parseQueryFloat(q.Get("max_price"))
	writeJSON(w, http.StatusOK, a.list(func(item sweetshop.Item) bool {
		if name := q.Get("name"); name != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(name)) {
			return false
		}
		if cat := q.Get("category"); cat != "" && !strings.Contains(strings.ToLower(item.Category), strings.ToLower(cat)) {
			return false
		}
		if hasMin && item.Price < minPrice {
			return false
		}
		if hasMax && item.Price > maxPrice {
			return false
		}
		return true
	}))
}

func (a *fakeAPI) create(w http.ResponseWriter) {
	item := &sweetshop.Item{ID: a.nextID}
	a.nextID++
	fillItem(item, a.body)
	a.items[item.ID] = item
	writeJSON(w, http.StatusCreated, item)
}

func (a *fakeAPI) item(w http.ResponseWriter, r *http.Request, parts []string) {
	id, err := strconv.Atoi(parts[2])
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid id"})
		return
	}

	action := ""
	if len(parts) > 3 {
		action = parts[3]
	}

	user := a.authenticate(w, r)
	if user == nil {
		return
	}

	if action != "purchase" && !user.identity.IsAdministrator {
		writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Admin access required"})
		return
	}

	item, ok := a.items[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Sweet not found"})
		return
	}

	switch {
	case r.Method == http.MethodPut && action == "":
		fillItem(item, a.body)
		writeJSON(w, http.StatusOK, item)
	case r.Method == http.MethodDelete && action == "":
		delete(a.items, id)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && action == "purchase":
		qty := intField(a.body, "quantity_to_purchase")
		if qty > item.Quantity {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"detail": fmt.Sprintf("Insufficient stock. Only %d items available.", item.Quantity),
			})
			return
		}
		prev := item.Quantity
		item.Quantity -= qty
		writeJSON(w, http.StatusOK, sweetshop.PurchaseReceipt{
			Message:           "Purchase successful",
			ItemID:            item.ID,
			ItemName:          item.Name,
			PreviousQuantity:  prev,
			NewQuantity:       item.Quantity,
			QuantityPurchased: qty,
			TotalPrice:        item.Price * float64(qty),
			DiscountedPrice:   item.Price * float64(qty),
		})
	case r.Method == http.MethodPost && action == "restock":
		qty := intField(a.body, "quantity_to_add")
		prev := item.Quantity
		item.Quantity += qty
		writeJSON(w, http.StatusOK, sweetshop.RestockReceipt{
			Message:          "Restock successful",
			ItemID:           item.ID,
			ItemName:         item.Name,
			PreviousQuantity: prev,
			NewQuantity:      item.Quantity,
			QuantityAdded:    qty,
		})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method Not Allowed"})
	}
}

func fillItem(item *sweetshop.Item, body map[string]any) {
	if v, ok := body["sweet_name"].(string); ok {
		item.Name = v
	}
	if v, ok := body["sweet_category"].(string); ok {
		item.Category = v
	}
	if v, ok := body["sweet_price"].(float64); ok {
		item.Price = v
	}
	if _, ok := body["quantity_in_stock"]; ok {
		item.Quantity = intField(body, "quantity_in_stock")
	}
	if v, ok := body["sweet_description"].(string); ok {
		item.Description = v
	}
}

func intField(body map[string]any, key string) int {
	v, _ := body[key].(float64)
	return int(v)
}

func parseQueryFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	return v, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
