package main

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

	"github.com/goliatone/go-sweetshop"
)

type account struct {
	identity sweetshop.Identity
	password string
	token    string
}

// shopAPI serves the auth and catalog endpoints of the remote API from memory.
type shopAPI struct {
	mu       sync.Mutex
	accounts map[string]*account
	items    map[int]*sweetshop.Item
	nextID   int
	calls    []string
	body     map[string]any
}

func newShopAPI(t *testing.T) (*shopAPI, *httptest.Server) {
	t.Helper()
	api := &shopAPI{
		accounts: map[string]*account{
			"admin@example.com": {
				identity: sweetshop.Identity{ID: 1, Email: "admin@example.com", Name: "Admin", IsAdministrator: true},
				password: "admin-pass",
				token:    "tok-admin",
			},
			"alice@example.com": {
				identity: sweetshop.Identity{ID: 7, Email: "alice@example.com", Name: "Alice"},
				password: "alice-pass",
				token:    "tok-alice",
			},
		},
		items: map[int]*sweetshop.Item{
			1: {ID: 1, Name: "Gulab Jamun", Category: "Traditional", Price: 12.5, Quantity: 5},
			2: {ID: 2, Name: "Chocolate Bar", Category: "Chocolate", Price: 3, Quantity: 40},
		},
		nextID: 3,
	}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *shopAPI) requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *shopAPI) item(id int) (sweetshop.Item, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	item, ok := a.items[id]
	if !ok {
		return sweetshop.Item{}, false
	}
	return *item, true
}

func (a *shopAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, r.Method+" "+r.URL.Path)
	a.body = nil
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(r.Body).Decode(&a.body)
	}

	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/login":
		_ = r.ParseForm()
		acc, ok := a.accounts[r.PostForm.Get("username")]
		if !ok || acc.password != r.PostForm.Get("password") {
			reply(w, http.StatusUnauthorized, map[string]any{"detail": "Incorrect email or password"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"access_token": acc.token, "token_type": "bearer"})
		return
	case "POST /api/auth/register":
		email, _ := a.body["email_address"].(string)
		if _, exists := a.accounts[email]; exists {
			reply(w, http.StatusBadRequest, map[string]any{"detail": "Email already registered"})
			return
		}
		name, _ := a.body["full_name"].(string)
		password, _ := a.body["password"].(string)
		acc := &account{
			identity: sweetshop.Identity{ID: 100 + len(a.accounts), Email: email, Name: name},
			password: password,
			token:    fmt.Sprintf("tok-%d", 100+len(a.accounts)),
		}
		a.accounts[email] = acc
		reply(w, http.StatusCreated, acc.identity)
		return
	}

	acc := a.authenticate(r)
	if acc == nil {
		reply(w, http.StatusUnauthorized, map[string]any{"detail": "Could not validate credentials"})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/api/auth/me":
		reply(w, http.StatusOK, acc.identity)
	case r.Method == http.MethodGet && r.URL.Path == "/api/sweets":
		reply(w, http.StatusOK, a.list(""))
	case r.Method == http.MethodGet && r.URL.Path == "/api/sweets/search":
		reply(w, http.StatusOK, a.list(r.URL.Query().Get("name")))
	case r.Method == http.MethodPost && r.URL.Path == "/api/sweets":
		if !acc.identity.IsAdministrator {
			reply(w, http.StatusForbidden, map[string]any{"detail": "Admin access required"})
			return
		}
		item := &sweetshop.Item{ID: a.nextID}
		a.nextID++
		fill(item, a.body)
		a.items[item.ID] = item
		reply(w, http.StatusCreated, item)
	case len(parts) >= 3:
		a.mutate(w, r, parts, acc)
	default:
		reply(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
	}
}

func (a *shopAPI) authenticate(r *http.Request) *account {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	for _, acc := range a.accounts {
		if token != "" && token == acc.token {
			return acc
		}
	}
	return nil
}

func (a *shopAPI) mutate(w http.ResponseWriter, r *http.Request, parts []string, acc *account) {
	id, _ := strconv.Atoi(parts[2])
	action := ""
	if len(parts) > 3 {
		action = parts[3]
	}
	if action != "purchase" && !acc.identity.IsAdministrator {
		reply(w, http.StatusForbidden, map[string]any{"detail": "Admin access required"})
		return
	}
	item, ok := a.items[id]
	if !ok {
		reply(w, http.StatusNotFound, map[string]any{"detail": "Sweet not found"})
		return
	}

	switch {
	case action == "purchase":
		qty, _ := a.body["quantity_to_purchase"].(float64)
		if int(qty) > item.Quantity {
			reply(w, http.StatusBadRequest, map[string]any{
				"detail": fmt.Sprintf("Insufficient stock. Only %d items available.", item.Quantity),
			})
			return
		}
		prev := item.Quantity
		item.Quantity -= int(qty)
		reply(w, http.StatusOK, sweetshop.PurchaseReceipt{
			ItemID: item.ID, ItemName: item.Name, PreviousQuantity: prev, NewQuantity: item.Quantity,
			QuantityPurchased: int(qty), TotalPrice: item.Price * qty,
		})
	case action == "restock":
		qty, _ := a.body["quantity_to_add"].(float64)
		prev := item.Quantity
		item.Quantity += int(qty)
		reply(w, http.StatusOK, sweetshop.RestockReceipt{
			ItemID: item.ID, ItemName: item.Name, PreviousQuantity: prev, NewQuantity: item.Quantity,
			QuantityAdded: int(qty),
		})
	case r.Method == http.MethodPut:
		fill(item, a.body)
		reply(w, http.StatusOK, item)
	case r.Method == http.MethodDelete:
		delete(a.items, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		reply(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method Not Allowed"})
	}
}

func (a *shopAPI) list(name string) []sweetshop.Item {
	out := []sweetshop.Item{}
	for _, item := range a.items {
		if name == "" || strings.Contains(strings.ToLower(item.Name), strings.ToLower(name)) {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func fill(item *sweetshop.Item, body map[string]any) {
	if v, ok := body["sweet_name"].(string); ok {
		item.Name = v
	}
	if v, ok := body["sweet_category"].(string); ok {
		item.Category = v
	}
	if v, ok := body["sweet_price"].(float64); ok {
		item.Price = v
	}
	if v, ok := body["quantity_in_stock"].(float64); ok {
		item.Quantity = int(v)
	}
	if v, ok := body["sweet_description"].(string); ok {
		item.Description = v
	}
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
