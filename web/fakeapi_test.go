package web

import (
	"context"
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

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// catalogAPI serves the catalog endpoints of the remote API from memory.
// "tok-admin" is an administrator, "tok-user" a regular user.
type catalogAPI struct {
	mu     sync.Mutex
	items  map[int]*sweetshop.Item
	nextID int
	calls  []string
	fail   bool
}

func newCatalogAPI(t *testing.T) (*catalogAPI, *httptest.Server) {
	t.Helper()
	api := &catalogAPI{
		items: map[int]*sweetshop.Item{
			1: {ID: 1, Name: "Gulab Jamun", Category: "Traditional", Price: 12.5, Quantity: 5},
			2: {ID: 2, Name: "Chocolate Bar", Category: "Chocolate", Price: 3, Quantity: 40},
			3: {ID: 3, Name: "Toffee", Category: "Candy", Price: 1, Quantity: 0},
		},
		nextID: 4,
	}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *catalogAPI) catalog(baseURL, token string) *sweetshop.CatalogService {
	cfg := testSettings()
	cfg.APIBaseURL = baseURL
	cfg.RequestTimeout = "2s"
	st := sweetshop.NewMemoryStorage(map[string]string{sweetshop.TokenKey: token})
	client := sweetshop.NewClient(cfg, sweetshop.WithClientLogger(nopLogger{})).Bind(st)
	return sweetshop.NewCatalogService(client)
}

func (a *catalogAPI) requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *catalogAPI) quantity(id int) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if item, ok := a.items[id]; ok {
		return item.Quantity
	}
	return -1
}

func (a *catalogAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, r.Method+" "+r.URL.RequestURI())

	if a.fail {
		reply(w, http.StatusInternalServerError, map[string]any{"detail": "database offline"})
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token != "tok-admin" && token != "tok-user" {
		reply(w, http.StatusUnauthorized, map[string]any{"detail": "Could not validate credentials"})
		return
	}
	admin := token == "tok-admin"

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/sweets":
		reply(w, http.StatusOK, a.list(""))
	case r.Method == http.MethodGet && r.URL.Path == "/api/sweets/search":
		reply(w, http.StatusOK, a.list(r.URL.Query().Get("name")))
	case r.Method == http.MethodPost && r.URL.Path == "/api/sweets":
		if !admin {
			reply(w, http.StatusForbidden, map[string]any{"detail": "Admin access required"})
			return
		}
		item := &sweetshop.Item{ID: a.nextID}
		a.nextID++
		item.Name, _ = body["sweet_name"].(string)
		item.Category, _ = body["sweet_category"].(string)
		item.Price, _ = body["sweet_price"].(float64)
		qty, _ := body["quantity_in_stock"].(float64)
		item.Quantity = int(qty)
		a.items[item.ID] = item
		reply(w, http.StatusCreated, item)
	case len(parts) >= 3:
		a.mutate(w, r, parts, body, admin)
	default:
		reply(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
	}
}

func (a *catalogAPI) mutate(w http.ResponseWriter, r *http.Request, parts []string, body map[string]any, admin bool) {
	id, _ := strconv.Atoi(parts[2])
	action := ""
	if len(parts) > 3 {
		action = parts[3]
	}
	if action != "purchase" && !admin {
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
		qty, _ := body["quantity_to_purchase"].(float64)
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
		qty, _ := body["quantity_to_add"].(float64)
		prev := item.Quantity
		item.Quantity += int(qty)
		reply(w, http.StatusOK, sweetshop.RestockReceipt{
			ItemID: item.ID, ItemName: item.Name, PreviousQuantity: prev, NewQuantity: item.Quantity,
			QuantityAdded: int(qty),
		})
	case r.Method == http.MethodPut:
		if v, ok := body["sweet_name"].(string); ok {
			item.Name = v
		}
		if v, ok := body["sweet_price"].(float64); ok {
			item.Price = v
		}
		reply(w, http.StatusOK, item)
	case r.Method == http.MethodDelete:
		delete(a.items, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		reply(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method Not Allowed"})
	}
}

func (a *catalogAPI) list(name string) []sweetshop.Item {
	out := []sweetshop.Item{}
	for _, item := range a.items {
		if name == "" || strings.Contains(strings.ToLower(item.Name), strings.ToLower(name)) {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// stubAuth resolves every token to identity, or fails when identity is nil.
type stubAuth struct {
	identity *sweetshop.Identity
}

func (s stubAuth) Login(context.Context, string, string) (*sweetshop.AccessToken, error) {
	return &sweetshop.AccessToken{AccessToken: "tok-user", TokenType: "bearer"}, nil
}

func (s stubAuth) CurrentUser(context.Context) (*sweetshop.Identity, error) {
	if s.identity == nil {
		return nil, sweetshop.ErrUnauthenticated
	}
	clone := *s.identity
	return &clone, nil
}

func (s stubAuth) Register(_ context.Context, reg sweetshop.Registration) (*sweetshop.Identity, error) {
	return &sweetshop.Identity{ID: 99, Email: reg.Email, Name: reg.Name}, nil
}

func newSession(t *testing.T, identity *sweetshop.Identity) *sweetshop.Session {
	t.Helper()
	values := map[string]string{}
	if identity != nil {
		values[sweetshop.TokenKey] = "tok-user"
	}
	s := sweetshop.NewSession(stubAuth{identity: identity}, sweetshop.NewMemoryStorage(values),
		sweetshop.WithSessionLogger(nopLogger{}))
	s.Initialize(context.Background())
	return s
}
