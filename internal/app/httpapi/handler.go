// Package httpapi exposes the storefront REST API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	app "github.com/urbanthread/storefront/internal/app"
	"github.com/urbanthread/storefront/internal/app/domain/order"
	"github.com/urbanthread/storefront/internal/app/metrics"
	"github.com/urbanthread/storefront/internal/app/services/catalog"
	"github.com/urbanthread/storefront/internal/app/services/checkout"
	identitysvc "github.com/urbanthread/storefront/internal/app/services/identity"
	"github.com/urbanthread/storefront/internal/app/storage"
	"github.com/urbanthread/storefront/pkg/logger"
)

// sessionCookie names the cookie carrying the session token.
const sessionCookie = "sessionId"

// maxBodyBytes caps mutation request bodies (the dashboard may post large
// payloads with embedded image references).
const maxBodyBytes = 50 << 20

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns a mux exposing the storefront REST API.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application, log: logger.NewDefault("httpapi")}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/products", h.products)
	mux.HandleFunc("/api/products/", h.productResources)
	mux.HandleFunc("/api/transactions", h.transactions)

	mux.HandleFunc("/auth/login", h.login)
	mux.HandleFunc("/auth/signup", h.signup)
	mux.HandleFunc("/auth/logout", h.logout)

	mux.Handle("/admin/dashboard/products", h.requireSession(http.HandlerFunc(h.adminProducts)))
	mux.Handle("/admin/dashboard/products/", h.requireSession(http.HandlerFunc(h.adminProductByID)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/metrics", metrics.Handler())

	return mux
}

// --- catalog reads ----------------------------------------------------------

func (h *handler) products(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	products, err := h.app.Catalog.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("error fetching products"))
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *handler) productResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/products"), "/")
	switch rest {
	case "":
		h.products(w, r)
	case "new-arrivals":
		limit := parseLimit(r.URL.Query().Get("limit"))
		products, err := h.app.Catalog.NewArrivals(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Errorf("error fetching new arrivals"))
			return
		}
		writeJSON(w, http.StatusOK, products)
	case "best-sellers":
		limit := parseLimit(r.URL.Query().Get("limit"))
		products, err := h.app.Catalog.BestSellers(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Errorf("error fetching best sellers"))
			return
		}
		writeJSON(w, http.StatusOK, products)
	default:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid product ID"))
			return
		}
		product, err := h.app.Catalog.Get(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Errorf("product not found"))
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Errorf("error fetching product"))
			return
		}
		writeJSON(w, http.StatusOK, product)
	}
}

// --- checkout ---------------------------------------------------------------

// checkoutItemPayload tolerates the loosely-typed shapes clients submit:
// ids, prices and quantities may arrive as numbers or strings, and the
// product id may be under "id" or "product_id".
type checkoutItemPayload struct {
	ID        json.RawMessage `json:"id"`
	ProductID json.RawMessage `json:"product_id"`
	Name      string          `json:"name"`
	Price     json.RawMessage `json:"price"`
	Quantity  json.RawMessage `json:"quantity"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
}

type checkoutPayload struct {
	Items           []checkoutItemPayload `json:"items"`
	TotalAmount     json.RawMessage       `json:"total_amount"`
	PaymentMethod   string                `json:"payment_method"`
	ShippingAddress string                `json:"shipping_address"`
	Email           string                `json:"email"`
}

func (h *handler) transactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var payload checkoutPayload
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	sub := checkout.Submission{
		PaymentMethod:   strings.TrimSpace(payload.PaymentMethod),
		ShippingAddress: payload.ShippingAddress,
		Email:           payload.Email,
	}
	if declared, ok := coerceFloat(payload.TotalAmount); ok {
		sub.DeclaredTotal = declared
	}
	for _, item := range payload.Items {
		sub.Items = append(sub.Items, coerceItem(item))
	}

	receipt, err := h.app.Checkout.Submit(r.Context(), sub)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to save transaction"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"order_id":     receipt.OrderID,
		"total_amount": receipt.TotalAmount,
	})
}

func coerceItem(item checkoutItemPayload) order.LineItem {
	productID, ok := coerceInt(item.ID)
	if !ok {
		productID, _ = coerceInt(item.ProductID)
	}

	price, ok := coerceFloat(item.Price)
	if !ok {
		price = math.NaN() // rejected by checkout validation
	}

	quantity, _ := coerceInt(item.Quantity)

	return order.LineItem{
		ProductID: productID,
		Name:      item.Name,
		Price:     price,
		Quantity:  quantity,
		ImageURL:  item.Image,
		Category:  item.Category,
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, checkout.ErrEmptyCart) ||
		errors.Is(err, checkout.ErrMissingField) ||
		errors.Is(err, checkout.ErrInvalidItem)
}

// --- auth -------------------------------------------------------------------

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.app.Identity.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, identitysvc.ErrInvalidCredential) {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	token := h.app.Sessions.Create(user)
	metrics.SetActiveSessions(h.app.Sessions.Count())

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully logged in",
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.app.Identity.Register(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, identitysvc.ErrAlreadyExists) {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		h.app.Sessions.Destroy(cookie.Value)
		metrics.SetActiveSessions(h.app.Sessions.Count())
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeMessage(w, http.StatusOK, "Logged out")
}

// --- admin catalog mutation -------------------------------------------------

// productPayload tolerates numeric fields arriving as strings from the
// dashboard form.
type productPayload struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Rate        json.RawMessage `json:"rate"`
	Price       json.RawMessage `json:"price"`
	ImageURL    string          `json:"image_url"`
	Description string          `json:"description"`
}

func (p productPayload) fields() (catalog.Fields, error) {
	price, ok := coerceFloat(p.Price)
	if !ok && len(p.Price) > 0 {
		return catalog.Fields{}, fmt.Errorf("price must be a number")
	}
	rate, ok := coerceFloat(p.Rate)
	if !ok && len(p.Rate) > 0 {
		return catalog.Fields{}, fmt.Errorf("rate must be a number")
	}
	return catalog.Fields{
		Name:        p.Name,
		Category:    p.Category,
		Rate:        rate,
		Price:       price,
		ImageURL:    p.ImageURL,
		Description: p.Description,
	}, nil
}

func (h *handler) adminProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := h.app.Catalog.List(r.Context(), "")
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "server error")
			return
		}
		writeJSON(w, http.StatusOK, products)

	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var payload productPayload
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		fields, err := payload.fields()
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := h.app.Catalog.Create(r.Context(), fields)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logAdminAction(r, "product created", created.ID)
		writeJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) adminProductByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/dashboard/products"), "/")
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	switch r.Method {
	case http.MethodPut:
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var payload productPayload
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		fields, err := payload.fields()
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := h.app.Catalog.Update(r.Context(), id, fields)
		if errors.Is(err, storage.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logAdminAction(r, "product updated", updated.ID)
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		deleted, err := h.app.Catalog.Delete(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "server error")
			return
		}
		h.logAdminAction(r, "product deleted", deleted.ID)
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Product deleted",
			"product": deleted,
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// logAdminAction records who performed a catalog mutation.
func (h *handler) logAdminAction(r *http.Request, action string, productID int64) {
	entry := h.log.WithField("product_id", productID)
	if principal, ok := principalFrom(r.Context()); ok {
		entry = entry.WithField("admin", principal.Email)
	}
	entry.Info(action)
}

// --- helpers ----------------------------------------------------------------

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0 // service applies its default
	}
	return limit
}

func coerceInt(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n, true
		}
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && f == math.Trunc(f) {
		return int64(f), true
	}
	return 0, false
}

func coerceFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
