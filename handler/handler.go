package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"online-store/assembly"
	models "online-store/model"
	"online-store/service"
	"online-store/store"
)

const apiVersion = "1.0.0"

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc service.ServiceInterface
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{svc: s}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Products
	for _, p := range []string{"/productos", "/productos/"} {
		r.HandleFunc(p, h.ListProducts).Methods(http.MethodGet)
		r.HandleFunc(p, h.CreateProduct).Methods(http.MethodPost)
	}
	r.HandleFunc("/productos/{id:[0-9]+}", h.GetProduct).Methods(http.MethodGet)
	r.HandleFunc("/productos/{id:[0-9]+}", h.UpdateProduct).Methods(http.MethodPut)
	r.HandleFunc("/productos/{id:[0-9]+}", h.DeleteProduct).Methods(http.MethodDelete)

	// Cart
	for _, p := range []string{"/carrito", "/carrito/"} {
		r.HandleFunc(p, h.ListCarts).Methods(http.MethodGet)
		r.HandleFunc(p, h.CreateCart).Methods(http.MethodPost)
	}
	r.HandleFunc("/carrito/{id:[0-9]+}", h.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/carrito/{id:[0-9]+}", h.UpdateCart).Methods(http.MethodPut)
	r.HandleFunc("/carrito/{id:[0-9]+}", h.DeleteCart).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "not_found", "Recurso no encontrado")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "Método no permitido")
	})
}

// --- response shapes ---
type productResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"producto,omitempty"`
}

type productListResponse struct {
	Products []models.Product `json:"productos"`
	Total    int              `json:"total"`
}

type cartResponse struct {
	Message string       `json:"message"`
	Cart    *models.Cart `json:"carrito,omitempty"`
}

type cartListResponse struct {
	Carts []models.Cart `json:"carritos"`
	Total int           `json:"total"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, kind, detail string) {
	writeJSON(w, code, errorResponse{Error: kind, Detail: detail})
}

func decode(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_request_body", "invalid json: "+err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_id", "id must be a 64-bit integer")
		return 0, false
	}
	return id, true
}

// pageFromQuery reads skip and limit, defaulting to service.DefaultPage.
func pageFromQuery(r *http.Request) (service.Page, error) {
	page := service.DefaultPage()
	fields := map[string]string{}
	q := r.URL.Query()
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["skip"] = "must be an integer"
		}
		page.Skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["limit"] = "must be an integer"
		}
		page.Limit = n
	}
	if len(fields) > 0 {
		return page, &service.ValidationError{Fields: fields}
	}
	return page, nil
}

// fail maps a service error to a response. notFound is the detail for a
// missing entity; failure prefixes any other write failure. Failures of
// read operations (empty failure) are internal errors.
func fail(w http.ResponseWriter, r *http.Request, err error, notFound, failure string) {
	var (
		ve  *service.ValidationError
		pnf *assembly.ProductNotFoundError
		ise *assembly.InsufficientStockError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation_failed",
			Detail: "Datos de entrada inválidos",
			Fields: ve.Fields,
		})
	case errors.As(err, &pnf):
		writeErr(w, http.StatusNotFound, "product_not_found",
			fmt.Sprintf("Producto con ID %d no encontrado", pnf.ProductID))
	case errors.As(err, &ise):
		writeErr(w, http.StatusBadRequest, "insufficient_stock",
			fmt.Sprintf("Stock insuficiente para el producto %s. Stock disponible: %d", ise.ProductName, ise.Available))
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", notFound)
	case errors.Is(err, store.ErrProductInUse):
		writeErr(w, http.StatusBadRequest, "persistence_error",
			failure+": el producto forma parte de uno o más carritos")
	case failure != "":
		log.Printf("[%s] %s %s: %v", RequestIDFrom(r.Context()), r.Method, r.URL.Path, err)
		writeErr(w, http.StatusBadRequest, "persistence_error", failure+": "+err.Error())
	default:
		log.Printf("[%s] %s %s: %v", RequestIDFrom(r.Context()), r.Method, r.URL.Path, err)
		writeErr(w, http.StatusInternalServerError, "internal_error", "Error interno del servidor")
	}
}

const (
	productNotFound = "Producto no encontrado"
	cartNotFound    = "Carrito no encontrado"
)

// --- Handler ---

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "¡Bienvenido a la Tienda Online API!",
		"version": apiVersion,
		"endpoints": map[string]string{
			"productos": "/productos",
			"carrito":   "/carrito",
		},
	})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": "API funcionando correctamente"})
}

// ListProducts handles GET /productos?skip=&limit=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		fail(w, r, err, "", "")
		return
	}
	ps, total, err := h.svc.ListProducts(r.Context(), page)
	if err != nil {
		fail(w, r, err, "", "")
		return
	}
	writeJSON(w, http.StatusOK, productListResponse{Products: ps, Total: total})
}

// GetProduct handles GET /productos/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		fail(w, r, err, productNotFound, "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct handles POST /productos
// body: { "nombre": "...", "precio": 10.5, "stock": 3, ... }
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProductRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		fail(w, r, err, productNotFound, "Error al crear el producto")
		return
	}
	writeJSON(w, http.StatusCreated, productResponse{Message: "Producto creado exitosamente", Product: &p})
}

// UpdateProduct handles PUT /productos/{id}; only fields present in the
// body are changed.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch models.ProductPatch
	if !decode(w, r, &patch) {
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		fail(w, r, err, productNotFound, "Error al actualizar el producto")
		return
	}
	writeJSON(w, http.StatusOK, productResponse{Message: "Producto actualizado exitosamente", Product: &p})
}

// DeleteProduct handles DELETE /productos/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		fail(w, r, err, productNotFound, "Error al eliminar el producto")
		return
	}
	writeJSON(w, http.StatusOK, productResponse{Message: "Producto eliminado exitosamente"})
}

// ListCarts handles GET /carrito?skip=&limit=
func (h *Handler) ListCarts(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		fail(w, r, err, "", "")
		return
	}
	cs, total, err := h.svc.ListCarts(r.Context(), page)
	if err != nil {
		fail(w, r, err, "", "")
		return
	}
	writeJSON(w, http.StatusOK, cartListResponse{Carts: cs, Total: total})
}

// GetCart handles GET /carrito/{id}
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetCart(r.Context(), id)
	if err != nil {
		fail(w, r, err, cartNotFound, "")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCart handles POST /carrito
// body: { "items": [ { "producto_id": 1, "cantidad": 2 } ] }
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCartRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.CreateCart(r.Context(), req)
	if err != nil {
		fail(w, r, err, cartNotFound, "Error al crear el carrito")
		return
	}
	writeJSON(w, http.StatusCreated, cartResponse{Message: "Carrito creado exitosamente", Cart: &c})
}

// UpdateCart handles PUT /carrito/{id}
// body: { "items": [...], "estado": "completed" }; items replace the
// current ones entirely, estado is optional.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req service.UpdateCartRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.svc.UpdateCart(r.Context(), id, req)
	if err != nil {
		fail(w, r, err, cartNotFound, "Error al actualizar el carrito")
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Carrito actualizado exitosamente", Cart: &c})
}

// DeleteCart handles DELETE /carrito/{id}
func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCart(r.Context(), id); err != nil {
		fail(w, r, err, cartNotFound, "Error al eliminar el carrito")
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Message: "Carrito eliminado exitosamente"})
}
