package inventory

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StockKeeper/internal/tableview"
	"StockKeeper/pkg/kit"
)

const DefaultLowStockThreshold = 5

type Server struct {
	Catalog *Catalog
	Log     *zap.Logger

	// LowStockThreshold is used by /reports/low-stock when the request
	// carries no threshold.
	LowStockThreshold int
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := s.Catalog.Store().Ping(ctx); err != nil {
			s.logger().Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Post("/", s.add)
		pr.Get("/{sku}", s.get)
		pr.Put("/{sku}", s.edit)
		pr.Delete("/{sku}", s.remove)
		pr.Post("/{sku}/adjust", s.adjust)
		pr.Put("/{sku}/quantity", s.setQuantity)
		pr.Put("/{sku}/price", s.setPrice)
	})

	r.Get("/reports/total-value", s.totalValue)
	r.Get("/reports/low-stock", s.lowStock)
	r.Get("/table", s.table)

	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

type productReq struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type editReq struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type adjustReq struct {
	Delta int `json:"delta"`
}

type quantityReq struct {
	Value int `json:"value"`
}

type priceReq struct {
	Value float64 `json:"value"`
}

type totalResp struct {
	TotalValue float64 `json:"total_value"`
	Products   int     `json:"products"`
}

type lowStockResp struct {
	Threshold int       `json:"threshold"`
	Products  []Product `json:"products"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	field, reverse, err := sortParams(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad query", map[string]any{"cause": err.Error()})
		return
	}

	q := r.URL.Query()
	var products []Product
	switch {
	case q.Has("q"):
		products = s.Catalog.Search(q.Get("q"))
	case q.Has("name"):
		products = s.Catalog.FindByName(q.Get("name"))
	case q.Has("category"):
		products = s.Catalog.FilterByCategory(q.Get("category"))
	default:
		products = s.Catalog.ListAll(SortNone, false)
	}
	SortProducts(products, field, reverse)

	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	p, ok := s.Catalog.Get(sku)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"sku": sku})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if !decode(w, r, &req) {
		return
	}

	p, err := NewProduct(req.SKU, req.Name, req.Category, req.Quantity, req.Price)
	if err != nil {
		s.writeCatalogError(w, r, req.SKU, err)
		return
	}
	if err := s.Catalog.Add(r.Context(), p); err != nil {
		s.writeCatalogError(w, r, req.SKU, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	var req editReq
	if !decode(w, r, &req) {
		return
	}

	err := s.Catalog.Edit(r.Context(), sku, req.Name, req.Category, req.Quantity, req.Price)
	s.respondProduct(w, r, sku, err)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	if err := s.Catalog.Remove(r.Context(), sku); err != nil {
		s.writeCatalogError(w, r, sku, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adjust(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	var req adjustReq
	if !decode(w, r, &req) {
		return
	}
	s.respondProduct(w, r, sku, s.Catalog.AdjustQuantity(r.Context(), sku, req.Delta))
}

func (s *Server) setQuantity(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	var req quantityReq
	if !decode(w, r, &req) {
		return
	}
	s.respondProduct(w, r, sku, s.Catalog.SetQuantity(r.Context(), sku, req.Value))
}

func (s *Server) setPrice(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")

	var req priceReq
	if !decode(w, r, &req) {
		return
	}
	s.respondProduct(w, r, sku, s.Catalog.SetPrice(r.Context(), sku, req.Value))
}

func (s *Server) totalValue(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, totalResp{
		TotalValue: s.Catalog.TotalValue(),
		Products:   s.Catalog.Len(),
	})
}

func (s *Server) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := s.LowStockThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "bad threshold", map[string]any{"threshold": v})
			return
		}
		threshold = n
	}

	kit.WriteJSON(w, http.StatusOK, lowStockResp{
		Threshold: threshold,
		Products:  s.Catalog.LowStock(threshold),
	})
}

func (s *Server) table(w http.ResponseWriter, r *http.Request) {
	field, reverse, err := sortParams(r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad query", map[string]any{"cause": err.Error()})
		return
	}

	page := tableview.HTMLPage("Inventory", s.Catalog.ListAll(field, reverse), s.Catalog.TotalValue())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, page)
}

// respondProduct answers a mutation with the product's new state.
func (s *Server) respondProduct(w http.ResponseWriter, r *http.Request, sku string, err error) {
	if err != nil {
		s.writeCatalogError(w, r, sku, err)
		return
	}
	p, ok := s.Catalog.Get(sku)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"sku": sku})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, sku string, err error) {
	var fe *FieldError
	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"sku": sku})
	case errors.Is(err, ErrDuplicateSKU):
		kit.WriteError(w, r, http.StatusConflict, "duplicate sku", map[string]any{"sku": sku})
	case errors.As(err, &fe):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product", map[string]any{
			"field":  fe.Field,
			"reason": fe.Reason,
		})
	case errors.Is(err, ErrValidation):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product", map[string]any{"cause": err.Error()})
	default:
		s.logger().Error("catalog operation failed", zap.Error(err), zap.String("sku", sku))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := kit.DecodeJSON(w, r, v); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return false
	}
	return true
}

// sortParams reads ?sort= and ?reverse=. An unknown sort field is ignored.
func sortParams(r *http.Request) (SortField, bool, error) {
	q := r.URL.Query()
	field, _ := ParseSortField(q.Get("sort"))

	reverse := false
	if v := q.Get("reverse"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return SortNone, false, errors.New("reverse must be a boolean")
		}
		reverse = b
	}
	return field, reverse, nil
}
