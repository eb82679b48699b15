package shop

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"BuildMart/internal/cart"
	"BuildMart/internal/catalog"
	"BuildMart/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Catalog *catalog.Store
	Matcher *catalog.Matcher
	Carts   cart.Store
	Log     *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/products", s.listProducts)
	r.Get("/products/search", s.search)
	r.Get("/products/{id}", s.getProduct)

	r.Post("/cart/add", s.cartAdd)
	r.Post("/cart/remove", s.cartRemove)
	r.Post("/cart/guest", s.cartGuest)
	r.Get("/cart/{user_id}", s.cartGet)

	return r
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.List())
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.Catalog.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

type searchResp struct {
	Results  []catalog.Result `json:"results"`
	NotFound []string         `json:"not_found"`
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	queries := r.URL.Query()["queries"]
	if len(queries) == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "queries required", nil)
		return
	}

	results, notFound, err := s.Matcher.Resolve(queries)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "query must not be empty", nil)
		return
	}
	if notFound == nil {
		notFound = []string{}
	}

	kit.WriteJSON(w, http.StatusOK, searchResp{Results: results, NotFound: notFound})
}

type modifyReq struct {
	UserID string      `json:"user_id"`
	Items  []cart.Line `json:"items"`
}

func (s *Server) cartAdd(w http.ResponseWriter, r *http.Request) {
	s.mutateCart(w, r, s.Carts.Add)
}

func (s *Server) cartRemove(w http.ResponseWriter, r *http.Request) {
	s.mutateCart(w, r, s.Carts.Remove)
}

func (s *Server) mutateCart(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID string, lines []cart.Line) (cart.Snapshot, error)) {
	req, err := decodeModifyRequest(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "user_id required", nil)
		return
	}
	if len(req.Items) == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "items required", nil)
		return
	}

	snap, err := op(r.Context(), userID, req.Items)
	if err != nil {
		s.writeCartError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) cartGuest(w http.ResponseWriter, r *http.Request) {
	id := "g_" + uuid.NewString()
	snap := s.Carts.Create(r.Context(), id)
	kit.WriteJSON(w, http.StatusCreated, snap)
}

func (s *Server) cartGet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	snap, ok := s.Carts.Get(r.Context(), userID)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "cart not found", map[string]any{"user_id": userID})
		return
	}
	kit.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrQuantity):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, cart.ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, cart.ErrNotInCart):
		kit.WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	default:
		if s.Log != nil {
			s.Log.Error("cart operation failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func decodeModifyRequest(w http.ResponseWriter, r *http.Request) (modifyReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req modifyReq
	if err := dec.Decode(&req); err != nil {
		return modifyReq{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return modifyReq{}, errors.New("extra data after json object")
	}

	return req, nil
}
