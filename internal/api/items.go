package api

import (
	"net/http"

	"github.com/vindennt/quick-little-shop/internal/auth"
	"github.com/vindennt/quick-little-shop/internal/backend"
	"github.com/vindennt/quick-little-shop/internal/httpx"
	"github.com/vindennt/quick-little-shop/internal/logger"
	"github.com/vindennt/quick-little-shop/internal/models"
	"github.com/vindennt/quick-little-shop/internal/telemetry"
	"github.com/vindennt/quick-little-shop/internal/validator"
)

type ItemHandler struct {
	items backend.Items
	log   logger.Logger
}

func NewItemHandler(items backend.Items, log logger.Logger) *ItemHandler {
	return &ItemHandler{items: items, log: log}
}

// createItemRequest is the client-supplied part of a listing. Owner and
// status are set server side.
type createItemRequest struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Price       float64          `json:"price" validate:"gte=0"`
	Category    models.Category  `json:"category" validate:"required,category"`
	Condition   models.Condition `json:"condition" validate:"required,condition"`
	Location    string           `json:"location"`
}

// ListItems returns the active listings, newest first. The bearer token is
// optional; without one the listing is read anonymously.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategoryFilter(r.URL.Query().Get("category"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.items.ListActiveItems(r.Context(), httpx.BearerToken(r), category)
	if err != nil {
		telemetry.CaptureError(r.Context(), err, map[string]string{"component": "api", "category": category.Label()})
		h.log.ErrorContext(r.Context(), "error fetching items", "category", string(category), "error", err)
		httpx.JSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	httpx.JSON(w, http.StatusOK, items)
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	req, ok := validator.ValidateRequest[createItemRequest](w, r)
	if !ok {
		return
	}

	created, err := h.items.CreateItem(r.Context(), auth.TokenFromContext(r.Context()), models.NewItem{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    req.Location,
		Status:      models.ItemStatusActive,
	})
	if err != nil {
		h.log.WarnContext(r.Context(), "create item failed", "user_id", user.ID, "error", err)
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	httpx.JSON(w, http.StatusCreated, created)
}
