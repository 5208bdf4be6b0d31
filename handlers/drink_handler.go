package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/upb/coffee-shop/internal/observability"
	"github.com/upb/coffee-shop/middleware"
	"github.com/upb/coffee-shop/models"
	"github.com/upb/coffee-shop/services/drinks"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// maxBodyBytes caps drink request bodies
const maxBodyBytes = 1 << 20

// DrinkService is the subset of the drink service used by the handlers
type DrinkService interface {
	ListDrinks(ctx context.Context) ([]*models.Drink, error)
	CreateDrink(ctx context.Context, input drinks.CreateInput) (*models.Drink, error)
	UpdateDrink(ctx context.Context, id int64, input drinks.UpdateInput) (*models.Drink, error)
	DeleteDrink(ctx context.Context, id int64) error
}

// CreateDrinkRequest is the POST /drinks body
type CreateDrinkRequest struct {
	Title  string        `json:"title" validate:"required,max=80"`
	Recipe models.Recipe `json:"recipe" validate:"required,min=1,dive"`
}

// UpdateDrinkRequest is the PATCH /drinks/{id} body. Absent fields are kept.
type UpdateDrinkRequest struct {
	Title  *string       `json:"title" validate:"omitempty,max=80"`
	Recipe models.Recipe `json:"recipe" validate:"omitempty,dive"`
}

// DrinkHandler serves the drink menu
type DrinkHandler struct {
	service DrinkService
	logger  *zap.Logger
}

// NewDrinkHandler creates a new DrinkHandler
func NewDrinkHandler(service DrinkService, logger *zap.Logger) *DrinkHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DrinkHandler{
		service: service,
		logger:  logger,
	}
}

// HandleList handles GET /drinks with the public short recipe form
func (h *DrinkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDrinks(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	short := make([]models.DrinkShort, 0, len(list))
	for _, d := range list {
		short = append(short, d.Short())
	}
	h.writeSuccess(w, r, map[string]interface{}{"drinks": short})
}

// HandleListDetail handles GET /drinks-detail with the full recipe
func (h *DrinkHandler) HandleListDetail(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDrinks(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	long := make([]models.DrinkLong, 0, len(list))
	for _, d := range list {
		long = append(long, d.Long())
	}
	h.writeSuccess(w, r, map[string]interface{}{"drinks": long})
}

// HandleCreate handles POST /drinks
func (h *DrinkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateDrinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	drink, err := h.service.CreateDrink(r.Context(), drinks.CreateInput{
		Title:  req.Title,
		Recipe: req.Recipe,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("drink added to menu",
		observability.RequestID(r.Context()),
		zap.String("sub", subject(r)),
		zap.Int64("id", drink.ID))
	h.writeSuccess(w, r, map[string]interface{}{"drinks": []models.DrinkLong{drink.Long()}})
}

// HandleUpdate handles PATCH /drinks/{id}
func (h *DrinkHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := drinkID(r)
	if !ok {
		h.writeNotFound(w)
		return
	}

	var req UpdateDrinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	drink, err := h.service.UpdateDrink(r.Context(), id, drinks.UpdateInput{
		Title:  req.Title,
		Recipe: req.Recipe,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("drink updated",
		observability.RequestID(r.Context()),
		zap.String("sub", subject(r)),
		zap.Int64("id", drink.ID))
	h.writeSuccess(w, r, map[string]interface{}{"drinks": []models.DrinkLong{drink.Long()}})
}

// HandleDelete handles DELETE /drinks/{id}
func (h *DrinkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := drinkID(r)
	if !ok {
		h.writeNotFound(w)
		return
	}

	if err := h.service.DeleteDrink(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("drink removed from menu",
		observability.RequestID(r.Context()),
		zap.String("sub", subject(r)),
		zap.Int64("id", id))
	h.writeSuccess(w, r, map[string]interface{}{"delete": id})
}

func (h *DrinkHandler) writeSuccess(w http.ResponseWriter, r *http.Request, fields map[string]interface{}) {
	if err := utils.WriteSuccess(w, fields); err != nil {
		h.logger.Error("failed to write response",
			observability.RequestID(r.Context()),
			zap.Error(err))
	}
}

func (h *DrinkHandler) writeNotFound(w http.ResponseWriter) {
	if err := utils.WriteNotFound(w, ""); err != nil {
		h.logger.Error("failed to write not found response", zap.Error(err))
	}
}

// drinkID parses the {id} path segment. Non-integer ids never match a drink.
func drinkID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

func subject(r *http.Request) string {
	return middleware.GetClaimsFromContext(r.Context()).Subject()
}
