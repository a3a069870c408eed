package categories

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/simple-mercari/catalog/app/api"
	"github.com/simple-mercari/catalog/models"
)

type Response struct {
	Categories []CategoryResponse `json:"categories"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
}

type CategoryHandler struct {
	repo CategoryProvider
	log  *zap.Logger
}

func NewCategoryHandler(r CategoryProvider, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{repo: r, log: log}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		api.Logger(r.Context(), h.log).Error("failed to list categories", zap.Error(err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			ID:   c.ID,
			Name: c.Name,
		}
	}

	api.OKResponse(w, r, Response{Categories: response})
}
