package items

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/simple-mercari/catalog/app/api"
	"github.com/simple-mercari/catalog/models"
)

// Kept in memory while parsing a multipart form; larger parts spill to disk.
const maxMemory = 8 << 20

type Response struct {
	Items []Item `json:"items"`
}

type Item struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImageName string `json:"image_name"`
}

type ItemDetail struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImageName string `json:"image_name"`
}

type SearchResponse struct {
	Items []SearchResult `json:"items"`
}

type SearchResult struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ItemForm is the multipart body of POST /items, without the image part.
type ItemForm struct {
	Name     string `form:"name" validate:"required"`
	Category string `form:"category" validate:"required"`
}

type ItemProvider interface {
	AddItem(ctx context.Context, name, category, imageName string) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.ItemRow, error)
	GetItem(ctx context.Context, id uint) (*models.ItemRow, error)
	SearchItems(ctx context.Context, keyword string) ([]models.ItemRow, error)
}

type ImageSaver interface {
	Put(r io.Reader) (string, error)
}

type ItemHandler struct {
	repo           ItemProvider
	images         ImageSaver
	log            *zap.Logger
	maxUploadBytes int64
}

func NewItemHandler(r ItemProvider, images ImageSaver, log *zap.Logger, maxUploadBytes int64) *ItemHandler {
	return &ItemHandler{
		repo:           r,
		images:         images,
		log:            log,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *ItemHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	log := api.Logger(r.Context(), h.log)

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.ErrorResponse(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	form := ItemForm{
		Name:     r.PostFormValue("name"),
		Category: r.PostFormValue("category"),
	}
	if msg := api.Validate(form); msg != "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	imageName, err := h.images.Put(file)
	if err != nil {
		log.Error("failed to store image", zap.Error(err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to store image")
		return
	}

	// The image is already on disk; a failed insert leaves it orphaned.
	item, err := h.repo.AddItem(r.Context(), form.Name, form.Category, imageName)
	if err != nil {
		log.Error("failed to add item",
			zap.String("name", form.Name),
			zap.String("category", form.Category),
			zap.String("image_name", imageName),
			zap.Error(err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to add item")
		return
	}

	log.Info("item added", zap.Uint("id", item.ID), zap.String("image_name", imageName))
	api.OKResponse(w, r, api.MessageResponse{
		Message: fmt.Sprintf("item received: %s, category: %s, image: %s", item.Name, item.Category.Name, item.ImageName),
	})
}

func (h *ItemHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.ListItems(r.Context())
	if err != nil {
		api.Logger(r.Context(), h.log).Error("failed to list items", zap.Error(err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to fetch items")
		return
	}

	items := make([]Item, len(res))
	for i, row := range res {
		items[i] = Item{
			ID:        row.ID,
			Name:      row.Name,
			Category:  row.Category,
			ImageName: row.ImageName,
		}
	}

	api.OKResponse(w, r, Response{Items: items})
}

func (h *ItemHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("item_id"), 10, 0)
	if err != nil || id == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "item_id must be a positive integer")
		return
	}

	row, err := h.repo.GetItem(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, models.ErrItemNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Item not found")
			return
		}
		api.Logger(r.Context(), h.log).Error("failed to get item", zap.Uint64("id", id), zap.Error(err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to fetch item")
		return
	}

	api.OKResponse(w, r, ItemDetail{
		Name:      row.Name,
		Category:  row.Category,
		ImageName: row.ImageName,
	})
}

func (h *ItemHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	res, err := h.repo.SearchItems(r.Context(), keyword)
	if err != nil {
		api.Logger(r.Context(), h.log).Error("failed to search items", zap.String("keyword", keyword), zap.Error(err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to search items")
		return
	}

	results := make([]SearchResult, len(res))
	for i, row := range res {
		results[i] = SearchResult{
			Name:     row.Name,
			Category: row.Category,
		}
	}

	api.OKResponse(w, r, SearchResponse{Items: results})
}
