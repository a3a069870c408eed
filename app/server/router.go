package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/simple-mercari/catalog/app/api"
	"github.com/simple-mercari/catalog/app/categories"
	"github.com/simple-mercari/catalog/app/images"
	"github.com/simple-mercari/catalog/app/items"
)

type Handlers struct {
	Items      *items.ItemHandler
	Images     *images.ImageHandler
	Categories *categories.CategoryHandler
}

// NewRouter wires the handlers to their routes behind the common middleware.
func NewRouter(h Handlers, log *zap.Logger, frontURL string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", api.HandleHello)
	mux.HandleFunc("POST /items", h.Items.HandleCreate)
	mux.HandleFunc("GET /items", h.Items.HandleGetAll)
	mux.HandleFunc("GET /items/{item_id}", h.Items.HandleGet)
	mux.HandleFunc("GET /search", h.Items.HandleSearch)
	mux.HandleFunc("GET /image/{image_name}", h.Images.HandleGet)
	mux.HandleFunc("GET /categories", h.Categories.HandleGetAll)

	return Chain(mux,
		RequestLogger(log),
		Recoverer(log),
		CORS(frontURL),
	)
}
