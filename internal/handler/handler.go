package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
	"github.com/UnitVectorY-Labs/shoppinglist/internal/schema"
	"github.com/UnitVectorY-Labs/shoppinglist/internal/swagger"
)

// Store is the backing list the handler mutates. Each method must be atomic
// with respect to the whole list.
type Store interface {
	Upsert(ctx context.Context, item model.Item, mode model.UpsertMode) (model.Item, bool, error)
	Get(ctx context.Context, name string) (model.Item, error)
	Update(ctx context.Context, item model.Item) (model.Item, error)
	Delete(ctx context.Context, name string) error
	Clear(ctx context.Context) error
	List(ctx context.Context, offset, limit int) ([]model.Item, error)
}

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes handler behaviour. Zero values select the defaults.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	UpsertMode      model.UpsertMode
	// OpenAPI serves GET /shopping/_openapi when non-nil.
	OpenAPI *swagger.Provider
	Logger  *slog.Logger
}

// Handler serves the shopping list HTTP API.
type Handler struct {
	store     Store
	validator *schema.Validator
	opts      Options
	logger    *slog.Logger
}

// New creates a Handler with default options.
func New(store Store) (*Handler, error) {
	return NewWithOptions(store, Options{})
}

// NewWithOptions creates a Handler, compiling the item payload schema.
func NewWithOptions(store Store, opts Options) (*Handler, error) {
	v, err := schema.NewItemValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to compile item schema: %w", err)
	}

	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = model.DefaultPageSize
	}
	if opts.UpsertMode == "" {
		opts.UpsertMode = model.UpsertReplace
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		store:     store,
		validator: v,
		opts:      opts,
		logger:    logger,
	}, nil
}

// SetupRoutes registers all API routes on the given ServeMux.
func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth())

	mux.HandleFunc("GET /shopping", h.handleListItems())
	mux.HandleFunc("POST /shopping", h.handleCreateItem())
	mux.HandleFunc("DELETE /shopping", h.handleClearItems())

	mux.HandleFunc("GET /shopping/{name}", h.handleGetItem())
	mux.HandleFunc("PUT /shopping/{name}", h.handleUpdateItem())
	mux.HandleFunc("DELETE /shopping/{name}", h.handleDeleteItem())

	if h.opts.OpenAPI != nil {
		mux.HandleFunc("GET /shopping/_openapi", h.handleOpenAPI())
	}
}
