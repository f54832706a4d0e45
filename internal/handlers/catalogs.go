package handlers

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/jwebster45206/survival-kitchen/pkg/storage"
)

type CatalogInfo struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

type CatalogsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCatalogsHandler(storage storage.Storage, logger *slog.Logger) *CatalogsHandler {
	return &CatalogsHandler{storage: storage, logger: logger}
}

// ServeHTTP handles GET /v1/catalogs
func (h *CatalogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	found, err := h.storage.ListCatalogs(r.Context())
	if err != nil {
		h.logger.Error("Failed to list catalogs", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list catalogs")
		return
	}

	list := make([]CatalogInfo, 0, len(found))
	for name, filename := range found {
		list = append(list, CatalogInfo{Name: name, Filename: filename})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Filename < list[j].Filename })

	writeJSON(w, h.logger, http.StatusOK, list)
}
