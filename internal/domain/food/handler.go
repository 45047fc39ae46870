package food

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcatalog/internal/logging"
	"foodcatalog/internal/pkg/response"
)

// Handler exposes the catalog and mutation services over HTTP.
type Handler struct {
	catalog   *CatalogService
	mutations *MutationService
}

func NewHandler(catalog *CatalogService, mutations *MutationService) *Handler {
	return &Handler{catalog: catalog, mutations: mutations}
}

// Count godoc
// @Summary Number of foods in the catalog
// @Tags Foods
// @Produce json
// @Success 200 {object} response.Body
// @Router /foods/count [get]
func (h *Handler) Count(c *gin.Context) {
	n, err := h.catalog.Count(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, countResponse{Count: n})
}

// List godoc
// @Summary List foods
// @Tags Foods
// @Produce json
// @Param hasDescription query string false "Filter by description presence" Enums(YES, NO)
// @Success 200 {object} response.Body
// @Failure 422 {object} response.Body
// @Router /foods [get]
func (h *Handler) List(c *gin.Context) {
	var filter *ListFilter
	if v := c.Query("hasDescription"); v != "" {
		filter = &ListFilter{HasDescription: YesNo(v)}
	}

	items, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetBySlug godoc
// @Summary Find a food by slug
// @Description data is null when no food has the slug
// @Tags Foods
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} response.Body
// @Router /foods/by-slug/{slug} [get]
func (h *Handler) GetBySlug(c *gin.Context) {
	item, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// ListByType godoc
// @Summary List foods of one type
// @Tags Foods
// @Produce json
// @Param type path string true "Type"
// @Success 200 {object} response.Body
// @Router /foods/by-type/{type} [get]
func (h *Handler) ListByType(c *gin.Context) {
	items, err := h.catalog.ListByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ListBySlugs godoc
// @Summary List foods whose slug is in the given set
// @Tags Foods
// @Produce json
// @Param slug query []string true "Slugs" collectionFormat(multi)
// @Success 200 {object} response.Body
// @Router /foods/by-slugs [get]
func (h *Handler) ListBySlugs(c *gin.Context) {
	items, err := h.catalog.ListBySlugs(c.Request.Context(), c.QueryArray("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ListTypes godoc
// @Summary Distinct food types
// @Tags Foods
// @Produce json
// @Success 200 {object} response.Body
// @Router /foods/types [get]
func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.catalog.ListDistinctTypes(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, types)
}

// Search godoc
// @Summary Case-insensitive name search
// @Tags Foods
// @Produce json
// @Param search query string true "Substring of the name"
// @Success 200 {object} response.Body
// @Failure 422 {object} response.Body
// @Router /foods/search [get]
func (h *Handler) Search(c *gin.Context) {
	items, err := h.catalog.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Create godoc
// @Summary Add a food
// @Tags Foods
// @Accept json
// @Produce json
// @Param request body CreateFoodRequest true "Food"
// @Success 201 {object} response.Body
// @Failure 400,422 {object} response.Body
// @Router /foods [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	item, err := h.mutations.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// EditPrice godoc
// @Summary Change the price of a food
// @Description data is null when no food has the name
// @Tags Foods
// @Accept json
// @Produce json
// @Param request body EditPriceRequest true "Name and new price"
// @Success 200 {object} response.Body
// @Failure 400,422 {object} response.Body
// @Router /foods/price [patch]
func (h *Handler) EditPrice(c *gin.Context) {
	var req EditPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	item, err := h.mutations.EditPrice(c.Request.Context(), req.Name, req.Price)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a food by slug
// @Tags Foods
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} response.Body
// @Failure 404 {object} response.Body
// @Router /foods/by-slug/{slug} [delete]
func (h *Handler) Delete(c *gin.Context) {
	item, err := h.mutations.DeleteBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func handleError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", verr.Message, validationDetails{
			Fields:      verr.Fields,
			InvalidArgs: verr.Input,
		})
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Food not found")
	default:
		_ = c.Error(err)
		logging.FromContext(c.Request.Context()).Error("food request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
