package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/bistro-orders-api/services"
)

// ProductController serves the catalog
type ProductController struct {
	catalog *services.CatalogService
}

// NewProductController creates a product controller
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// ListProducts handles GET /api/v1/products?category=&isNew=&isPromo=&q=
func (pc *ProductController) ListProducts(c *gin.Context) {
	filter := services.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	for name, target := range map[string]**bool{"isNew": &filter.IsNew, "isPromo": &filter.IsPromo} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", name+" must be true or false")
			return
		}
		*target = &v
	}

	products, err := pc.catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondData(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := pc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "PRODUCT_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, product)
}

// GetMenu handles GET /api/v1/menu - the catalog grouped by category
func (pc *ProductController) GetMenu(c *gin.Context) {
	menu, err := pc.catalog.Menu(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondData(c, http.StatusOK, menu)
}

// ListCategories handles GET /api/v1/categories
func (pc *ProductController) ListCategories(c *gin.Context) {
	categories, err := pc.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondData(c, http.StatusOK, categories)
}

// CreateProduct handles POST /api/v1/products (admin)
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := pc.catalog.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "")
		return
	}

	respondData(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/:id (admin)
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := pc.catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "PRODUCT_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id (admin)
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := pc.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "PRODUCT_NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted",
	})
}

// UploadProductImage handles POST /api/v1/products/:id/image (admin, multipart field "image")
func (pc *ProductController) UploadProductImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required in the \"image\" field", nil)
		return
	}

	product, err := pc.catalog.AttachImage(c.Request.Context(), id, fileHeader)
	if err != nil {
		respondError(c, err, "PRODUCT_NOT_FOUND")
		return
	}

	respondData(c, http.StatusOK, product)
}
