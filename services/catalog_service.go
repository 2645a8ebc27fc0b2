package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kendall-kelly/bistro-orders-api/models"
)

// ProductFilter narrows the public catalog listing
type ProductFilter struct {
	Category string
	IsNew    *bool
	IsPromo  *bool
	Query    string
}

// ProductInput is the admin payload for creating or replacing a product
type ProductInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	IsNew       bool            `json:"isNew"`
	IsPromo     bool            `json:"isPromo"`
}

// Validate checks the product fields
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationError("name is required")
	}
	if !in.Price.IsPositive() {
		return validationError("price must be greater than zero")
	}
	if in.Price.Exponent() < -2 {
		return validationError("price has more than two decimals")
	}
	return nil
}

// MenuSection groups the products of one category
type MenuSection struct {
	Category string           `json:"category"`
	Products []models.Product `json:"products"`
}

// CatalogService manages the products offered by the restaurant
type CatalogService struct {
	db     *gorm.DB
	images ImageService
}

// NewCatalogService creates a catalog service; images may be nil when uploads are not used
func NewCatalogService(db *gorm.DB, images ImageService) *CatalogService {
	return &CatalogService{db: db, images: images}
}

// List returns the products matching filter, ordered by category then name
func (s *CatalogService) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.IsNew != nil {
		q = q.Where("is_new = ?", *filter.IsNew)
	}
	if filter.IsPromo != nil {
		q = q.Where("is_promo = ?", *filter.IsPromo)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	products := []models.Product{}
	if err := q.Order("category ASC, name ASC, id ASC").Find(&products).Error; err != nil {
		return nil, storageError("list products", err)
	}
	s.resolveImages(ctx, products)
	return products, nil
}

// Menu returns the whole catalog grouped by category
func (s *CatalogService) Menu(ctx context.Context) ([]MenuSection, error) {
	products, err := s.List(ctx, ProductFilter{})
	if err != nil {
		return nil, err
	}

	sections := []MenuSection{}
	index := map[string]int{}
	for _, p := range products {
		label := models.CategoryLabel(p.Category)
		i, ok := index[label]
		if !ok {
			i = len(sections)
			index[label] = i
			sections = append(sections, MenuSection{Category: label})
		}
		sections[i].Products = append(sections[i].Products, p)
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Category < sections[j].Category
	})
	return sections, nil
}

// Categories returns the distinct non-empty categories in use
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories := []string{}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, storageError("list categories", err)
	}
	return categories, nil
}

// Get returns one product
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveImage(ctx, product)
	return product, nil
}

// Create adds a product to the catalog
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product := models.Product{}
	applyProductInput(&product, in)
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, storageError("create product", err)
	}

	zerolog.Ctx(ctx).Info().Uint("product_id", product.ID).Str("name", product.Name).Msg("product created")
	return &product, nil
}

// Update replaces the editable fields of a product. Existing order lines keep their captured price.
func (s *CatalogService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductInput(product, in)
	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, storageError("update product", err)
	}

	s.resolveImage(ctx, product)
	return product, nil
}

// Delete soft-deletes a product; order history keeps referencing it
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return storageError("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}

	zerolog.Ctx(ctx).Info().Uint("product_id", id).Msg("product deleted")
	return nil
}

// AttachImage uploads an image and makes it the product's picture, removing the previous one
func (s *CatalogService) AttachImage(ctx context.Context, id uint, fileHeader *multipart.FileHeader) (*models.Product, error) {
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := s.images.UploadImage(ctx, fileHeader)
	if err != nil {
		return nil, err
	}

	// copy the value: gorm writes the new key through product.ImageKey
	previous := ""
	if product.ImageKey != nil {
		previous = *product.ImageKey
	}
	if err := s.db.WithContext(ctx).Model(product).Update("image_key", key).Error; err != nil {
		_ = s.images.DeleteImage(ctx, key)
		return nil, storageError("store image key", err)
	}
	product.ImageKey = &key

	if previous != "" && previous != key {
		if err := s.images.DeleteImage(ctx, previous); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("image_key", previous).Msg("failed to delete previous image")
		}
	}

	s.resolveImage(ctx, product)
	return product, nil
}

func (s *CatalogService) find(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, storageError("load product", err)
	}
	return &product, nil
}

func (s *CatalogService) resolveImages(ctx context.Context, products []models.Product) {
	for i := range products {
		s.resolveImage(ctx, &products[i])
	}
}

// resolveImage fills ImageURL; a failure leaves it empty rather than failing the read
func (s *CatalogService) resolveImage(ctx context.Context, product *models.Product) {
	if s.images == nil || product.ImageKey == nil || *product.ImageKey == "" {
		return
	}
	url, err := s.images.GetImageURL(ctx, *product.ImageKey)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Uint("product_id", product.ID).Msg("failed to resolve image url")
		return
	}
	product.ImageURL = &url
}

func applyProductInput(product *models.Product, in ProductInput) {
	product.Name = strings.TrimSpace(in.Name)
	product.Price = models.NewMoney(in.Price)
	product.Description = strings.TrimSpace(in.Description)
	product.Category = strings.TrimSpace(in.Category)
	product.IsNew = in.IsNew
	product.IsPromo = in.IsPromo
}
