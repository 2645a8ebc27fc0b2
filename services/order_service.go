package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kendall-kelly/bistro-orders-api/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// CreateOrderItem is one requested line of a new order
type CreateOrderItem struct {
	ProductID uint             `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"` // display hint only, the catalog price is what gets stored
}

// CreateOrderInput is the request to place an order
type CreateOrderInput struct {
	UserID       uint              `json:"userId"`
	Address      string            `json:"address"`
	CustomerName string            `json:"customerName"`
	Items        []CreateOrderItem `json:"items"`
}

// Validate checks the input shape before anything touches storage
func (in CreateOrderInput) Validate() error {
	if in.UserID == 0 {
		return validationError("userId is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return validationError("address is required")
	}
	if len(in.Items) == 0 {
		return validationError("at least one item is required")
	}
	for i, item := range in.Items {
		if item.ProductID == 0 {
			return validationError("items[%d]: productId is required", i)
		}
		if item.Quantity < 1 {
			return validationError("items[%d]: quantity must be at least 1", i)
		}
	}
	return nil
}

// ListOrdersFilter narrows the admin order listing
type ListOrdersFilter struct {
	Status string
	Limit  int
	Offset int
}

// OrderService places orders and moves them through their lifecycle
type OrderService struct {
	db     *gorm.DB
	events EventPublisher
}

// NewOrderService creates an order service backed by db.
// A nil publisher disables event publishing.
func NewOrderService(db *gorm.DB, events EventPublisher) *OrderService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &OrderService{db: db, events: events}
}

// Create places an order with its lines in a single transaction.
// Every line snapshots the current catalog price; the total is computed once from those lines.
func (s *OrderService) Create(ctx context.Context, caller Caller, in CreateOrderInput) (*models.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && caller.UserID != in.UserID {
		return nil, fmt.Errorf("%w: clients may only place orders for themselves", ErrForbidden)
	}

	log := zerolog.Ctx(ctx)
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id", "name", "email").First(&user, in.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationError("user %d does not exist", in.UserID)
			}
			return storageError("load user", err)
		}

		products, err := loadProducts(tx, in.Items)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, len(in.Items))
		for i, requested := range in.Items {
			product := products[requested.ProductID]
			if requested.Price != nil && !requested.Price.Equal(product.Price.Decimal) {
				log.Warn().
					Uint("product_id", product.ID).
					Str("client_price", requested.Price.String()).
					Str("catalog_price", product.Price.String()).
					Msg("client price differs from catalog, using catalog price")
			}
			items[i] = models.OrderItem{
				ProductID: product.ID,
				Quantity:  requested.Quantity,
				Price:     product.Price,
			}
		}

		customerName := strings.TrimSpace(in.CustomerName)
		if customerName == "" {
			customerName = user.Name
		}
		if customerName == "" {
			customerName = user.Email
		}

		order = models.Order{
			UserID:       user.ID,
			Address:      strings.TrimSpace(in.Address),
			CustomerName: customerName,
			Status:       models.StatusPending,
			TotalPrice:   models.CalculateTotal(items),
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return storageError("create order", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Omit(clause.Associations).Create(&items[i]).Error; err != nil {
				return storageError(fmt.Sprintf("create order item %d", i), err)
			}
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, classify("create order", err)
	}

	log.Info().
		Uint("order_id", order.ID).
		Uint("user_id", order.UserID).
		Int("items", len(order.Items)).
		Str("total", order.TotalPrice.StringFixed(2)).
		Msg("order created")

	s.publish(ctx, NewOrderEvent(EventOrderCreated, &order, ""))
	return &order, nil
}

// UpdateStatus moves an order to status, enforcing the lifecycle graph
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, validationError("unknown status %q", status)
	}
	return s.transition(ctx, orderID, next, nil)
}

// Cancel cancels an order on behalf of its owner (or an admin)
func (s *OrderService) Cancel(ctx context.Context, caller Caller, orderID uint) (*models.Order, error) {
	return s.transition(ctx, orderID, models.StatusCancelled, func(order *models.Order) error {
		return authorizeOrderAccess(caller, order.UserID)
	})
}

func (s *OrderService) transition(ctx context.Context, orderID uint, next models.OrderStatus, authorize func(*models.Order) error) (*models.Order, error) {
	var order models.Order
	var previous models.OrderStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return storageError("load order", err)
		}
		if authorize != nil {
			if err := authorize(&order); err != nil {
				return err
			}
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, order.Status, next)
		}

		previous = order.Status
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return storageError("update order status", err)
		}
		if err := tx.Preload("Items").First(&order, order.ID).Error; err != nil {
			return storageError("reload order", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("update order status", err)
	}

	zerolog.Ctx(ctx).Info().
		Uint("order_id", order.ID).
		Str("from", string(previous)).
		Str("to", string(order.Status)).
		Msg("order status changed")

	s.publish(ctx, NewOrderEvent(EventOrderStatusChanged, &order, previous))
	return &order, nil
}

// Get returns one order with its items, visible to its owner and to admins
func (s *OrderService) Get(ctx context.Context, caller Caller, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, storageError("load order", err)
	}
	if err := authorizeOrderAccess(caller, order.UserID); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForUser returns the orders of userID, newest first.
// Clients may only list their own orders.
func (s *OrderService) ListForUser(ctx context.Context, caller Caller, userID uint) ([]models.Order, error) {
	if err := authorizeOrderAccess(caller, userID); err != nil {
		return nil, err
	}

	orders := []models.Order{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, storageError("list orders", err)
	}
	return orders, nil
}

// List returns all orders, newest first, for the admin back office
func (s *OrderService) List(ctx context.Context, filter ListOrdersFilter) ([]models.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	q := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		if !models.OrderStatus(filter.Status).Valid() {
			return nil, validationError("unknown status %q", filter.Status)
		}
		q = q.Where("status = ?", filter.Status)
	}

	orders := []models.Order{}
	if err := q.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, storageError("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) publish(ctx context.Context, event OrderEvent) {
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("event", event.Type).
			Uint("order_id", event.OrderID).
			Msg("failed to publish order event")
	}
}

func loadProducts(tx *gorm.DB, items []CreateOrderItem) (map[uint]models.Product, error) {
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, storageError("load products", err)
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, validationError("product %d does not exist", id)
		}
	}
	return byID, nil
}

func authorizeOrderAccess(caller Caller, ownerID uint) error {
	if caller.IsAdmin() || caller.UserID == ownerID {
		return nil
	}
	return fmt.Errorf("%w: orders of another user", ErrForbidden)
}

// classify leaves service errors untouched and turns anything else
// (begin/commit failures, context deadlines) into a storage error.
func classify(op string, err error) error {
	for _, kind := range []error{ErrValidation, ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrInvalidTransition, ErrStorage} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return storageError(op, err)
}
