package services

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kendall-kelly/bistro-orders-api/models"
)

// Window bounds for the dashboard series
const (
	DefaultStatsDays = 7
	MinStatsDays     = 1
	MaxStatsDays     = 90
)

const dateLayout = "2006-01-02"

// DailySales is the revenue of one business day
type DailySales struct {
	Date  string       `json:"date"`
	Sales models.Money `json:"sales"`
}

// CategoryShare is the revenue of one product category
type CategoryShare struct {
	Name  string       `json:"name"`
	Value models.Money `json:"value"`
}

// DashboardSnapshot is the admin dashboard payload
type DashboardSnapshot struct {
	TotalOrders          int64           `json:"totalOrders"`
	TotalRevenue         models.Money    `json:"totalRevenue"`
	ProductsSold         int64           `json:"productsSold"`
	ActiveClients        int64           `json:"activeClients"`
	SalesByDate          []DailySales    `json:"salesByDate"`
	CategoryDistribution []CategoryShare `json:"categoryDistribution"`
	Days                 int             `json:"days"`
	CategoryDays         int             `json:"categoryDays"`
	Timezone             string          `json:"timezone"`
}

// StatsWindow holds the two independently sized trailing windows of a snapshot
type StatsWindow struct {
	Days         int
	CategoryDays int
}

// ParseStatsWindow reads the days and categoryDays query values.
// Missing or unparsable days fall back to DefaultStatsDays, categoryDays falls back to days;
// both are clamped to [MinStatsDays, MaxStatsDays].
func ParseStatsWindow(days, categoryDays string) StatsWindow {
	d := clampDays(parseDays(days, DefaultStatsDays))
	cd := clampDays(parseDays(categoryDays, d))
	return StatsWindow{Days: d, CategoryDays: cd}
}

func parseDays(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func clampDays(n int) int {
	if n < MinStatsDays {
		return MinStatsDays
	}
	if n > MaxStatsDays {
		return MaxStatsDays
	}
	return n
}

// StatsService computes the sales dashboard
type StatsService struct {
	db       *gorm.DB
	location *time.Location
	now      func() time.Time
}

// NewStatsService creates a stats service whose calendar days follow loc
func NewStatsService(db *gorm.DB, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{db: db, location: loc, now: time.Now}
}

// WithClock replaces the clock, for tests
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

type windowBounds struct {
	start time.Time // first instant of the oldest day
	end   time.Time // first instant of tomorrow
}

func (s *StatsService) bounds(today time.Time, days int) windowBounds {
	start := time.Date(today.Year(), today.Month(), today.Day()-(days-1), 0, 0, 0, 0, s.location)
	end := time.Date(today.Year(), today.Month(), today.Day()+1, 0, 0, 0, 0, s.location)
	return windowBounds{start: start.UTC(), end: end.UTC()}
}

type orderRow struct {
	ID         uint
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

type categoryRow struct {
	Category *string
	Price    decimal.Decimal
	Quantity int
}

// Snapshot computes the dashboard for the given windows.
// Order counts, revenue and products sold cover the Days window; active clients are not windowed.
func (s *StatsService) Snapshot(ctx context.Context, window StatsWindow) (*DashboardSnapshot, error) {
	window = StatsWindow{Days: clampDays(window.Days), CategoryDays: clampDays(window.CategoryDays)}
	today := s.now().In(s.location)
	sales := s.bounds(today, window.Days)
	categories := s.bounds(today, window.CategoryDays)
	statuses := models.StatusStrings()
	db := s.db.WithContext(ctx)

	var orders []orderRow
	if err := db.Model(&models.Order{}).
		Select("id", "total_price", "created_at").
		Where("status IN ?", statuses).
		Where("created_at >= ? AND created_at < ?", sales.start, sales.end).
		Order("created_at ASC").
		Scan(&orders).Error; err != nil {
		return nil, storageError("load orders for stats", err)
	}

	var productsSold int64
	if err := db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", statuses).
		Where("orders.created_at >= ? AND orders.created_at < ?", sales.start, sales.end).
		Scan(&productsSold).Error; err != nil {
		return nil, storageError("count products sold", err)
	}

	var activeClients int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleClient).Count(&activeClients).Error; err != nil {
		return nil, storageError("count clients", err)
	}

	var lines []categoryRow
	if err := db.Model(&models.OrderItem{}).
		Select("products.category AS category", "order_items.price AS price", "order_items.quantity AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("orders.status IN ?", statuses).
		Where("orders.created_at >= ? AND orders.created_at < ?", categories.start, categories.end).
		Scan(&lines).Error; err != nil {
		return nil, storageError("load category lines", err)
	}

	snapshot := &DashboardSnapshot{
		TotalOrders:          int64(len(orders)),
		ProductsSold:         productsSold,
		ActiveClients:        activeClients,
		SalesByDate:          s.salesByDate(today, window.Days, orders),
		CategoryDistribution: categoryDistribution(lines),
		Days:                 window.Days,
		CategoryDays:         window.CategoryDays,
		Timezone:             s.location.String(),
	}
	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalPrice)
	}
	snapshot.TotalRevenue = models.NewMoney(revenue)

	return snapshot, nil
}

// salesByDate returns one entry per business day, oldest first, with zero for days without orders
func (s *StatsService) salesByDate(today time.Time, days int, orders []orderRow) []DailySales {
	perDay := make(map[string]decimal.Decimal, days)
	for _, o := range orders {
		key := o.CreatedAt.In(s.location).Format(dateLayout)
		perDay[key] = perDay[key].Add(o.TotalPrice)
	}

	series := make([]DailySales, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Date(today.Year(), today.Month(), today.Day()-i, 12, 0, 0, 0, s.location)
		key := day.Format(dateLayout)
		sales, ok := perDay[key]
		if !ok {
			sales = decimal.Zero
		}
		series = append(series, DailySales{Date: key, Sales: models.NewMoney(sales)})
	}
	return series
}

func categoryDistribution(lines []categoryRow) []CategoryShare {
	totals := make(map[string]decimal.Decimal)
	for _, line := range lines {
		name := models.UnclassifiedCategory
		if line.Category != nil {
			name = models.CategoryLabel(*line.Category)
		}
		lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		totals[name] = totals[name].Add(lineTotal)
	}

	shares := make([]CategoryShare, 0, len(totals))
	for name, value := range totals {
		shares = append(shares, CategoryShare{Name: name, Value: models.NewMoney(value)})
	}
	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].Value.Cmp(shares[j].Value.Decimal); c != 0 {
			return c > 0
		}
		return shares[i].Name < shares[j].Name
	})
	return shares
}
