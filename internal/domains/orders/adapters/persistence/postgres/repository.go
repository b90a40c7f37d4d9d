package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/orders-api/internal/domains/orders/domain"
	"github.com/Apurer/orders-api/internal/domains/orders/ports"
	"github.com/Apurer/orders-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see migrations.Run).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID         string            `gorm:"primaryKey;column:id;size:36"`
	Version    int64             `gorm:"column:version;not null;default:0"`
	Date       time.Time         `gorm:"column:order_date;type:date"`
	CustomerID string            `gorm:"column:customer_id;size:36;index"`
	Lines      []orderLineRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;index"`
	UpdatedAt  time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID        string          `gorm:"primaryKey;column:id;size:36"`
	OrderID   string          `gorm:"column:order_id;size:36;index"`
	ArticleID string          `gorm:"column:article_id;size:36"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Quantity  int32           `gorm:"column:quantity"`
	Idx       int             `gorm:"column:idx"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

// Insert stores the order and its lines in one transaction and returns the stored state.
func (r *Repository) Insert(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return domain.Order{}, err
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	record := toRecord(order, r.now().UTC())

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&orderRecord{}).Where("id = ?", record.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ports.ErrAlreadyExists
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ports.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return r.GetByID(ctx, order.ID)
}

// GetByID fetches an order with its lines.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return domain.Order{}, err
	}
	var record orderRecord
	if err := r.withLines(ctx).First(&record, "id = ?", id.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, ports.ErrNotFound
		}
		return domain.Order{}, err
	}
	return record.toDomain()
}

// FindByCustomerID returns the customer's orders, oldest first, or ports.ErrNoResult.
func (r *Repository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.withLines(ctx).
		Where("customer_id = ?", customerID.String()).
		Order("created_at, id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ports.ErrNoResult
	}
	return toDomainList(records)
}

// List returns all orders, oldest first.
func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.withLines(ctx).Order("created_at, id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records)
}

func (r *Repository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("idx")
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order domain.Order, now time.Time) orderRecord {
	rec := orderRecord{
		ID:         order.ID.String(),
		Date:       domain.DateOf(order.Date),
		CustomerID: order.CustomerID.String(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, line := range order.Lines {
		id := line.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		rec.Lines = append(rec.Lines, orderLineRecord{
			ID:        id.String(),
			OrderID:   rec.ID,
			ArticleID: line.ArticleID.String(),
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Idx:       i,
		})
	}
	return rec
}

func (r orderRecord) toDomain() (domain.Order, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return domain.Order{}, err
	}
	customerID, err := uuid.Parse(r.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	order := domain.Order{
		ID:           id,
		Version:      r.Version,
		Date:         domain.DateOf(r.Date),
		CustomerID:   customerID,
		Lines:        make([]domain.Line, 0, len(r.Lines)),
		Metadata:     projection.Metadata{CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()},
		CustomerName: domain.CustomerNameNotFound,
	}
	for _, l := range r.Lines {
		lineID, err := uuid.Parse(l.ID)
		if err != nil {
			return domain.Order{}, err
		}
		articleID, err := uuid.Parse(l.ArticleID)
		if err != nil {
			return domain.Order{}, err
		}
		order.Lines = append(order.Lines, domain.Line{
			ID:        lineID,
			ArticleID: articleID,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Index:     l.Idx,
		})
	}
	return order, nil
}

func toDomainList(records []orderRecord) ([]domain.Order, error) {
	orders := make([]domain.Order, 0, len(records))
	for i := range records {
		order, err := records[i].toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
