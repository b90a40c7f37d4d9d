package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the orders schema. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderLineRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
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

// Order line schema; idx keeps the position inside the order.
type orderLineRecord struct {
	ID        string          `gorm:"primaryKey;column:id;size:36"`
	OrderID   string          `gorm:"column:order_id;size:36;index"`
	ArticleID string          `gorm:"column:article_id;size:36"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Quantity  int32           `gorm:"column:quantity"`
	Idx       int             `gorm:"column:idx"`
}

func (orderLineRecord) TableName() string { return "order_lines" }
