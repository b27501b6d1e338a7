package sqldb

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/adverts/adverts-api/internal/core/domain"
)

// priceColumn stores a decimal as its exact string form. SQLite gives a
// numeric column REAL affinity and would round long prices through float64,
// so there the column is text; Postgres keeps numeric.
type priceColumn decimal.Decimal

func (priceColumn) GormDataType() string { return "decimal" }

func (priceColumn) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return "numeric"
}

func (p priceColumn) Value() (driver.Value, error) {
	return decimal.Decimal(p).String(), nil
}

func (p *priceColumn) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("scan price: %w", err)
	}
	*p = priceColumn(d)
	return nil
}

type advertModel struct {
	ID          int64       `gorm:"primaryKey;autoIncrement"`
	Name        string      `gorm:"not null"`
	Description string      `gorm:"not null;default:''"`
	Price       priceColumn `gorm:"not null"`
	DateAdded   time.Time   `gorm:"not null"`
}

func (advertModel) TableName() string { return "adverts" }

func toModel(a *domain.Advert) advertModel {
	return advertModel{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Price:       priceColumn(a.Price),
		DateAdded:   a.DateAdded.UTC(),
	}
}

func (m *advertModel) toDomain() domain.Advert {
	return domain.Advert{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       decimal.Decimal(m.Price),
		DateAdded:   m.DateAdded.UTC(),
	}
}

// AdvertRepository implements ports.AdvertRepository on gorm.
type AdvertRepository struct {
	db *gorm.DB
}

func NewAdvertRepository(db *gorm.DB) *AdvertRepository {
	return &AdvertRepository{db: db}
}

// Migrate creates or updates the adverts table.
func (r *AdvertRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&advertModel{}); err != nil {
		return fmt.Errorf("migrate adverts: %w", err)
	}
	return nil
}

func (r *AdvertRepository) FindByID(ctx context.Context, id int64) (*domain.Advert, error) {
	var m advertModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAdvertNotFound
		}
		return nil, fmt.Errorf("find advert %d: %w", id, err)
	}
	a := m.toDomain()
	return &a, nil
}

func (r *AdvertRepository) List(ctx context.Context) ([]domain.Advert, error) {
	var items []advertModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list adverts: %w", err)
	}

	out := make([]domain.Advert, 0, len(items))
	for i := range items {
		out = append(out, items[i].toDomain())
	}
	return out, nil
}

func (r *AdvertRepository) Create(ctx context.Context, a *domain.Advert) error {
	m := toModel(a)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert advert: %w", err)
	}
	a.ID = m.ID
	return nil
}

func (r *AdvertRepository) Update(ctx context.Context, a *domain.Advert) error {
	res := r.db.WithContext(ctx).
		Model(&advertModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"name":        a.Name,
			"description": a.Description,
			"price":       priceColumn(a.Price),
			"date_added":  a.DateAdded.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("update advert %d: %w", a.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAdvertNotFound
	}
	return nil
}

func (r *AdvertRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&advertModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete advert %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAdvertNotFound
	}
	return nil
}

// Ping satisfies ports.Pinger for the readiness probe.
func (r *AdvertRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (r *AdvertRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
