package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

type menuItemRow struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`

	Key      string  `bun:"key,pk"`
	Position int     `bun:"position,notnull"`
	Name     string  `bun:"name,notnull"`
	Price    float64 `bun:"price,notnull"`
	Quantity int     `bun:"quantity,notnull"`
}

// PostgresRepository stores one row per item. Save replaces every row in a
// single transaction so readers never observe a half-written inventory.
type PostgresRepository struct {
	db *bun.DB
}

func NewPostgresRepository(cfg PostgresConfig) (*PostgresRepository, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresRepository{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.NewCreateTable().Model((*menuItemRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create menu_items table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context) (*Inventory, error) {
	var rows []menuItemRow
	if err := r.db.NewSelect().Model(&rows).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select menu items: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrInventoryNotFound
	}
	return fromRows(rows)
}

func (r *PostgresRepository) Save(ctx context.Context, inv *Inventory) error {
	if inv == nil {
		return errors.New("inventory is nil")
	}
	rows := toRows(inv)
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*menuItemRow)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("clear menu items: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert menu items: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func toRows(inv *Inventory) []menuItemRow {
	entries := inv.Entries()
	rows := make([]menuItemRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, menuItemRow{
			Key:      e.Key,
			Position: i,
			Name:     e.Item.Name,
			Price:    e.Item.Price,
			Quantity: e.Item.Quantity,
		})
	}
	return rows
}

func fromRows(rows []menuItemRow) (*Inventory, error) {
	inv := New()
	for _, row := range rows {
		if err := inv.Put(row.Key, MenuItem{Name: row.Name, Price: row.Price, Quantity: row.Quantity}); err != nil {
			return nil, fmt.Errorf("row %q: %w", row.Key, err)
		}
	}
	return inv, nil
}
