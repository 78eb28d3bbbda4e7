package store

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rezmoss/prodlog/internal/ledger"
)

// pgRow is one ledger row of one sheet.
type pgRow struct {
	Sheet    string `gorm:"column:sheet;primaryKey;type:varchar(100)"`
	Position int    `gorm:"column:position;primaryKey"`
	Cells    string `gorm:"column:cells;type:text;not null"`
}

func (pgRow) TableName() string { return "ledger_rows" }

// Postgres keeps sheets in a shared PostgreSQL table so several machines can
// work against one ledger.
type Postgres struct {
	db    *gorm.DB
	sheet string
}

// OpenPostgres connects with dsn and makes sure the table exists.
func OpenPostgres(ctx context.Context, dsn, sheet string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&pgRow{}); err != nil {
		return nil, fmt.Errorf("migrate ledger table: %w", err)
	}
	return &Postgres{db: db, sheet: sheet}, nil
}

func (p *Postgres) Read(ctx context.Context) ([]ledger.Row, error) {
	var recs []pgRow
	err := p.db.WithContext(ctx).
		Where("sheet = ?", p.sheet).
		Order("position ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}

	out := make([]ledger.Row, 0, len(recs))
	for _, rec := range recs {
		r, err := decodeRow([]byte(rec.Cells))
		if err != nil {
			return nil, fmt.Errorf("decode row %d: %w", rec.Position, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *Postgres) ReplaceAll(ctx context.Context, rows []ledger.Row) error {
	recs := make([]pgRow, len(rows))
	for i, r := range rows {
		data, err := encodeRow(r)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		recs[i] = pgRow{Sheet: p.sheet, Position: i, Cells: string(data)}
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sheet = ?", p.sheet).Delete(&pgRow{}).Error; err != nil {
			return fmt.Errorf("clear sheet: %w", err)
		}
		if len(recs) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(recs, 200).Error; err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
		return nil
	})
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
