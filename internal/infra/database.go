package infra

import (
	"fmt"

	"gestaogado/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. Callers run
// RunMigrations afterwards.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return db, nil
}

// RunMigrations creates / updates all tables and applies schema patches.
// Integration tests call it directly against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Lote{},
		&model.Boi{},
		&model.PesoHistorico{},
		&model.Venda{},
		&model.Notificacao{},
		&model.Configuracao{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL/DML that AutoMigrate cannot handle.
// Each statement uses IF NOT EXISTS / ON CONFLICT DO NOTHING so re-running on an
// already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// The service layer checks for an active sale under a row lock; this index
		// is the last line if two processes ever race past it.
		{"one active venda per lote", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_vendas_lote_ativa
    ON vendas (lote_id) WHERE estado = 'ativa'`},
		// Latest-weight lookup used by the recompute query.
		{"pesos_historico latest lookup", `
CREATE INDEX IF NOT EXISTS idx_pesos_historico_boi_data
    ON pesos_historico (boi_id, data_pesagem DESC, created_at DESC)`},
		{"default peso_medio_venda", `
INSERT INTO configuracoes (chave, valor, updated_at)
VALUES ('peso_medio_venda', '450', NOW())
ON CONFLICT (chave) DO NOTHING`},
		{"default dias_alerta_vacinacao", `
INSERT INTO configuracoes (chave, valor, updated_at)
VALUES ('dias_alerta_vacinacao', '30', NOW())
ON CONFLICT (chave) DO NOTHING`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
