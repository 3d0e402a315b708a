package infra

import (
	"fmt"

	"github.com/bdantech/previsao-receitas-construcao-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes).
//
// TranslateError is required: the attach and boleto flows rely on
// gorm.ErrDuplicatedKey surfacing from unique-index violations.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

	if err := db.AutoMigrate(
		&model.LinhaCredito{},
		&model.Recebivel{},
		&model.Antecipacao{},
		&model.AntecipacaoRecebivel{},
		&model.PlanoPagamento{},
		&model.Parcela{},
		&model.RecebivelPmt{},
		&model.RecebivelCobranca{},
		&model.Boleto{},
		&model.Indice{},
		&model.AtualizacaoIndice{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one active credit line per construtora. The INSERT path
		// relies on this index, not only on the service-level check.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_linhas_credito_ativa') THEN
		    CREATE UNIQUE INDEX idx_linhas_credito_ativa
		        ON linhas_credito (construtora_id)
		        WHERE status = 'ativa';
		  END IF;
		END $$`,
		// At most one live boleto per cobrança. Cancelados are excluded so a
		// replacement boleto can be issued; Create relies on this index for
		// the write-time duplicate check.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_boletos_cobranca_vigente') THEN
		    CREATE UNIQUE INDEX idx_boletos_cobranca_vigente
		        ON boletos (recebivel_cobranca_id)
		        WHERE status_emissao <> 'cancelado';
		  END IF;
		END $$`,
		// Partial index for the emission retry cron query.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_boletos_pending_retry') THEN
		    CREATE INDEX idx_boletos_pending_retry
		        ON boletos (proxima_tentativa_em)
		        WHERE status_emissao = 'criado' AND proxima_tentativa_em IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// RunMigrations applies the full schema for integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.LinhaCredito{},
		&model.Recebivel{},
		&model.Antecipacao{},
		&model.AntecipacaoRecebivel{},
		&model.PlanoPagamento{},
		&model.Parcela{},
		&model.RecebivelPmt{},
		&model.RecebivelCobranca{},
		&model.Boleto{},
		&model.Indice{},
		&model.AtualizacaoIndice{},
	); err != nil {
		return err
	}
	return applySchemaPatches(db)
}
