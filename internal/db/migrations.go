package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('draft', 'active', 'suspended', 'expired');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'lifecycle_status') THEN
			CREATE TYPE lifecycle_status AS ENUM ('draft', 'active', 'expired');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'warranty_start_rule') THEN
			CREATE TYPE warranty_start_rule AS ENUM ('purchase_date', 'activation_date', 'manufacture_date');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		client_id UUID NOT NULL REFERENCES clients(id),
		reference VARCHAR(64) NOT NULL,
		status contract_status NOT NULL DEFAULT 'draft',
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		billing_rate_percent NUMERIC(6,3) NOT NULL DEFAULT 0,
		billing_base VARCHAR(32) NOT NULL DEFAULT 'purchase_cost',
		currency VARCHAR(3) NOT NULL DEFAULT 'EUR',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (start_date <= end_date)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_client_reference ON contracts (client_id, reference);`,
	`CREATE TABLE IF NOT EXISTS appendices (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		name VARCHAR(255) NOT NULL,
		code VARCHAR(64) NOT NULL,
		status lifecycle_status NOT NULL DEFAULT 'draft',
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (start_date <= end_date)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_appendix_contract_id ON appendices (contract_id);`,
	`CREATE TABLE IF NOT EXISTS contract_lines (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		appendix_id UUID NOT NULL REFERENCES appendices(id),
		product_id UUID NOT NULL REFERENCES products(id),
		status lifecycle_status NOT NULL DEFAULT 'draft',
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		serial_required BOOLEAN NOT NULL DEFAULT FALSE,
		serial_pattern TEXT,
		warranty_start_rule warranty_start_rule NOT NULL,
		warranty_months INT NOT NULL CHECK (warranty_months >= 0),
		proof_required BOOLEAN NOT NULL DEFAULT FALSE,
		allowed_countries TEXT NOT NULL DEFAULT '',
		allowed_channels TEXT NOT NULL DEFAULT '',
		allow_repair_station BOOLEAN NOT NULL DEFAULT FALSE,
		allow_parts_shipment BOOLEAN NOT NULL DEFAULT FALSE,
		allow_refund BOOLEAN NOT NULL DEFAULT FALSE,
		allow_replacement BOOLEAN NOT NULL DEFAULT FALSE,
		allow_paid_repair BOOLEAN NOT NULL DEFAULT FALSE,
		allow_parts_sale BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (start_date <= end_date)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_line_appendix_id ON contract_lines (appendix_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_line_active_product
		ON contract_lines (appendix_id, product_id) WHERE status = 'active';`,
	`CREATE TABLE IF NOT EXISTS kpi_expected (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		kpi_type VARCHAR(32) NOT NULL,
		date DATE NOT NULL,
		value INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_kpi_expected_day ON kpi_expected (contract_id, kpi_type, date);`,
	`CREATE TABLE IF NOT EXISTS kpi_actual (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		contract_id UUID NOT NULL REFERENCES contracts(id),
		kpi_type VARCHAR(32) NOT NULL,
		date DATE NOT NULL,
		value INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_kpi_actual_day ON kpi_actual (contract_id, kpi_type, date);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
