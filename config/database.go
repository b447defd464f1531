package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			email_verified BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS email_verifications (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			token VARCHAR(255) NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS clients (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			contact_name VARCHAR(255),
			email VARCHAR(255),
			phone VARCHAR(50),
			address TEXT,
			postal_code VARCHAR(20),
			city VARCHAR(255),
			notes TEXT,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS articles (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			unit_price_ht DOUBLE PRECISION NOT NULL DEFAULT 0,
			tva_rate DOUBLE PRECISION,
			options JSONB DEFAULT '[]',
			active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sales (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			client_id UUID REFERENCES clients(id) ON DELETE SET NULL,
			article_id UUID REFERENCES articles(id) ON DELETE SET NULL,
			invoice_number VARCHAR(50) NOT NULL,
			quantity DOUBLE PRECISION NOT NULL DEFAULT 1,
			unit_price_ht DOUBLE PRECISION NOT NULL DEFAULT 0,
			options JSONB DEFAULT '[]',
			tva_rate DOUBLE PRECISION NOT NULL DEFAULT 20,
			ca_ht DOUBLE PRECISION NOT NULL DEFAULT 0,
			tva_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_ttc DOUBLE PRECISION NOT NULL DEFAULT 0,
			year INTEGER NOT NULL,
			sale_date DATE NOT NULL DEFAULT CURRENT_DATE,
			status VARCHAR(50) DEFAULT 'issued',
			notes TEXT,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, invoice_number)
		)`,

		`CREATE TABLE IF NOT EXISTS quotes (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			client_id UUID REFERENCES clients(id) ON DELETE SET NULL,
			article_id UUID REFERENCES articles(id) ON DELETE SET NULL,
			quote_number VARCHAR(50) NOT NULL,
			quantity DOUBLE PRECISION NOT NULL DEFAULT 1,
			unit_price_ht DOUBLE PRECISION NOT NULL DEFAULT 0,
			options JSONB DEFAULT '[]',
			tva_rate DOUBLE PRECISION NOT NULL DEFAULT 20,
			ca_ht DOUBLE PRECISION NOT NULL DEFAULT 0,
			tva_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_ttc DOUBLE PRECISION NOT NULL DEFAULT 0,
			year INTEGER NOT NULL,
			quote_date DATE NOT NULL DEFAULT CURRENT_DATE,
			valid_until DATE,
			status VARCHAR(50) DEFAULT 'draft',
			notes TEXT,
			converted_sale_id UUID REFERENCES sales(id) ON DELETE SET NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, quote_number)
		)`,

		`CREATE TABLE IF NOT EXISTS charges (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			label VARCHAR(255) NOT NULL,
			category VARCHAR(100),
			vendor VARCHAR(255),
			description TEXT,
			payment_method VARCHAR(50),
			notes TEXT,
			article_id UUID REFERENCES articles(id) ON DELETE SET NULL,
			expense_date DATE NOT NULL,
			amount DOUBLE PRECISION,
			recurring BOOLEAN DEFAULT FALSE,
			recurring_type VARCHAR(20) DEFAULT 'none',
			year INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			company_name VARCHAR(255),
			siret VARCHAR(50),
			address TEXT,
			postal_code VARCHAR(20),
			city VARCHAR(255),
			default_tva_rate DOUBLE PRECISION DEFAULT 20,
			invoice_footer TEXT,
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_email_verifications_token ON email_verifications(token)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_user_id ON clients(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_user_id ON sales(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_user_year ON sales(user_id, year)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_user_id ON quotes(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_charges_user_id ON charges(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_charges_user_year ON charges(user_id, year)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
