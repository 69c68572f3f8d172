package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT,
		wallet_address TEXT,
		password_hash TEXT,
		role TEXT,
		is_pro BOOLEAN DEFAULT 0,
		pro_expires_at DATETIME,
		email_verified BOOLEAN DEFAULT 0,
		icann_verified BOOLEAN DEFAULT 0,
		kyc_verified BOOLEAN DEFAULT 0,
		budget_min REAL,
		budget_max REAL,
		preferred_suffixes TEXT DEFAULT '[]',
		communication_style TEXT,
		last_active_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createDomainTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE domains (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		suffix TEXT NOT NULL,
		type TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		verification_status TEXT NOT NULL DEFAULT 'PENDING',
		existing_site_url TEXT,
		seo_metrics TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createListingTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE listings (
		id TEXT PRIMARY KEY,
		domain_id TEXT NOT NULL,
		lessor_id TEXT NOT NULL,
		price_amount REAL NOT NULL,
		price_currency TEXT NOT NULL DEFAULT 'USD',
		duration_days INTEGER NOT NULL,
		lease_type TEXT NOT NULL DEFAULT 'FIXED',
		status TEXT NOT NULL,
		nft_contract TEXT,
		nft_token_id TEXT,
		unbind_pending BOOLEAN NOT NULL DEFAULT 0,
		view_count INTEGER NOT NULL DEFAULT 0,
		tags TEXT DEFAULT '[]',
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX idx_listings_domain_live ON listings(domain_id) WHERE status IN ('ACTIVE','LEASED');`)
}

func createLeaseTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE leases (
		id TEXT PRIMARY KEY,
		listing_id TEXT NOT NULL,
		lessee_id TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		payment_amount REAL NOT NULL,
		payment_currency TEXT NOT NULL DEFAULT 'USD',
		status TEXT NOT NULL,
		nft_transferred_at DATETIME,
		escrow_tx_ref TEXT,
		auto_renew BOOLEAN NOT NULL DEFAULT 0,
		termination_reason TEXT,
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		lease_id TEXT,
		type TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		status TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createInteractionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE interaction_histories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		domain_id TEXT,
		listing_id TEXT,
		action TEXT NOT NULL,
		metadata TEXT DEFAULT '{}',
		created_at DATETIME
	);`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createDomainTable(t, db)
	createListingTable(t, db)
	createLeaseTable(t, db)
	createTransactionTable(t, db)
	createInteractionTable(t, db)
}
