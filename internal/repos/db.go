package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (categories/offers)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories (leaf slugs; kind mapping is static code, see domain.KindForCategory)
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Users (buyers, sellers and admins; sellers carry a shipping profile)
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  phone TEXT NOT NULL DEFAULT '',
  sender_id TEXT NOT NULL DEFAULT '',
  street TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Offers: one seller listing, two independent status axes
CREATE TABLE IF NOT EXISTS offers(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  title TEXT NOT NULL,
  description TEXT,
  condition TEXT NOT NULL CHECK (condition IN ('NEW','LIKE_NEW','GOOD','FAIR','POOR')),
  price NUMERIC NOT NULL CHECK (price >= 0),
  currency TEXT NOT NULL DEFAULT 'EUR',
  stock INTEGER NOT NULL DEFAULT 1 CHECK (stock >= 0),
  weight_grams INTEGER NOT NULL DEFAULT 0,
  images_json TEXT,
  listing_status TEXT NOT NULL DEFAULT 'active'
    CHECK (listing_status IN ('pending_approval','active','inactive','rejected','sold')),
  transaction_status TEXT NOT NULL DEFAULT 'available'
    CHECK (transaction_status IN ('available','reserved','pending_shipment','shipped','delivered','cancelled','sold')),
  sold_to TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_offers_category ON offers(category_id);
CREATE INDEX IF NOT EXISTS idx_offers_seller   ON offers(seller_id);
CREATE INDEX IF NOT EXISTS idx_offers_title    ON offers(LOWER(title));
CREATE INDEX IF NOT EXISTS idx_offers_tx       ON offers(transaction_status);

-- Shipment metadata: at most one row per offer, kept (voided) after
-- cancellation for audit
CREATE TABLE IF NOT EXISTS shipments(
  offer_id TEXT PRIMARY KEY REFERENCES offers(id) ON DELETE RESTRICT,
  tracking_number TEXT NOT NULL,
  label_id TEXT NOT NULL DEFAULT '',
  service_point_id TEXT NOT NULL DEFAULT '',
  voided INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Carts: one live cart per session
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id  TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  offer_id TEXT NOT NULL REFERENCES offers(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price_at_add NUMERIC NOT NULL,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, offer_id)
);

-- Favorites (saved offers)
CREATE TABLE IF NOT EXISTS favorites(
  session_id TEXT NOT NULL,
  offer_id   TEXT NOT NULL REFERENCES offers(id) ON DELETE RESTRICT,
  created_at TEXT,
  PRIMARY KEY (session_id, offer_id)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/offers")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('game-consoles','Game Consoles'),
	  ('sneakers','Sneakers'),
	  ('audio','Audio'),
	  ('books-fiction','Fiction Books')`)

	tx.MustExec(`INSERT INTO users(id,email,name,password_hash,role,phone,sender_id,street,city,postal_code,country)
	  VALUES('u-seed-seller','seller@reloved.test','Seed Seller','*','USER','+31600000000','snd_seed_1','Keizersgracht 1','Amsterdam','1015 CS','NL')`)

	tx.MustExec(`INSERT INTO offers(id,seller_id,category_id,title,description,condition,price,currency,weight_grams,images_json) VALUES
	  ('off-gbc-001','u-seed-seller','game-consoles','Game Boy Color','Working handheld, some scratches','GOOD',59.99,'EUR',250,'["offers/off-gbc-001/main.jpg"]'),
	  ('off-snes-001','u-seed-seller','game-consoles','SNES Console','Tested and cleaned, one controller','LIKE_NEW',199.00,'EUR',1600,'["offers/off-snes-001/main.jpg"]'),
	  ('off-aj1-001','u-seed-seller','sneakers','Air Jordan 1 Mid, size 43','Light wear on soles','FAIR',95.00,'EUR',900,'["offers/off-aj1-001/main.jpg"]')`)

	return tx.Commit()
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-alice", "alice@reloved.test", "Alice", "USER", "Passw0rd!"),
		mk("u-bob", "bob@reloved.test", "Bob", "USER", "Passw0rd!"),
		mk("u-admin", "admin@reloved.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
