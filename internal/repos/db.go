package repos

import (
	"fmt"
	"log"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"invadmin/internal/domain"
)

// OpenDB connects with driver ("sqlite" or "mysql") and ensures the schema.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	if driver == "sqlite" && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Statements run one at a time; the mysql driver rejects multi-statement Exec
// unless the DSN opts in.
var schema = []string{`
CREATE TABLE IF NOT EXISTS inventory(
  id             VARCHAR(36)  NOT NULL PRIMARY KEY,
  product_id     INTEGER      NOT NULL,
  cond           VARCHAR(16)  NOT NULL,
  product_name   VARCHAR(128) NOT NULL,
  quantity       INTEGER      NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  restock_level  INTEGER      NOT NULL DEFAULT 0 CHECK (restock_level >= 0),
  reorder_amount INTEGER      NOT NULL DEFAULT 0 CHECK (reorder_amount >= 0),
  created_at     VARCHAR(32),
  updated_at     VARCHAR(32),
  UNIQUE (product_id, cond)
)`,
}

func ensureSchema(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedIfEmpty inserts a few demo records into an empty inventory.
func SeedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM inventory`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo inventory")

	repo := NewInventoryRepo(db)
	demo := []domain.Record{
		{ProductID: "1001", Condition: domain.CondNew, ProductName: "Widget", Quantity: 25, RestockLevel: 10, ReorderAmount: 50},
		{ProductID: "1001", Condition: domain.CondUsed, ProductName: "Widget", Quantity: 3, RestockLevel: 0, ReorderAmount: 0},
		{ProductID: "1002", Condition: domain.CondNew, ProductName: "Gadget", Quantity: 8, RestockLevel: 5, ReorderAmount: 20},
		{ProductID: "1003", Condition: domain.CondOpenBox, ProductName: "Sprocket", Quantity: 1, RestockLevel: 0, ReorderAmount: 0},
	}
	for i := range demo {
		if err := repo.Create(&demo[i]); err != nil {
			return err
		}
	}
	return nil
}
