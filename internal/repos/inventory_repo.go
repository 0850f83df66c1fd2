package repos

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invadmin/internal/domain"
)

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Filter narrows List. Empty fields match everything.
type Filter struct {
	ProductName string
	Condition   string
}

const selectCols = `
  SELECT
    id, product_id, cond, product_name, quantity, restock_level, reorder_amount,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at
  FROM inventory`

// List returns records matching f ordered by product id then condition.
func (r *InventoryRepo) List(f Filter) ([]domain.Record, error) {
	where := ` WHERE 1 = 1`
	args := []any{}
	if f.ProductName != "" {
		where += ` AND product_name = ?`
		args = append(args, f.ProductName)
	}
	if f.Condition != "" {
		where += ` AND cond = ?`
		args = append(args, f.Condition)
	}

	out := []domain.Record{}
	err := r.db.Select(&out, selectCols+where+` ORDER BY product_id, cond`, args...)
	return out, err
}

// ByProduct returns every condition variant of productID.
func (r *InventoryRepo) ByProduct(productID int) ([]domain.Record, error) {
	out := []domain.Record{}
	err := r.db.Select(&out, selectCols+` WHERE product_id = ? ORDER BY cond`, productID)
	return out, err
}

// Get returns sql.ErrNoRows when (productID, cond) does not exist.
func (r *InventoryRepo) Get(productID int, cond string) (domain.Record, error) {
	var rec domain.Record
	err := r.db.Get(&rec, selectCols+` WHERE product_id = ? AND cond = ?`, productID, cond)
	return rec, err
}

// Create assigns rec an id and inserts it.
func (r *InventoryRepo) Create(rec *domain.Record) error {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	rec.UpdatedAt = ""
	_, err := r.db.NamedExec(`
		INSERT INTO inventory(id, product_id, cond, product_name, quantity, restock_level, reorder_amount, created_at)
		VALUES (:id, :product_id, :cond, :product_name, :quantity, :restock_level, :reorder_amount, :created_at)
	`, rec)
	return err
}

// Save writes the mutable columns of an existing record.
func (r *InventoryRepo) Save(rec *domain.Record) error {
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.NamedExec(`
		UPDATE inventory
		SET product_name = :product_name, quantity = :quantity,
		    restock_level = :restock_level, reorder_amount = :reorder_amount,
		    updated_at = :updated_at
		WHERE id = :id
	`, rec)
	return err
}

// DeleteByProduct removes all variants and reports how many went.
func (r *InventoryRepo) DeleteByProduct(productID int) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM inventory WHERE product_id = ?`, productID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
