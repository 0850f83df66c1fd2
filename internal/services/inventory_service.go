package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"invadmin/internal/domain"
	applog "invadmin/internal/log"
	"invadmin/internal/repos"
	"invadmin/internal/validate"
)

type Kind int

const (
	KindInvalid Kind = iota + 1
	KindNotFound
	KindConflict
	KindForbidden
)

// Error carries a message meant for API callers.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func invalid(format string, a ...any) error { return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, a...)} }
func notFound(format string, a ...any) error { return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, a...)} }

// KindOf returns the Kind of err, or 0 for infrastructure errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// Adjustment selects how a quantity change is applied.
type Adjustment string

const (
	AdjustIncrease Adjustment = "inc"
	AdjustDecrease Adjustment = "dec"
	AdjustSet      Adjustment = "update"
)

var errConditionNotValid = &Error{Kind: KindInvalid, Msg: "'condition' not valid"}

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// List returns all records, optionally filtered by name and/or condition.
func (s *InventoryService) List(name, cond string) ([]domain.Record, error) {
	name = strings.TrimSpace(name)
	cond = strings.TrimSpace(cond)
	if cond != "" {
		if _, ok := validate.Condition(cond); !ok {
			return nil, errConditionNotValid
		}
	}
	return s.Inv.List(repos.Filter{ProductName: name, Condition: cond})
}

// Variants returns every condition of productID; at least one must exist.
func (s *InventoryService) Variants(productID int) ([]domain.Record, error) {
	recs, err := s.Inv.ByProduct(productID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, notFound("Product with id '%d' was not found.", productID)
	}
	return recs, nil
}

func (s *InventoryService) Get(productID int, cond string) (domain.Record, error) {
	cond, ok := validate.Condition(cond)
	if !ok {
		return domain.Record{}, errConditionNotValid
	}
	rec, err := s.Inv.Get(productID, cond)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, notFound("Product with id '%d' was not found.", productID)
	}
	return rec, err
}

// Create inserts a new record; (product_id, condition) must be unused.
func (s *InventoryService) Create(in domain.RecordInput) (domain.Record, error) {
	rec, err := fromInput(in)
	if err != nil {
		return domain.Record{}, err
	}
	pid, _ := rec.ProductID.Int()
	if _, err := s.Inv.Get(pid, rec.Condition); err == nil {
		return domain.Record{}, &Error{Kind: KindConflict, Msg: fmt.Sprintf("product %d with condition %s already exists", pid, rec.Condition)}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, err
	}
	if err := s.Inv.Create(&rec); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// Update replaces the counters of (productID, cond). Name and id in the body
// must match the stored record.
func (s *InventoryService) Update(productID int, cond string, in domain.RecordInput) (domain.Record, error) {
	cond, ok := validate.Condition(cond)
	if !ok {
		return domain.Record{}, errConditionNotValid
	}
	cur, err := s.Inv.Get(productID, cond)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, notFound("Product %d with condition %s was not found", productID, cond)
	}
	if err != nil {
		return domain.Record{}, err
	}

	next, err := fromInput(in)
	if err != nil {
		return domain.Record{}, err
	}
	if next.ProductName != cur.ProductName {
		return domain.Record{}, invalid("Product Name Conflict")
	}
	if next.ProductID != cur.ProductID {
		return domain.Record{}, invalid("Product ID Conflict")
	}
	if in.Condition != nil && strings.TrimSpace(*in.Condition) != "" && next.Condition != cur.Condition {
		return domain.Record{}, invalid("Condition Conflict")
	}

	cur.Quantity = next.Quantity
	cur.RestockLevel = next.RestockLevel
	cur.ReorderAmount = next.ReorderAmount
	restock(&cur)
	if err := s.Inv.Save(&cur); err != nil {
		return domain.Record{}, err
	}
	return cur, nil
}

// Delete removes every condition variant of productID.
func (s *InventoryService) Delete(productID int) error {
	n, err := s.Inv.DeleteByProduct(productID)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("Product with id '%d' was not found.", productID)
	}
	return nil
}

// Adjust applies op with the raw condition and value query parameters.
func (s *InventoryService) Adjust(productID int, op Adjustment, cond, value string) (domain.Record, error) {
	if strings.TrimSpace(cond) == "" || strings.TrimSpace(value) == "" {
		return domain.Record{}, invalid("Value 'condition' and 'value' should be provided")
	}
	v, ok := validate.Count(value)
	if !ok {
		if _, err := strconv.Atoi(strings.TrimSpace(value)); err != nil {
			return domain.Record{}, invalid("'value' not an integer")
		}
		return domain.Record{}, invalid("'value' should be non-negative")
	}
	cond, ok = validate.Condition(cond)
	if !ok {
		return domain.Record{}, errConditionNotValid
	}
	rec, err := s.Inv.Get(productID, cond)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, notFound("Product %d with condition %s was not found", productID, cond)
	}
	if err != nil {
		return domain.Record{}, err
	}

	switch op {
	case AdjustIncrease:
		if v > math.MaxInt-rec.Quantity {
			return domain.Record{}, invalid("'value' too large")
		}
		rec.Quantity += v
	case AdjustDecrease:
		if v > rec.Quantity {
			return domain.Record{}, &Error{Kind: KindForbidden, Msg: "Inventory decreased to negative prohibited."}
		}
		rec.Quantity -= v
	case AdjustSet:
		rec.Quantity = v
	default:
		return domain.Record{}, invalid("unknown adjustment %q", op)
	}
	restock(&rec)
	if err := s.Inv.Save(&rec); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// restock tops up new stock that fell below its restock level.
func restock(rec *domain.Record) {
	if rec.Condition == domain.CondNew && rec.Quantity < rec.RestockLevel {
		rec.Quantity += rec.ReorderAmount
		applog.Info(nil, "inventory.restock", map[string]any{
			"product": rec.ProductID.String(), "condition": rec.Condition, "added": rec.ReorderAmount,
		})
	}
}

func fromInput(in domain.RecordInput) (domain.Record, error) {
	switch {
	case in.ProductID == nil:
		return domain.Record{}, invalid("Invalid Product: missing product_id")
	case in.ProductName == nil:
		return domain.Record{}, invalid("Invalid Product: missing product_name")
	case in.Quantity == nil:
		return domain.Record{}, invalid("Invalid Product: missing quantity")
	case in.RestockLevel == nil:
		return domain.Record{}, invalid("Invalid Product: missing restock_level")
	case in.ReorderAmount == nil:
		return domain.Record{}, invalid("Invalid Product: missing reorder_amount")
	}

	cond := domain.CondUnknown
	if in.Condition != nil && strings.TrimSpace(*in.Condition) != "" {
		c, ok := validate.Condition(*in.Condition)
		if !ok {
			return domain.Record{}, errConditionNotValid
		}
		cond = c
	}
	name, ok := validate.ProductName(*in.ProductName)
	if !ok {
		return domain.Record{}, invalid("Invalid Product: bad product_name")
	}
	if *in.ProductID < 0 {
		return domain.Record{}, invalid("Invalid Product: product_id must be non-negative")
	}
	counters := []struct {
		field string
		v     domain.FlexInt
	}{
		{"quantity", *in.Quantity},
		{"restock_level", *in.RestockLevel},
		{"reorder_amount", *in.ReorderAmount},
	}
	for _, c := range counters {
		if c.v < 0 {
			return domain.Record{}, invalid("Invalid Product: %s must be non-negative", c.field)
		}
	}

	return domain.Record{
		ProductID:     domain.ProductKey(strconv.Itoa(int(*in.ProductID))),
		Condition:     cond,
		ProductName:   name,
		Quantity:      int(*in.Quantity),
		RestockLevel:  int(*in.RestockLevel),
		ReorderAmount: int(*in.ReorderAmount),
	}, nil
}
