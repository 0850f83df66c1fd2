package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Conditions known to the inventory service.
const (
	CondNew     = "NEW"
	CondOpenBox = "OPEN_BOX"
	CondUsed    = "USED"
	CondUnknown = "UNKNOWN"
)

var Conditions = []string{CondNew, CondOpenBox, CondUsed, CondUnknown}

// ProductKey is a product identifier. The service only issues integers, but
// clients must tolerate any JSON scalar.
type ProductKey string

func (k ProductKey) String() string { return string(k) }

// Int reports the key as an integer when it is one.
func (k ProductKey) Int() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(k)))
	return n, err == nil
}

func (k ProductKey) MarshalJSON() ([]byte, error) {
	if n, ok := k.Int(); ok {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(k))
}

func (k *ProductKey) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*k = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*k = ProductKey(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("product_id: %w", err)
	}
	*k = ProductKey(num.String())
	return nil
}

func (k *ProductKey) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*k = ""
	case int64:
		*k = ProductKey(strconv.FormatInt(v, 10))
	case []byte:
		*k = ProductKey(v)
	case string:
		*k = ProductKey(v)
	default:
		return fmt.Errorf("product_id: unsupported type %T", src)
	}
	return nil
}

func (k ProductKey) Value() (driver.Value, error) {
	if n, ok := k.Int(); ok {
		return int64(n), nil
	}
	return string(k), nil
}

// Record is one inventory entry, identified by (ProductID, Condition).
type Record struct {
	ID            string     `db:"id" json:"id,omitempty"`
	ProductID     ProductKey `db:"product_id" json:"product_id"`
	Condition     string     `db:"cond" json:"condition"`
	ProductName   string     `db:"product_name" json:"product_name"`
	Quantity      int        `db:"quantity" json:"quantity"`
	RestockLevel  int        `db:"restock_level" json:"restock_level"`
	ReorderAmount int        `db:"reorder_amount" json:"reorder_amount"`
	CreatedAt     string     `db:"created_at" json:"-"`
	UpdatedAt     string     `db:"updated_at" json:"-"`
}

// FlexInt decodes a JSON number or a JSON string holding an integer.
// HTML forms submit every field as text.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%q is not an integer", s)
	}
	*n = FlexInt(v)
	return nil
}

// RecordInput is a create/update body as received by the service.
// Nil means the key was absent.
type RecordInput struct {
	ProductID     *FlexInt `json:"product_id"`
	ProductName   *string  `json:"product_name"`
	Quantity      *FlexInt `json:"quantity"`
	Condition     *string  `json:"condition"`
	RestockLevel  *FlexInt `json:"restock_level"`
	ReorderAmount *FlexInt `json:"reorder_amount"`
}

// Fields mirrors the console form inputs exactly as typed.
type Fields struct {
	ProductID     string `json:"product_id" form:"product_id"`
	ProductName   string `json:"product_name" form:"product_name"`
	Quantity      string `json:"quantity" form:"quantity"`
	Condition     string `json:"condition" form:"condition"`
	RestockLevel  string `json:"restock_level" form:"restock_level"`
	ReorderAmount string `json:"reorder_amount" form:"reorder_amount"`
	ChangeValue   string `json:"-" form:"change_value"`
}

// FieldsFromRecord renders r into form text. ChangeValue is left empty.
func FieldsFromRecord(r Record) Fields {
	return Fields{
		ProductID:     r.ProductID.String(),
		ProductName:   r.ProductName,
		Quantity:      strconv.Itoa(r.Quantity),
		Condition:     r.Condition,
		RestockLevel:  strconv.Itoa(r.RestockLevel),
		ReorderAmount: strconv.Itoa(r.ReorderAmount),
	}
}

type SearchShape int

const (
	ShapeMany SearchShape = iota
	ShapeSingle
)

// SearchResult holds either one record or a list, as returned by the API.
type SearchResult struct {
	Shape  SearchShape
	Single Record
	Many   []Record
}

func SingleResult(r Record) SearchResult { return SearchResult{Shape: ShapeSingle, Single: r} }
func ManyResult(rs []Record) SearchResult { return SearchResult{Shape: ShapeMany, Many: rs} }

// Rows flattens the result in response order.
func (s SearchResult) Rows() []Record {
	switch s.Shape {
	case ShapeSingle:
		return []Record{s.Single}
	case ShapeMany:
		return s.Many
	default:
		return nil
	}
}

// FormState is everything the console page shows.
type FormState struct {
	Fields   Fields
	Snapshot *Record
	Flash    string
	Results  *SearchResult
}

// Populate replaces the form with r and remembers it as the last fetch.
func (s *FormState) Populate(r Record) {
	change := s.Fields.ChangeValue
	s.Fields = FieldsFromRecord(r)
	s.Fields.ChangeValue = change
	snap := r
	s.Snapshot = &snap
}

// ClearRecord blanks the six record fields.
func (s *FormState) ClearRecord() {
	change := s.Fields.ChangeValue
	s.Fields = Fields{ChangeValue: change}
	s.Snapshot = nil
}
