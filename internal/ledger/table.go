package ledger

import (
	"time"

	"argos-engine/internal/models"
)

type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeDate   ColumnType = "date"
	TypeFloat  ColumnType = "float"
)

type Column struct {
	Name string
	Type ColumnType
}

// Canonical column names, in table order.
const (
	ColumnID            = "id"
	ColumnDate          = "date"
	ColumnMerchant      = "merchant"
	ColumnCategory      = "category"
	ColumnAmount        = "amount"
	ColumnCurrency      = "currency"
	ColumnBankName      = "bank_name"
	ColumnSource        = "source"
	ColumnPaymentMethod = "payment_method"
)

var schema = []Column{
	{Name: ColumnID, Type: TypeString},
	{Name: ColumnDate, Type: TypeDate},
	{Name: ColumnMerchant, Type: TypeString},
	{Name: ColumnCategory, Type: TypeString},
	{Name: ColumnAmount, Type: TypeFloat},
	{Name: ColumnCurrency, Type: TypeString},
	{Name: ColumnBankName, Type: TypeString},
	{Name: ColumnSource, Type: TypeString},
	{Name: ColumnPaymentMethod, Type: TypeString},
}

// Schema returns the canonical columns in their fixed order.
func Schema() []Column {
	out := make([]Column, len(schema))
	copy(out, schema)
	return out
}

// LookupColumn returns the canonical column with the given name.
func LookupColumn(name string) (Column, bool) {
	for _, c := range schema {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Table is an immutable snapshot of normalized transactions. A nil *Table
// behaves like an empty one.
type Table struct {
	rows     []models.Transaction
	loadedAt time.Time
}

// EmptyTable returns a table carrying the full schema and zero rows.
func EmptyTable() *Table {
	return &Table{rows: []models.Transaction{}, loadedAt: time.Now()}
}

// NewTable copies rows into a new table.
func NewTable(rows []models.Transaction) *Table {
	cp := make([]models.Transaction, len(rows))
	copy(cp, rows)
	return &Table{rows: cp, loadedAt: time.Now()}
}

func (t *Table) Columns() []Column {
	return Schema()
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

func (t *Table) Row(i int) models.Transaction {
	return t.rows[i]
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []models.Transaction {
	if t == nil {
		return []models.Transaction{}
	}
	cp := make([]models.Transaction, len(t.rows))
	copy(cp, t.rows)
	return cp
}

func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}

// Total sums amount over every row.
func (t *Table) Total() float64 {
	var total float64
	for i := 0; i < t.Len(); i++ {
		total += t.rows[i].Amount
	}
	return total
}

// Distinct returns the distinct non-empty values of a string column in
// first-occurrence order.
func (t *Table) Distinct(column string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := 0; i < t.Len(); i++ {
		v := StringValue(t.rows[i], column)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// StringValue reads a string column of a row. Unknown or non-string columns yield "".
func StringValue(tx models.Transaction, column string) string {
	switch column {
	case ColumnID:
		return tx.ID
	case ColumnMerchant:
		return tx.Merchant
	case ColumnCategory:
		return tx.Category
	case ColumnCurrency:
		return tx.Currency
	case ColumnBankName:
		return tx.BankName
	case ColumnSource:
		return tx.Source
	case ColumnPaymentMethod:
		return tx.PaymentMethod
	}
	return ""
}
