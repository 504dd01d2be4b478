package planner

import (
	"strconv"
	"time"

	"argos-engine/internal/ledger"
	"argos-engine/internal/models"
)

type columnKind int

const (
	kindString columnKind = iota
	kindNumber
	kindDate
)

func (k columnKind) String() string {
	switch k {
	case kindNumber:
		return "number"
	case kindDate:
		return "date"
	default:
		return "string"
	}
}

type column struct {
	name     string
	kind     columnKind
	derived  bool
	describe string
}

const (
	colMonth     = "month"
	colYearMonth = "year_month"
	colYear      = "year"
	colWeekday   = "weekday"
)

var derivedColumns = []column{
	{name: colMonth, kind: kindString, derived: true, describe: `calendar month name of date, e.g. "January"`},
	{name: colYearMonth, kind: kindString, derived: true, describe: `year and month of date as "YYYY-MM"`},
	{name: colYear, kind: kindString, derived: true, describe: `year of date as "YYYY"`},
	{name: colWeekday, kind: kindString, derived: true, describe: `day of week of date, e.g. "Monday"`},
}

var canonicalDescriptions = map[string]string{
	ledger.ColumnID:            "transaction identifier",
	ledger.ColumnDate:          `calendar date, compare with "YYYY-MM-DD"`,
	ledger.ColumnMerchant:      "merchant name",
	ledger.ColumnCategory:      "spending category",
	ledger.ColumnAmount:        "amount spent, positive numbers",
	ledger.ColumnCurrency:      "ISO currency code",
	ledger.ColumnBankName:      "bank the payment went through, may be empty",
	ledger.ColumnSource:        "where the record came from, may be empty",
	ledger.ColumnPaymentMethod: "UPI, card type and so on, may be empty",
}

func kindOf(t ledger.ColumnType) columnKind {
	switch t {
	case ledger.TypeFloat:
		return kindNumber
	case ledger.TypeDate:
		return kindDate
	default:
		return kindString
	}
}

// columns lists every column a plan may reference, canonical ones first.
func columns() []column {
	schema := ledger.Schema()
	out := make([]column, 0, len(schema)+len(derivedColumns))
	for _, c := range schema {
		out = append(out, column{name: c.Name, kind: kindOf(c.Type), describe: canonicalDescriptions[c.Name]})
	}
	return append(out, derivedColumns...)
}

func lookupColumn(name string) (column, bool) {
	if c, ok := ledger.LookupColumn(name); ok {
		return column{name: c.Name, kind: kindOf(c.Type)}, true
	}
	for _, c := range derivedColumns {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// textValue renders any column of a row as text. Dates use YYYY-MM-DD.
func textValue(tx models.Transaction, name string) string {
	switch name {
	case ledger.ColumnDate:
		return tx.Date.Format(time.DateOnly)
	case ledger.ColumnAmount:
		return strconv.FormatFloat(tx.Amount, 'f', -1, 64)
	case colMonth:
		return tx.Date.Month().String()
	case colYearMonth:
		return tx.Date.Format("2006-01")
	case colYear:
		return strconv.Itoa(tx.Date.Year())
	case colWeekday:
		return tx.Date.Weekday().String()
	}
	return ledger.StringValue(tx, name)
}
