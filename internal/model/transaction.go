package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date with no time component. It marshals as
// "YYYY-MM-DD", which is what the expense API expects and returns.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Some servers send full timestamps; only the date part matters here.
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = Date{t}
	return nil
}

// Transaction is a single dated monetary movement. The ID is assigned by the
// server and absent until creation.
type Transaction struct {
	ID          int64        `json:"id,omitempty"`
	CategoryID  int64        `json:"categoryId"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
	Date        Date         `json:"date"`
	Type        CategoryType `json:"type"`
}

// ValidationError is a field-level input error raised before any network
// call. The message is shown to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the transaction against the known category set. It is run
// before submission; a non-nil result means no request may be sent.
func (t *Transaction) Validate(categories []Category) error {
	if t.CategoryID == 0 {
		return &ValidationError{Field: "category", Message: "Please select a category"}
	}
	var cat *Category
	for i := range categories {
		if categories[i].ID == t.CategoryID {
			cat = &categories[i]
			break
		}
	}
	if cat == nil {
		return &ValidationError{Field: "category", Message: "Unknown category"}
	}
	if t.Amount <= 0 {
		return &ValidationError{Field: "amount", Message: "Amount must be greater than 0"}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "Date is required"}
	}
	if !t.Type.Valid() {
		return &ValidationError{Field: "type", Message: "Transaction type is required"}
	}
	if cat.Type != t.Type {
		return &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("Category %q is not an %s category", cat.Name, strings.ToLower(string(t.Type))),
		}
	}
	return nil
}
