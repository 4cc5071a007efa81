package models

import (
	"encoding/json"
	"fmt"
)

// ItemID is an item identifier. Clients send it as either a JSON string or a
// JSON number; it is normalized to a string so path segment comparisons work
// the same for both encodings.
type ItemID string

// UnmarshalJSON accepts a string or number token
func (id *ItemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ItemID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or a number")
	}
	*id = ItemID(n.String())
	return nil
}

// Item represents a single line item on an invoice
type Item struct {
	ID           ItemID  `json:"id" db:"item_id" validate:"required"`
	Particulars  string  `json:"particulars" db:"particulars" validate:"required"`
	ProjectClass string  `json:"project_class" db:"project_class" validate:"required"`
	Account      string  `json:"account" db:"account" validate:"required"`
	Vatable      bool    `json:"vatable" db:"vatable"`
	Amount       float64 `json:"amount" db:"amount"`
}

// Validate validates the item data
func (it *Item) Validate() error {
	if err := ValidateRequired(string(it.ID), "id"); err != nil {
		return err
	}

	if err := ValidateRequired(it.Particulars, "particulars"); err != nil {
		return err
	}

	if err := ValidateRequired(it.ProjectClass, "project_class"); err != nil {
		return err
	}

	if err := ValidateRequired(it.Account, "account"); err != nil {
		return err
	}

	if err := ValidatePositiveNumber(it.Amount, "amount"); err != nil {
		return err
	}

	return nil
}
