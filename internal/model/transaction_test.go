package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCategories = []Category{
	{ID: 1, Name: "Salary", Type: TypeIncome},
	{ID: 2, Name: "Food", Type: TypeExpense},
}

func validTransaction() Transaction {
	return Transaction{
		CategoryID:  2,
		Amount:      250,
		Description: "weekly shop",
		Date:        NewDate(time.Date(2024, time.January, 10, 15, 30, 0, 0, time.UTC)),
		Type:        TypeExpense,
	}
}

func TestTransactionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		txn := validTransaction()
		assert.NoError(t, txn.Validate(testCategories))
	})

	t.Run("missing category", func(t *testing.T) {
		txn := validTransaction()
		txn.CategoryID = 0
		err := txn.Validate(testCategories)
		require.Error(t, err)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "category", vErr.Field)
	})

	t.Run("unknown category", func(t *testing.T) {
		txn := validTransaction()
		txn.CategoryID = 99
		err := txn.Validate(testCategories)
		require.Error(t, err)
		assert.Equal(t, "Unknown category", err.Error())
	})

	t.Run("zero amount", func(t *testing.T) {
		txn := validTransaction()
		txn.Amount = 0
		err := txn.Validate(testCategories)
		require.Error(t, err)
		assert.Equal(t, "Amount must be greater than 0", err.Error())
	})

	t.Run("negative amount", func(t *testing.T) {
		txn := validTransaction()
		txn.Amount = -10
		err := txn.Validate(testCategories)
		require.Error(t, err)
		assert.Equal(t, "Amount must be greater than 0", err.Error())
	})

	t.Run("missing date", func(t *testing.T) {
		txn := validTransaction()
		txn.Date = Date{}
		err := txn.Validate(testCategories)
		require.Error(t, err)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "date", vErr.Field)
	})

	t.Run("missing type", func(t *testing.T) {
		txn := validTransaction()
		txn.Type = ""
		err := txn.Validate(testCategories)
		require.Error(t, err)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "type", vErr.Field)
	})

	t.Run("type does not match category", func(t *testing.T) {
		txn := validTransaction()
		txn.Type = TypeIncome // category 2 is an expense bucket
		err := txn.Validate(testCategories)
		require.Error(t, err)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "category", vErr.Field)
	})
}

func TestDateJSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		d := NewDate(time.Date(2024, time.January, 5, 23, 59, 0, 0, time.UTC))
		data, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2024-01-05"`, string(data))
	})

	t.Run("unmarshal plain date", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2024-01-05"`), &d))
		assert.Equal(t, "2024-01-05", d.String())
	})

	t.Run("unmarshal timestamp", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2024-01-05T00:00:00Z"`), &d))
		assert.Equal(t, "2024-01-05", d.String())
	})

	t.Run("unmarshal null and empty", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
		require.NoError(t, json.Unmarshal([]byte(`""`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("unmarshal garbage", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"05/01/2024"`), &d))
	})
}
