package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbhishekS200607/easyfin/internal/model"
)

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]model.Category{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Categories(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoBearerHeaderOnLogin(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(LoginResponse{Token: "tok", User: model.User{Username: "sam"}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Login(context.Background(), "sam", "secret")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "sam", resp.User.Username)
}

func TestErrorBodyExtraction(t *testing.T) {
	t.Run("error field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Category name already exists"}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL).CreateCategory(context.Background(), "tok", "Food", model.TypeExpense)
		require.Error(t, err)
		assert.Equal(t, "Category name already exists", Message(err, "fallback"))
	})

	t.Run("message field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"database unavailable"}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL).Summary(context.Background(), "tok")
		require.Error(t, err)
		assert.Equal(t, "database unavailable", Message(err, "fallback"))
	})

	t.Run("error field wins over message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"first","message":"second"}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL).Transactions(context.Background(), "tok")
		require.Error(t, err)
		assert.Equal(t, "first", Message(err, "fallback"))
	})

	t.Run("no body falls back", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewClient(server.URL).Transactions(context.Background(), "tok")
		require.Error(t, err)
		assert.Equal(t, "Failed to load transactions", Message(err, "Failed to load transactions"))
	})

	t.Run("non-json body falls back", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`<html>gateway error</html>`))
		}))
		defer server.Close()

		err := NewClient(server.URL).DeleteTransaction(context.Background(), "tok", 7)
		require.Error(t, err)
		assert.Equal(t, "fallback", Message(err, "fallback"))
	})
}

func TestUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Categories(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestCreateTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2024-01-10", payload["date"])
		assert.Equal(t, "INCOME", payload["type"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":42,"categoryId":1,"amount":5000,"description":"Monthly salary - January 2024","date":"2024-01-10","type":"INCOME"}`))
	}))
	defer server.Close()

	var txn model.Transaction
	require.NoError(t, json.Unmarshal(
		[]byte(`{"categoryId":1,"amount":5000,"description":"Monthly salary - January 2024","date":"2024-01-10","type":"INCOME"}`),
		&txn))

	created, err := NewClient(server.URL).CreateTransaction(context.Background(), "tok", &txn)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, model.TypeIncome, created.Type)
}

func TestUpdateAndDeletePaths(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		if r.Method == http.MethodPut {
			w.Write([]byte(`{"id":7,"categoryId":2,"amount":300,"date":"2024-01-11","type":"EXPENSE"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	txn := &model.Transaction{CategoryID: 2, Amount: 300, Type: model.TypeExpense}

	_, err := client.UpdateTransaction(context.Background(), "tok", 7, txn)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/transactions/7", gotPath)

	require.NoError(t, client.DeleteTransaction(context.Background(), "tok", 7))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/transactions/7", gotPath)
}
