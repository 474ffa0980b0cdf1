package service

import (
	"context"

	"github.com/AbhishekS200607/easyfin/internal/model"
)

// CategorySet holds the full category list as returned by the API and
// derives type- and search-filtered views from it. Filtered views are
// always recomputed from the full set, never mutated in place.
type CategorySet struct {
	all []model.Category
}

func NewCategorySet(all []model.Category) *CategorySet {
	return &CategorySet{all: all}
}

// All returns the unfiltered set.
func (s *CategorySet) All() []model.Category {
	return s.all
}

func (s *CategorySet) Len() int {
	return len(s.all)
}

// Filter returns the render-ready subset for a type and search text.
func (s *CategorySet) Filter(ctype model.CategoryType, search string) []model.Category {
	return model.FilterCategories(s.all, ctype, search)
}

// ByID looks a category up in the full set, nil when unknown.
func (s *CategorySet) ByID(id int64) *model.Category {
	for i := range s.all {
		if s.all[i].ID == id {
			return &s.all[i]
		}
	}
	return nil
}

// LoadCategories fetches the current category set from the API.
func (t *Tracker) LoadCategories(ctx context.Context, chatID int64) (*CategorySet, error) {
	token, err := t.token(chatID)
	if err != nil {
		return nil, err
	}
	categories, err := t.api.Categories(ctx, token)
	if err != nil {
		return nil, err
	}
	return NewCategorySet(categories), nil
}

// CreateCategory creates a category inline and reloads the full set from
// the API rather than inserting locally, so the view matches the
// server-assigned identifiers and ordering.
func (t *Tracker) CreateCategory(ctx context.Context, chatID int64, name string, ctype model.CategoryType) (*model.Category, *CategorySet, error) {
	if name == "" {
		return nil, nil, &model.ValidationError{Field: "name", Message: "Please enter category name"}
	}
	token, err := t.token(chatID)
	if err != nil {
		return nil, nil, err
	}
	created, err := t.api.CreateCategory(ctx, token, name, ctype)
	if err != nil {
		return nil, nil, err
	}
	set, err := t.LoadCategories(ctx, chatID)
	if err != nil {
		return created, nil, err
	}
	return created, set, nil
}
