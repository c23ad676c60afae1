package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iksnae/procrastinator/internal"
)

// CategoriesPath is the category collection endpoint
const CategoriesPath = "/categories"

// CategoryService covers category CRUD
type CategoryService struct {
	client *Client
	cache  *responseCache
}

func categoryPath(id internal.ID) string {
	return CategoriesPath + "/" + url.PathEscape(id.String())
}

// List returns every category of the signed-in user.
func (s *CategoryService) List(ctx context.Context) ([]internal.Category, error) {
	req := Request{Method: http.MethodGet, Path: CategoriesPath}

	var out []internal.Category
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		if s.cache.fallback(req, &out, err) {
			return out, nil
		}
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Error(req)
	}
	if err := decodeEnvelope(resp.Body, "categories", &out); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	tags := make([]internal.Tag, 0, len(out)+1)
	for _, c := range out {
		tags = append(tags, internal.IDTag(internal.TagCategory, c.ID))
	}
	tags = append(tags, internal.ListTag(internal.TagCategory))
	s.cache.store(req, out, tags...)

	return out, nil
}

// Get returns a single category.
func (s *CategoryService) Get(ctx context.Context, id internal.ID) (*internal.Category, error) {
	req := Request{Method: http.MethodGet, Path: categoryPath(id)}

	var category internal.Category
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		if s.cache.fallback(req, &category, err) {
			return &category, nil
		}
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Error(req)
	}
	if err := decodeEnvelope(resp.Body, "category", &category); err != nil {
		return nil, fmt.Errorf("failed to decode category: %w", err)
	}

	s.cache.store(req, category, internal.IDTag(internal.TagCategory, id))
	return &category, nil
}

// Create validates and creates a category.
func (s *CategoryService) Create(ctx context.Context, in internal.CreateCategoryRequest) (*internal.CategoryResult, error) {
	if err := internal.Validate(in); err != nil {
		return nil, err
	}

	var out internal.CategoryResult
	if err := s.client.call(ctx, Request{Method: http.MethodPost, Path: CategoriesPath, Body: in}, &out); err != nil {
		return nil, err
	}
	s.cache.invalidate(internal.ListTag(internal.TagCategory))
	return &out, nil
}

// Update validates and applies a partial update to category id.
func (s *CategoryService) Update(ctx context.Context, id internal.ID, in internal.UpdateCategoryRequest) (*internal.CategoryResult, error) {
	if err := internal.Validate(in); err != nil {
		return nil, err
	}

	var out internal.CategoryResult
	if err := s.client.call(ctx, Request{Method: http.MethodPut, Path: categoryPath(id), Body: in}, &out); err != nil {
		return nil, err
	}
	s.cache.invalidate(internal.IDTag(internal.TagCategory, id), internal.ListTag(internal.TagCategory))
	return &out, nil
}

// Delete removes category id. Tasks embed their category, so cached tasks
// are dropped as well.
func (s *CategoryService) Delete(ctx context.Context, id internal.ID) (*internal.MessageResult, error) {
	var out internal.MessageResult
	if err := s.client.call(ctx, Request{Method: http.MethodDelete, Path: categoryPath(id)}, &out); err != nil {
		return nil, err
	}
	s.cache.invalidate(
		internal.IDTag(internal.TagCategory, id),
		internal.ListTag(internal.TagCategory),
		internal.TypeTag(internal.TagTask),
	)
	return &out, nil
}
