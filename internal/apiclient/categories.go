package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
)

type categoryBody struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

func toCategoryBody(c *category.Category) categoryBody {
	return categoryBody{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color, Type: string(c.Kind)}
}

func (b categoryBody) toCategory() *category.Category {
	return &category.Category{ID: b.ID, Name: b.Name, Icon: b.Icon, Color: b.Color, Kind: category.Kind(b.Type)}
}

// Categories is a category.Repository backed by the remote API.
type Categories struct {
	client *Client
}

func NewCategories(client *Client) *Categories {
	return &Categories{client: client}
}

func mapCatErr(err error) error {
	return mapStatus(err, category.ErrNotFound, category.ErrInvalid)
}

func (r *Categories) CreateCategory(ctx context.Context, c *category.Category) error {
	body := toCategoryBody(c)
	body.ID = ""

	var out categoryBody
	if err := r.client.Post(ctx, "/categories", body, &out); err != nil {
		return fmt.Errorf("creating category: %w", mapCatErr(err))
	}

	c.ID = out.ID

	return nil
}

// GetCategory scans the list since the remote API has no single-category
// endpoint.
func (r *Categories) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	all, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}

	return nil, category.ErrNotFound
}

func (r *Categories) UpdateCategory(ctx context.Context, c *category.Category) error {
	if err := r.client.Put(ctx, "/categories/"+url.PathEscape(c.ID), toCategoryBody(c), nil); err != nil {
		return fmt.Errorf("updating category: %w", mapCatErr(err))
	}

	return nil
}

func (r *Categories) DeleteCategory(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, "/categories/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("deleting category: %w", mapCatErr(err))
	}

	return nil
}

func (r *Categories) ListCategories(ctx context.Context) ([]*category.Category, error) {
	var out []categoryBody
	if err := r.client.Get(ctx, "/categories", nil, &out); err != nil {
		return nil, fmt.Errorf("listing categories: %w", mapCatErr(err))
	}

	cats := make([]*category.Category, 0, len(out))
	for _, b := range out {
		cats = append(cats, b.toCategory())
	}

	return cats, nil
}
