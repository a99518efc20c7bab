package client

import (
	"context"
	"encoding/json"
	"net/http"
)

// カタログ表示に使う商品
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
}

type productsResponse struct {
	Message  string    `json:"message"`
	Count    int       `json:"count"`
	Products []Product `json:"products"`
}

type productResponse struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

// Productsは公開中の商品一覧を取る
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, body)
	}

	var out productsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return out.Products, nil
}

// ProductByIDは商品詳細を取る
func (c *Client) ProductByID(ctx context.Context, id string) (*Product, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/products/"+id, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, body)
	}

	var out productResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out.Product, nil
}
