package discogs

import (
	"context"
	"fmt"
	"net/url"
)

// MarketplaceService manages marketplace listings and orders.
type MarketplaceService struct {
	client *Client

	// inventory is UserService.GetInventory; inventories are user
	// resources but belong to the marketplace surface too.
	inventory func(ctx context.Context, username, status string, page *Pagination) (*Inventory, *Response, error)
}

// GetInventory returns a page of a seller's listings. It forwards to
// UserService.GetInventory.
func (s *MarketplaceService) GetInventory(ctx context.Context, username, status string, page *Pagination) (*Inventory, *Response, error) {
	return s.inventory(ctx, username, status, page)
}

// GetListing returns a listing. currency selects the price currency; pass ""
// for the listing's own.
func (s *MarketplaceService) GetListing(ctx context.Context, id int, currency string) (*Listing, *Response, error) {
	query := url.Values{}
	if currency != "" {
		query.Set("curr_abbr", currency)
	}

	var listing Listing
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/marketplace/listings/%d", id),
		Query:  query,
	}, &listing)
	if err != nil {
		return nil, resp, err
	}
	return &listing, resp, nil
}

// AddListing creates a listing.
func (s *MarketplaceService) AddListing(ctx context.Context, edit ListingEdit) (*NewListing, *Response, error) {
	var out NewListing
	resp, err := s.client.call(ctx, &Request{
		Method:    "POST",
		URL:       "/marketplace/listings",
		Body:      edit,
		AuthLevel: AuthUser,
	}, &out)
	if err != nil {
		return nil, resp, err
	}
	return &out, resp, nil
}

// EditListing replaces the fields of a listing.
func (s *MarketplaceService) EditListing(ctx context.Context, id int, edit ListingEdit) (*Response, error) {
	return s.client.Do(ctx, &Request{
		Method:    "POST",
		URL:       fmt.Sprintf("/marketplace/listings/%d", id),
		Body:      edit,
		AuthLevel: AuthUser,
	})
}

// DeleteListing removes a listing.
func (s *MarketplaceService) DeleteListing(ctx context.Context, id int) (*Response, error) {
	return s.client.Do(ctx, &Request{
		Method:    "DELETE",
		URL:       fmt.Sprintf("/marketplace/listings/%d", id),
		AuthLevel: AuthUser,
	})
}

// GetOrder returns an order by ID.
func (s *MarketplaceService) GetOrder(ctx context.Context, id string) (*Order, *Response, error) {
	var order Order
	resp, err := s.client.call(ctx, &Request{
		Method:    "GET",
		URL:       "/marketplace/orders/" + url.PathEscape(id),
		AuthLevel: AuthUser,
	}, &order)
	if err != nil {
		return nil, resp, err
	}
	return &order, resp, nil
}

// GetOrders returns a page of the authenticated seller's orders. status
// filters by order status; pass "" for all.
func (s *MarketplaceService) GetOrders(ctx context.Context, status string, page *Pagination) (*Orders, *Response, error) {
	query := page.values()
	if status != "" {
		query.Set("status", status)
	}

	var orders Orders
	resp, err := s.client.call(ctx, &Request{
		Method:    "GET",
		URL:       "/marketplace/orders",
		Query:     query,
		AuthLevel: AuthUser,
	}, &orders)
	if err != nil {
		return nil, resp, err
	}
	return &orders, resp, nil
}

// EditOrder changes an order's status or shipping.
func (s *MarketplaceService) EditOrder(ctx context.Context, id string, edit OrderEdit) (*Order, *Response, error) {
	var order Order
	resp, err := s.client.call(ctx, &Request{
		Method:    "POST",
		URL:       "/marketplace/orders/" + url.PathEscape(id),
		Body:      edit,
		AuthLevel: AuthUser,
	}, &order)
	if err != nil {
		return nil, resp, err
	}
	return &order, resp, nil
}

// GetOrderMessages returns a page of the messages on an order.
func (s *MarketplaceService) GetOrderMessages(ctx context.Context, id string, page *Pagination) (*OrderMessages, *Response, error) {
	var messages OrderMessages
	resp, err := s.client.call(ctx, &Request{
		Method:    "GET",
		URL:       fmt.Sprintf("/marketplace/orders/%s/messages", url.PathEscape(id)),
		Query:     page.values(),
		AuthLevel: AuthUser,
	}, &messages)
	if err != nil {
		return nil, resp, err
	}
	return &messages, resp, nil
}

// AddOrderMessage posts a message to an order, optionally changing its status.
func (s *MarketplaceService) AddOrderMessage(ctx context.Context, id, message, status string) (*OrderMessage, *Response, error) {
	body := map[string]string{"message": message}
	if status != "" {
		body["status"] = status
	}

	var out OrderMessage
	resp, err := s.client.call(ctx, &Request{
		Method:    "POST",
		URL:       fmt.Sprintf("/marketplace/orders/%s/messages", url.PathEscape(id)),
		Body:      body,
		AuthLevel: AuthUser,
	}, &out)
	if err != nil {
		return nil, resp, err
	}
	return &out, resp, nil
}

// GetFee returns the marketplace fee for a price. currency defaults to USD.
func (s *MarketplaceService) GetFee(ctx context.Context, price float64, currency string) (*Price, *Response, error) {
	path := fmt.Sprintf("/marketplace/fee/%.2f", price)
	if currency != "" {
		path += "/" + url.PathEscape(currency)
	}

	var fee Price
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    path,
	}, &fee)
	if err != nil {
		return nil, resp, err
	}
	return &fee, resp, nil
}

// GetPriceSuggestions returns suggested prices per condition for a release.
func (s *MarketplaceService) GetPriceSuggestions(ctx context.Context, releaseID int) (PriceSuggestions, *Response, error) {
	var out PriceSuggestions
	resp, err := s.client.call(ctx, &Request{
		Method:    "GET",
		URL:       fmt.Sprintf("/marketplace/price_suggestions/%d", releaseID),
		AuthLevel: AuthUser,
	}, &out)
	if err != nil {
		return nil, resp, err
	}
	return out, resp, nil
}

// GetReleaseStats returns marketplace statistics for a release.
func (s *MarketplaceService) GetReleaseStats(ctx context.Context, releaseID int, currency string) (*ReleaseStats, *Response, error) {
	query := url.Values{}
	if currency != "" {
		query.Set("curr_abbr", currency)
	}

	var stats ReleaseStats
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/marketplace/stats/%d", releaseID),
		Query:  query,
	}, &stats)
	if err != nil {
		return nil, resp, err
	}
	return &stats, resp, nil
}
