package discogs

import (
	"context"
	"fmt"
	"net/url"
)

// UserService reads and edits user data.
type UserService struct {
	client *Client

	collection *CollectionService
	wantlist   *WantlistService
	lists      *ListService
}

// Collection returns the collection service.
func (s *UserService) Collection() *CollectionService {
	return s.collection
}

// Wantlist returns the wantlist service.
func (s *UserService) Wantlist() *WantlistService {
	return s.wantlist
}

// Lists returns the user lists service.
func (s *UserService) Lists() *ListService {
	return s.lists
}

// GetIdentity returns the user the client is authenticated as.
func (s *UserService) GetIdentity(ctx context.Context) (*Identity, *Response, error) {
	var identity Identity
	resp, err := s.client.call(ctx, &Request{
		Method:    "GET",
		URL:       "/oauth/identity",
		AuthLevel: AuthUser,
	}, &identity)
	if err != nil {
		return nil, resp, err
	}
	return &identity, resp, nil
}

// GetProfile returns a user's profile.
func (s *UserService) GetProfile(ctx context.Context, username string) (*Profile, *Response, error) {
	var profile Profile
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    "/users/" + url.PathEscape(username),
	}, &profile)
	if err != nil {
		return nil, resp, err
	}
	return &profile, resp, nil
}

// EditProfile updates the authenticated user's profile.
func (s *UserService) EditProfile(ctx context.Context, username string, edit ProfileEdit) (*Profile, *Response, error) {
	var profile Profile
	resp, err := s.client.call(ctx, &Request{
		Method:    "POST",
		URL:       "/users/" + url.PathEscape(username),
		Body:      edit,
		AuthLevel: AuthUser,
	}, &profile)
	if err != nil {
		return nil, resp, err
	}
	return &profile, resp, nil
}

// GetInventory returns a page of a seller's listings. status filters by
// listing status ("For Sale", "Draft", ...); pass "" for all.
func (s *UserService) GetInventory(ctx context.Context, username, status string, page *Pagination) (*Inventory, *Response, error) {
	query := page.values()
	if status != "" {
		query.Set("status", status)
	}

	var inventory Inventory
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/users/%s/inventory", url.PathEscape(username)),
		Query:  query,
	}, &inventory)
	if err != nil {
		return nil, resp, err
	}
	return &inventory, resp, nil
}

// GetSubmissions returns a page of a user's database submissions.
func (s *UserService) GetSubmissions(ctx context.Context, username string, page *Pagination) (*Response, error) {
	return s.client.Do(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/users/%s/submissions", url.PathEscape(username)),
		Query:  page.values(),
	})
}

// GetContributions returns a page of a user's database contributions.
func (s *UserService) GetContributions(ctx context.Context, username string, page *Pagination) (*Response, error) {
	return s.client.Do(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/users/%s/contributions", url.PathEscape(username)),
		Query:  page.values(),
	})
}
