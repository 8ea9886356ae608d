package discogs

import (
	"context"
	"fmt"
	"net/url"
)

// ListService reads user-curated lists.
type ListService struct {
	client *Client
}

// GetLists returns a page of a user's lists. Private lists are only
// included for the authenticated owner.
func (s *ListService) GetLists(ctx context.Context, username string, page *Pagination) (*Lists, *Response, error) {
	var lists Lists
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/users/%s/lists", url.PathEscape(username)),
		Query:  page.values(),
	}, &lists)
	if err != nil {
		return nil, resp, err
	}
	return &lists, resp, nil
}

// GetList returns a list and its items.
func (s *ListService) GetList(ctx context.Context, id int) (*List, *Response, error) {
	var list List
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/lists/%d", id),
	}, &list)
	if err != nil {
		return nil, resp, err
	}
	return &list, resp, nil
}
