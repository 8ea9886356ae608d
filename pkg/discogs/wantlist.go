package discogs

import (
	"context"
	"fmt"
	"net/url"
)

// WantlistService manages a user's wantlist.
type WantlistService struct {
	client *Client
}

// GetReleases returns a page of a user's wantlist.
func (s *WantlistService) GetReleases(ctx context.Context, username string, page *Pagination) (*Wants, *Response, error) {
	var wants Wants
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/users/%s/wants", url.PathEscape(username)),
		Query:  page.values(),
	}, &wants)
	if err != nil {
		return nil, resp, err
	}
	return &wants, resp, nil
}

// AddRelease adds a release to the authenticated user's wantlist. edit may be nil.
func (s *WantlistService) AddRelease(ctx context.Context, username string, releaseID int, edit *WantEdit) (*Want, *Response, error) {
	req := &Request{
		Method:    "PUT",
		URL:       fmt.Sprintf("/users/%s/wants/%d", url.PathEscape(username), releaseID),
		AuthLevel: AuthUser,
	}
	if edit != nil {
		req.Body = edit
	}

	var want Want
	resp, err := s.client.call(ctx, req, &want)
	if err != nil {
		return nil, resp, err
	}
	return &want, resp, nil
}

// EditNotes changes the notes or rating of a wantlist entry.
func (s *WantlistService) EditNotes(ctx context.Context, username string, releaseID int, edit WantEdit) (*Want, *Response, error) {
	var want Want
	resp, err := s.client.call(ctx, &Request{
		Method:    "POST",
		URL:       fmt.Sprintf("/users/%s/wants/%d", url.PathEscape(username), releaseID),
		Body:      edit,
		AuthLevel: AuthUser,
	}, &want)
	if err != nil {
		return nil, resp, err
	}
	return &want, resp, nil
}

// RemoveRelease removes a release from the authenticated user's wantlist.
func (s *WantlistService) RemoveRelease(ctx context.Context, username string, releaseID int) (*Response, error) {
	return s.client.Do(ctx, &Request{
		Method:    "DELETE",
		URL:       fmt.Sprintf("/users/%s/wants/%d", url.PathEscape(username), releaseID),
		AuthLevel: AuthUser,
	})
}
