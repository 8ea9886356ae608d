package discogs

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// DatabaseService reads the public Discogs database.
type DatabaseService struct {
	client *Client
}

// GetArtist returns an artist by ID.
func (s *DatabaseService) GetArtist(ctx context.Context, id int) (*Artist, *Response, error) {
	var artist Artist
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/artists/%d", id),
	}, &artist)
	if err != nil {
		return nil, resp, err
	}
	return &artist, resp, nil
}

// GetArtistReleases returns a page of an artist's releases and masters.
func (s *DatabaseService) GetArtistReleases(ctx context.Context, id int, page *Pagination) (*ArtistReleases, *Response, error) {
	var out ArtistReleases
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/artists/%d/releases", id),
		Query:  page.values(),
	}, &out)
	if err != nil {
		return nil, resp, err
	}
	return &out, resp, nil
}

// GetRelease returns a release by ID. currency selects the currency of
// LowestPrice; pass "" for the user's default.
func (s *DatabaseService) GetRelease(ctx context.Context, id int, currency string) (*Release, *Response, error) {
	query := url.Values{}
	if currency != "" {
		query.Set("curr_abbr", currency)
	}

	var release Release
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/releases/%d", id),
		Query:  query,
	}, &release)
	if err != nil {
		return nil, resp, err
	}
	return &release, resp, nil
}

// GetReleaseRating returns the rating a user gave a release.
func (s *DatabaseService) GetReleaseRating(ctx context.Context, id int, username string) (*ReleaseRating, *Response, error) {
	var rating ReleaseRating
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/releases/%d/rating/%s", id, url.PathEscape(username)),
	}, &rating)
	if err != nil {
		return nil, resp, err
	}
	return &rating, resp, nil
}

// SetReleaseRating sets the authenticated user's rating of a release.
// A rating of 0 removes it.
func (s *DatabaseService) SetReleaseRating(ctx context.Context, id int, username string, rating int) (*ReleaseRating, *Response, error) {
	if rating < 0 || rating > 5 {
		return nil, nil, fmt.Errorf("discogs: rating must be between 0 and 5, got %d", rating)
	}

	req := &Request{
		Method:    "PUT",
		URL:       fmt.Sprintf("/releases/%d/rating/%s", id, url.PathEscape(username)),
		Body:      map[string]int{"rating": rating},
		AuthLevel: AuthUser,
	}
	if rating == 0 {
		req.Method = "DELETE"
		req.Body = nil
	}

	var out ReleaseRating
	resp, err := s.client.call(ctx, req, &out)
	if err != nil {
		return nil, resp, err
	}
	return &out, resp, nil
}

// GetCommunityRating returns the aggregate rating of a release.
func (s *DatabaseService) GetCommunityRating(ctx context.Context, id int) (*CommunityRating, *Response, error) {
	var rating CommunityRating
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/releases/%d/rating", id),
	}, &rating)
	if err != nil {
		return nil, resp, err
	}
	return &rating, resp, nil
}

// GetMaster returns a master release by ID.
func (s *DatabaseService) GetMaster(ctx context.Context, id int) (*Master, *Response, error) {
	var master Master
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/masters/%d", id),
	}, &master)
	if err != nil {
		return nil, resp, err
	}
	return &master, resp, nil
}

// GetMasterVersions returns a page of a master's versions.
func (s *DatabaseService) GetMasterVersions(ctx context.Context, id int, page *Pagination) (*MasterVersions, *Response, error) {
	var out MasterVersions
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/masters/%d/versions", id),
		Query:  page.values(),
	}, &out)
	if err != nil {
		return nil, resp, err
	}
	return &out, resp, nil
}

// GetLabel returns a label by ID.
func (s *DatabaseService) GetLabel(ctx context.Context, id int) (*Label, *Response, error) {
	var label Label
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/labels/%d", id),
	}, &label)
	if err != nil {
		return nil, resp, err
	}
	return &label, resp, nil
}

// GetLabelReleases returns a page of a label's catalog.
func (s *DatabaseService) GetLabelReleases(ctx context.Context, id int, page *Pagination) (*LabelReleases, *Response, error) {
	var out LabelReleases
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("/labels/%d/releases", id),
		Query:  page.values(),
	}, &out)
	if err != nil {
		return nil, resp, err
	}
	return &out, resp, nil
}

// Search queries the database. Requires consumer credentials or better.
func (s *DatabaseService) Search(ctx context.Context, params SearchParams, page *Pagination) (*SearchResults, *Response, error) {
	query := params.values()
	for k, vs := range page.values() {
		query[k] = vs
	}

	var out SearchResults
	resp, err := s.client.call(ctx, &Request{
		Method:    "GET",
		URL:       "/database/search",
		Query:     query,
		AuthLevel: AuthConsumer,
	}, &out)
	if err != nil {
		return nil, resp, err
	}
	return &out, resp, nil
}

// GetImage downloads an image from an Image.URI. Image hosts are not
// throttled by the API quota, so the request bypasses the queue.
func (s *DatabaseService) GetImage(ctx context.Context, imageURL string) ([]byte, *Response, error) {
	if !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
		return nil, nil, fmt.Errorf("discogs: image URL %q must be absolute", imageURL)
	}

	resp, err := s.client.Do(ctx, &Request{
		Method:      "GET",
		URL:         imageURL,
		Raw:         true,
		BypassQueue: true,
	})
	if err != nil {
		return nil, resp, err
	}
	return resp.Data, resp, nil
}
