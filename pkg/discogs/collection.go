package discogs

import (
	"context"
	"fmt"
	"net/url"
)

// CollectionService manages a user's collection folders and items.
//
// Folder 0 ("All") lists everything and is readable by anyone when the
// collection is public. Folder 1 ("Uncategorized") is the default target
// for added releases.
type CollectionService struct {
	client *Client
}

func collectionPath(username string) string {
	return fmt.Sprintf("/users/%s/collection", url.PathEscape(username))
}

// GetFolders returns a user's collection folders. Only folder 0 is visible
// without user authentication.
func (s *CollectionService) GetFolders(ctx context.Context, username string) (*Folders, *Response, error) {
	var folders Folders
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    collectionPath(username) + "/folders",
	}, &folders)
	if err != nil {
		return nil, resp, err
	}
	return &folders, resp, nil
}

// GetFolder returns one collection folder.
func (s *CollectionService) GetFolder(ctx context.Context, username string, folderID int) (*Folder, *Response, error) {
	var folder Folder
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("%s/folders/%d", collectionPath(username), folderID),
	}, &folder)
	if err != nil {
		return nil, resp, err
	}
	return &folder, resp, nil
}

// AddFolder creates a collection folder.
func (s *CollectionService) AddFolder(ctx context.Context, username, name string) (*Folder, *Response, error) {
	var folder Folder
	resp, err := s.client.call(ctx, &Request{
		Method:    "POST",
		URL:       collectionPath(username) + "/folders",
		Body:      map[string]string{"name": name},
		AuthLevel: AuthUser,
	}, &folder)
	if err != nil {
		return nil, resp, err
	}
	return &folder, resp, nil
}

// DeleteFolder removes an empty collection folder.
func (s *CollectionService) DeleteFolder(ctx context.Context, username string, folderID int) (*Response, error) {
	return s.client.Do(ctx, &Request{
		Method:    "DELETE",
		URL:       fmt.Sprintf("%s/folders/%d", collectionPath(username), folderID),
		AuthLevel: AuthUser,
	})
}

// GetReleases returns a page of the items in a folder.
func (s *CollectionService) GetReleases(ctx context.Context, username string, folderID int, page *Pagination) (*CollectionItems, *Response, error) {
	var items CollectionItems
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("%s/folders/%d/releases", collectionPath(username), folderID),
		Query:  page.values(),
	}, &items)
	if err != nil {
		return nil, resp, err
	}
	return &items, resp, nil
}

// GetReleaseInstances returns every instance of a release in the collection.
func (s *CollectionService) GetReleaseInstances(ctx context.Context, username string, releaseID int) (*CollectionItems, *Response, error) {
	var items CollectionItems
	resp, err := s.client.call(ctx, &Request{
		Method: "GET",
		URL:    fmt.Sprintf("%s/releases/%d", collectionPath(username), releaseID),
	}, &items)
	if err != nil {
		return nil, resp, err
	}
	return &items, resp, nil
}

// AddRelease adds a release to a folder. folderID 0 is replaced by 1, since
// the "All" folder cannot hold items directly.
func (s *CollectionService) AddRelease(ctx context.Context, username string, folderID, releaseID int) (*CollectionInstance, *Response, error) {
	if folderID == 0 {
		folderID = 1
	}

	var instance CollectionInstance
	resp, err := s.client.call(ctx, &Request{
		Method:    "POST",
		URL:       fmt.Sprintf("%s/folders/%d/releases/%d", collectionPath(username), folderID, releaseID),
		AuthLevel: AuthUser,
	}, &instance)
	if err != nil {
		return nil, resp, err
	}
	return &instance, resp, nil
}

// RemoveRelease removes one instance of a release from a folder.
func (s *CollectionService) RemoveRelease(ctx context.Context, username string, folderID, releaseID, instanceID int) (*Response, error) {
	return s.client.Do(ctx, &Request{
		Method: "DELETE",
		URL: fmt.Sprintf("%s/folders/%d/releases/%d/instances/%d",
			collectionPath(username), folderID, releaseID, instanceID),
		AuthLevel: AuthUser,
	})
}

// GetValue returns the estimated value of the authenticated user's collection.
func (s *CollectionService) GetValue(ctx context.Context, username string) (*CollectionValue, *Response, error) {
	var value CollectionValue
	resp, err := s.client.call(ctx, &Request{
		Method:    "GET",
		URL:       collectionPath(username) + "/value",
		AuthLevel: AuthUser,
	}, &value)
	if err != nil {
		return nil, resp, err
	}
	return &value, resp, nil
}
