package discogs

import (
	"net/url"
	"strconv"
)

// Pagination selects a page of a list endpoint.
type Pagination struct {
	Page      int    // Optional: 1-based page number
	PerPage   int    // Optional: items per page (server default 50, max 100)
	Sort      string // Optional: sort key, endpoint specific
	SortOrder string // Optional: asc or desc
}

func (p *Pagination) values() url.Values {
	v := url.Values{}
	if p == nil {
		return v
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.SortOrder != "" {
		v.Set("sort_order", p.SortOrder)
	}
	return v
}

// Page is the pagination block of a list response.
type Page struct {
	Page    int               `json:"page"`
	Pages   int               `json:"pages"`
	PerPage int               `json:"per_page"`
	Items   int               `json:"items"`
	URLs    map[string]string `json:"urls"`
}

// Image is an image reference. Fetch the bytes with DatabaseService.GetImage.
type Image struct {
	Type   string `json:"type"`
	URI    string `json:"uri"`
	URI150 string `json:"uri150"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ArtistCredit is an artist as credited on a release.
type ArtistCredit struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ANV         string `json:"anv"`
	Join        string `json:"join"`
	Role        string `json:"role"`
	ResourceURL string `json:"resource_url"`
}

// Artist is a database artist.
type Artist struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	RealName       string   `json:"realname"`
	Profile        string   `json:"profile"`
	URLs           []string `json:"urls"`
	NameVariations []string `json:"namevariations"`
	Images         []Image  `json:"images"`
	ResourceURL    string   `json:"resource_url"`
	URI            string   `json:"uri"`
}

// ArtistRelease is an entry of an artist's discography.
type ArtistRelease struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Role        string `json:"role"`
	Year        int    `json:"year"`
	Format      string `json:"format"`
	Label       string `json:"label"`
	MainRelease int    `json:"main_release"`
	ResourceURL string `json:"resource_url"`
}

// ArtistReleases is a page of an artist's discography.
type ArtistReleases struct {
	Pagination Page            `json:"pagination"`
	Releases   []ArtistRelease `json:"releases"`
}

// LabelCredit is a label as credited on a release.
type LabelCredit struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CatNo       string `json:"catno"`
	ResourceURL string `json:"resource_url"`
}

// Format is a release format such as Vinyl or CD.
type Format struct {
	Name         string   `json:"name"`
	Qty          string   `json:"qty"`
	Descriptions []string `json:"descriptions"`
	Text         string   `json:"text"`
}

// Track is a tracklist entry.
type Track struct {
	Position string `json:"position"`
	Type     string `json:"type_"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// Community holds a release's community statistics.
type Community struct {
	Have int `json:"have"`
	Want int `json:"want"`
	Rating struct {
		Count   int     `json:"count"`
		Average float64 `json:"average"`
	} `json:"rating"`
}

// Release is a database release.
type Release struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Year        int            `json:"year"`
	Country     string         `json:"country"`
	Released    string         `json:"released"`
	Notes       string         `json:"notes"`
	Artists     []ArtistCredit `json:"artists"`
	Labels      []LabelCredit  `json:"labels"`
	Formats     []Format       `json:"formats"`
	Genres      []string       `json:"genres"`
	Styles      []string       `json:"styles"`
	Tracklist   []Track        `json:"tracklist"`
	Images      []Image        `json:"images"`
	Community   Community      `json:"community"`
	MasterID    int            `json:"master_id"`
	LowestPrice float64        `json:"lowest_price"`
	NumForSale  int            `json:"num_for_sale"`
	ResourceURL string         `json:"resource_url"`
	URI         string         `json:"uri"`
	DataQuality string         `json:"data_quality"`
	DateAdded   string         `json:"date_added"`
	DateChanged string         `json:"date_changed"`
}

// ReleaseRating is one user's rating of a release.
type ReleaseRating struct {
	Username  string `json:"username"`
	ReleaseID int    `json:"release_id"`
	Rating    int    `json:"rating"`
}

// CommunityRating is the aggregate rating of a release.
type CommunityRating struct {
	ReleaseID int `json:"release_id"`
	Rating    struct {
		Count   int     `json:"count"`
		Average float64 `json:"average"`
	} `json:"rating"`
}

// Master is a master release grouping versions of the same recording.
type Master struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Year        int            `json:"year"`
	MainRelease int            `json:"main_release"`
	Artists     []ArtistCredit `json:"artists"`
	Genres      []string       `json:"genres"`
	Styles      []string       `json:"styles"`
	Tracklist   []Track        `json:"tracklist"`
	Images      []Image        `json:"images"`
	LowestPrice float64        `json:"lowest_price"`
	NumForSale  int            `json:"num_for_sale"`
	VersionsURL string         `json:"versions_url"`
	ResourceURL string         `json:"resource_url"`
}

// MasterVersion is one release of a master.
type MasterVersion struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Label       string `json:"label"`
	Country     string `json:"country"`
	Released    string `json:"released"`
	Format      string `json:"format"`
	CatNo       string `json:"catno"`
	Status      string `json:"status"`
	ResourceURL string `json:"resource_url"`
}

// MasterVersions is a page of a master's versions.
type MasterVersions struct {
	Pagination Page            `json:"pagination"`
	Versions   []MasterVersion `json:"versions"`
}

// Label is a database label.
type Label struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Profile     string   `json:"profile"`
	ContactInfo string   `json:"contact_info"`
	URLs        []string `json:"urls"`
	Images      []Image  `json:"images"`
	ResourceURL string   `json:"resource_url"`
}

// LabelRelease is an entry of a label's catalog.
type LabelRelease struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	CatNo       string `json:"catno"`
	Format      string `json:"format"`
	Year        int    `json:"year"`
	Status      string `json:"status"`
	ResourceURL string `json:"resource_url"`
}

// LabelReleases is a page of a label's catalog.
type LabelReleases struct {
	Pagination Page           `json:"pagination"`
	Releases   []LabelRelease `json:"releases"`
}

// SearchParams filters a database search. Empty fields are omitted.
type SearchParams struct {
	Query        string
	Type         string // release, master, artist or label
	Title        string
	ReleaseTitle string
	Artist       string
	Label        string
	Genre        string
	Style        string
	Country      string
	Year         string
	Format       string
	CatNo        string
	Barcode      string
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("q", p.Query)
	set("type", p.Type)
	set("title", p.Title)
	set("release_title", p.ReleaseTitle)
	set("artist", p.Artist)
	set("label", p.Label)
	set("genre", p.Genre)
	set("style", p.Style)
	set("country", p.Country)
	set("year", p.Year)
	set("format", p.Format)
	set("catno", p.CatNo)
	set("barcode", p.Barcode)
	return v
}

// SearchResult is one search hit.
type SearchResult struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Year        string   `json:"year"`
	Country     string   `json:"country"`
	Format      []string `json:"format"`
	Label       []string `json:"label"`
	CatNo       string   `json:"catno"`
	Thumb       string   `json:"thumb"`
	ResourceURL string   `json:"resource_url"`
}

// SearchResults is a page of search hits.
type SearchResults struct {
	Pagination Page           `json:"pagination"`
	Results    []SearchResult `json:"results"`
}

// Identity is the authenticated user.
type Identity struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	ResourceURL  string `json:"resource_url"`
	ConsumerName string `json:"consumer_name"`
}

// Profile is a user's public profile.
type Profile struct {
	ID                int     `json:"id"`
	Username          string  `json:"username"`
	Name              string  `json:"name"`
	Location          string  `json:"location"`
	Profile           string  `json:"profile"`
	HomePage          string  `json:"home_page"`
	Registered        string  `json:"registered"`
	NumCollection     int     `json:"num_collection"`
	NumWantlist       int     `json:"num_wantlist"`
	NumForSale        int     `json:"num_for_sale"`
	NumLists          int     `json:"num_lists"`
	ReleasesRated     int     `json:"releases_rated"`
	RatingAvg         float64 `json:"rating_avg"`
	SellerRating      float64 `json:"seller_rating"`
	BuyerRating       float64 `json:"buyer_rating"`
	CurrAbbr          string  `json:"curr_abbr"`
	InventoryURL      string  `json:"inventory_url"`
	CollectionFolders string  `json:"collection_folders_url"`
	WantlistURL       string  `json:"wantlist_url"`
	ResourceURL       string  `json:"resource_url"`
}

// ProfileEdit holds the editable profile fields. Empty fields are left unchanged.
type ProfileEdit struct {
	Name     string `json:"name,omitempty"`
	HomePage string `json:"home_page,omitempty"`
	Location string `json:"location,omitempty"`
	Profile  string `json:"profile,omitempty"`
	CurrAbbr string `json:"curr_abbr,omitempty"`
}

// BasicInformation is the release summary embedded in collection and wantlist items.
type BasicInformation struct {
	ID          int            `json:"id"`
	Title       string         `json:"title"`
	Year        int            `json:"year"`
	Artists     []ArtistCredit `json:"artists"`
	Labels      []LabelCredit  `json:"labels"`
	Formats     []Format       `json:"formats"`
	Thumb       string         `json:"thumb"`
	ResourceURL string         `json:"resource_url"`
}

// Folder is a collection folder.
type Folder struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Count       int    `json:"count"`
	ResourceURL string `json:"resource_url"`
}

// Folders is the list of a user's collection folders.
type Folders struct {
	Folders []Folder `json:"folders"`
}

// CollectionItem is a release instance in a collection folder.
type CollectionItem struct {
	ID               int              `json:"id"`
	InstanceID       int              `json:"instance_id"`
	FolderID         int              `json:"folder_id"`
	Rating           int              `json:"rating"`
	DateAdded        string           `json:"date_added"`
	BasicInformation BasicInformation `json:"basic_information"`
}

// CollectionItems is a page of collection items.
type CollectionItems struct {
	Pagination Page             `json:"pagination"`
	Releases   []CollectionItem `json:"releases"`
}

// CollectionInstance is returned when a release is added to a folder.
type CollectionInstance struct {
	InstanceID  int    `json:"instance_id"`
	ResourceURL string `json:"resource_url"`
}

// CollectionValue is the estimated value of a collection.
type CollectionValue struct {
	Maximum string `json:"maximum"`
	Median  string `json:"median"`
	Minimum string `json:"minimum"`
}

// Want is a wantlist entry.
type Want struct {
	ID               int              `json:"id"`
	Rating           int              `json:"rating"`
	Notes            string           `json:"notes"`
	DateAdded        string           `json:"date_added"`
	BasicInformation BasicInformation `json:"basic_information"`
	ResourceURL      string           `json:"resource_url"`
}

// Wants is a page of a wantlist.
type Wants struct {
	Pagination Page   `json:"pagination"`
	Wants      []Want `json:"wants"`
}

// WantEdit holds the optional fields of a wantlist entry.
type WantEdit struct {
	Notes  string `json:"notes,omitempty"`
	Rating int    `json:"rating,omitempty"`
}

// ListSummary is a user list in a list index.
type ListSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	DateAdded   string `json:"date_added"`
	ResourceURL string `json:"resource_url"`
}

// Lists is a page of a user's lists.
type Lists struct {
	Pagination Page          `json:"pagination"`
	Lists      []ListSummary `json:"lists"`
}

// List is a user-curated list.
type List struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Items       []struct {
		ID           int    `json:"id"`
		Type         string `json:"type"`
		DisplayTitle string `json:"display_title"`
		Comment      string `json:"comment"`
		ResourceURL  string `json:"resource_url"`
	} `json:"items"`
	ResourceURL string `json:"resource_url"`
}

// Price is an amount in a currency.
type Price struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// Listing is a marketplace listing.
type Listing struct {
	ID              int    `json:"id"`
	Status          string `json:"status"`
	Condition       string `json:"condition"`
	SleeveCondition string `json:"sleeve_condition"`
	Comments        string `json:"comments"`
	ShipsFrom       string `json:"ships_from"`
	Posted          string `json:"posted"`
	AllowOffers     bool   `json:"allow_offers"`
	Price           Price  `json:"price"`
	Seller          struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	} `json:"seller"`
	Release struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
		CatalogNo   string `json:"catalog_number"`
		Year        int    `json:"year"`
		ResourceURL string `json:"resource_url"`
	} `json:"release"`
	ResourceURL string `json:"resource_url"`
}

// ListingEdit holds the fields of a new or edited listing.
type ListingEdit struct {
	ReleaseID       int     `json:"release_id"`
	Condition       string  `json:"condition"`
	SleeveCondition string  `json:"sleeve_condition,omitempty"`
	Price           float64 `json:"price"`
	Comments        string  `json:"comments,omitempty"`
	AllowOffers     bool    `json:"allow_offers,omitempty"`
	Status          string  `json:"status"`
	ExternalID      string  `json:"external_id,omitempty"`
	Location        string  `json:"location,omitempty"`
	Weight          string  `json:"weight,omitempty"`
	FormatQuantity  string  `json:"format_quantity,omitempty"`
}

// NewListing is returned when a listing is created.
type NewListing struct {
	ListingID   int    `json:"listing_id"`
	ResourceURL string `json:"resource_url"`
}

// Inventory is a page of a seller's listings.
type Inventory struct {
	Pagination Page      `json:"pagination"`
	Listings   []Listing `json:"listings"`
}

// Order is a marketplace order.
type Order struct {
	ID                     string   `json:"id"`
	Status                 string   `json:"status"`
	NextStatus             []string `json:"next_status"`
	Created                string   `json:"created"`
	LastActivity           string   `json:"last_activity"`
	Total                  Price    `json:"total"`
	AdditionalInstructions string   `json:"additional_instructions"`
	Buyer                  struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	} `json:"buyer"`
	Items []struct {
		ID      int   `json:"id"`
		Price   Price `json:"price"`
		Release struct {
			ID          int    `json:"id"`
			Description string `json:"description"`
		} `json:"release"`
	} `json:"items"`
	ResourceURL string `json:"resource_url"`
}

// Orders is a page of orders.
type Orders struct {
	Pagination Page    `json:"pagination"`
	Orders     []Order `json:"orders"`
}

// OrderEdit changes an order's status or shipping.
type OrderEdit struct {
	Status   string  `json:"status,omitempty"`
	Shipping float64 `json:"shipping,omitempty"`
}

// OrderMessage is a message on an order.
type OrderMessage struct {
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	From      struct {
		Username string `json:"username"`
	} `json:"from"`
	Order struct {
		ID string `json:"id"`
	} `json:"order"`
}

// OrderMessages is a page of order messages.
type OrderMessages struct {
	Pagination Page           `json:"pagination"`
	Messages   []OrderMessage `json:"messages"`
}

// PriceSuggestions maps media condition to a suggested price.
type PriceSuggestions map[string]Price

// ReleaseStats are the marketplace statistics of a release.
type ReleaseStats struct {
	LowestPrice *Price `json:"lowest_price"`
	NumForSale  int    `json:"num_for_sale"`
	Blocked     bool   `json:"blocked_from_sale"`
}
