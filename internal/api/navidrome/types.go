package navidrome

import (
	"net/http"
	"sync"

	subsonic "github.com/delucks/go-subsonic"
)

const (
	apiVersion = "1.16.1"
	clientName = "retagger"
)

// NavidromeClient holds the navidrome client and other required fields
type NavidromeClient struct {
	URL        string
	Username   string
	Password   string
	HTTPClient *http.Client
	Client     subsonic.Client

	mu            sync.Mutex
	authenticated bool
}

// NewNavidromeClient creates a new navidrome client
func NewNavidromeClient(url, username, password string, httpClient *http.Client) *NavidromeClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &NavidromeClient{
		URL:        url,
		Username:   username,
		Password:   password,
		HTTPClient: httpClient,
	}
}

// subsonicResponse is the JSON envelope of every Subsonic API reply.
type subsonicResponse struct {
	SubsonicResponse struct {
		Status string `json:"status"`
		Error  struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		ScanStatus struct {
			Scanning bool `json:"scanning"`
			Count    int  `json:"count"`
		} `json:"scanStatus"`
	} `json:"subsonic-response"`
}
