package navidrome

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	subsonic "github.com/delucks/go-subsonic"
)

// Name identifies the server in logs and warnings
func (n *NavidromeClient) Name() string {
	return "Navidrome"
}

// Authenticate checks the credentials against the server
func (n *NavidromeClient) Authenticate() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.authenticate()
}

func (n *NavidromeClient) authenticate() error {
	if n.URL == "" {
		return fmt.Errorf("navidrome URL is not configured")
	}
	n.Client = subsonic.Client{
		Client:       n.HTTPClient,
		BaseUrl:      strings.TrimSuffix(n.URL, "/"),
		User:         n.Username,
		ClientName:   clientName,
		PasswordAuth: true,
	}
	if err := n.Client.Authenticate(n.Password); err != nil {
		return fmt.Errorf("navidrome authentication failed: %w", err)
	}
	n.authenticated = true
	return nil
}

// LibraryChanged asks Navidrome to rescan its library so saved tags show up
// without waiting for the scheduled scan.
func (n *NavidromeClient) LibraryChanged(ctx context.Context) error {
	n.mu.Lock()
	if !n.authenticated {
		if err := n.authenticate(); err != nil {
			n.mu.Unlock()
			return err
		}
	}
	n.mu.Unlock()

	resp, err := n.request(ctx, "startScan", nil)
	if err != nil {
		return fmt.Errorf("failed to start library scan: %w", err)
	}
	if resp.SubsonicResponse.Status == "failed" {
		return fmt.Errorf("failed to start library scan: %s (code %d)",
			resp.SubsonicResponse.Error.Message, resp.SubsonicResponse.Error.Code)
	}
	return nil
}

// request performs a token-authenticated Subsonic call with JSON output.
func (n *NavidromeClient) request(ctx context.Context, endpoint string, extra url.Values) (*subsonicResponse, error) {
	salt, err := newSalt()
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("u", n.Username)
	params.Set("t", getSaltedPassword(n.Password, salt))
	params.Set("s", salt)
	params.Set("v", apiVersion)
	params.Set("c", clientName)
	params.Set("f", "json")
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	target := fmt.Sprintf("%s/rest/%s.view?%s", strings.TrimSuffix(n.URL, "/"), endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status code %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed subsonicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &parsed, nil
}

func newSalt() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// getSaltedPassword returns the salted password for navidrome
func getSaltedPassword(password string, salt string) string {
	hasher := md5.New()
	hasher.Write([]byte(password + salt))
	return hex.EncodeToString(hasher.Sum(nil))
}
