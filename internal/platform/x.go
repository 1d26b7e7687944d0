package platform

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"autopost/internal/models"
)

// XConfig holds the OAuth 1.0a user-context credentials for the X API.
type XConfig struct {
	APIURL            string // override for tests; defaults to the public API
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

const defaultXAPIURL = "https://api.x.com"

// XClient posts tweets through the X API v2 create-tweet endpoint.
type XClient struct {
	client *http.Client
	cfg    XConfig

	// injectable for deterministic signature tests
	now   func() time.Time
	nonce func() string
}

func NewXClient(cfg XConfig) *XClient {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultXAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &XClient{
		client: &http.Client{Timeout: 30 * time.Second},
		cfg:    cfg,
		now:    time.Now,
		nonce:  randomNonce,
	}
}

func (c *XClient) Name() string { return models.PlatformX }

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Post publishes a text tweet and returns its ID. Image attachment requires
// the legacy v1.1 media-upload flow with a local file, which this client does
// not implement; imageURL is ignored.
func (c *XClient) Post(ctx context.Context, text, _ string) (string, error) {
	if c.cfg.ConsumerKey == "" || c.cfg.ConsumerSecret == "" ||
		c.cfg.AccessToken == "" || c.cfg.AccessTokenSecret == "" {
		return "", &Error{Platform: c.Name(), Reason: "credentials not configured"}
	}

	endpoint := c.cfg.APIURL + "/2/tweets"
	payload, err := json.Marshal(createTweetRequest{Text: text})
	if err != nil {
		return "", &Error{Platform: c.Name(), Reason: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Platform: c.Name(), Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authorizationHeader(http.MethodPost, endpoint))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &Error{Platform: c.Name(), Reason: "post tweet", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &Error{Platform: c.Name(), Reason: "read response", Err: err}
	}

	var parsed createTweetResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		reason := parsed.Detail
		if reason == "" {
			reason = parsed.Title
		}
		if reason == "" {
			reason = fmt.Sprintf("http %d", resp.StatusCode)
		}
		return "", &Error{Platform: c.Name(), Reason: reason}
	}
	if parsed.Data.ID == "" {
		return "", &Error{Platform: c.Name(), Reason: "missing tweet id in response"}
	}
	return parsed.Data.ID, nil
}

// authorizationHeader builds the OAuth 1.0a HMAC-SHA1 header for a request
// with a JSON body (only oauth_* parameters enter the signature base).
func (c *XClient) authorizationHeader(method, endpoint string) string {
	params := map[string]string{
		"oauth_consumer_key":     c.cfg.ConsumerKey,
		"oauth_nonce":            c.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(c.now().Unix(), 10),
		"oauth_token":            c.cfg.AccessToken,
		"oauth_version":          "1.0",
	}
	params["oauth_signature"] = c.sign(method, endpoint, params)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("OAuth ")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(percentEncode(k))
		sb.WriteString(`="`)
		sb.WriteString(percentEncode(params[k]))
		sb.WriteString(`"`)
	}
	return sb.String()
}

func (c *XClient) sign(method, endpoint string, params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	sort.Strings(pairs)

	base := strings.ToUpper(method) + "&" +
		percentEncode(endpoint) + "&" +
		percentEncode(strings.Join(pairs, "&"))
	key := percentEncode(c.cfg.ConsumerSecret) + "&" + percentEncode(c.cfg.AccessTokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode applies RFC 3986 encoding as OAuth 1.0a requires
// (url.QueryEscape encodes spaces as '+', which breaks signatures).
func percentEncode(s string) string {
	encoded := url.QueryEscape(s)
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	return encoded
}

func randomNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// fall back to a time-derived nonce; uniqueness still holds per second
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}
