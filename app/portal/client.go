package portal

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/oscar-feed/app/config"
	"github.com/lysyi3m/oscar-feed/app/shift"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

var ErrLoginFailed = errors.New("login failed")

// Client is a logged-in portal session. Each user run gets its own client so
// cookies are never shared between users.
type Client struct {
	httpClient *http.Client
	portal     config.Portal
	userAgent  string
	parser     *PageParser
	idPattern  *regexp.Regexp
}

func NewClient(portal config.Portal, shiftName, userAgent string) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		httpClient: &http.Client{Jar: jar},
		portal:     portal,
		userAgent:  userAgent,
		parser:     NewPageParser(shiftName, portal.DateFormat, portal.OwnShiftMarker, portal.GetLocation()),
		idPattern:  regexp.MustCompile(regexp.QuoteMeta(portal.Pages.Shift) + `(\d+)`),
	}, nil
}

// Login posts the credentials and checks the response for the logged-in marker.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"username": {username},
		"password": {password},
		"login":    {"True"},
	}

	resp, cancel, err := c.do(ctx, http.MethodPost, c.portal.Host+c.portal.Pages.Login, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to post login form: %w", err)
	}
	defer cancel()
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}

	if !strings.Contains(body, cmp.Or(c.portal.LoginMarker, config.DefaultLoginMarker)) {
		return fmt.Errorf("%w: wrong credentials for %s", ErrLoginFailed, username)
	}

	slog.Debug("Logged in", "username", username)
	return nil
}

// ShiftIDs returns the ids of all shift pages linked from the shift list, in
// page order without duplicates.
func (c *Client) ShiftIDs(ctx context.Context) ([]int, error) {
	doc, err := c.getDocument(ctx, c.portal.Host+c.portal.Pages.ShiftList)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift list: %w", err)
	}

	var ids []int
	seen := make(map[int]bool)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.Contains(href, c.portal.Pages.Shift) {
			return
		}
		match := c.idPattern.FindStringSubmatch(href)
		if match == nil {
			return
		}
		id, err := strconv.Atoi(match[1])
		if err != nil || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})

	slog.Debug("Found shift pages", "count", len(ids))
	return ids, nil
}

// Shifts fetches one shift page and returns the user's own shifts on it.
func (c *Client) Shifts(ctx context.Context, id int) ([]shift.Shift, error) {
	pageURL := c.portal.Host + c.portal.Pages.Shift + strconv.Itoa(id)
	slog.Debug("Fetching shift page", "id", id, "url", pageURL)

	resp, cancel, err := c.do(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift page %d: %w", id, err)
	}
	defer cancel()
	defer resp.Body.Close()

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode shift page %d: %w", id, err)
	}

	shifts, err := c.parser.Run(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shift page %d: %w", id, err)
	}

	return shifts, nil
}

func (c *Client) getDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, cancel, err := c.do(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return goquery.NewDocumentFromReader(reader)
}

// do issues a request bounded by the portal timeout. The returned cancel
// func must be called once the body has been consumed.
func (c *Client) do(ctx context.Context, method, target string, body io.Reader) (*http.Response, context.CancelFunc, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.portal.GetTimeout())

	req, err := http.NewRequestWithContext(timeoutCtx, method, target, body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return resp, cancel, nil
}

// decodeBody converts the body to UTF-8. An empty body reads as an empty page.
func decodeBody(resp *http.Response) (io.Reader, error) {
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if errors.Is(err, io.EOF) {
		return strings.NewReader(""), nil
	}
	if err != nil {
		return nil, err
	}
	return reader, nil
}

func readBody(resp *http.Response) (string, error) {
	reader, err := decodeBody(resp)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
