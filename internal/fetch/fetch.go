package fetch

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"regexp"
	"strings"

	"golang.org/x/time/rate"
)

// ProgressFunc is called periodically during a download.
type ProgressFunc func(downloaded, total int64)

// Fetcher downloads weight files over HTTP with resume support.
// Interrupted downloads leave a .partial file next to the destination
// and continue from where they stopped on the next attempt.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	token   string
}

// NewFetcher creates a Fetcher. rateLimit is in bytes per second
// (0 for unlimited). token, if set, is sent as a bearer token for
// gated repositories.
func NewFetcher(rateLimit int64, token string) *Fetcher {
	// Google Drive needs cookies to survive the confirm hop
	jar, _ := cookiejar.New(nil)

	f := &Fetcher{
		client: &http.Client{Jar: jar},
		token:  token,
	}
	if rateLimit > 0 {
		f.limiter = NewRateLimiter(rateLimit)
	}
	return f
}

// Fetch downloads url to destPath, resuming a previous partial download
// if one exists. progress may be nil.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destPath string, progress ProgressFunc) error {
	partialPath := destPath + ".partial"

	// Check for partial download (resume support)
	var startByte int64
	if info, err := os.Stat(partialPath); err == nil {
		startByte = info.Size()
	}

	resp, err := f.get(ctx, rawURL, startByte)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Server ignored the range request, start over
	if startByte > 0 && resp.StatusCode == http.StatusOK {
		startByte = 0
	}

	totalSize := resp.ContentLength + startByte

	// Open file for writing (append if resuming)
	flags := os.O_CREATE | os.O_WRONLY
	if startByte > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	out, err := os.OpenFile(partialPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer out.Close()

	// Copy with progress tracking
	body := newLimitedReader(ctx, resp.Body, f.limiter)
	buf := make([]byte, 32*1024)
	downloaded := startByte

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("write file: %w", writeErr)
			}
			downloaded += int64(n)
			if progress != nil {
				progress(downloaded, totalSize)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return fmt.Errorf("read body: %w", readErr)
		}
	}

	// Rename partial to final
	out.Close()
	if err := os.Rename(partialPath, destPath); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}

	return nil
}

// get issues the download request, following one Google Drive
// confirm-page hop if the server answers with HTML instead of bytes.
func (f *Fetcher) get(ctx context.Context, rawURL string, startByte int64) (*http.Response, error) {
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		if startByte > 0 {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-", startByte))
		}
		if f.token != "" {
			req.Header.Set("Authorization", "Bearer "+f.token)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download request: %w", err)
		}

		if isHTML(resp) && attempt == 0 {
			// Large Drive files answer with a virus-scan interstitial
			// carrying the real download URL in a form
			page, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()

			next, ok := driveConfirmURL(page)
			if !ok {
				return nil, fmt.Errorf("server returned an HTML page instead of file data")
			}
			rawURL = next
			continue
		}

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
			resp.Body.Close()
			return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("download still answered with HTML after confirm")
}

func isHTML(resp *http.Response) bool {
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html")
}

var (
	driveFormAction = regexp.MustCompile(`action="([^"]+)"`)
	driveFormInput  = regexp.MustCompile(`<input type="hidden" name="([^"]+)" value="([^"]*)"`)
)

// driveConfirmURL extracts the download form from a Drive interstitial
// page and rebuilds the confirmed download URL.
func driveConfirmURL(page []byte) (string, bool) {
	m := driveFormAction.FindSubmatch(page)
	if m == nil {
		return "", false
	}

	u, err := url.Parse(html.UnescapeString(string(m[1])))
	if err != nil {
		return "", false
	}

	q := u.Query()
	for _, input := range driveFormInput.FindAllSubmatch(page, -1) {
		q.Set(string(input[1]), html.UnescapeString(string(input[2])))
	}
	if q.Get("confirm") == "" {
		q.Set("confirm", "t")
	}
	u.RawQuery = q.Encode()

	return u.String(), true
}
