package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// feedClient talks to one plain-text quote feed. Both upstreams serve a
// single GBK-encoded line per symbol and expect browser-like headers.
type feedClient struct {
	httpClient *http.Client
}

// fetchLine performs the request and decodes the body from GBK before any
// parsing happens. When the bytes are not valid GBK the raw body is used
// as-is, which covers the occasional UTF-8 response.
func (c *feedClient) fetchLine(ctx context.Context, url, referer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Referer", referer)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("feed responded with HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw), nil
	}
	return string(decoded), nil
}

// extractQuoted pulls the payload between the first pair of double quotes,
// e.g. v_sh600519="1~...~" yields the inner record. An absent or empty
// capture means the feed has nothing for this symbol.
func extractQuoted(line string) (string, bool) {
	parts := strings.SplitN(line, `"`, 3)
	if len(parts) < 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// isTimeout reports whether a transport error was a timeout rather than
// an unreachable upstream. Timeouts fall through to the secondary feed.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
