package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

const (
	DefaultBilibiliBaseURL = "https://api.bilibili.com"
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	bilibiliCardPath       = "/x/web-interface/card"
)

// apiError is an answer from the API itself; retrying will not change it.
type apiError struct {
	code    int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("bilibili api code %d: %s", e.code, e.message)
}

// statusError is a non-200 answer. Only server side statuses are worth retrying.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return false
	}
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.status >= http.StatusInternalServerError
	}
	return true
}

type BilibiliFeed struct {
	baseURL   string
	userAgent string
	client    *http.Client
	executor  failsafe.Executor[int64]
}

func NewBilibiliFeed(config datamodels.CrawlerConfig) *BilibiliFeed {
	baseURL := strings.TrimRight(config.BilibiliBaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBilibiliBaseURL
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &BilibiliFeed{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		executor:  failsafe.With[int64](newFetchRetryPolicy(config)),
	}
}

func newFetchRetryPolicy(config datamodels.CrawlerConfig) retrypolicy.RetryPolicy[int64] {
	maxRetries := config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := config.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	maxDelay := config.RetryMaxDelay
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}
	return retrypolicy.NewBuilder[int64]().
		HandleIf(func(_ int64, err error) bool { return isRetryable(err) }).
		WithBackoff(baseDelay, maxDelay).
		WithMaxRetries(maxRetries).
		WithJitterFactor(0.1).
		ReturnLastFailure().
		Build()
}

func (b *BilibiliFeed) GetPlatform() datamodels.Platform {
	return datamodels.PlatformBilibili
}

func (b *BilibiliFeed) FetchFollowers(ctx context.Context, uid string) (int64, error) {
	fans, err := b.executor.WithContext(ctx).Get(func() (int64, error) {
		return b.fetchCard(ctx, uid)
	})
	if err != nil {
		return 0, errors.Wrapef(errors.ErrFetchFailed, err, "bilibili uid %s", uid)
	}
	return fans, nil
}

func (b *BilibiliFeed) fetchCard(ctx context.Context, uid string) (int64, error) {
	query := url.Values{"mid": []string{uid}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+bilibiliCardPath+"?"+query.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Referer", "https://www.bilibili.com")

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &statusError{status: resp.StatusCode}
	}

	var card datamodels.BilibiliCardResponse
	if err := json.Unmarshal(body, &card); err != nil {
		return 0, errors.Wrap(err, "failed to decode card response")
	}
	if card.Code != 0 {
		return 0, &apiError{code: card.Code, message: card.Message}
	}
	return card.Data.Card.Fans, nil
}
