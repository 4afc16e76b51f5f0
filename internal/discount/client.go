package discount

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateLimitError возвращается, когда сервис скидок ответил 429 Too Many Requests.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("discount service rate limited, retry after %s", e.RetryAfter)
}

// Client инкапсулирует HTTP-взаимодействие с внешним сервисом скидок.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// PlanDiscount описывает ответ сервиса скидок по одному плану.
type PlanDiscount struct {
	Plan     string          `json:"plan"`
	Discount decimal.Decimal `json:"discount"`
}

// NewClient создаёт HTTP-клиент для обращения к сервису скидок по указанному адресу.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetDiscount запрашивает скидку плана. Отсутствие скидки (404, 204) означает ноль.
func (c *Client) GetDiscount(ctx context.Context, plan string) (decimal.Decimal, error) {
	if c == nil || c.baseURL == "" {
		return decimal.Zero, fmt.Errorf("discount client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	u := fmt.Sprintf("%s/api/discounts/%s", base, url.PathEscape(plan))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return decimal.Zero, nil
	case http.StatusTooManyRequests:
		retryAfter := time.Duration(0)
		if v := resp.Header.Get("Retry-After"); v != "" {
			if seconds, parseErr := strconv.Atoi(v); parseErr == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return decimal.Zero, &RateLimitError{RetryAfter: retryAfter}
	default:
		return decimal.Zero, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result PlanDiscount
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("decode response: %w", err)
	}

	if err := checkSourceRate(result.Discount); err != nil {
		return decimal.Zero, fmt.Errorf("discount service: %w", err)
	}

	return result.Discount, nil
}
