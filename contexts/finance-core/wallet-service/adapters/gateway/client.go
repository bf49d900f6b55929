package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainerrors "reelfund/contexts/finance-core/wallet-service/domain/errors"
	"reelfund/contexts/finance-core/wallet-service/ports"
)

// Client queries the payment provider's REST API for order status. Any
// transport or decoding failure maps to ErrGatewayUnavailable so callers can
// retry without local state changes.
type Client struct {
	BaseURL    string
	ShopID     string
	SecretKey  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type paymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) GetPaymentStatus(ctx context.Context, externalID string) (ports.PaymentState, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return "", domainerrors.ErrInvalidInput
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/v3/payments/" + externalID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ShopID, c.SecretKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.Logger != nil {
			c.Logger.Warn("gateway returned non-ok status",
				"event", "wallet_gateway_bad_status",
				"module", "finance-core/wallet-service",
				"layer", "adapter",
				"external_id", externalID,
				"status_code", resp.StatusCode,
			)
		}
		return "", fmt.Errorf("%w: http %d", domainerrors.ErrGatewayUnavailable, resp.StatusCode)
	}

	var payment paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrGatewayUnavailable, err)
	}

	switch payment.Status {
	case "succeeded":
		return ports.PaymentStateSucceeded, nil
	case "canceled":
		return ports.PaymentStateCanceled, nil
	default:
		return ports.PaymentStatePending, nil
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
