package outcome

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client consome o outcome-simulator (ou um provedor real) via HTTP
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// RequestRound compra uma rodada no provedor e devolve o resultado resolvido.
// Qualquer falha de transporte ou status >= 300 vira ErrUnavailable.
func (c *Client) RequestRound(ctx context.Context, reqBody RoundRequest) (*Round, error) {
	body, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/outcome/round", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d", ErrUnavailable, res.StatusCode)
	}

	var out Round
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out.Result != ResultWin && out.Result != ResultLose {
		return nil, fmt.Errorf("%w: bad result %q", ErrUnavailable, out.Result)
	}
	return &out, nil
}
