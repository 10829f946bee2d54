// quest-bounty-system/services/ledger_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"quest-bounty-system/models"
	"quest-bounty-system/utils"
)

// CustodyAccount is the principal that holds escrowed funds on the ledger
// service on behalf of this system.
const CustodyAccount = "quest-escrow-custody"

// TokenLedger is the fungible-token transfer capability consumed from the
// hosting ledger. A failed transfer aborts the enclosing operation; the
// ledger is assumed to reject transfers exceeding the sender's balance.
type TokenLedger interface {
	Transfer(ctx context.Context, asset, from, to string, amount models.Amount) error
	GetBalance(ctx context.Context, asset, account string) (models.Amount, error)
}

// LedgerServiceClient calls the custody ledger service over HTTP.
type LedgerServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewLedgerServiceClient(baseURL, token string) *LedgerServiceClient {
	return &LedgerServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  utils.HTTPClient,
	}
}

// Transfer moves amount of asset from one account to another. The ledger
// executes the movement atomically and returns non-200 on any failure,
// including insufficient balance.
func (c *LedgerServiceClient) Transfer(ctx context.Context, asset, from, to string, amount models.Amount) error {
	url := fmt.Sprintf("%s/ledger/transfer", c.BaseURL)

	reqBody := map[string]interface{}{
		"asset":  asset,
		"from":   from,
		"to":     to,
		"amount": amount.String(),
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("ledger transfer failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("LedgerService /transfer returned %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("ledger transfer failed: %d", resp.StatusCode)
	}

	return nil
}

// GetBalance reads the current balance of an account for one asset.
func (c *LedgerServiceClient) GetBalance(ctx context.Context, asset, account string) (models.Amount, error) {
	url := fmt.Sprintf("%s/ledger/accounts/%s/balances/%s", c.BaseURL, account, asset)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return models.Amount{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return models.Amount{}, fmt.Errorf("ledger balance query failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("LedgerService balance query returned %d: %s", resp.StatusCode, string(body))
		return models.Amount{}, fmt.Errorf("ledger balance query failed: %d", resp.StatusCode)
	}

	var out struct {
		Balance models.Amount `json:"balance"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return models.Amount{}, err
	}
	return out.Balance, nil
}
