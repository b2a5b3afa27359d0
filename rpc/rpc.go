package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"chainscope-tui/entity"
)

// Client wraps an Ethereum RPC client
type Client struct {
	*ethclient.Client
	URL string
}

// ConnectResult holds the result of an RPC connection attempt
type ConnectResult struct {
	Client *Client
	Error  error
}

// Connect attempts to connect to an Ethereum RPC endpoint
func Connect(url string) ConnectResult {
	return ConnectWithTimeout(url, 8*time.Second)
}

// ConnectWithTimeout attempts to connect with a custom timeout
func ConnectWithTimeout(url string, timeout time.Duration) ConnectResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return ConnectResult{Client: nil, Error: err}
	}

	return ConnectResult{
		Client: &Client{
			Client: client,
			URL:    url,
		},
		Error: nil,
	}
}

// AccountOverview fetches the node-side snapshot of an account: latest
// block, balance, nonce and whether code is deployed at the address.
func (c *Client) AccountOverview(ctx context.Context, addr common.Address) (entity.AccountOverview, error) {
	var ov entity.AccountOverview

	block, err := c.BlockNumber(ctx)
	if err != nil {
		return ov, fmt.Errorf("block number: %w", err)
	}
	ov.LatestBlock = block

	balance, err := c.BalanceAt(ctx, addr, nil)
	if err != nil {
		return ov, fmt.Errorf("balance of %s: %w", addr.Hex(), err)
	}
	ov.BalanceWei = balance

	nonce, err := c.NonceAt(ctx, addr, nil)
	if err != nil {
		return ov, fmt.Errorf("nonce of %s: %w", addr.Hex(), err)
	}
	ov.Nonce = nonce

	code, err := c.CodeAt(ctx, addr, nil)
	if err != nil {
		return ov, fmt.Errorf("code of %s: %w", addr.Hex(), err)
	}
	ov.IsContract = len(code) > 0

	return ov, nil
}

// AccountOverviewWithTimeout bounds AccountOverview with its own deadline.
func (c *Client) AccountOverviewWithTimeout(addr common.Address, timeout time.Duration) (entity.AccountOverview, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.AccountOverview(ctx, addr)
}

// LatestBlock returns the current block number.
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	block, err := c.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	return block, nil
}

// LatestBlockWithTimeout bounds LatestBlock with its own deadline.
func (c *Client) LatestBlockWithTimeout(timeout time.Duration) (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.LatestBlock(ctx)
}
