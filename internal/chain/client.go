// Package chain reads crowdfunding factory and campaign contracts over
// Ethereum JSON-RPC.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/theirongolddev/crowdscope/internal/model"
)

const (
	// DefaultTimeout bounds a single eth_call.
	DefaultTimeout = 10 * time.Second
)

var (
	// ErrNoEndpoint indicates the RPC URL is empty or malformed.
	ErrNoEndpoint = errors.New("chain: no usable RPC endpoint configured")
	// ErrUnreachable indicates the RPC endpoint could not be reached. Every
	// read path wraps transport failures with it.
	ErrUnreachable = errors.New("chain: RPC endpoint unreachable")
	// ErrNoContract indicates the call returned no data (no code at address).
	ErrNoContract = errors.New("chain: no contract data returned")
	// ErrDecode indicates the return data did not match the expected ABI.
	ErrDecode = errors.New("chain: cannot decode return data")
)

// caller is the subset of ethclient.Client used by Client.
type caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// Client reads campaign and factory contracts through an RPC endpoint.
type Client struct {
	endpoint string
	eth      caller
	abi      abi.ABI
	timeout  time.Duration
}

// Dial connects to rpcURL. A non-positive timeout uses DefaultTimeout.
func Dial(ctx context.Context, rpcURL string, timeout time.Duration) (*Client, error) {
	rpcURL = strings.TrimSpace(rpcURL)
	if err := ValidateEndpoint(rpcURL); err != nil {
		return nil, err
	}

	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return newClient(rpcURL, ec, timeout), nil
}

func newClient(endpoint string, eth caller, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		eth:      eth,
		abi:      crowdfundingABI,
		timeout:  timeout,
	}
}

// ValidateEndpoint checks that rpcURL is an http(s), ws(s) or IPC endpoint.
func ValidateEndpoint(rpcURL string) error {
	if rpcURL == "" {
		return ErrNoEndpoint
	}
	u, err := url.Parse(rpcURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoEndpoint, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		if u.Host == "" {
			return fmt.Errorf("%w: missing host in %q", ErrNoEndpoint, rpcURL)
		}
		return nil
	case "":
		// IPC socket path
		return nil
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrNoEndpoint, u.Scheme)
	}
}

// Endpoint returns the RPC URL the client was dialed with.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Read calls a zero-argument view method and decodes its single return value.
// uint256 results are *big.Int, strings are string, and getAllCampaigns
// is []CampaignRecord.
func (c *Client) Read(ctx context.Context, address common.Address, method Method) Result {
	v, err := c.call(ctx, address, method)
	if err != nil {
		return Result{Status: model.ReadErrored, Err: err}
	}
	return Result{Value: v, Status: model.ReadLoaded}
}

func (c *Client) call(ctx context.Context, address common.Address, method Method) (value any, err error) {
	m, ok := c.abi.Methods[string(method)]
	if !ok {
		return nil, fmt.Errorf("chain: unknown method %q", method)
	}

	input, err := c.abi.Pack(m.Name)
	if err != nil {
		return nil, fmt.Errorf("chain: packing %s: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &address, Data: input}, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("chain: %s on %s: %w", method, address.Hex(), ctxErr)
		}
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			// The node answered; the call itself failed, e.g. a revert.
			return nil, fmt.Errorf("chain: %s on %s: %w", method, address.Hex(), err)
		}
		return nil, fmt.Errorf("%w: %s on %s: %w", ErrUnreachable, method, address.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoContract, method, address.Hex())
	}

	values, err := m.Outputs.Unpack(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", ErrDecode, method, len(values))
	}

	if method == MethodAllCampaigns {
		// ConvertType panics when the shapes disagree.
		defer func() {
			if r := recover(); r != nil {
				value, err = nil, fmt.Errorf("%w: %s: %v", ErrDecode, method, r)
			}
		}()
		records := *abi.ConvertType(values[0], new([]CampaignRecord)).(*[]CampaignRecord)
		return records, nil
	}

	return values[0], nil
}

// Info returns the chain ID and latest block number.
func (c *Client) Info(ctx context.Context) (Info, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("%w: chain id: %v", ErrUnreachable, err)
	}
	block, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return Info{ChainID: id}, fmt.Errorf("%w: block number: %v", ErrUnreachable, err)
	}
	return Info{ChainID: id, BlockNumber: block}, nil
}
