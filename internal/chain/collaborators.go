package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"twapRouter/internal/engine"
)

// Directory resolves pools through the on-chain factory.
type Directory struct {
	client  *Client
	factory common.Address
	abi     abi.ABI
}

// NewDirectory builds a directory over the factory contract.
func NewDirectory(client *Client, factory common.Address) (*Directory, error) {
	parsed, err := loadABI("factory")
	if err != nil {
		return nil, err
	}
	return &Directory{client: client, factory: factory, abi: parsed}, nil
}

// Lookup returns the pool for the canonical triple, or the zero
// address when the factory has none.
func (d *Directory) Lookup(ctx context.Context, token0, token1 common.Address, fee uint32) (common.Address, error) {
	data, err := d.abi.Pack("getPool", token0, token1, big.NewInt(int64(fee)))
	if err != nil {
		return common.Address{}, fmt.Errorf("pack getPool: %w", err)
	}
	out, err := d.client.Call(ctx, d.factory, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("call getPool: %w", err)
	}
	values, err := d.abi.Unpack("getPool", out)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack getPool: %w", err)
	}
	pool, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected getPool return type %T", values[0])
	}
	return pool, nil
}

// Observer reads pool observations for TWAP quotes.
type Observer struct {
	client *Client
	abi    abi.ABI
}

// NewObserver builds an observation reader.
func NewObserver(client *Client) (*Observer, error) {
	parsed, err := loadABI("pool")
	if err != nil {
		return nil, err
	}
	return &Observer{client: client, abi: parsed}, nil
}

// ObserveMeanTick returns the mean tick over the trailing window,
// rounding toward negative infinity the way the pool engine does.
func (o *Observer) ObserveMeanTick(ctx context.Context, pool common.Address, windowSec uint32) (int64, error) {
	if windowSec == 0 {
		return 0, fmt.Errorf("window must be greater than zero")
	}

	data, err := o.abi.Pack("observe", []uint32{windowSec, 0})
	if err != nil {
		return 0, fmt.Errorf("pack observe: %w", err)
	}
	out, err := o.client.Call(ctx, pool, data)
	if err != nil {
		return 0, fmt.Errorf("call observe: %w", err)
	}
	values, err := o.abi.Unpack("observe", out)
	if err != nil {
		return 0, fmt.Errorf("unpack observe: %w", err)
	}
	cumulatives, ok := values[0].([]*big.Int)
	if !ok || len(cumulatives) != 2 {
		return 0, fmt.Errorf("unexpected observe return %T", values[0])
	}

	delta := new(big.Int).Sub(cumulatives[1], cumulatives[0])
	window := big.NewInt(int64(windowSec))
	mean, rem := new(big.Int).QuoRem(delta, window, new(big.Int))
	if delta.Sign() < 0 && rem.Sign() != 0 {
		mean.Sub(mean, big.NewInt(1))
	}
	return mean.Int64(), nil
}

// Executor submits swaps to the on-chain execution router. The return
// amount is captured by simulating the call before sending it.
type Executor struct {
	client *Client
	router common.Address
	abi    abi.ABI
}

// NewExecutor builds an executor bound to the execution router address.
func NewExecutor(client *Client, router common.Address) (*Executor, error) {
	parsed, err := loadABI("router")
	if err != nil {
		return nil, err
	}
	return &Executor{client: client, router: router, abi: parsed}, nil
}

// Router returns the execution router's address.
func (e *Executor) Router() common.Address {
	return e.router
}

// ExactInput executes an exact-input swap and returns the produced
// amount.
func (e *Executor) ExactInput(ctx context.Context, order engine.ExactInputOrder) (*big.Int, error) {
	params := struct {
		Path             []byte
		Recipient        common.Address
		Deadline         *big.Int
		AmountIn         *big.Int
		AmountOutMinimum *big.Int
	}{order.Path, order.Recipient, big.NewInt(order.Deadline), order.AmountIn, order.AmountOutMinimum}

	data, err := e.abi.Pack("exactInput", params)
	if err != nil {
		return nil, fmt.Errorf("pack exactInput: %w", err)
	}
	return e.execute(ctx, "exactInput", data)
}

// ExactOutput executes an exact-output swap and returns the consumed
// amount.
func (e *Executor) ExactOutput(ctx context.Context, order engine.ExactOutputOrder) (*big.Int, error) {
	params := struct {
		Path            []byte
		Recipient       common.Address
		Deadline        *big.Int
		AmountOut       *big.Int
		AmountInMaximum *big.Int
	}{order.Path, order.Recipient, big.NewInt(order.Deadline), order.AmountOut, order.AmountInMaximum}

	data, err := e.abi.Pack("exactOutput", params)
	if err != nil {
		return nil, fmt.Errorf("pack exactOutput: %w", err)
	}
	return e.execute(ctx, "exactOutput", data)
}

func (e *Executor) execute(ctx context.Context, method string, data []byte) (*big.Int, error) {
	// Simulate first to capture the return amount; the subsequent
	// transaction reverts under the same conditions the simulation does.
	out, err := e.client.Call(ctx, e.router, data)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", method, err)
	}
	values, err := e.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s return type %T", method, values[0])
	}

	if _, err := e.client.Transact(ctx, e.router, data, nil); err != nil {
		return nil, err
	}
	return amount, nil
}

// Wrapper converts native currency through the WETH9-style contract.
type Wrapper struct {
	client *Client
	token  common.Address
	abi    abi.ABI
}

// NewWrapper builds a wrapper bound to the wrapped-native token.
func NewWrapper(client *Client, token common.Address) (*Wrapper, error) {
	parsed, err := loadABI("weth9")
	if err != nil {
		return nil, err
	}
	return &Wrapper{client: client, token: token, abi: parsed}, nil
}

// Token returns the wrapped-native token address.
func (w *Wrapper) Token() common.Address {
	return w.token
}

// Wrap deposits native currency for wrapped tokens.
func (w *Wrapper) Wrap(ctx context.Context, amount *big.Int) error {
	data, err := w.abi.Pack("deposit")
	if err != nil {
		return fmt.Errorf("pack deposit: %w", err)
	}
	if _, err := w.client.Transact(ctx, w.token, data, amount); err != nil {
		return fmt.Errorf("wrap: %w", err)
	}
	return nil
}

// Unwrap redeems wrapped tokens for native currency.
func (w *Wrapper) Unwrap(ctx context.Context, amount *big.Int) error {
	data, err := w.abi.Pack("withdraw", amount)
	if err != nil {
		return fmt.Errorf("pack withdraw: %w", err)
	}
	if _, err := w.client.Transact(ctx, w.token, data, nil); err != nil {
		return fmt.Errorf("unwrap: %w", err)
	}
	return nil
}

// TokenBackend executes ERC-20 primitives and native forwarding as
// transactions from the client's account.
type TokenBackend struct {
	client *Client
	abi    abi.ABI
}

// NewTokenBackend builds the ERC-20 backend.
func NewTokenBackend(client *Client) (*TokenBackend, error) {
	parsed, err := loadABI("erc20")
	if err != nil {
		return nil, err
	}
	return &TokenBackend{client: client, abi: parsed}, nil
}

// TransferFrom pulls tokens from an approving account.
func (b *TokenBackend) TransferFrom(ctx context.Context, token, from, to common.Address, amount *big.Int) error {
	return b.transact(ctx, token, "transferFrom", from, to, amount)
}

// Transfer sends tokens from the client's account.
func (b *TokenBackend) Transfer(ctx context.Context, token, to common.Address, amount *big.Int) error {
	return b.transact(ctx, token, "transfer", to, amount)
}

// Approve grants the spender an allowance.
func (b *TokenBackend) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) error {
	return b.transact(ctx, token, "approve", spender, amount)
}

// SendNative forwards native currency to the recipient.
func (b *TokenBackend) SendNative(ctx context.Context, to common.Address, amount *big.Int) error {
	if _, err := b.client.Transact(ctx, to, nil, amount); err != nil {
		return fmt.Errorf("send native: %w", err)
	}
	return nil
}

// BalanceOf reads an account's token balance.
func (b *TokenBackend) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	data, err := b.abi.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("pack balanceOf: %w", err)
	}
	out, err := b.client.Call(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf: %w", err)
	}
	values, err := b.abi.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf return type %T", values[0])
	}
	return balance, nil
}

func (b *TokenBackend) transact(ctx context.Context, token common.Address, method string, args ...interface{}) error {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("pack %s: %w", method, err)
	}
	if _, err := b.client.Transact(ctx, token, data, nil); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}
