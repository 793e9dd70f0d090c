package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Connection is the RPC-backed Provider. Transactions are submitted with
// eth_sendTransaction, so the node or wallet behind the RPC endpoint signs
// with its own account.
type Connection struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	account   common.Address
	hasAcct   bool
}

// Dial connects to the provider and resolves its active account list. A
// provider with no accounts still connects; CurrentAddress then fails until
// the caller reconnects with an unlocked account.
func Dial(ctx context.Context, rpcURL string) (*Connection, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial provider: %w", err)
	}

	conn := &Connection{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}

	var accounts []common.Address
	if err := rpcClient.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) > 0 {
		conn.account = accounts[0]
		conn.hasAcct = true
	}

	return conn, nil
}

// CurrentAddress returns the connected account, or ErrNoAccount.
func (c *Connection) CurrentAddress() (common.Address, error) {
	if !c.hasAcct {
		return common.Address{}, ErrNoAccount
	}
	return c.account, nil
}

func (c *Connection) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// SendTransaction submits the request via eth_sendTransaction and returns
// the transaction hash assigned by the provider.
func (c *Connection) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	arg := map[string]interface{}{
		"from": req.From,
		"to":   req.To,
		"data": hexutil.Bytes(req.Data),
	}
	if req.Value != nil && req.Value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(req.Value)
	}

	var hash common.Hash
	if err := c.rpcClient.CallContext(ctx, &hash, "eth_sendTransaction", arg); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return hash, nil
}

func (c *Connection) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.ethClient.TransactionReceipt(ctx, txHash)
}

func (c *Connection) BlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// Close closes the underlying RPC client.
func (c *Connection) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}
