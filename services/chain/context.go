// Package chain resolves on-chain transaction receipts into payment receipts:
// it fetches the mined receipt over JSON-RPC, scans the emitted logs for the
// stablecoin transfer to the merchant wallet and formats the amount.
package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"turjman/config"
)

// ReceiptFetcher is the slice of the RPC client the resolver needs.
// *ethclient.Client satisfies it.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// VerificationContext carries the validated chain configuration. It is built
// once on first use; a configuration failure is cached and returned on every
// subsequent call until the process is fixed and restarted.
type VerificationContext struct {
	Fetcher         ReceiptFetcher
	TokenAddress    common.Address
	MerchantAddress common.Address
	Decimals        int
}

func newVerificationContext() (*VerificationContext, error) {
	cfg := config.AppConfig

	var missing []string
	if cfg.ArcRPCURL == "" {
		missing = append(missing, "ARC_RPC_URL")
	}
	if cfg.USDCAddress == "" {
		missing = append(missing, "USDC_ADDRESS")
	}
	if cfg.MerchantAddress == "" {
		missing = append(missing, "MERCHANT_ADDRESS")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	if !common.IsHexAddress(cfg.USDCAddress) {
		return nil, fmt.Errorf("USDC_ADDRESS is not a valid address")
	}
	if !common.IsHexAddress(cfg.MerchantAddress) {
		return nil, fmt.Errorf("MERCHANT_ADDRESS is not a valid address")
	}
	if cfg.USDCDecimals < 0 {
		return nil, fmt.Errorf("USDC_DECIMALS must be a non-negative integer")
	}

	client, err := ethclient.Dial(cfg.ArcRPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc provider: %w", err)
	}

	return &VerificationContext{
		Fetcher:         client,
		TokenAddress:    common.HexToAddress(cfg.USDCAddress),
		MerchantAddress: common.HexToAddress(cfg.MerchantAddress),
		Decimals:        cfg.USDCDecimals,
	}, nil
}

// DefaultResolver lazily builds the verification context and delegates
// resolution to it.
type DefaultResolver struct {
	once sync.Once
	vctx *VerificationContext
	err  error
}

// NewResolver builds an uninitialized resolver; the chain connection is
// established on the first Resolve call.
func NewResolver() *DefaultResolver {
	return &DefaultResolver{}
}

func (r *DefaultResolver) context() (*VerificationContext, error) {
	r.once.Do(func() {
		r.vctx, r.err = newVerificationContext()
	})
	return r.vctx, r.err
}

// Resolve implements Resolver.
func (r *DefaultResolver) Resolve(ctx context.Context, txHash string, ov ReceiptOverrides) (*Result, error) {
	vctx, err := r.context()
	if err != nil {
		return nil, err
	}
	return vctx.Resolve(ctx, txHash, ov)
}
