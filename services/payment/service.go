// Package payment moves stablecoin funds from the custodial signer to the
// merchant wallet and computes the partner/platform revenue split.
package payment

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"turjman/config"
	"turjman/utils"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

const transferGasLimit = 100000

// Backend is the slice of the RPC client the payment flow needs.
// *ethclient.Client satisfies it.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// InvalidAmountError marks a request that failed amount validation; the HTTP
// layer maps it to a 400.
type InvalidAmountError struct {
	Amount string
	Err    error
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %v", e.Amount, e.Err)
}

func (e *InvalidAmountError) Unwrap() error { return e.Err }

// InsufficientBalanceError reports both the requested and available amounts
// as decimal strings. No transfer is attempted when it occurs.
type InsufficientBalanceError struct {
	Need string
	Have string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient tUSDC balance on signer: need %s, have %s", e.Need, e.Have)
}

// Result is the outcome of a successful payment submission.
type Result struct {
	TxHash       string
	ExplorerURL  string
	AmountUSDC   float64
	PartnerUSDC  float64
	PlatformUSDC float64
	SplitMode    string
}

// Submitter executes a stablecoin transfer and waits for it to be mined.
type Submitter interface {
	Pay(ctx context.Context, amountUSDC string) (*Result, error)
}

// paymentContext carries the validated signer-side chain configuration.
type paymentContext struct {
	backend         Backend
	erc20           abi.ABI
	signerKey       *ecdsa.PrivateKey
	signerAddress   common.Address
	merchantAddress common.Address
	tokenAddress    common.Address
	decimals        int
	chainID         *big.Int
}

// DefaultService builds the payment context on first use and caches any
// configuration failure until restart.
type DefaultService struct {
	logger *zap.Logger
	once   sync.Once
	pctx   *paymentContext
	err    error
}

// NewService builds an uninitialized payment service.
func NewService(logger *zap.Logger) *DefaultService {
	return &DefaultService{logger: logger}
}

func newPaymentContext(ctx context.Context) (*paymentContext, error) {
	cfg := config.AppConfig

	var missing []string
	if cfg.ArcRPCURL == "" {
		missing = append(missing, "ARC_RPC_URL")
	}
	if cfg.ServicePrivateKey == "" {
		missing = append(missing, "SERVICE_PRIVATE_KEY")
	}
	if cfg.MerchantAddress == "" {
		missing = append(missing, "MERCHANT_ADDRESS")
	}
	if cfg.USDCAddress == "" {
		missing = append(missing, "USDC_ADDRESS")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}

	if !common.IsHexAddress(cfg.MerchantAddress) {
		return nil, fmt.Errorf("MERCHANT_ADDRESS is not a valid address")
	}
	if !common.IsHexAddress(cfg.USDCAddress) {
		return nil, fmt.Errorf("USDC_ADDRESS is not a valid address")
	}
	if cfg.USDCDecimals < 0 {
		return nil, fmt.Errorf("USDC_DECIMALS must be a non-negative integer")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.ServicePrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("SERVICE_PRIVATE_KEY is not a valid key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	client, err := ethclient.Dial(cfg.ArcRPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc provider: %w", err)
	}

	chainID := big.NewInt(cfg.ArcChainID)
	if cfg.ArcChainID <= 0 {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("query chain id: %w", err)
		}
	}

	return &paymentContext{
		backend:         client,
		erc20:           parsed,
		signerKey:       key,
		signerAddress:   crypto.PubkeyToAddress(key.PublicKey),
		merchantAddress: common.HexToAddress(cfg.MerchantAddress),
		tokenAddress:    common.HexToAddress(cfg.USDCAddress),
		decimals:        cfg.USDCDecimals,
		chainID:         chainID,
	}, nil
}

func (s *DefaultService) context(ctx context.Context) (*paymentContext, error) {
	s.once.Do(func() {
		s.pctx, s.err = newPaymentContext(ctx)
	})
	return s.pctx, s.err
}

// Pay implements Submitter.
func (s *DefaultService) Pay(ctx context.Context, amountUSDC string) (*Result, error) {
	pctx, err := s.context(ctx)
	if err != nil {
		return nil, err
	}
	res, err := pctx.pay(ctx, amountUSDC)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Payment submitted",
		zap.String("txHash", res.TxHash),
		zap.Float64("amountUSDC", res.AmountUSDC))
	return res, nil
}

func (pc *paymentContext) pay(ctx context.Context, amountUSDC string) (*Result, error) {
	amountNumber, err := strconv.ParseFloat(strings.TrimSpace(amountUSDC), 64)
	if err != nil {
		return nil, &InvalidAmountError{Amount: amountUSDC, Err: errors.New("amountUSDC must be numeric")}
	}

	amount, err := utils.ParseUnits(amountUSDC, pc.decimals)
	if err != nil {
		return nil, &InvalidAmountError{Amount: amountUSDC, Err: err}
	}

	balance, err := pc.balanceOf(ctx, pc.signerAddress)
	if err != nil {
		return nil, fmt.Errorf("query signer balance: %w", err)
	}
	if balance.Cmp(amount) < 0 {
		return nil, &InsufficientBalanceError{
			Need: strings.TrimSpace(amountUSDC),
			Have: utils.FormatUnits(balance, pc.decimals),
		}
	}

	partnerUSDC, platformUSDC := CalcSplit(amountNumber, DefaultSplit)

	signed, err := pc.submitTransfer(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("submit transfer: %w", err)
	}
	if err := pc.waitMined(ctx, signed.Hash()); err != nil {
		return nil, fmt.Errorf("wait for transfer: %w", err)
	}

	txHash := utils.NormalizeTxHash(signed.Hash().Hex())
	return &Result{
		TxHash:       txHash,
		ExplorerURL:  utils.BuildExplorerTxURL(txHash),
		AmountUSDC:   amountNumber,
		PartnerUSDC:  partnerUSDC,
		PlatformUSDC: platformUSDC,
		SplitMode:    "offchain-stub",
	}, nil
}

func (pc *paymentContext) balanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	input, err := pc.erc20.Pack("balanceOf", owner)
	if err != nil {
		return nil, err
	}
	output, err := pc.backend.CallContract(ctx, ethereum.CallMsg{To: &pc.tokenAddress, Data: input}, nil)
	if err != nil {
		return nil, err
	}
	results, err := pc.erc20.Unpack("balanceOf", output)
	if err != nil {
		return nil, err
	}
	balance, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", results[0])
	}
	return balance, nil
}

func (pc *paymentContext) submitTransfer(ctx context.Context, amount *big.Int) (*types.Transaction, error) {
	input, err := pc.erc20.Pack("transfer", pc.merchantAddress, amount)
	if err != nil {
		return nil, err
	}

	nonce, err := pc.backend.PendingNonceAt(ctx, pc.signerAddress)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}
	gasPrice, err := pc.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, pc.tokenAddress, big.NewInt(0), transferGasLimit, gasPrice, input)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(pc.chainID), pc.signerKey)
	if err != nil {
		return nil, fmt.Errorf("sign transfer: %w", err)
	}
	if err := pc.backend.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	return signed, nil
}

// waitMined polls for the transaction receipt until it appears or the
// context expires. There is no retry/backoff beyond the poll interval.
func (pc *paymentContext) waitMined(ctx context.Context, txHash common.Hash) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		receipt, err := pc.backend.TransactionReceipt(ctx, txHash)
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return err
		}
		if receipt != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
