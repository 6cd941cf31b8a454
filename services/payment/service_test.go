package payment

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"turjman/config"
)

type fakeBackend struct {
	balance *big.Int
	sent    []*types.Transaction
}

func (f *fakeBackend) CallContract(_ context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return common.LeftPadBytes(f.balance.Bytes(), 32), nil
}

func (f *fakeBackend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeBackend) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	for _, tx := range f.sent {
		if tx.Hash() == txHash {
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: txHash}, nil
		}
	}
	return nil, ethereum.NotFound
}

func (f *fakeBackend) ChainID(_ context.Context) (*big.Int, error) {
	return big.NewInt(5042), nil
}

func newTestPaymentContext(t *testing.T, backend Backend) *paymentContext {
	t.Helper()
	config.AppConfig.ArcExplorerBase = "https://testnet.arcscan.app"

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &paymentContext{
		backend:         backend,
		erc20:           parsed,
		signerKey:       key,
		signerAddress:   crypto.PubkeyToAddress(key.PublicKey),
		merchantAddress: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		tokenAddress:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		decimals:        6,
		chainID:         big.NewInt(5042),
	}
}

func TestPaySuccess(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(100_000_000)} // 100 USDC
	pc := newTestPaymentContext(t, backend)

	res, err := pc.pay(context.Background(), "75")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("sent %d transactions, want 1", len(backend.sent))
	}
	if res.TxHash != strings.ToLower(backend.sent[0].Hash().Hex()) {
		t.Errorf("txHash = %q, want normalized hash of submitted tx", res.TxHash)
	}
	if res.AmountUSDC != 75 {
		t.Errorf("amountUSDC = %v, want 75", res.AmountUSDC)
	}
	if res.PartnerUSDC != 67.5 || res.PlatformUSDC != 7.5 {
		t.Errorf("split = %v/%v, want 67.5/7.5", res.PartnerUSDC, res.PlatformUSDC)
	}
	if res.SplitMode != "offchain-stub" {
		t.Errorf("splitMode = %q", res.SplitMode)
	}
	if !strings.HasPrefix(res.ExplorerURL, "https://testnet.arcscan.app/tx/0x") {
		t.Errorf("explorerUrl = %q", res.ExplorerURL)
	}
}

func TestPayInsufficientBalance(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(1_500_000)} // 1.5 USDC
	pc := newTestPaymentContext(t, backend)

	_, err := pc.pay(context.Background(), "75")
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientBalanceError", err)
	}
	if insufficient.Need != "75" {
		t.Errorf("need = %q, want 75", insufficient.Need)
	}
	if insufficient.Have != "1.5" {
		t.Errorf("have = %q, want 1.5", insufficient.Have)
	}
	if len(backend.sent) != 0 {
		t.Errorf("transfer was submitted despite insufficient balance")
	}
}

func TestPayRejectsBadAmounts(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(100_000_000)}
	pc := newTestPaymentContext(t, backend)

	for _, amount := range []string{"", "abc", "1.2345678", "1.2.3"} {
		_, err := pc.pay(context.Background(), amount)
		var invalid *InvalidAmountError
		if !errors.As(err, &invalid) {
			t.Errorf("pay(%q) err = %v, want InvalidAmountError", amount, err)
		}
	}
	if len(backend.sent) != 0 {
		t.Errorf("transfer submitted for invalid amount")
	}
}

func TestPayTransferCallData(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(100_000_000)}
	pc := newTestPaymentContext(t, backend)

	if _, err := pc.pay(context.Background(), "1.50"); err != nil {
		t.Fatal(err)
	}

	tx := backend.sent[0]
	if *tx.To() != pc.tokenAddress {
		t.Errorf("tx to = %s, want token contract", tx.To())
	}
	input, err := pc.erc20.Pack("transfer", pc.merchantAddress, big.NewInt(1_500_000))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.EqualFold(common.Bytes2Hex(tx.Data()), common.Bytes2Hex(input)) {
		t.Errorf("transfer calldata mismatch")
	}
}
