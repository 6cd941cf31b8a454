package chain

import (
	"context"
	"errors"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"turjman/config"
	"turjman/models"
	"turjman/utils"
)

// Resolver turns a transaction hash into a payment receipt or a structured
// failure. It never writes to the receipt store; persistence is the caller's
// responsibility.
type Resolver interface {
	Resolve(ctx context.Context, txHash string, ov ReceiptOverrides) (*Result, error)
}

// ReceiptOverrides are caller-supplied presentation fields, taking priority
// over the service catalog.
type ReceiptOverrides struct {
	ServiceID    string
	ServiceLabel string
	Partner      string
	Network      string
	Status       string
}

// Resolution outcomes. Pending is not an error: the transaction simply is not
// indexed yet and the caller should retry shortly.
const (
	ResultVerified = "verified"
	ResultPending  = "pending"
	ResultFailed   = "failed"
)

// Result is the tagged outcome of a resolution. Receipt is set only for
// verified outcomes.
type Result struct {
	Status  string
	Message string
	Receipt *models.Receipt
}

var transferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// decodeTransfer attempts to decode a log as an ERC-20 Transfer event.
// Non-transfer logs report ok=false and are skipped by the caller.
func decodeTransfer(lg *types.Log) (to common.Address, value *big.Int, ok bool) {
	if len(lg.Topics) != 3 || lg.Topics[0] != transferEventTopic {
		return common.Address{}, nil, false
	}
	if len(lg.Data) != 32 {
		return common.Address{}, nil, false
	}
	return common.BytesToAddress(lg.Topics[2].Bytes()), new(big.Int).SetBytes(lg.Data), true
}

// Resolve fetches the mined receipt for txHash and scans its logs for the
// first transfer of the configured token to the merchant wallet.
func (vc *VerificationContext) Resolve(ctx context.Context, txHash string, ov ReceiptOverrides) (*Result, error) {
	trimmed := strings.TrimSpace(txHash)

	mined, err := vc.Fetcher.TransactionReceipt(ctx, common.HexToHash(trimmed))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return &Result{
				Status:  ResultPending,
				Message: "Transaction not indexed yet. Try again in a few seconds.",
			}, nil
		}
		return nil, err
	}
	if mined == nil {
		return &Result{
			Status:  ResultPending,
			Message: "Transaction not indexed yet. Try again in a few seconds.",
		}, nil
	}

	if mined.Status != types.ReceiptStatusSuccessful {
		return &Result{
			Status:  ResultFailed,
			Message: "Transaction reverted on-chain.",
		}, nil
	}

	var amountRaw *big.Int
	for _, lg := range mined.Logs {
		if lg.Address != vc.TokenAddress {
			continue
		}
		to, value, ok := decodeTransfer(lg)
		if !ok {
			// ignore non-transfer logs
			continue
		}
		if to == vc.MerchantAddress {
			amountRaw = value
			break
		}
	}

	if amountRaw == nil {
		return &Result{
			Status:  ResultFailed,
			Message: "USDC transfer to the merchant wallet was not found in this transaction.",
		}, nil
	}

	amountUSDC := utils.FormatUnits(amountRaw, vc.Decimals)

	// Prefer the hash reported by the mined receipt over the caller input,
	// then always re-normalize the chosen value.
	canonical := utils.NormalizeTxHash(mined.TxHash.Hex())
	if canonical == "" {
		canonical = utils.NormalizeTxHash(trimmed)
	}
	if canonical == "" {
		canonical = strings.ToLower(trimmed)
	}

	rec := vc.buildReceipt(canonical, amountUSDC, ov)
	return &Result{Status: ResultVerified, Receipt: &rec}, nil
}

// buildReceipt merges caller overrides with catalog lookups and hardcoded
// defaults, in that priority, and derives the explorer and PDF links.
func (vc *VerificationContext) buildReceipt(tx, amountUSDC string, ov ReceiptOverrides) models.Receipt {
	var service *config.ServiceItem
	if ov.ServiceID != "" {
		service = config.FindService(ov.ServiceID)
	}

	serviceLabel := ov.ServiceLabel
	if serviceLabel == "" && service != nil {
		serviceLabel = service.ServiceLabel
		if serviceLabel == "" {
			serviceLabel = service.Label
		}
	}
	if serviceLabel == "" {
		serviceLabel = config.DefaultServiceLabel
	}

	// Partner resolves through the catalog entry's partner, partner id and
	// label before the platform default.
	partner := ov.Partner
	if partner == "" && service != nil {
		partner = service.Partner
		if partner == "" {
			partner = service.PartnerID
		}
		if partner == "" {
			partner = service.Label
		}
	}
	if partner == "" {
		partner = config.DefaultPartner
	}

	network := ov.Network
	if network == "" {
		network = config.AppConfig.NetworkLabel
	}

	status := ov.Status
	if status == "" {
		status = models.StatusVerified
	}

	query := url.Values{}
	if ov.ServiceID != "" {
		query.Set("serviceId", ov.ServiceID)
	}
	query.Set("serviceLabel", serviceLabel)
	query.Set("partner", partner)
	query.Set("network", network)
	query.Set("status", status)

	return models.Receipt{
		Tx:           tx,
		Service:      serviceLabel,
		ServiceID:    ov.ServiceID,
		ServiceLabel: serviceLabel,
		Partner:      partner,
		AmountUSDC:   amountUSDC,
		Network:      network,
		Status:       status,
		ExplorerURL:  utils.BuildExplorerTxURL(tx),
		PDFURL:       utils.BuildPDFURL(tx, query),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
