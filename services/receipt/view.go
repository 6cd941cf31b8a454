package receipt

import (
	"fmt"

	"turjman/config"
	"turjman/models"
	"turjman/utils"
)

// View is the presentation shape of a stored receipt, shared by the JSON
// endpoint and the PDF certificate. Field names are part of the wire contract.
type View struct {
	TxHash      string `json:"txHash"`
	Service     string `json:"service"`
	Partner     string `json:"partner"`
	Amount      string `json:"amount"`
	Network     string `json:"network"`
	Status      string `json:"status"`
	ExplorerURL string `json:"explorerUrl"`
	QRURL       string `json:"qrUrl"`
	PDFURL      string `json:"pdfUrl"`
}

// BuildView fills presentation fallbacks: partner resolves through the
// catalog down to the platform default, missing amounts render as "1.00".
func BuildView(r models.Receipt) View {
	var service *config.ServiceItem
	if r.ServiceID != "" {
		service = config.FindService(r.ServiceID)
	}

	partner := r.Partner
	if partner == "" && service != nil {
		partner = service.Partner
	}
	if partner == "" {
		partner = config.DefaultPartner
	}

	serviceLabel := r.ServiceLabel
	if serviceLabel == "" {
		serviceLabel = r.Service
	}
	if serviceLabel == "" {
		serviceLabel = r.ServiceID
	}
	if serviceLabel == "" {
		serviceLabel = "N/A"
	}

	amount := r.AmountUSDC
	if amount == "" {
		amount = "1.00"
	}

	network := r.Network
	if network == "" {
		network = config.AppConfig.NetworkLabel
	}

	status := r.Status
	if status == "" {
		status = models.StatusVerified
	}

	// Synthetic sentinel keys are not hashes; they get no explorer link.
	explorerURL := r.ExplorerURL
	if explorerURL == "" {
		explorerURL = utils.GetExplorerURL(r.Tx)
	}

	return View{
		TxHash:      r.Tx,
		Service:     serviceLabel,
		Partner:     partner,
		Amount:      fmt.Sprintf("%s USDC", amount),
		Network:     network,
		Status:      status,
		ExplorerURL: explorerURL,
		QRURL:       utils.BuildQRURL(explorerURL, 240, 1),
		PDFURL:      fmt.Sprintf("/api/receipts/%s?format=pdf", r.Tx),
	}
}
