package config

// ServiceItem is a static catalog entry. The catalog is immutable at runtime
// and never user-writable.
type ServiceItem struct {
	ID                string  `json:"id"`
	Label             string  `json:"label"`
	ServiceLabel      string  `json:"serviceLabel,omitempty"`
	Partner           string  `json:"partner,omitempty"`
	PartnerID         string  `json:"partnerId"`
	PriceUSDC         float64 `json:"priceUSDC"`
	PartnerAddress    string  `json:"partnerAddress,omitempty"`
	DefaultTrustScore int     `json:"defaultTrustScore,omitempty"`
}

// DefaultPartner is used when neither the caller nor the catalog names one.
const DefaultPartner = "Turjman Group"

// DefaultServiceLabel is used when a receipt carries no service metadata.
const DefaultServiceLabel = "Legal Translation - MOFA"

var Services = []ServiceItem{
	{
		ID:                "mofa-legal-translation",
		Label:             "Legal Translation — MOFA",
		ServiceLabel:      "Legal Translation — MOFA",
		PartnerID:         "translator-023",
		PriceUSDC:         1.0,
		DefaultTrustScore: 84,
	},
	{
		ID:                "mofaic-attestation",
		Label:             "Document Attestation — MOFAIC",
		ServiceLabel:      "Document Attestation — MOFAIC",
		PartnerID:         "attest-011",
		PriceUSDC:         1.25,
		DefaultTrustScore: 82,
	},
	{
		ID:                "public-prosecution",
		Label:             "Public Prosecution Assistance",
		ServiceLabel:      "Public Prosecution Assistance",
		PartnerID:         "legal-008",
		PriceUSDC:         0.75,
		DefaultTrustScore: 83,
	},
	{
		ID:                "business-setup-ded",
		Label:             "Business Setup — DED",
		ServiceLabel:      "Business Setup — DED",
		PartnerID:         "biz-021",
		PriceUSDC:         1.0,
		DefaultTrustScore: 85,
	},
	{
		ID:                "golden-visa",
		Label:             "Golden Visa Application",
		ServiceLabel:      "Golden Visa Application",
		PartnerID:         "gov-007",
		PriceUSDC:         1.0,
		DefaultTrustScore: 86,
	},
}

// FindService looks up a catalog entry by id. Returns nil when unknown.
func FindService(id string) *ServiceItem {
	for i := range Services {
		if Services[i].ID == id {
			return &Services[i]
		}
	}
	return nil
}
