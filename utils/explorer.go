package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"turjman/config"
)

var txHashPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)

// NormalizeTxHash lower-cases a well-formed 0x-prefixed 32-byte transaction
// hash. Returns "" for anything that does not match the fixed-length hex
// pattern. Normalization is idempotent.
func NormalizeTxHash(value string) string {
	trimmed := strings.TrimSpace(value)
	if !txHashPattern.MatchString(trimmed) {
		return ""
	}
	return strings.ToLower(trimmed)
}

// ExplorerBase returns the configured explorer base URL without a trailing slash.
func ExplorerBase() string {
	base := config.AppConfig.ArcExplorerBase
	return strings.TrimRight(base, "/")
}

// BuildExplorerTxURL returns the explorer page for a transaction.
func BuildExplorerTxURL(tx string) string {
	return fmt.Sprintf("%s/tx/%s", ExplorerBase(), tx)
}

// GetExplorerURL normalizes the hash first; returns "" when the hash is invalid.
func GetExplorerURL(tx string) string {
	normalized := NormalizeTxHash(tx)
	if normalized == "" {
		return ""
	}
	return BuildExplorerTxURL(normalized)
}

// BuildQRURL points an external QR image generator at the given URL.
func BuildQRURL(target string, size int, margin int) string {
	return fmt.Sprintf("https://quickchart.io/qr?text=%s&size=%d&margin=%d",
		url.QueryEscape(target), size, margin)
}

// BuildPDFURL returns the same-origin PDF endpoint for a receipt, carrying
// presentation overrides as query parameters.
func BuildPDFURL(tx string, params url.Values) string {
	query := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("format", "pdf")
	return fmt.Sprintf("/api/receipts/%s?%s", url.PathEscape(tx), query.Encode())
}
