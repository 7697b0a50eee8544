// Package dto defines data transfer objects for the symbollist HTTP API.
package dto

// SymbolItem represents a symbol in the API response.
// It contains only the public-facing fields needed by the selection UI.
type SymbolItem struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Currency    string `json:"currency,omitempty"`
	Passthrough bool   `json:"passthrough,omitempty"`
}
