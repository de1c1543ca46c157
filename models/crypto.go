package models

import "fmt"

// CryptoType is one of the closed set of reward denominations. Every balance,
// task reward and withdrawal is measured in exactly one of these.
type CryptoType string

const (
	CryptoPepe CryptoType = "pepe"
	CryptoDash CryptoType = "dash"
	CryptoLtc  CryptoType = "ltc"
)

// AllCryptoTypes lists the recognized denominations.
func AllCryptoTypes() []CryptoType {
	return []CryptoType{CryptoPepe, CryptoDash, CryptoLtc}
}

// ParseCryptoType validates a denomination coming from a request body.
func ParseCryptoType(s string) (CryptoType, error) {
	switch CryptoType(s) {
	case CryptoPepe, CryptoDash, CryptoLtc:
		return CryptoType(s), nil
	}
	return "", fmt.Errorf("unknown crypto type %q", s)
}

func (c CryptoType) Valid() bool {
	_, err := ParseCryptoType(string(c))
	return err == nil
}
