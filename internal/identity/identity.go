// Package identity holds the wallet keypair that signs every lightnode request.
package identity

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is the capability the remote operations need from an identity.
type Signer interface {
	// Address returns the checksummed 0x address.
	Address() string
	// SignMessage returns the 0x-prefixed EIP-191 personal signature of message.
	SignMessage(message string) (string, error)
}

// ErrInvalidKey is returned when a private key cannot be parsed.
var ErrInvalidKey = errors.New("invalid private key")

// Identity is a secp256k1 keypair. It is immutable once created.
type Identity struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// Generate creates a fresh random identity.
func Generate() (*Identity, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return fromKey(key), nil
}

// FromPrivateKey parses a hex private key, with or without the 0x prefix.
func FromPrivateKey(hexKey string) (*Identity, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return fromKey(key), nil
}

func fromKey(key *ecdsa.PrivateKey) *Identity {
	return &Identity{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address returns the checksummed 0x address.
func (i *Identity) Address() string {
	return i.address.Hex()
}

// PrivateKeyHex returns the 0x-prefixed private key, as stored in wallets.json.
func (i *Identity) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(i.key))
}

// SignMessage signs message with the "\x19Ethereum Signed Message:\n" prefix and
// returns the 65-byte signature with a 27/28 recovery byte.
func (i *Identity) SignMessage(message string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), i.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverAddress returns the address that produced signature over message.
func RecoverAddress(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}
