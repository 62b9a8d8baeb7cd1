package signer

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer produces bid attestations for the auction house contract. It holds
// one long-lived secp256k1 key whose address the contract trusts.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// New creates a signer from a hex-encoded private key
func New(privateKeyHex string) (*Signer, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to load signer private key: %w", err)
	}

	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the attestation address trusted by the auction contract
func (s *Signer) Address() common.Address {
	return s.address
}

// SignBid signs a bid attestation over (auctionId, bidder, token, amount,
// valueInUSD). The digest is the keccak256 of the tightly packed fields,
// wrapped in the EIP-191 personal-message prefix so the contract can verify
// it with ecrecover after applying the same prefix.
func (s *Signer) SignBid(auctionID *big.Int, bidder, token common.Address, amount, valueInUSD *big.Int) ([]byte, error) {
	if auctionID == nil || amount == nil || valueInUSD == nil {
		return nil, fmt.Errorf("bid attestation fields must not be nil")
	}

	packed := make([]byte, 0, 32+20+20+32+32)
	packed = append(packed, common.LeftPadBytes(auctionID.Bytes(), 32)...)
	packed = append(packed, bidder.Bytes()...)
	packed = append(packed, token.Bytes()...)
	packed = append(packed, common.LeftPadBytes(amount.Bytes(), 32)...)
	packed = append(packed, common.LeftPadBytes(valueInUSD.Bytes(), 32)...)

	digest := crypto.Keccak256(packed)
	prefixed := crypto.Keccak256(append([]byte("\x19Ethereum Signed Message:\n32"), digest...))

	signature, err := crypto.Sign(prefixed, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign bid: %w", err)
	}

	// Contracts expect the recovery id offset by 27
	signature[64] += 27

	return signature, nil
}
