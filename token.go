package kvac

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// TokenVersion is the current wire version of the token envelope.
const TokenVersion = 1

// Token is the portable envelope a wallet stores and transfers. It carries
// the coin attributes and MAC as raw encodings so a decoded token can be
// validated field by field before the coin is reconstructed.
type Token struct {
	Version uint8  `cbor:"v"`
	MintID  string `cbor:"mint"`

	Amount      []byte `cbor:"a"`
	AmountBlind []byte `cbor:"ab"`
	ScriptHash  []byte `cbor:"s,omitempty"`
	ScriptBlind []byte `cbor:"sb,omitempty"`
	Tag         []byte `cbor:"t"`
	V           []byte `cbor:"V"`
}

// NewToken wraps a minted coin for storage or transfer.
func NewToken(coin *Coin, mintID string) *Token {
	token := &Token{
		Version:     TokenVersion,
		MintID:      mintID,
		Amount:      coin.Amount.Amount.Bytes(),
		AmountBlind: coin.Amount.Blind.Bytes(),
		Tag:         coin.Mac.T.Bytes(),
		V:           coin.Mac.V.Bytes(),
	}
	if coin.Script != nil {
		token.ScriptHash = coin.Script.ScriptHash.Bytes()
		token.ScriptBlind = coin.Script.Blind.Bytes()
	}
	return token
}

// Coin reconstructs the spendable coin, validating every encoding.
func (token *Token) Coin() (*Coin, error) {
	if token.Version != TokenVersion {
		return nil, fmt.Errorf("token: unsupported version %d: %w", token.Version, ErrMalformedEncoding)
	}
	amount, err := ScalarFromBytes(token.Amount)
	if err != nil {
		return nil, err
	}
	blind, err := ScalarFromBytes(token.AmountBlind)
	if err != nil {
		return nil, err
	}
	t, err := ScalarFromBytes(token.Tag)
	if err != nil {
		return nil, err
	}
	v, err := PointFromBytes(token.V)
	if err != nil {
		return nil, err
	}
	coin := &Coin{
		Amount: &AmountAttribute{Amount: amount, Blind: blind},
		Mac:    &MAC{T: t, V: v},
	}
	if len(token.ScriptHash) > 0 {
		hash, err := ScalarFromBytes(token.ScriptHash)
		if err != nil {
			return nil, err
		}
		sblind, err := ScalarFromBytes(token.ScriptBlind)
		if err != nil {
			return nil, err
		}
		coin.Script = &ScriptAttribute{ScriptHash: hash, Blind: sblind}
	}
	return coin, nil
}

// Serialize encodes the token envelope as deterministic CBOR.
func (token *Token) Serialize() ([]byte, error) {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		return nil, err
	}
	return mode.Marshal(token)
}

// DeserializeToken decodes a token envelope.
func DeserializeToken(data []byte) (*Token, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	token := &Token{}
	if err := cbor.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("token: %v: %w", err, ErrMalformedEncoding)
	}
	return token, nil
}
