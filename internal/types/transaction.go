package types

import (
	"github.com/holiman/uint256"

	"github.com/vireo-chain/vireo/internal/xcrypto"
)

// Transaction is an account-model transfer/call, per spec.md §3.
type Transaction struct {
	Nonce     uint64
	From      PublicKey
	To        *PublicKey // nil denotes contract creation / no recipient
	Value     *uint256.Int
	GasLimit  uint64
	GasPrice  uint64
	Data      []byte
	Signature Signature
}

// SigningBytes returns the canonical encoding the signature is computed
// over — every field except the signature itself.
func (tx *Transaction) SigningBytes() []byte {
	w := newCanonicalWriter()
	w.writeUint64(tx.Nonce)
	w.writePublicKey(tx.From)
	if tx.To != nil {
		w.buf.WriteByte(1)
		w.writePublicKey(*tx.To)
	} else {
		w.buf.WriteByte(0)
	}
	w.writeUint256(tx.Value)
	w.writeUint64(tx.GasLimit)
	w.writeUint64(tx.GasPrice)
	w.writeBytes(tx.Data)
	return w.bytes()
}

// Hash derives the transaction's identifier: keccak-256 over SigningBytes
// plus the signature, so that two transactions differing only in signature
// (e.g. malleated) are never mistaken for one another downstream.
func (tx *Transaction) Hash() Hash {
	w := newCanonicalWriter()
	w.buf.Write(tx.SigningBytes())
	w.buf.Write(tx.Signature[:])
	return Hash(xcrypto.Keccak256(w.bytes()))
}

// HasZeroSignature reports whether the signature is the invalid-by-
// construction all-zero placeholder.
func (tx *Transaction) HasZeroSignature() bool {
	return tx.Signature.IsZero()
}

// Cost is value + gas_limit*gas_price, the balance a sender must cover.
func (tx *Transaction) Cost() *uint256.Int {
	gas := new(uint256.Int).SetUint64(tx.GasLimit)
	price := new(uint256.Int).SetUint64(tx.GasPrice)
	fee := new(uint256.Int).Mul(gas, price)
	val := tx.Value
	if val == nil {
		val = new(uint256.Int)
	}
	return new(uint256.Int).Add(val, fee)
}
