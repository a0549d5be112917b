package solana

import "fmt"

// CommitmentLevel is how finalized a block must be for the node to answer
// from it.
type CommitmentLevel string

const (
	// CommitmentProcessed means the block was processed by a leader but may
	// still be dropped.
	CommitmentProcessed CommitmentLevel = "processed"
	// CommitmentConfirmed means the block reached one confirmation.
	CommitmentConfirmed CommitmentLevel = "confirmed"
	// CommitmentFinalized means the block cannot be rolled back.
	CommitmentFinalized CommitmentLevel = "finalized"
)

func (c CommitmentLevel) Validate() error {
	switch c {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
		return nil
	}
	return fmt.Errorf("%w: unknown commitment level %q", ErrInvalidParams, c)
}

// BlockCommitmentLevel is the commitment subset getBlock accepts:
// "processed" is not supported by the upstream API for block queries.
type BlockCommitmentLevel string

const (
	BlockCommitmentConfirmed BlockCommitmentLevel = "confirmed"
	BlockCommitmentFinalized BlockCommitmentLevel = "finalized"
)

func (c BlockCommitmentLevel) Validate() error {
	switch c {
	case BlockCommitmentConfirmed, BlockCommitmentFinalized:
		return nil
	}
	return fmt.Errorf("%w: getBlock commitment must be confirmed or finalized, got %q", ErrInvalidParams, c)
}

// blockCommitmentFor maps a service-wide default commitment onto the
// getBlock subset. A processed default degrades to confirmed, the lowest
// level block queries support.
func blockCommitmentFor(level CommitmentLevel) BlockCommitmentLevel {
	if level == CommitmentFinalized {
		return BlockCommitmentFinalized
	}
	return BlockCommitmentConfirmed
}

// AccountEncoding selects the wire encoding of account data in
// getAccountInfo responses.
type AccountEncoding string

const (
	// AccountEncodingBase58 is limited to account data under 129 bytes.
	AccountEncodingBase58 AccountEncoding = "base58"
	AccountEncodingBase64 AccountEncoding = "base64"
	// AccountEncodingBase64Zstd compresses the account data with Zstandard
	// before base64 encoding it.
	AccountEncodingBase64Zstd AccountEncoding = "base64+zstd"
	// AccountEncodingJSONParsed asks for program-specific human-readable
	// state; nodes fall back to base64 when no parser exists.
	AccountEncodingJSONParsed AccountEncoding = "jsonParsed"
)

func (e AccountEncoding) Validate() error {
	switch e {
	case AccountEncodingBase58, AccountEncodingBase64, AccountEncodingBase64Zstd, AccountEncodingJSONParsed:
		return nil
	}
	return fmt.Errorf("%w: unknown account encoding %q", ErrInvalidParams, e)
}

// TransactionEncoding selects the wire encoding of a fetched transaction.
// Only the binary encodings are supported: json and jsonParsed responses
// embed node-version-dependent fields that break cross-provider comparison.
type TransactionEncoding string

const (
	TransactionEncodingBase58 TransactionEncoding = "base58"
	TransactionEncodingBase64 TransactionEncoding = "base64"
)

func (e TransactionEncoding) Validate() error {
	switch e {
	case TransactionEncodingBase58, TransactionEncodingBase64:
		return nil
	}
	return fmt.Errorf("%w: transaction encoding must be base58 or base64, got %q", ErrInvalidParams, e)
}

// TransactionDetails selects what transaction data getBlock includes.
//
// When unset, requests default to "none" rather than the upstream API's
// "full": full blocks are routinely larger than the response ceiling this
// service can accept.
type TransactionDetails string

const (
	// TransactionDetailsNone omits all transaction data and signatures.
	TransactionDetailsNone TransactionDetails = "none"
	// TransactionDetailsSignatures includes transaction signatures and
	// block metadata only.
	TransactionDetailsSignatures TransactionDetails = "signatures"
)

func (d TransactionDetails) Validate() error {
	switch d {
	case TransactionDetailsNone, TransactionDetailsSignatures:
		return nil
	}
	return fmt.Errorf("%w: transaction details must be none or signatures, got %q", ErrInvalidParams, d)
}

// DataSlice requests a byte range of the account data.
type DataSlice struct {
	// Length is the number of bytes to return.
	Length uint32 `json:"length"`
	// Offset is the byte offset to start reading from.
	Offset uint32 `json:"offset"`
}
