package solana

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/buildwithgrove/quorum/jsonrpc"
)

// ErrInvalidParams tags every parameter validation failure. Requests
// rejected here never reach a provider and are never charged.
var ErrInvalidParams = errors.New("invalid method params")

const (
	// maxSignatureStatuses bounds the signature list of getSignatureStatuses.
	maxSignatureStatuses = 256
	// maxPrioritizationFeeAccounts bounds the account list of
	// getRecentPrioritizationFees.
	maxPrioritizationFeeAccounts = 128
	// maxSignaturesForAddressLimit is the upstream API's limit ceiling for
	// getSignaturesForAddress.
	maxSignaturesForAddressLimit = 1000
)

// Defaults carries service-level fallbacks applied to unset request fields
// before wire params are built.
type Defaults struct {
	// Commitment fills unset commitment levels. Empty leaves them unset so
	// each provider applies its own default.
	Commitment CommitmentLevel
}

func validatePubkey(name, pubkey string) error {
	if _, err := solanago.PublicKeyFromBase58(pubkey); err != nil {
		return fmt.Errorf("%w: %s is not a base58 pubkey: %v", ErrInvalidParams, name, err)
	}
	return nil
}

func validateSignature(name, signature string) error {
	if _, err := solanago.SignatureFromBase58(signature); err != nil {
		return fmt.Errorf("%w: %s is not a base58 signature: %v", ErrInvalidParams, name, err)
	}
	return nil
}

// GetAccountInfoParams are the arguments of getAccountInfo.
type GetAccountInfoParams struct {
	Pubkey         string           `json:"pubkey"`
	Commitment     *CommitmentLevel `json:"commitment,omitempty"`
	Encoding       *AccountEncoding `json:"encoding,omitempty"`
	DataSlice      *DataSlice       `json:"dataSlice,omitempty"`
	MinContextSlot *uint64          `json:"minContextSlot,omitempty"`
}

func (p GetAccountInfoParams) Validate() error {
	if err := validatePubkey("pubkey", p.Pubkey); err != nil {
		return err
	}
	if p.Commitment != nil {
		if err := p.Commitment.Validate(); err != nil {
			return err
		}
	}
	if p.Encoding != nil {
		if err := p.Encoding.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p GetAccountInfoParams) buildParams(defaults Defaults) (jsonrpc.Params, error) {
	config := map[string]any{}
	if commitment := orDefault(p.Commitment, defaults); commitment != "" {
		config["commitment"] = commitment
	}
	if p.Encoding != nil {
		config["encoding"] = *p.Encoding
	}
	if p.DataSlice != nil {
		config["dataSlice"] = map[string]any{"length": p.DataSlice.Length, "offset": p.DataSlice.Offset}
	}
	if p.MinContextSlot != nil {
		config["minContextSlot"] = *p.MinContextSlot
	}
	if len(config) == 0 {
		return jsonrpc.BuildParamsFromString(p.Pubkey)
	}
	return jsonrpc.BuildParamsFromStringAndObject(p.Pubkey, config)
}

// GetBalanceParams are the arguments of getBalance.
type GetBalanceParams struct {
	Pubkey         string           `json:"pubkey"`
	Commitment     *CommitmentLevel `json:"commitment,omitempty"`
	MinContextSlot *uint64          `json:"minContextSlot,omitempty"`
}

func (p GetBalanceParams) Validate() error {
	if err := validatePubkey("pubkey", p.Pubkey); err != nil {
		return err
	}
	if p.Commitment != nil {
		return p.Commitment.Validate()
	}
	return nil
}

func (p GetBalanceParams) buildParams(defaults Defaults) (jsonrpc.Params, error) {
	config := map[string]any{}
	if commitment := orDefault(p.Commitment, defaults); commitment != "" {
		config["commitment"] = commitment
	}
	if p.MinContextSlot != nil {
		config["minContextSlot"] = *p.MinContextSlot
	}
	if len(config) == 0 {
		return jsonrpc.BuildParamsFromString(p.Pubkey)
	}
	return jsonrpc.BuildParamsFromStringAndObject(p.Pubkey, config)
}

// GetBlockParams are the arguments of getBlock.
//
// Transaction details default to "none" and rewards are always excluded:
// both defaults diverge from the upstream API deliberately, since full
// blocks routinely exceed the response ceiling and reward lists vary with
// node configuration.
type GetBlockParams struct {
	Slot                           uint64                `json:"slot"`
	Commitment                     *BlockCommitmentLevel `json:"commitment,omitempty"`
	MaxSupportedTransactionVersion *uint8                `json:"maxSupportedTransactionVersion,omitempty"`
	TransactionDetails             *TransactionDetails   `json:"transactionDetails,omitempty"`
}

func (p GetBlockParams) Validate() error {
	if p.Commitment != nil {
		if err := p.Commitment.Validate(); err != nil {
			return err
		}
	}
	if p.TransactionDetails != nil {
		return p.TransactionDetails.Validate()
	}
	return nil
}

func (p GetBlockParams) buildParams(defaults Defaults) (jsonrpc.Params, error) {
	details := TransactionDetailsNone
	if p.TransactionDetails != nil {
		details = *p.TransactionDetails
	}
	config := map[string]any{
		"transactionDetails": details,
		"rewards":            false,
	}
	switch {
	case p.Commitment != nil:
		config["commitment"] = *p.Commitment
	case defaults.Commitment != "":
		config["commitment"] = blockCommitmentFor(defaults.Commitment)
	}
	if p.MaxSupportedTransactionVersion != nil {
		config["maxSupportedTransactionVersion"] = *p.MaxSupportedTransactionVersion
	}
	return jsonrpc.BuildParamsFromUint64AndObject(p.Slot, config)
}

// GetRecentPrioritizationFeesParams is the account list of
// getRecentPrioritizationFees; fees are reported for slots where all listed
// accounts were writable. An empty list asks for node-wide fees.
type GetRecentPrioritizationFeesParams []string

func (p GetRecentPrioritizationFeesParams) Validate() error {
	if len(p) > maxPrioritizationFeeAccounts {
		return fmt.Errorf("%w: at most %d accounts, got %d", ErrInvalidParams, maxPrioritizationFeeAccounts, len(p))
	}
	for _, pubkey := range p {
		if err := validatePubkey("account", pubkey); err != nil {
			return err
		}
	}
	return nil
}

func (p GetRecentPrioritizationFeesParams) buildParams(Defaults) (jsonrpc.Params, error) {
	return jsonrpc.BuildParamsFromStringArray(p)
}

// GetSignaturesForAddressParams are the arguments of getSignaturesForAddress.
type GetSignaturesForAddressParams struct {
	Address        string           `json:"address"`
	Commitment     *CommitmentLevel `json:"commitment,omitempty"`
	MinContextSlot *uint64          `json:"minContextSlot,omitempty"`
	Limit          *uint32          `json:"limit,omitempty"`
	Before         *string          `json:"before,omitempty"`
	Until          *string          `json:"until,omitempty"`
}

func (p GetSignaturesForAddressParams) Validate() error {
	if err := validatePubkey("address", p.Address); err != nil {
		return err
	}
	if p.Commitment != nil {
		if err := p.Commitment.Validate(); err != nil {
			return err
		}
	}
	if p.Limit != nil && (*p.Limit == 0 || *p.Limit > maxSignaturesForAddressLimit) {
		return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidParams, maxSignaturesForAddressLimit, *p.Limit)
	}
	if p.Before != nil {
		if err := validateSignature("before", *p.Before); err != nil {
			return err
		}
	}
	if p.Until != nil {
		if err := validateSignature("until", *p.Until); err != nil {
			return err
		}
	}
	return nil
}

func (p GetSignaturesForAddressParams) buildParams(defaults Defaults) (jsonrpc.Params, error) {
	config := map[string]any{}
	if commitment := orDefault(p.Commitment, defaults); commitment != "" {
		config["commitment"] = commitment
	}
	if p.MinContextSlot != nil {
		config["minContextSlot"] = *p.MinContextSlot
	}
	if p.Limit != nil {
		config["limit"] = *p.Limit
	}
	if p.Before != nil {
		config["before"] = *p.Before
	}
	if p.Until != nil {
		config["until"] = *p.Until
	}
	if len(config) == 0 {
		return jsonrpc.BuildParamsFromString(p.Address)
	}
	return jsonrpc.BuildParamsFromStringAndObject(p.Address, config)
}

// GetSignatureStatusesParams are the arguments of getSignatureStatuses.
type GetSignatureStatusesParams struct {
	Signatures               []string `json:"signatures"`
	SearchTransactionHistory *bool    `json:"searchTransactionHistory,omitempty"`
}

func (p GetSignatureStatusesParams) Validate() error {
	if len(p.Signatures) == 0 {
		return fmt.Errorf("%w: at least one signature required", ErrInvalidParams)
	}
	if len(p.Signatures) > maxSignatureStatuses {
		return fmt.Errorf("%w: at most %d signatures, got %d", ErrInvalidParams, maxSignatureStatuses, len(p.Signatures))
	}
	for _, signature := range p.Signatures {
		if err := validateSignature("signature", signature); err != nil {
			return err
		}
	}
	return nil
}

func (p GetSignatureStatusesParams) buildParams(Defaults) (jsonrpc.Params, error) {
	if p.SearchTransactionHistory == nil {
		return jsonrpc.BuildParamsFromStringArray(p.Signatures)
	}
	return jsonrpc.BuildParamsFromStringArrayAndObject(p.Signatures, map[string]any{
		"searchTransactionHistory": *p.SearchTransactionHistory,
	})
}

// GetSlotParams are the arguments of getSlot.
type GetSlotParams struct {
	Commitment     *CommitmentLevel `json:"commitment,omitempty"`
	MinContextSlot *uint64          `json:"minContextSlot,omitempty"`
}

func (p GetSlotParams) Validate() error {
	if p.Commitment != nil {
		return p.Commitment.Validate()
	}
	return nil
}

func (p GetSlotParams) buildParams(defaults Defaults) (jsonrpc.Params, error) {
	config := map[string]any{}
	if commitment := orDefault(p.Commitment, defaults); commitment != "" {
		config["commitment"] = commitment
	}
	if p.MinContextSlot != nil {
		config["minContextSlot"] = *p.MinContextSlot
	}
	if len(config) == 0 {
		return jsonrpc.Params{}, nil
	}
	return jsonrpc.BuildParamsFromObject(config)
}

// GetTokenAccountBalanceParams are the arguments of getTokenAccountBalance.
type GetTokenAccountBalanceParams struct {
	Pubkey     string           `json:"pubkey"`
	Commitment *CommitmentLevel `json:"commitment,omitempty"`
}

func (p GetTokenAccountBalanceParams) Validate() error {
	if err := validatePubkey("pubkey", p.Pubkey); err != nil {
		return err
	}
	if p.Commitment != nil {
		return p.Commitment.Validate()
	}
	return nil
}

func (p GetTokenAccountBalanceParams) buildParams(defaults Defaults) (jsonrpc.Params, error) {
	if commitment := orDefault(p.Commitment, defaults); commitment != "" {
		return jsonrpc.BuildParamsFromStringAndObject(p.Pubkey, map[string]any{"commitment": commitment})
	}
	return jsonrpc.BuildParamsFromString(p.Pubkey)
}

// GetTransactionParams are the arguments of getTransaction.
type GetTransactionParams struct {
	Signature                      string               `json:"signature"`
	Commitment                     *CommitmentLevel     `json:"commitment,omitempty"`
	MaxSupportedTransactionVersion *uint8               `json:"maxSupportedTransactionVersion,omitempty"`
	Encoding                       *TransactionEncoding `json:"encoding,omitempty"`
}

func (p GetTransactionParams) Validate() error {
	if err := validateSignature("signature", p.Signature); err != nil {
		return err
	}
	if p.Commitment != nil {
		if err := p.Commitment.Validate(); err != nil {
			return err
		}
	}
	if p.Encoding != nil {
		return p.Encoding.Validate()
	}
	return nil
}

func (p GetTransactionParams) buildParams(defaults Defaults) (jsonrpc.Params, error) {
	config := map[string]any{}
	if commitment := orDefault(p.Commitment, defaults); commitment != "" {
		config["commitment"] = commitment
	}
	if p.MaxSupportedTransactionVersion != nil {
		config["maxSupportedTransactionVersion"] = *p.MaxSupportedTransactionVersion
	}
	if p.Encoding != nil {
		config["encoding"] = *p.Encoding
	}
	if len(config) == 0 {
		return jsonrpc.BuildParamsFromString(p.Signature)
	}
	return jsonrpc.BuildParamsFromStringAndObject(p.Signature, config)
}

// SendTransactionParams are the arguments of sendTransaction.
type SendTransactionParams struct {
	// Transaction is the fully signed transaction as an encoded string.
	Transaction         string                   `json:"transaction"`
	Encoding            *SendTransactionEncoding `json:"encoding,omitempty"`
	SkipPreflight       *bool                    `json:"skipPreflight,omitempty"`
	PreflightCommitment *CommitmentLevel         `json:"preflightCommitment,omitempty"`
	MaxRetries          *uint32                  `json:"maxRetries,omitempty"`
	MinContextSlot      *uint64                  `json:"minContextSlot,omitempty"`
}

// SendTransactionEncoding is the wire encoding of the transaction argument.
type SendTransactionEncoding string

const (
	// SendTransactionEncodingBase58 is slow and deprecated upstream.
	SendTransactionEncodingBase58 SendTransactionEncoding = "base58"
	SendTransactionEncodingBase64 SendTransactionEncoding = "base64"
)

func (e SendTransactionEncoding) Validate() error {
	switch e {
	case SendTransactionEncodingBase58, SendTransactionEncodingBase64:
		return nil
	}
	return fmt.Errorf("%w: sendTransaction encoding must be base58 or base64, got %q", ErrInvalidParams, e)
}

func (p SendTransactionParams) Validate() error {
	if p.Transaction == "" {
		return fmt.Errorf("%w: transaction is empty", ErrInvalidParams)
	}
	if p.Encoding != nil {
		if err := p.Encoding.Validate(); err != nil {
			return err
		}
		if *p.Encoding == SendTransactionEncodingBase64 {
			if _, err := base64.StdEncoding.DecodeString(p.Transaction); err != nil {
				return fmt.Errorf("%w: transaction is not valid base64: %v", ErrInvalidParams, err)
			}
		}
	}
	if p.PreflightCommitment != nil {
		return p.PreflightCommitment.Validate()
	}
	return nil
}

func (p SendTransactionParams) buildParams(defaults Defaults) (jsonrpc.Params, error) {
	config := map[string]any{}
	if p.Encoding != nil {
		config["encoding"] = *p.Encoding
	}
	if p.SkipPreflight != nil {
		config["skipPreflight"] = *p.SkipPreflight
	}
	if commitment := orDefault(p.PreflightCommitment, defaults); commitment != "" {
		config["preflightCommitment"] = commitment
	}
	if p.MaxRetries != nil {
		config["maxRetries"] = *p.MaxRetries
	}
	if p.MinContextSlot != nil {
		config["minContextSlot"] = *p.MinContextSlot
	}
	if len(config) == 0 {
		return jsonrpc.BuildParamsFromString(p.Transaction)
	}
	return jsonrpc.BuildParamsFromStringAndObject(p.Transaction, config)
}

func orDefault(commitment *CommitmentLevel, defaults Defaults) CommitmentLevel {
	if commitment != nil {
		return *commitment
	}
	return defaults.Commitment
}

// validatedParams is implemented by every typed parameter struct.
type validatedParams interface {
	Validate() error
	buildParams(Defaults) (jsonrpc.Params, error)
}

// Maps each supported method to a factory for its empty params value.
var methodParamMappings = map[jsonrpc.Method]func() validatedParams{
	MethodGetAccountInfo:              func() validatedParams { return &GetAccountInfoParams{} },
	MethodGetBalance:                  func() validatedParams { return &GetBalanceParams{} },
	MethodGetBlock:                    func() validatedParams { return &GetBlockParams{} },
	MethodGetRecentPrioritizationFees: func() validatedParams { return &GetRecentPrioritizationFeesParams{} },
	MethodGetSignaturesForAddress:     func() validatedParams { return &GetSignaturesForAddressParams{} },
	MethodGetSignatureStatuses:        func() validatedParams { return &GetSignatureStatusesParams{} },
	MethodGetSlot:                     func() validatedParams { return &GetSlotParams{} },
	MethodGetTokenAccountBalance:      func() validatedParams { return &GetTokenAccountBalanceParams{} },
	MethodGetTransaction:              func() validatedParams { return &GetTransactionParams{} },
	MethodSendTransaction:             func() validatedParams { return &SendTransactionParams{} },
}

// BuildCall validates the raw params carried by a typed request and returns
// the positional wire params for the method. rawParams may be empty for
// methods whose arguments are all optional.
func BuildCall(method jsonrpc.Method, rawParams json.RawMessage, defaults Defaults) (jsonrpc.Params, error) {
	newParams, found := methodParamMappings[method]
	if !found {
		return jsonrpc.Params{}, fmt.Errorf("%w: unsupported method %q", ErrInvalidParams, method)
	}
	params := newParams()
	if len(rawParams) > 0 && string(rawParams) != "null" {
		if err := json.Unmarshal(rawParams, params); err != nil {
			return jsonrpc.Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
	}
	if err := params.Validate(); err != nil {
		return jsonrpc.Params{}, err
	}
	return params.buildParams(defaults)
}
