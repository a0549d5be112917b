package solana

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/buildwithgrove/quorum/jsonrpc"
)

const (
	// DefaultSlotRoundingError is the tolerance used to round slot values
	// before comparison. Providers observe the chain tip at slightly
	// different moments; rounding maps answers within the tolerance onto
	// the same canonical slot.
	DefaultSlotRoundingError uint64 = 20

	// DefaultMaxPrioritizationFeeEntries caps how many fee entries survive
	// canonicalization of a getRecentPrioritizationFees response.
	DefaultMaxPrioritizationFeeEntries uint8 = 100
)

// TransformConfig carries the tunables of the slot-sensitive transforms.
// The zero value selects the defaults.
type TransformConfig struct {
	// SlotRoundingError overrides DefaultSlotRoundingError when non-zero.
	// Values of 1 disable rounding.
	SlotRoundingError uint64

	// MaxPrioritizationFeeEntries overrides
	// DefaultMaxPrioritizationFeeEntries when non-zero.
	MaxPrioritizationFeeEntries uint8
}

func (c TransformConfig) roundingError() uint64 {
	if c.SlotRoundingError == 0 {
		return DefaultSlotRoundingError
	}
	return c.SlotRoundingError
}

func (c TransformConfig) maxFeeEntries() int {
	if c.MaxPrioritizationFeeEntries == 0 {
		return int(DefaultMaxPrioritizationFeeEntries)
	}
	return int(c.MaxPrioritizationFeeEntries)
}

// transformFunc rewrites one method's raw JSON-RPC result into its
// canonical form. Transforms are pure: identical bytes and identical config
// always produce identical output.
type transformFunc func(cfg TransformConfig, result json.RawMessage) (json.RawMessage, error)

// Maps JSON-RPC methods to their canonicalization. Methods without an
// entry, including raw passthrough requests, get key-order normalization
// only.
var methodTransformMappings = map[jsonrpc.Method]transformFunc{
	MethodGetAccountInfo:              transformContextEnvelope,
	MethodGetBalance:                  transformContextEnvelope,
	MethodGetTokenAccountBalance:      transformContextEnvelope,
	MethodGetBlock:                    transformIdentity,
	MethodGetTransaction:              transformIdentity,
	MethodGetSignaturesForAddress:     transformIdentity,
	MethodGetRecentPrioritizationFees: transformPrioritizationFees,
	MethodGetSignatureStatuses:        transformSignatureStatuses,
	MethodGetSlot:                     transformSlot,
	MethodSendTransaction:             transformSendTransaction,
}

// Canonicalize rewrites a raw JSON-RPC result into the method's canonical
// form so byte equality across providers means semantic agreement. It never
// sees error responses; the caller classifies those before comparison.
//
// Canonical output is stable: re-canonicalizing a well-formed response's
// canonical form returns it unchanged.
func Canonicalize(method jsonrpc.Method, cfg TransformConfig, result json.RawMessage) (json.RawMessage, error) {
	if transform, found := methodTransformMappings[method]; found {
		return transform(cfg, result)
	}
	return canonicalJSON(result)
}

// CanonicalizeRaw applies key-order normalization only. Passthrough requests
// use it for every method: the gateway never interprets their results, so
// the slot-sensitive transforms must not fire even for method names it
// recognizes.
func CanonicalizeRaw(result json.RawMessage) (json.RawMessage, error) {
	return canonicalJSON(result)
}

// canonicalJSON reserializes arbitrary JSON with object keys sorted.
// Numbers pass through as their original literals, so 64-bit values like
// rentEpoch survive without precision loss.
func canonicalJSON(raw json.RawMessage) (json.RawMessage, error) {
	var value any
	if err := decodeStrict(raw, &value); err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

// decodeStrict decodes exactly one JSON value, preserving number literals
// and rejecting trailing data.
func decodeStrict(raw json.RawMessage, into any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(into); err != nil {
		return fmt.Errorf("malformed result: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("malformed result: trailing data after JSON value")
	}
	return nil
}

func transformIdentity(_ TransformConfig, result json.RawMessage) (json.RawMessage, error) {
	return canonicalJSON(result)
}

// transformContextEnvelope unwraps the {context, value} envelope the
// account and balance queries return. The context holds the fast-moving
// slot the node answered at, which no two providers agree on; only the
// value is comparable. An envelope with no value canonicalizes to null.
//
// Results that do not carry the envelope shape pass through with key-order
// normalization only. Mapping them to null instead would let a malformed
// response falsely agree with a legitimate null value.
func transformContextEnvelope(_ TransformConfig, result json.RawMessage) (json.RawMessage, error) {
	var value any
	if err := decodeStrict(result, &value); err != nil {
		return nil, err
	}
	return json.Marshal(unwrapContextEnvelope(value))
}

// unwrapContextEnvelope extracts the value field from a decoded envelope
// object. Non-envelope shapes come back unchanged; an envelope with no
// value key is a null value.
func unwrapContextEnvelope(value any) any {
	object, isObject := value.(map[string]any)
	if !isObject {
		return value
	}
	_, hasContext := object["context"]
	_, hasValue := object["value"]
	if !hasContext && !hasValue {
		return value
	}
	return object["value"]
}

func transformSlot(cfg TransformConfig, result json.RawMessage) (json.RawMessage, error) {
	var slot uint64
	if err := json.Unmarshal(result, &slot); err != nil {
		return nil, fmt.Errorf("result is not a slot number: %w", err)
	}
	return json.Marshal(roundSlot(slot, cfg.roundingError()))
}

// roundSlot rounds down to the nearest multiple of tolerance. Tolerances of
// 0 and 1 are the identity.
func roundSlot(slot, tolerance uint64) uint64 {
	if tolerance <= 1 {
		return slot
	}
	return slot - slot%tolerance
}

func transformSendTransaction(_ TransformConfig, result json.RawMessage) (json.RawMessage, error) {
	var signature string
	if err := json.Unmarshal(result, &signature); err != nil {
		return nil, fmt.Errorf("result is not a transaction signature: %w", err)
	}
	return json.Marshal(signature)
}

// PrioritizationFee is one entry of a getRecentPrioritizationFees response.
type PrioritizationFee struct {
	Slot              uint64 `json:"slot"`
	PrioritizationFee uint64 `json:"prioritizationFee"`
}

// transformPrioritizationFees cuts the response down to a comparable
// subset. The node's fee cache window moves with its chain tip, so raw
// responses from two providers almost never match. Anchoring the window to
// the rounded highest slot and capping its length makes providers observing
// the chain within the rounding tolerance produce identical bytes.
func transformPrioritizationFees(cfg TransformConfig, result json.RawMessage) (json.RawMessage, error) {
	var fees []PrioritizationFee
	if err := json.Unmarshal(result, &fees); err != nil {
		return nil, fmt.Errorf("result is not a prioritization fee list: %w", err)
	}
	if len(fees) == 0 {
		return json.Marshal([]PrioritizationFee{})
	}

	// Response ordering is unspecified upstream; enforce decreasing slot.
	slices.SortStableFunc(fees, func(a, b PrioritizationFee) int {
		switch {
		case a.Slot > b.Slot:
			return -1
		case a.Slot < b.Slot:
			return 1
		}
		return 0
	})

	maxRoundedSlot := roundSlot(fees[0].Slot, cfg.roundingError())
	cut := 0
	for cut < len(fees) && fees[cut].Slot > maxRoundedSlot {
		cut++
	}
	kept := fees[cut:]
	if limit := cfg.maxFeeEntries(); len(kept) > limit {
		kept = kept[:limit]
	}

	// Return in increasing slot order, the order nodes themselves use.
	slices.Reverse(kept)
	return json.Marshal(kept)
}

// transactionStatus is the comparable projection of one signature status.
// Confirmation counts rise independently on every node, so they are zeroed;
// unknown fields are dropped and absent optional fields serialize as
// explicit nulls, giving every provider's entry the same shape.
type transactionStatus struct {
	Slot               any `json:"slot"`
	Confirmations      any `json:"confirmations"`
	Err                any `json:"err"`
	Status             any `json:"status"`
	ConfirmationStatus any `json:"confirmationStatus"`
}

func transformSignatureStatuses(_ TransformConfig, result json.RawMessage) (json.RawMessage, error) {
	var value any
	if err := decodeStrict(result, &value); err != nil {
		return nil, err
	}
	entries, isList := unwrapContextEnvelope(value).([]any)
	if !isList {
		return json.Marshal(value)
	}
	statuses := make([]*transactionStatus, len(entries))
	for i, entry := range entries {
		fields, isObject := entry.(map[string]any)
		if !isObject {
			continue
		}
		statuses[i] = &transactionStatus{
			Slot:               fields["slot"],
			Err:                fields["err"],
			Status:             fields["status"],
			ConfirmationStatus: fields["confirmationStatus"],
		}
	}
	return json.Marshal(statuses)
}
