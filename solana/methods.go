// Package solana holds the closed set of supported Solana RPC methods, the
// typed parameters each method accepts, and the per-method response
// canonicalization applied before consensus comparison.
package solana

import (
	"github.com/buildwithgrove/quorum/jsonrpc"
)

// The supported RPC method set. Methods outside this set travel through the
// raw passthrough endpoint and get only key-order normalization.
const (
	MethodGetAccountInfo              = jsonrpc.Method("getAccountInfo")
	MethodGetBalance                  = jsonrpc.Method("getBalance")
	MethodGetBlock                    = jsonrpc.Method("getBlock")
	MethodGetRecentPrioritizationFees = jsonrpc.Method("getRecentPrioritizationFees")
	MethodGetSignaturesForAddress     = jsonrpc.Method("getSignaturesForAddress")
	MethodGetSignatureStatuses        = jsonrpc.Method("getSignatureStatuses")
	MethodGetSlot                     = jsonrpc.Method("getSlot")
	MethodGetTokenAccountBalance      = jsonrpc.Method("getTokenAccountBalance")
	MethodGetTransaction              = jsonrpc.Method("getTransaction")
	MethodSendTransaction             = jsonrpc.Method("sendTransaction")
)

var supportedMethods = []jsonrpc.Method{
	MethodGetAccountInfo,
	MethodGetBalance,
	MethodGetBlock,
	MethodGetRecentPrioritizationFees,
	MethodGetSignaturesForAddress,
	MethodGetSignatureStatuses,
	MethodGetSlot,
	MethodGetTokenAccountBalance,
	MethodGetTransaction,
	MethodSendTransaction,
}

// SupportedMethods returns the typed method set in a stable order.
func SupportedMethods() []jsonrpc.Method {
	methods := make([]jsonrpc.Method, len(supportedMethods))
	copy(methods, supportedMethods)
	return methods
}

// IsSupported reports whether method belongs to the typed method set.
func IsSupported(method jsonrpc.Method) bool {
	for _, m := range supportedMethods {
		if m == method {
			return true
		}
	}
	return false
}
