// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ava-labs/l1-orchestrator/sdk/utils"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/subnet-evm/rpc"
)

// used to mock the raw connection function
var rpcDialContext = rpc.DialContext

// wraps over rpc.Client for the debug calls not available in ethclient.
// features:
// - adds a scheme to the rpc url in case it is missing
// - repeats to try to recover from failures, deriving a per attempt context from the caller one
// - logs rpc url in case of failure
type RawClient struct {
	CallContext func(ctx context.Context, result interface{}, method string, args ...interface{}) error
	close       func()
	URL         string
}

// connects a raw evm rpc client to the given [rpcURL]
// supports [repeatsOnFailure] failures
func GetRawClient(ctx context.Context, rpcURL string) (RawClient, error) {
	client := RawClient{
		URL: rpcURL,
	}
	normalizedURL, err := NormalizeRPCURL(rpcURL)
	if err != nil {
		return client, err
	}
	rpcClient, err := utils.RetryWithContextGen(
		func() (context.Context, context.CancelFunc) {
			return utils.GetAPILargeContextFrom(ctx)
		},
		func(ctx context.Context) (*rpc.Client, error) {
			return rpcDialContext(ctx, normalizedURL)
		},
		repeatsOnFailure,
		sleepBetweenRepeats,
	)
	if err != nil {
		return client, fmt.Errorf("failure connecting to rpc client on %s: %w", rpcURL, err)
	}
	client.CallContext = rpcClient.CallContext
	client.close = rpcClient.Close
	return client, nil
}

// closes underlying rpc connection
func (client RawClient) Close() {
	if client.close != nil {
		client.close()
	}
}

// returns a call trace for the tx with [hash]
// supports [repeatsOnFailure] failures
func (client RawClient) DebugTraceTransaction(ctx context.Context, hash common.Hash) (map[string]interface{}, error) {
	trace, err := utils.RetryWithContextGen(
		func() (context.Context, context.CancelFunc) {
			return utils.GetAPILargeContextFrom(ctx)
		},
		func(ctx context.Context) (map[string]interface{}, error) {
			var trace map[string]interface{}
			err := client.CallContext(
				ctx,
				&trace,
				"debug_traceTransaction",
				hash,
				map[string]string{"tracer": "callTracer"},
			)
			return trace, err
		},
		repeatsOnFailure,
		sleepBetweenRepeats,
	)
	if err != nil {
		err = fmt.Errorf("failure tracing tx %s on %s: %w", hash, client.URL, err)
	}
	return trace, err
}

// returns a call trace for the tx with [hash] on [rpcURL]
func GetTxTrace(ctx context.Context, rpcURL string, hash common.Hash) (map[string]interface{}, error) {
	client, err := GetRawClient(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.DebugTraceTransaction(ctx, hash)
}

// returns golang error associated with [trace] by using [errorSignatureToError]
// to map the error selector found in the trace output to golang errors.
// first returned error is the mapped error, second error is for errors obtained
// executing this function
func GetErrorFromTrace(
	trace map[string]interface{},
	errorSignatureToError map[string]error,
) (error, error) {
	traceOutputI, ok := trace["output"]
	if !ok {
		return nil, fmt.Errorf("trace does not contain output field")
	}
	traceOutput, ok := traceOutputI.(string)
	if !ok {
		return nil, fmt.Errorf("expected type string for trace output, got %T", traceOutputI)
	}
	traceOutputBytes, err := hex.DecodeString(strings.TrimPrefix(traceOutput, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failure decoding trace output: %w", err)
	}
	if len(traceOutputBytes) < 4 {
		return nil, fmt.Errorf("less than 4 bytes in trace output")
	}
	for errorSignature, err := range errorSignatureToError {
		if bytes.Equal(traceOutputBytes[:4], GetFunctionSelector(errorSignature)) {
			return err, nil
		}
	}
	return nil, fmt.Errorf("%w: 0x%x", ErrUnknownErrorSelector, traceOutputBytes[:4])
}
