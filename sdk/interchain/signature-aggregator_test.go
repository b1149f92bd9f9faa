// Copyright (C) 2025, Ava Labs, Inc. All rights reserved
// See the file LICENSE for licensing terms.
package interchain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T, dialect Dialect, handler http.HandlerFunc) *AggregatorClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewAggregatorClient(AggregatorConfig{
		BaseURL: server.URL,
		Network: "fuji",
		Dialect: dialect,
	}, logging.NoLog{})
	require.NoError(t, err)
	return client
}

func TestAggregateSignaturesGlacier(t *testing.T) {
	var calls int
	client := newTestAggregator(t, DialectGlacier, func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/signatureAggregator/fuji/aggregateSignatures", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "abcd", body["message"])
		require.Equal(t, "0102", body["justification"])
		require.Equal(t, "subnet", body["signingSubnetId"])
		require.InDelta(t, 67, body["quorumPercentage"], 0)
		_, _ = w.Write([]byte(`{"signedMessage":"0xbeef"}`))
	})
	resp, err := client.AggregateSignatures(context.Background(), AggregateRequest{
		Message:         "abcd",
		Justification:   "0102",
		SigningSubnetID: "subnet",
	})
	require.NoError(t, err)
	require.Equal(t, "beef", resp.SignedMessage)
	require.Equal(t, 1, calls)
}

func TestAggregateSignaturesICM(t *testing.T) {
	client := newTestAggregator(t, DialectICM, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/aggregate-signatures", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "subnet", body["signing-subnet-id"])
		require.InDelta(t, 80, body["quorum-percentage"], 0)
		_, hasJustification := body["justification"]
		require.False(t, hasJustification)
		_, _ = w.Write([]byte(`{"signed-message":"cafe"}`))
	})
	resp, err := client.AggregateSignatures(context.Background(), AggregateRequest{
		Message:          "abcd",
		SigningSubnetID:  "subnet",
		QuorumPercentage: 80,
	})
	require.NoError(t, err)
	require.Equal(t, "cafe", resp.SignedMessage)
}

func TestAggregateSignaturesErrorIsVerbatim(t *testing.T) {
	var calls int
	client := newTestAggregator(t, DialectGlacier, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"failed to collect a threshold of signatures"}`))
	})
	_, err := client.AggregateSignatures(context.Background(), AggregateRequest{Message: "abcd", SigningSubnetID: "s"})
	require.EqualError(t, err, "failed to collect a threshold of signatures")
	var aggErr *AggregatorError
	require.True(t, errors.As(err, &aggErr))
	require.Equal(t, http.StatusBadRequest, aggErr.StatusCode)
	require.False(t, aggErr.Transient())
	// no internal retry
	require.Equal(t, 1, calls)
}

func TestAggregateSignaturesServerError(t *testing.T) {
	client := newTestAggregator(t, DialectICM, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream unavailable"))
	})
	_, err := client.AggregateSignatures(context.Background(), AggregateRequest{Message: "abcd", SigningSubnetID: "s"})
	var aggErr *AggregatorError
	require.True(t, errors.As(err, &aggErr))
	require.Equal(t, "upstream unavailable", aggErr.Message)
	require.True(t, aggErr.Transient())
}

func TestAggregateSignaturesBadResponse(t *testing.T) {
	client := newTestAggregator(t, DialectGlacier, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"signedMessage":""}`))
	})
	_, err := client.AggregateSignatures(context.Background(), AggregateRequest{Message: "abcd", SigningSubnetID: "s"})
	require.ErrorIs(t, err, ErrEmptySignedMessage)

	client = newTestAggregator(t, DialectGlacier, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"signedMessage":"xyz"}`))
	})
	_, err = client.AggregateSignatures(context.Background(), AggregateRequest{Message: "abcd", SigningSubnetID: "s"})
	require.ErrorContains(t, err, "not hex encoded")
}

func TestAggregateSignaturesValidation(t *testing.T) {
	client := newTestAggregator(t, DialectGlacier, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := client.AggregateSignatures(context.Background(), AggregateRequest{Message: "abcd", QuorumPercentage: 101})
	require.ErrorIs(t, err, ErrInvalidQuorumPercentage)
	_, err = client.AggregateSignatures(context.Background(), AggregateRequest{})
	require.ErrorContains(t, err, "can't be empty")
}

func TestNewAggregatorClient(t *testing.T) {
	client, err := NewAggregatorClient(AggregatorConfig{Network: "mainnet"}, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultQuorumPercentage, client.QuorumPercentage())
	require.Equal(t, DefaultGlacierURL+"/v1/signatureAggregator/mainnet/aggregateSignatures", client.endpoint())

	client, err = NewAggregatorClient(AggregatorConfig{Dialect: DialectICM}, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultLocalURL+"/aggregate-signatures", client.endpoint())

	_, err = NewAggregatorClient(AggregatorConfig{}, nil)
	require.ErrorContains(t, err, "network name is required")
	_, err = NewAggregatorClient(AggregatorConfig{Network: "fuji", QuorumPercentage: 150}, nil)
	require.ErrorIs(t, err, ErrInvalidQuorumPercentage)
	_, err = NewAggregatorClient(AggregatorConfig{Dialect: "other"}, nil)
	require.ErrorContains(t, err, "unknown signature aggregator dialect")
}
