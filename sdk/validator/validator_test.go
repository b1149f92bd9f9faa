// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

type fakePChainReader struct {
	weights    map[ids.NodeID]uint64
	validators map[ids.ID]L1Validator
	err        error
}

func (f *fakePChainReader) ValidatorWeights(context.Context, ids.ID) (map[ids.NodeID]uint64, error) {
	return f.weights, f.err
}

func (f *fakePChainReader) L1Validator(_ context.Context, validationID ids.ID) (L1Validator, error) {
	if f.err != nil {
		return L1Validator{}, f.err
	}
	vdr, ok := f.validators[validationID]
	if !ok {
		return L1Validator{}, errors.New("not found")
	}
	return vdr, nil
}

func TestGetTotalWeight(t *testing.T) {
	nodeID := ids.GenerateTestNodeID()
	reader := &fakePChainReader{
		weights: map[ids.NodeID]uint64{
			nodeID:                   100,
			ids.GenerateTestNodeID(): 9900,
		},
	}
	total, err := GetTotalWeight(context.Background(), reader, ids.GenerateTestID())
	require.NoError(t, err)
	require.Equal(t, uint64(10000), total)

	isValidator, err := IsValidator(context.Background(), reader, ids.GenerateTestID(), nodeID)
	require.NoError(t, err)
	require.True(t, isValidator)
	isValidator, err = IsValidator(context.Background(), reader, ids.GenerateTestID(), ids.GenerateTestNodeID())
	require.NoError(t, err)
	require.False(t, isValidator)

	errPChain := errors.New("p-chain unavailable")
	_, err = GetTotalWeight(context.Background(), &fakePChainReader{err: errPChain}, ids.GenerateTestID())
	require.ErrorIs(t, err, errPChain)
}

func TestGetRecord(t *testing.T) {
	subnetID := ids.GenerateTestID()
	validationID := ids.GenerateTestID()
	nodeID := ids.GenerateTestNodeID()
	reader := &fakePChainReader{
		validators: map[ids.ID]L1Validator{
			validationID: {SubnetID: subnetID, NodeID: nodeID, Weight: 100},
		},
	}
	record, err := GetRecord(context.Background(), reader, subnetID, validationID)
	require.NoError(t, err)
	require.Equal(t, Record{
		ValidationID:    validationID,
		NodeID:          nodeID,
		Weight:          100,
		SubnetID:        subnetID,
		SigningSubnetID: subnetID,
	}, record)

	_, err = GetRecord(context.Background(), reader, ids.GenerateTestID(), validationID)
	require.ErrorIs(t, err, ErrNotValidator)
}
