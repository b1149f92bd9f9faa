// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validator

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/vms/platformvm"
	"github.com/ava-labs/avalanchego/vms/platformvm/api"
	"github.com/ava-labs/l1-orchestrator/sdk/utils"
)

var ErrNotValidator = errors.New("node is not a validator of the subnet")

// Record identifies an active L1 validator and its current weight
type Record struct {
	ValidationID    ids.ID     `json:"validationID"`
	NodeID          ids.NodeID `json:"nodeID"`
	Weight          uint64     `json:"weight"`
	SubnetID        ids.ID     `json:"subnetID"`
	SigningSubnetID ids.ID     `json:"signingSubnetID"`
}

// L1Validator is the subset of the P-Chain L1 validator state used for orchestration
type L1Validator struct {
	SubnetID ids.ID
	NodeID   ids.NodeID
	Weight   uint64
	Balance  uint64
}

// PChainReader exposes the P-Chain validator queries needed to plan a weight change
type PChainReader interface {
	// current weight of every validator of [subnetID]
	ValidatorWeights(ctx context.Context, subnetID ids.ID) (map[ids.NodeID]uint64, error)
	L1Validator(ctx context.Context, validationID ids.ID) (L1Validator, error)
}

type pChainReader struct {
	endpoint string
}

// NewPChainReader returns a reader querying the P-Chain API at [endpoint]
func NewPChainReader(endpoint string) PChainReader {
	return &pChainReader{endpoint: endpoint}
}

func (r *pChainReader) ValidatorWeights(ctx context.Context, subnetID ids.ID) (map[ids.NodeID]uint64, error) {
	ctx, cancel := utils.GetAPIContextFrom(ctx)
	defer cancel()
	pClient := platformvm.NewClient(r.endpoint)
	validators, err := pClient.GetValidatorsAt(ctx, subnetID, api.ProposedHeight)
	if err != nil {
		return nil, fmt.Errorf("failure getting validators of subnet %s: %w", subnetID, err)
	}
	weights := make(map[ids.NodeID]uint64, len(validators))
	for nodeID, vdr := range validators {
		weights[nodeID] = vdr.Weight
	}
	return weights, nil
}

func (r *pChainReader) L1Validator(ctx context.Context, validationID ids.ID) (L1Validator, error) {
	ctx, cancel := utils.GetAPIContextFrom(ctx)
	defer cancel()
	pClient := platformvm.NewClient(r.endpoint)
	vdrInfo, _, err := pClient.GetL1Validator(ctx, validationID)
	if err != nil {
		return L1Validator{}, fmt.Errorf("failure getting L1 validator %s: %w", validationID, err)
	}
	return L1Validator{
		SubnetID: vdrInfo.SubnetID,
		NodeID:   vdrInfo.NodeID,
		Weight:   vdrInfo.Weight,
		Balance:  vdrInfo.Balance,
	}, nil
}

// GetTotalWeight returns the sum of the weights of all validators of [subnetID]
func GetTotalWeight(ctx context.Context, reader PChainReader, subnetID ids.ID) (uint64, error) {
	weights, err := reader.ValidatorWeights(ctx, subnetID)
	if err != nil {
		return 0, err
	}
	total := uint64(0)
	for _, weight := range weights {
		total += weight
	}
	return total, nil
}

// IsValidator indicates if [nodeID] currently validates [subnetID]
func IsValidator(ctx context.Context, reader PChainReader, subnetID ids.ID, nodeID ids.NodeID) (bool, error) {
	weights, err := reader.ValidatorWeights(ctx, subnetID)
	if err != nil {
		return false, err
	}
	for id := range maps.Keys(weights) {
		if id == nodeID {
			return true, nil
		}
	}
	return false, nil
}

// GetRecord builds the validation record of [validationID], checking that it belongs to [subnetID]
func GetRecord(ctx context.Context, reader PChainReader, subnetID ids.ID, validationID ids.ID) (Record, error) {
	vdr, err := reader.L1Validator(ctx, validationID)
	if err != nil {
		return Record{}, err
	}
	if vdr.SubnetID != subnetID {
		return Record{}, fmt.Errorf("%w: validation %s belongs to subnet %s, not %s", ErrNotValidator, validationID, vdr.SubnetID, subnetID)
	}
	return Record{
		ValidationID:    validationID,
		NodeID:          vdr.NodeID,
		Weight:          vdr.Weight,
		SubnetID:        subnetID,
		SigningSubnetID: subnetID,
	}, nil
}
