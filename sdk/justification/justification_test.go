// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package justification

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	warpMessage "github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
	"github.com/ava-labs/l1-orchestrator/sdk/evm"
	"github.com/ava-labs/l1-orchestrator/sdk/warp"
	ethereum "github.com/ava-labs/libevm"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	subnetEvmWarp "github.com/ava-labs/subnet-evm/precompile/contracts/warp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	sourceChainID  = ids.GenerateTestID()
	managerAddress = common.HexToAddress("0x0C0DEBA5E0000000000000000000000000000000")
)

type fakeFilterer struct {
	logs  []types.Log
	err   error
	query ethereum.FilterQuery
}

func (f *fakeFilterer) FilterLogs(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	f.query = query
	return f.logs, f.err
}

func registration(t *testing.T, subnetID ids.ID, nodeID ids.NodeID) *warpMessage.RegisterL1Validator {
	msg, err := warpMessage.NewRegisterL1Validator(
		subnetID,
		nodeID,
		[bls.PublicKeyLen]byte{4, 5, 6},
		1_900_000_000,
		warpMessage.PChainOwner{},
		warpMessage.PChainOwner{},
		100,
	)
	require.NoError(t, err)
	return msg
}

func warpLog(t *testing.T, payload []byte) types.Log {
	msg, err := warp.PackAddressedCallMessage(constants.FujiID, sourceChainID, managerAddress.Bytes(), payload)
	require.NoError(t, err)
	topics, data, err := subnetEvmWarp.PackSendWarpMessageEvent(managerAddress, common.Hash{}, msg)
	require.NoError(t, err)
	return types.Log{
		Address: subnetEvmWarp.ContractAddress,
		Topics:  topics,
		Data:    data,
	}
}

func TestGetRegistrationJustification(t *testing.T) {
	subnetID := ids.GenerateTestID()
	targetNodeID := ids.GenerateTestNodeID()
	otherNodeID := ids.GenerateTestNodeID()
	target := registration(t, subnetID, targetNodeID)
	other := registration(t, subnetID, otherNodeID)
	weightMsg, err := warpMessage.NewL1ValidatorWeight(ids.GenerateTestID(), 1, 10)
	require.NoError(t, err)

	filterer := &fakeFilterer{logs: []types.Log{
		{Address: subnetEvmWarp.ContractAddress, Data: []byte{0x01}},
		warpLog(t, weightMsg.Bytes()),
		warpLog(t, other.Bytes()),
		warpLog(t, target.Bytes()),
	}}
	extractor := NewExtractor(filterer, nil)

	justification, err := extractor.GetRegistrationJustification(
		context.Background(),
		Target{NodeID: targetNodeID},
		subnetID,
	)
	require.NoError(t, err)
	require.Equal(t, byte(0x12), justification[0])
	length, n := protowire.ConsumeVarint(justification[1:])
	require.Positive(t, n)
	require.Equal(t, uint64(len(target.Bytes())), length)
	require.Equal(t, target.Bytes(), justification[1+n:])

	require.Equal(t, []common.Address{subnetEvmWarp.ContractAddress}, filterer.query.Addresses)
	require.Equal(t, evm.SendWarpMessageEventID(), filterer.query.Topics[0][0])
	require.Zero(t, filterer.query.FromBlock.Int64())
	require.Nil(t, filterer.query.ToBlock)

	// by validation id
	justification, err = extractor.GetRegistrationJustification(
		context.Background(),
		Target{ValidationID: other.ValidationID()},
		ids.Empty,
	)
	require.NoError(t, err)
	reg, err := VerifyJustification(justification, Target{ValidationID: other.ValidationID()})
	require.NoError(t, err)
	require.Equal(t, otherNodeID, reg.NodeID)
}

func TestGetRegistrationJustificationNotFound(t *testing.T) {
	subnetID := ids.GenerateTestID()
	nodeID := ids.GenerateTestNodeID()
	msg := registration(t, subnetID, nodeID)
	extractor := NewExtractor(&fakeFilterer{logs: []types.Log{warpLog(t, msg.Bytes())}}, nil)

	justification, err := extractor.GetRegistrationJustification(
		context.Background(),
		Target{NodeID: ids.GenerateTestNodeID()},
		subnetID,
	)
	require.NoError(t, err)
	require.Nil(t, justification)

	// right node on another subnet
	justification, err = extractor.GetRegistrationJustification(
		context.Background(),
		Target{NodeID: nodeID},
		ids.GenerateTestID(),
	)
	require.NoError(t, err)
	require.Nil(t, justification)
}

func TestGetRegistrationJustificationQueryError(t *testing.T) {
	extractor := NewExtractor(&fakeFilterer{err: errors.New("rpc down")}, nil)
	_, err := extractor.GetRegistrationJustification(context.Background(), Target{NodeID: ids.GenerateTestNodeID()}, ids.Empty)
	require.ErrorContains(t, err, "rpc down")
}

func TestVerifyJustificationMismatch(t *testing.T) {
	nodeID := ids.GenerateTestNodeID()
	msg := registration(t, ids.GenerateTestID(), nodeID)
	justification := warp.EncodeJustification(msg.Bytes())

	_, err := VerifyJustification(justification, Target{NodeID: ids.GenerateTestNodeID()})
	require.ErrorIs(t, err, ErrJustificationMismatch)

	_, err = VerifyJustification([]byte{0x0a, 0x01}, Target{NodeID: nodeID})
	require.ErrorIs(t, err, warp.ErrMalformedJustification)
}

func TestParseTarget(t *testing.T) {
	nodeID := ids.GenerateTestNodeID()
	target, err := ParseTarget(nodeID.String())
	require.NoError(t, err)
	require.Equal(t, Target{NodeID: nodeID}, target)

	validationID := ids.GenerateTestID()
	target, err = ParseTarget(validationID.String())
	require.NoError(t, err)
	require.Equal(t, Target{ValidationID: validationID}, target)

	target, err = ParseTarget(common.Hash(validationID).Hex())
	require.NoError(t, err)
	require.Equal(t, Target{ValidationID: validationID}, target)

	for _, s := range []string{"", "NodeID-xyz", "0x1234", "not-an-id"} {
		_, err := ParseTarget(s)
		require.ErrorIs(t, err, ErrInvalidTarget, s)
	}
}
