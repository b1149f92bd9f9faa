// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package warp

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	avalancheWarp "github.com/ava-labs/avalanchego/vms/platformvm/warp"
	warpMessage "github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
	warpPayload "github.com/ava-labs/avalanchego/vms/platformvm/warp/payload"
	"github.com/stretchr/testify/require"
)

func newRegisterL1Validator(t *testing.T, subnetID ids.ID, nodeID ids.NodeID, weight uint64) *warpMessage.RegisterL1Validator {
	msg, err := warpMessage.NewRegisterL1Validator(
		subnetID,
		nodeID,
		[bls.PublicKeyLen]byte{1, 2, 3},
		1_900_000_000,
		warpMessage.PChainOwner{
			Threshold: 1,
			Addresses: []ids.ShortID{ids.GenerateTestShortID()},
		},
		warpMessage.PChainOwner{
			Threshold: 2,
			Addresses: []ids.ShortID{ids.GenerateTestShortID(), ids.GenerateTestShortID()},
		},
		weight,
	)
	require.NoError(t, err)
	return msg
}

func addressedCallBytes(t *testing.T, payload []byte) []byte {
	call, err := warpPayload.NewAddressedCall([]byte{0x01, 0x02}, payload)
	require.NoError(t, err)
	return call.Bytes()
}

func TestParseRegistrationPayload(t *testing.T) {
	subnetID := ids.GenerateTestID()
	nodeID := ids.GenerateTestNodeID()
	expected := newRegisterL1Validator(t, subnetID, nodeID, 20)

	reg, err := ParseRegistrationPayload(addressedCallBytes(t, expected.Bytes()))
	require.NoError(t, err)
	require.Equal(t, subnetID, reg.SubnetID)
	require.Equal(t, nodeID, reg.NodeID)
	require.Equal(t, expected.BLSPublicKey, reg.BLSPublicKey)
	require.Equal(t, expected.Expiry, reg.Expiry)
	require.Equal(t, uint64(20), reg.Weight)
	require.Equal(t, expected.RemainingBalanceOwner.Threshold, reg.RemainingBalanceOwner.Threshold)
	require.Equal(t, expected.RemainingBalanceOwner.Addresses, reg.RemainingBalanceOwner.Addresses)
	require.Equal(t, expected.DisableOwner.Addresses, reg.DisableOwner.Addresses)
	require.Equal(t, expected.ValidationID(), reg.ValidationID)
	require.Equal(t, expected.Bytes(), reg.Raw)
}

func TestParseRegistrationPayloadRejectsOtherTypes(t *testing.T) {
	// payload type 2 (L1ValidatorRegistration)
	status, err := warpMessage.NewL1ValidatorRegistration(ids.GenerateTestID(), true)
	require.NoError(t, err)
	_, err = ParseRegistrationPayload(addressedCallBytes(t, status.Bytes()))
	require.ErrorIs(t, err, ErrUnexpectedTypeID)

	// payload type 0 (SubnetToL1Conversion)
	conversion, err := warpMessage.NewSubnetToL1Conversion(ids.GenerateTestID())
	require.NoError(t, err)
	_, err = ParseRegistrationPayload(addressedCallBytes(t, conversion.Bytes()))
	require.ErrorIs(t, err, ErrUnexpectedTypeID)

	// addressed call type 0 (Hash)
	hash, err := warpPayload.NewHash(ids.GenerateTestID())
	require.NoError(t, err)
	_, err = ParseRegistrationPayload(hash.Bytes())
	require.ErrorIs(t, err, ErrUnexpectedTypeID)
}

func TestParseRegistrationPayloadMalformed(t *testing.T) {
	reg := newRegisterL1Validator(t, ids.GenerateTestID(), ids.GenerateTestNodeID(), 1)
	truncated := reg.Bytes()[:len(reg.Bytes())-3]
	_, err := ParseRegistrationPayload(addressedCallBytes(t, truncated))
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestParseRegistrationMessage(t *testing.T) {
	nodeID := ids.GenerateTestNodeID()
	reg := newRegisterL1Validator(t, ids.GenerateTestID(), nodeID, 5)
	msg, err := PackAddressedCallMessage(constants.FujiID, ids.GenerateTestID(), []byte{1}, reg.Bytes())
	require.NoError(t, err)

	parsed, err := ParseRegistrationMessage(msg)
	require.NoError(t, err)
	require.Equal(t, nodeID, parsed.NodeID)

	_, err = ParseRegistrationMessage([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestL1ValidatorWeightMessageRoundTrip(t *testing.T) {
	tests := []WeightPayload{
		{ValidationID: ids.GenerateTestID(), Nonce: 1, Weight: 150},
		{ValidationID: ids.GenerateTestID(), Nonce: 0, Weight: 0},
		{ValidationID: ids.GenerateTestID(), Nonce: ^uint64(0), Weight: ^uint64(0)},
	}
	for _, expected := range tests {
		msg, err := PackL1ValidatorWeightMessage(expected, constants.FujiID, constants.PlatformChainID)
		require.NoError(t, err)

		parsed, err := ParseL1ValidatorWeightMessage(msg)
		require.NoError(t, err)
		require.Equal(t, expected, *parsed)

		unsigned, err := avalancheWarp.ParseUnsignedMessage(msg)
		require.NoError(t, err)
		require.Equal(t, constants.PlatformChainID, unsigned.SourceChainID)
		call, err := warpPayload.ParseAddressedCall(unsigned.Payload)
		require.NoError(t, err)
		require.Empty(t, call.SourceAddress)
		weight, err := warpMessage.ParseL1ValidatorWeight(call.Payload)
		require.NoError(t, err)
		require.Equal(t, expected.ValidationID, weight.ValidationID)
		require.Equal(t, expected.Nonce, weight.Nonce)
		require.Equal(t, expected.Weight, weight.Weight)
	}
}

func TestPackL1ValidatorRegistrationMessage(t *testing.T) {
	validationID := ids.GenerateTestID()
	msg, err := PackL1ValidatorRegistrationMessage(validationID, true, constants.FujiID, constants.PlatformChainID)
	require.NoError(t, err)

	status, err := ParseL1ValidatorRegistrationPayload(ExtractAddressedCall(msg))
	require.NoError(t, err)
	require.Equal(t, validationID, status.ValidationID)
	require.True(t, status.Valid)

	_, err = ParseL1ValidatorWeightMessage(msg)
	require.ErrorIs(t, err, ErrUnexpectedTypeID)
}
