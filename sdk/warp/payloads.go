// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package warp

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	warpMessage "github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
)

// PChainOwner is the P-Chain owner of a validator balance, or of its disable capability
type PChainOwner struct {
	Threshold uint32
	Addresses []ids.ShortID
}

// RegistrationPayload is a decoded RegisterL1Validator payload
type RegistrationPayload struct {
	SubnetID              ids.ID
	NodeID                ids.NodeID
	BLSPublicKey          [bls.PublicKeyLen]byte
	Expiry                uint64
	RemainingBalanceOwner PChainOwner
	DisableOwner          PChainOwner
	Weight                uint64
	// ValidationID is the sha256 of the payload bytes
	ValidationID ids.ID
	// Raw holds the exact payload bytes the fields were decoded from
	Raw []byte
}

// WeightPayload is a decoded L1ValidatorWeight payload
type WeightPayload struct {
	ValidationID ids.ID
	Nonce        uint64
	Weight       uint64
}

// RegistrationStatusPayload is a decoded L1ValidatorRegistration payload
type RegistrationStatusPayload struct {
	ValidationID ids.ID
	Valid        bool
}

// ParseRegistrationPayload decodes a RegisterL1Validator payload out of the
// addressed call bytes [addressedCall]. If either the addressed call type or the inner
// payload type does not match, ErrUnexpectedTypeID is returned without attempting
// to decode the validator fields
func ParseRegistrationPayload(addressedCall []byte) (*RegistrationPayload, error) {
	call, err := ParseAddressedCall(addressedCall)
	if err != nil {
		return nil, err
	}
	return ParseRegisterL1ValidatorBytes(call.Payload)
}

// ParseRegisterL1ValidatorBytes decodes the RegisterL1Validator [payload] bytes
// themselves, as carried by addressed calls and justifications
func ParseRegisterL1ValidatorBytes(payload []byte) (*RegistrationPayload, error) {
	if err := checkPayloadType(payload, RegisterL1ValidatorTypeID); err != nil {
		return nil, err
	}
	p := wrappers.Packer{Bytes: payload, Offset: typedPrefixLen}
	reg := &RegistrationPayload{}
	copy(reg.SubnetID[:], p.UnpackFixedBytes(ids.IDLen))
	nodeIDBytes := p.UnpackBytes()
	copy(reg.BLSPublicKey[:], p.UnpackFixedBytes(bls.PublicKeyLen))
	reg.Expiry = p.UnpackLong()
	reg.RemainingBalanceOwner = unpackOwner(&p)
	reg.DisableOwner = unpackOwner(&p)
	reg.Weight = p.UnpackLong()
	if p.Errored() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, p.Err)
	}
	if p.Offset != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes in registration payload", ErrMalformedMessage, len(payload)-p.Offset)
	}
	nodeID, err := ids.ToNodeID(nodeIDBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	reg.NodeID = nodeID
	reg.Raw = payload
	reg.ValidationID = hashing.ComputeHash256Array(payload)
	return reg, nil
}

// ParseRegistrationMessage decodes the RegisterL1Validator payload of the
// unsigned warp [message]
func ParseRegistrationMessage(message []byte) (*RegistrationPayload, error) {
	addressedCall := ExtractAddressedCall(message)
	if addressedCall == nil {
		return nil, ErrMalformedMessage
	}
	return ParseRegistrationPayload(addressedCall)
}

// ParseL1ValidatorWeightPayload decodes a L1ValidatorWeight payload out of the
// addressed call bytes [addressedCall]
func ParseL1ValidatorWeightPayload(addressedCall []byte) (*WeightPayload, error) {
	call, err := ParseAddressedCall(addressedCall)
	if err != nil {
		return nil, err
	}
	if err := checkPayloadType(call.Payload, L1ValidatorWeightTypeID); err != nil {
		return nil, err
	}
	p := wrappers.Packer{Bytes: call.Payload, Offset: typedPrefixLen}
	weight := &WeightPayload{}
	copy(weight.ValidationID[:], p.UnpackFixedBytes(ids.IDLen))
	weight.Nonce = p.UnpackLong()
	weight.Weight = p.UnpackLong()
	if p.Errored() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, p.Err)
	}
	if p.Offset != len(call.Payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes in weight payload", ErrMalformedMessage, len(call.Payload)-p.Offset)
	}
	return weight, nil
}

// ParseL1ValidatorWeightMessage decodes the L1ValidatorWeight payload of the
// unsigned warp [message]
func ParseL1ValidatorWeightMessage(message []byte) (*WeightPayload, error) {
	addressedCall := ExtractAddressedCall(message)
	if addressedCall == nil {
		return nil, ErrMalformedMessage
	}
	return ParseL1ValidatorWeightPayload(addressedCall)
}

// ParseL1ValidatorRegistrationPayload decodes a L1ValidatorRegistration payload out of
// the addressed call bytes [addressedCall]
func ParseL1ValidatorRegistrationPayload(addressedCall []byte) (*RegistrationStatusPayload, error) {
	call, err := ParseAddressedCall(addressedCall)
	if err != nil {
		return nil, err
	}
	if err := checkPayloadType(call.Payload, L1ValidatorRegistrationTypeID); err != nil {
		return nil, err
	}
	p := wrappers.Packer{Bytes: call.Payload, Offset: typedPrefixLen}
	status := &RegistrationStatusPayload{}
	copy(status.ValidationID[:], p.UnpackFixedBytes(ids.IDLen))
	status.Valid = p.UnpackBool()
	if p.Errored() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, p.Err)
	}
	return status, nil
}

// PackL1ValidatorWeightMessage builds the unsigned warp message bytes stating
// [weight] for a validator, as emitted by [sourceChainID]. The addressed call
// carries no source address, as used by P-Chain originated messages
func PackL1ValidatorWeightMessage(
	weight WeightPayload,
	networkID uint32,
	sourceChainID ids.ID,
) ([]byte, error) {
	payload, err := warpMessage.NewL1ValidatorWeight(
		weight.ValidationID,
		weight.Nonce,
		weight.Weight,
	)
	if err != nil {
		return nil, err
	}
	return PackAddressedCallMessage(networkID, sourceChainID, nil, payload.Bytes())
}

// PackL1ValidatorRegistrationMessage builds the unsigned warp message bytes stating
// whether [validationID] is [valid], as emitted by [sourceChainID]
func PackL1ValidatorRegistrationMessage(
	validationID ids.ID,
	valid bool,
	networkID uint32,
	sourceChainID ids.ID,
) ([]byte, error) {
	payload, err := warpMessage.NewL1ValidatorRegistration(validationID, valid)
	if err != nil {
		return nil, err
	}
	return PackAddressedCallMessage(networkID, sourceChainID, nil, payload.Bytes())
}

func checkPayloadType(payload []byte, expected uint32) error {
	_, typeID, err := parseTypedPrefix(payload)
	if err != nil {
		return err
	}
	if typeID != expected {
		return fmt.Errorf("%w: expected payload type %d, got %d", ErrUnexpectedTypeID, expected, typeID)
	}
	return nil
}

func unpackOwner(p *wrappers.Packer) PChainOwner {
	owner := PChainOwner{
		Threshold: p.UnpackInt(),
	}
	numAddrs := p.UnpackInt()
	if p.Errored() {
		return owner
	}
	if uint64(numAddrs)*ids.ShortIDLen > uint64(len(p.Bytes)-p.Offset) {
		p.Add(wrappers.ErrInsufficientLength)
		return owner
	}
	owner.Addresses = make([]ids.ShortID, 0, numAddrs)
	for i := uint32(0); i < numAddrs; i++ {
		var addr ids.ShortID
		copy(addr[:], p.UnpackFixedBytes(ids.ShortIDLen))
		owner.Addresses = append(owner.Addresses, addr)
	}
	return owner
}
