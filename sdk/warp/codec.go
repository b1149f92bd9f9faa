// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package warp

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	avalancheWarp "github.com/ava-labs/avalanchego/vms/platformvm/warp"
	warpPayload "github.com/ava-labs/avalanchego/vms/platformvm/warp/payload"
)

const (
	// codecVersion(2) + networkID(4) + sourceChainID(32) + messageLength(4)
	UnsignedMessageHeaderLen = 2 + 4 + ids.IDLen + 4

	CodecVersion = uint16(0)

	// payload codec type ids
	HashTypeID          = uint32(0)
	AddressedCallTypeID = uint32(1)

	// platformvm warp message codec type ids
	SubnetToL1ConversionTypeID    = uint32(0)
	RegisterL1ValidatorTypeID     = uint32(1)
	L1ValidatorRegistrationTypeID = uint32(2)
	L1ValidatorWeightTypeID       = uint32(3)

	// codecVersion(2) + typeID(4)
	typedPrefixLen = 2 + 4
)

var (
	ErrMalformedMessage = errors.New("malformed warp message")
	ErrUnexpectedTypeID = errors.New("unexpected type id")
)

// UnsignedMessage is the decoded form of an unsigned warp message header plus its payload
type UnsignedMessage struct {
	CodecVersion  uint16
	NetworkID     uint32
	SourceChainID ids.ID
	Payload       []byte
}

// AddressedCall is the decoded form of an addressed call payload
type AddressedCall struct {
	CodecVersion  uint16
	TypeID        uint32
	SourceAddress []byte
	Payload       []byte
}

// ExtractAddressedCall returns the payload carried by the unsigned warp [message],
// that is expected to be an addressed call. Any malformed input, including messages
// shorter than the header or declaring a non positive or out of bounds payload length,
// results in a nil result
func ExtractAddressedCall(message []byte) []byte {
	if len(message) < UnsignedMessageHeaderLen {
		return nil
	}
	p := wrappers.Packer{Bytes: message, Offset: UnsignedMessageHeaderLen - 4}
	messageLength := p.UnpackInt()
	if p.Errored() || messageLength == 0 {
		return nil
	}
	if uint64(messageLength) > uint64(len(message)-UnsignedMessageHeaderLen) {
		return nil
	}
	return message[UnsignedMessageHeaderLen : UnsignedMessageHeaderLen+int(messageLength)]
}

// ParseUnsignedMessage strictly decodes [message]: the declared payload length
// must match exactly the remaining bytes
func ParseUnsignedMessage(message []byte) (*UnsignedMessage, error) {
	if len(message) < UnsignedMessageHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than header length %d", ErrMalformedMessage, len(message), UnsignedMessageHeaderLen)
	}
	p := wrappers.Packer{Bytes: message}
	msg := &UnsignedMessage{
		CodecVersion: p.UnpackShort(),
		NetworkID:    p.UnpackInt(),
	}
	copy(msg.SourceChainID[:], p.UnpackFixedBytes(ids.IDLen))
	msg.Payload = p.UnpackBytes()
	if p.Errored() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, p.Err)
	}
	if p.Offset != len(message) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedMessage, len(message)-p.Offset)
	}
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedMessage)
	}
	return msg, nil
}

// ParseAddressedCall decodes an addressed call payload. It checks the addressed
// call type tag before decoding the remaining fields
func ParseAddressedCall(b []byte) (*AddressedCall, error) {
	codecVersion, typeID, err := parseTypedPrefix(b)
	if err != nil {
		return nil, err
	}
	if typeID != AddressedCallTypeID {
		return nil, fmt.Errorf("%w: expected addressed call type %d, got %d", ErrUnexpectedTypeID, AddressedCallTypeID, typeID)
	}
	p := wrappers.Packer{Bytes: b, Offset: typedPrefixLen}
	call := &AddressedCall{
		CodecVersion:  codecVersion,
		TypeID:        typeID,
		SourceAddress: p.UnpackBytes(),
		Payload:       p.UnpackBytes(),
	}
	if p.Errored() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, p.Err)
	}
	return call, nil
}

// PackAddressedCallMessage wraps [payload] into an addressed call from [sourceAddress],
// and then into an unsigned warp message for [networkID] and [sourceChainID]
func PackAddressedCallMessage(
	networkID uint32,
	sourceChainID ids.ID,
	sourceAddress []byte,
	payload []byte,
) ([]byte, error) {
	addressedCall, err := warpPayload.NewAddressedCall(sourceAddress, payload)
	if err != nil {
		return nil, err
	}
	unsignedMessage, err := avalancheWarp.NewUnsignedMessage(
		networkID,
		sourceChainID,
		addressedCall.Bytes(),
	)
	if err != nil {
		return nil, err
	}
	return unsignedMessage.Bytes(), nil
}

func parseTypedPrefix(b []byte) (uint16, uint32, error) {
	if len(b) < typedPrefixLen {
		return 0, 0, fmt.Errorf("%w: %d bytes is shorter than type prefix", ErrMalformedMessage, len(b))
	}
	p := wrappers.Packer{Bytes: b}
	codecVersion := p.UnpackShort()
	typeID := p.UnpackInt()
	if codecVersion != CodecVersion {
		return 0, 0, fmt.Errorf("%w: unsupported codec version %d", ErrMalformedMessage, codecVersion)
	}
	return codecVersion, typeID, nil
}
