// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package warp

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// field number of register_l1_validator_message in
// platformvm.L1ValidatorRegistrationJustification
const registerL1ValidatorMessageField protowire.Number = 2

var ErrMalformedJustification = errors.New("malformed registration justification")

// AppendVarint appends the protobuf base 128 varint encoding of [v] to [b]
func AppendVarint(b []byte, v uint64) []byte {
	return protowire.AppendVarint(b, v)
}

// ConsumeVarint decodes a protobuf base 128 varint from the start of [b],
// returning the value and the number of bytes read
func ConsumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("invalid varint: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

// EncodeJustification frames the RegisterL1Validator [payload] bytes as a
// L1ValidatorRegistrationJustification protobuf message: field 2, length delimited
func EncodeJustification(payload []byte) []byte {
	b := protowire.AppendTag(nil, registerL1ValidatorMessageField, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

// DecodeJustification returns the RegisterL1Validator payload bytes framed by [justification]
func DecodeJustification(justification []byte) ([]byte, error) {
	num, typ, n := protowire.ConsumeTag(justification)
	if n < 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJustification, protowire.ParseError(n))
	}
	if num != registerL1ValidatorMessageField || typ != protowire.BytesType {
		return nil, fmt.Errorf("%w: unexpected field %d of wire type %d", ErrMalformedJustification, num, typ)
	}
	payload, m := protowire.ConsumeBytes(justification[n:])
	if m < 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJustification, protowire.ParseError(m))
	}
	if n+m != len(justification) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedJustification, len(justification)-n-m)
	}
	return payload, nil
}
