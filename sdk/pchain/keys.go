// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package pchain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/utils/cb58"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
)

const privateKeyPrefix = "PrivateKey-"

// ParsePrivateKey accepts a PrivateKey-<cb58> encoded key, or an hex one
func ParsePrivateKey(privateKey string) (*secp256k1.PrivateKey, error) {
	privateKey = strings.TrimSpace(privateKey)
	var (
		keyBytes []byte
		err      error
	)
	if strings.HasPrefix(privateKey, privateKeyPrefix) {
		keyBytes, err = cb58.Decode(strings.TrimPrefix(privateKey, privateKeyPrefix))
	} else {
		keyBytes, err = hex.DecodeString(strings.TrimPrefix(privateKey, "0x"))
	}
	if err != nil {
		return nil, fmt.Errorf("invalid P-Chain private key encoding: %w", err)
	}
	key, err := secp256k1.ToPrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid P-Chain private key: %w", err)
	}
	return key, nil
}
