// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package wallet

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/vms/secp256k1fx"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary/common"
	"github.com/ava-labs/l1-orchestrator/sdk/constants"
)

var ErrNoAccountsInClient = errors.New("there are no accounts defined in the client")

type Config = primary.WalletConfig

type Wallet struct {
	*primary.Wallet
	Keychain *secp256k1fx.Keychain
}

// New fetches the UTXOs of [keychain] from the node at [endpoint] and builds a
// primary network wallet over them
func New(
	ctx context.Context,
	endpoint string,
	keychain *secp256k1fx.Keychain,
	config Config,
) (*Wallet, error) {
	if keychain.Addresses().Len() == 0 {
		return nil, ErrNoAccountsInClient
	}
	ctx, cancel := context.WithTimeout(ctx, constants.WalletCreationTimeout)
	defer cancel()
	wallet, err := primary.MakeWallet(
		ctx,
		endpoint,
		keychain,
		secp256k1fx.NewKeychain(),
		config,
	)
	if err != nil {
		return nil, err
	}
	w := &Wallet{
		Wallet:   wallet,
		Keychain: keychain,
	}
	w.secureChangeOwner()
	return w, nil
}

// ensures that the fee paying address receives the change UTXO
func (w *Wallet) secureChangeOwner() {
	changeOwner := &secp256k1fx.OutputOwners{
		Threshold: 1,
		Addrs:     []ids.ShortID{w.Addresses()[0]},
	}
	w.Wallet = primary.NewWalletWithOptions(w.Wallet, common.WithChangeOwner(changeOwner))
}

func (w *Wallet) Addresses() []ids.ShortID {
	return w.Keychain.Addresses().List()
}
