// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/l1-orchestrator/sdk/evm"
	"github.com/ava-labs/libevm/accounts/abi/bind"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
)

const (
	initiatedValidatorWeightUpdateEvent = "InitiatedValidatorWeightUpdate"
	initiatedValidatorRegistrationEvent = "InitiatedValidatorRegistration"
)

// topic0 of InitiatedValidatorWeightUpdate(bytes32,uint64,bytes32,uint64)
var InitiatedValidatorWeightUpdateTopic = common.HexToHash("0x6e350dd49b060d87f297206fd309234ed43156d890ced0f139ecf704310481d3")

// ValidatorManagerInitiatedValidatorWeightUpdate is emitted by initiateValidatorWeightUpdate.
// ValidationID comes from topic1, the rest from the log data
type ValidatorManagerInitiatedValidatorWeightUpdate struct {
	ValidationID          [32]byte
	Nonce                 uint64
	WeightUpdateMessageID [32]byte
	Weight                uint64
}

type ValidatorManagerInitiatedValidatorRegistration struct {
	ValidationID          [32]byte
	NodeID                [20]byte
	RegistrationMessageID [32]byte
	RegistrationExpiry    uint64
	Weight                uint64
}

func eventParser() *bind.BoundContract {
	return bind.NewBoundContract(common.Address{}, ValidatorManagerABI, nil, nil, nil)
}

func ParseInitiatedValidatorWeightUpdate(log types.Log) (*ValidatorManagerInitiatedValidatorWeightUpdate, error) {
	event := new(ValidatorManagerInitiatedValidatorWeightUpdate)
	if err := eventParser().UnpackLog(event, initiatedValidatorWeightUpdateEvent, log); err != nil {
		return nil, err
	}
	return event, nil
}

func ParseInitiatedValidatorRegistration(log types.Log) (*ValidatorManagerInitiatedValidatorRegistration, error) {
	event := new(ValidatorManagerInitiatedValidatorRegistration)
	if err := eventParser().UnpackLog(event, initiatedValidatorRegistrationEvent, log); err != nil {
		return nil, err
	}
	return event, nil
}

// EventData is the information recovered from an initiate* receipt that later
// steps need to build and check warp messages
type EventData struct {
	ValidationID ids.ID `json:"validationID"`
	Nonce        uint64 `json:"nonce"`
	Weight       uint64 `json:"weight"`
	MessageID    ids.ID `json:"messageID"`
}

// GetWeightUpdateEventData finds the weight update event in [receipt] logs
func GetWeightUpdateEventData(receipt *types.Receipt) (EventData, error) {
	event, err := evm.GetEventFromLogs(receipt.Logs, ParseInitiatedValidatorWeightUpdate)
	if err != nil {
		return EventData{}, err
	}
	return EventData{
		ValidationID: ids.ID(event.ValidationID),
		Nonce:        event.Nonce,
		Weight:       event.Weight,
		MessageID:    ids.ID(event.WeightUpdateMessageID),
	}, nil
}

// GetRegistrationEventData finds the registration event in [receipt] logs.
// Registrations carry no nonce
func GetRegistrationEventData(receipt *types.Receipt) (EventData, error) {
	event, err := evm.GetEventFromLogs(receipt.Logs, ParseInitiatedValidatorRegistration)
	if err != nil {
		return EventData{}, err
	}
	return EventData{
		ValidationID: ids.ID(event.ValidationID),
		Weight:       event.Weight,
		MessageID:    ids.ID(event.RegistrationMessageID),
	}, nil
}
