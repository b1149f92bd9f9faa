// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"context"
	"errors"
	"sync"
)

var ErrEmptyRPCURL = errors.New("empty rpc url")

// ClientHandle owns a lazily connected evm client for one rpc url.
// The connection is established on first use, reused afterwards, and released
// on Close. A Get after Close connects again.
type ClientHandle struct {
	rpcURL string
	dial   func(context.Context, string) (Client, error)

	mu     sync.Mutex
	client *Client
}

func NewClientHandle(rpcURL string) *ClientHandle {
	return &ClientHandle{
		rpcURL: rpcURL,
		dial:   GetClient,
	}
}

func (h *ClientHandle) URL() string {
	return h.rpcURL
}

// Get returns the handle client, connecting it if needed
func (h *ClientHandle) Get(ctx context.Context) (Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		return *h.client, nil
	}
	if h.rpcURL == "" {
		return Client{}, ErrEmptyRPCURL
	}
	client, err := h.dial(ctx, h.rpcURL)
	if err != nil {
		return Client{}, err
	}
	h.client = &client
	return client, nil
}

// Connected indicates if the handle currently holds a connection
func (h *ClientHandle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.client != nil
}

// Close releases the connection, if any
func (h *ClientHandle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client == nil {
		return
	}
	h.client.Close()
	h.client = nil
}
