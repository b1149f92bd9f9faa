// Copyright (C) 2025, Ava Labs, Inc. All rights reserved
// See the file LICENSE for licensing terms.
package interchain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/sdk/constants"
	"go.uber.org/zap"
)

const (
	DefaultQuorumPercentage = uint64(67)
	DefaultTimeout          = constants.SignatureAggregatorTimeout

	DefaultGlacierURL = "https://glacier-api.avax.network"
	DefaultLocalURL   = "http://localhost:8080"
)

// Dialect selects the wire format of the signature aggregation service
type Dialect string

const (
	// hosted aggregation api: camelCase json, network in path
	DialectGlacier Dialect = "glacier"
	// locally run icm-services signature-aggregator: kebab-case json
	DialectICM Dialect = "icm"
)

var (
	ErrInvalidQuorumPercentage = errors.New("quorum percentage must be between 1 and 100")
	ErrEmptySignedMessage      = errors.New("signature aggregator returned an empty signed message")
)

// AggregatorError is returned when the aggregation service answers with a non 200 status.
// Its message is the one given by the service, unchanged
type AggregatorError struct {
	StatusCode int
	Message    string
}

func (e *AggregatorError) Error() string {
	return e.Message
}

// Transient indicates if the failure may be solved by retrying the same request
func (e *AggregatorError) Transient() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// AggregateRequest describes a signature aggregation for an unsigned warp message
type AggregateRequest struct {
	// hex encoded unsigned warp message
	Message string
	// hex encoded justification, optional
	Justification string
	// subnet whose validators must sign the message
	SigningSubnetID string
	// if zero, the client default is used
	QuorumPercentage uint64
}

type AggregateResponse struct {
	// hex encoded signed warp message
	SignedMessage string
}

type AggregatorConfig struct {
	BaseURL string
	// network name used by the hosted api (fuji, mainnet)
	Network          string
	Dialect          Dialect
	QuorumPercentage uint64
	Timeout          time.Duration
	HTTPClient       *http.Client
}

// AggregatorClient requests signature aggregations from an external service.
// Each call issues exactly one request: retries are left to the caller
type AggregatorClient struct {
	baseURL          string
	network          string
	dialect          Dialect
	quorumPercentage uint64
	httpClient       *http.Client
	logger           logging.Logger
}

type glacierAggregateRequest struct {
	Message          string `json:"message"`
	Justification    string `json:"justification,omitempty"`
	SigningSubnetID  string `json:"signingSubnetId"`
	QuorumPercentage uint64 `json:"quorumPercentage"`
}

type glacierAggregateResponse struct {
	SignedMessage string `json:"signedMessage"`
}

type icmAggregateRequest struct {
	Message          string `json:"message"`
	Justification    string `json:"justification,omitempty"`
	SigningSubnetID  string `json:"signing-subnet-id"`
	QuorumPercentage uint64 `json:"quorum-percentage"`
}

type icmAggregateResponse struct {
	SignedMessage string `json:"signed-message"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CheckQuorumPercentage validates [quorumPercentage], returning the default if it is zero
func CheckQuorumPercentage(quorumPercentage uint64) (uint64, error) {
	if quorumPercentage == 0 {
		return DefaultQuorumPercentage, nil
	}
	if quorumPercentage > 100 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidQuorumPercentage, quorumPercentage)
	}
	return quorumPercentage, nil
}

func NewAggregatorClient(cfg AggregatorConfig, logger logging.Logger) (*AggregatorClient, error) {
	quorumPercentage, err := CheckQuorumPercentage(cfg.QuorumPercentage)
	if err != nil {
		return nil, err
	}
	dialect := cfg.Dialect
	if dialect == "" {
		dialect = DialectGlacier
	}
	baseURL := cfg.BaseURL
	switch dialect {
	case DialectGlacier:
		if baseURL == "" {
			baseURL = DefaultGlacierURL
		}
		if cfg.Network == "" {
			return nil, fmt.Errorf("network name is required by the %s signature aggregator", dialect)
		}
	case DialectICM:
		if baseURL == "" {
			baseURL = DefaultLocalURL
		}
	default:
		return nil, fmt.Errorf("unknown signature aggregator dialect %q", dialect)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.NoLog{}
	}
	return &AggregatorClient{
		baseURL:          strings.TrimSuffix(baseURL, "/"),
		network:          cfg.Network,
		dialect:          dialect,
		quorumPercentage: quorumPercentage,
		httpClient:       httpClient,
		logger:           logger,
	}, nil
}

func (c *AggregatorClient) QuorumPercentage() uint64 {
	return c.quorumPercentage
}

func (c *AggregatorClient) endpoint() string {
	if c.dialect == DialectICM {
		return c.baseURL + "/aggregate-signatures"
	}
	return fmt.Sprintf("%s/v1/signatureAggregator/%s/aggregateSignatures", c.baseURL, c.network)
}

func (c *AggregatorClient) marshalRequest(req AggregateRequest, quorumPercentage uint64) ([]byte, error) {
	if c.dialect == DialectICM {
		return json.Marshal(icmAggregateRequest{
			Message:          req.Message,
			Justification:    req.Justification,
			SigningSubnetID:  req.SigningSubnetID,
			QuorumPercentage: quorumPercentage,
		})
	}
	return json.Marshal(glacierAggregateRequest{
		Message:          req.Message,
		Justification:    req.Justification,
		SigningSubnetID:  req.SigningSubnetID,
		QuorumPercentage: quorumPercentage,
	})
}

func (c *AggregatorClient) unmarshalResponse(body []byte) (string, error) {
	if c.dialect == DialectICM {
		var response icmAggregateResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return "", err
		}
		return response.SignedMessage, nil
	}
	var response glacierAggregateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	return response.SignedMessage, nil
}

// AggregateSignatures asks the service to collect signatures for [req.Message]
// until [req.QuorumPercentage] of the signing subnet stake has signed
func (c *AggregatorClient) AggregateSignatures(
	ctx context.Context,
	req AggregateRequest,
) (AggregateResponse, error) {
	quorumPercentage := req.QuorumPercentage
	if quorumPercentage == 0 {
		quorumPercentage = c.quorumPercentage
	}
	if _, err := CheckQuorumPercentage(quorumPercentage); err != nil {
		return AggregateResponse{}, err
	}
	if req.Message == "" {
		return AggregateResponse{}, fmt.Errorf("message to be signed can't be empty")
	}
	requestBody, err := c.marshalRequest(req, quorumPercentage)
	if err != nil {
		return AggregateResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	c.logger.Info("Calling signature aggregator",
		zap.String("endpoint", c.endpoint()),
		zap.String("request", string(requestBody)),
	)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(requestBody))
	if err != nil {
		return AggregateResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Error making request to signature aggregator",
			zap.Error(err),
		)
		return AggregateResponse{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Error reading response body",
			zap.Error(err),
		)
		return AggregateResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Info("Received response from signature aggregator",
		zap.Int("status_code", resp.StatusCode),
		zap.String("response", string(body)),
	)
	if resp.StatusCode != http.StatusOK {
		return AggregateResponse{}, &AggregatorError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
		}
	}
	signedMessage, err := c.unmarshalResponse(body)
	if err != nil {
		return AggregateResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}
	signedMessage = strings.TrimPrefix(signedMessage, "0x")
	if signedMessage == "" {
		return AggregateResponse{}, ErrEmptySignedMessage
	}
	if _, err := hex.DecodeString(signedMessage); err != nil {
		return AggregateResponse{}, fmt.Errorf("signed message is not hex encoded: %w", err)
	}
	return AggregateResponse{SignedMessage: signedMessage}, nil
}

func errorMessage(statusCode int, body []byte) string {
	var response errorResponse
	if err := json.Unmarshal(body, &response); err == nil {
		if response.Message != "" {
			return response.Message
		}
		if response.Error != "" {
			return response.Error
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return fmt.Sprintf("signature aggregator returned status code %d", statusCode)
}
