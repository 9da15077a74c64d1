package soroban

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/monitoring"
	"github.com/pulsartrack/syncer/src/utils/monitoring/report"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// Single point of contact with the ledger
type Gateway interface {
	// Read-only invocation through simulation. Nothing is submitted.
	Call(ctx context.Context, contractId, method string, args ...xdr.ScVal) (any, error)

	// Simulate, sign, submit once and wait for the ledger to confirm
	Submit(ctx context.Context, contractId, method string, signer Signer, args ...xdr.ScVal) (*SubmitResult, error)

	LatestLedger(ctx context.Context) (*LatestLedger, error)
}

var _ Gateway = (*Client)(nil)

type Client struct {
	*BaseClient

	report *report.GatewayReport
}

func NewClient(config *config.Soroban) (self *Client) {
	self = new(Client)
	self.BaseClient = newBaseClient(config)
	self.report = &report.GatewayReport{}
	return
}

func (self *Client) WithMonitor(monitor monitoring.Monitor) *Client {
	self.report = monitor.GetReport().Gateway
	return self
}

func (self *Client) Call(ctx context.Context, contractId, method string, args ...xdr.ScVal) (out any, err error) {
	self.report.State.Calls.Inc()
	defer func() { self.countError(err) }()

	op, err := newInvokeOperation(contractId, method, args)
	if err != nil {
		return
	}

	// Source account only needs to be a valid address, simulation doesn't check the sequence
	tx, err := newTransaction(self.config.SimulationAccount, 0, self.config.BaseFee, op)
	if err != nil {
		return
	}

	sim, err := self.simulate(ctx, method, tx)
	if err != nil {
		return
	}

	if len(sim.Results) == 0 || sim.Results[0].XDR == "" {
		err = ErrEmptyResult
		return
	}

	var value xdr.ScVal
	err = xdr.SafeUnmarshalBase64(sim.Results[0].XDR, &value)
	if err != nil {
		err = &TransportError{Method: method, Err: err}
		return
	}

	return ToNative(value)
}

func (self *Client) Submit(ctx context.Context, contractId, method string, signer Signer, args ...xdr.ScVal) (out *SubmitResult, err error) {
	if signer == nil {
		return nil, ErrSignerRequired
	}

	self.report.State.Submits.Inc()
	defer func() { self.countError(err) }()

	source := signer.Address()
	sequence, err := self.accountSequence(ctx, source)
	if err != nil {
		return
	}

	op, err := newInvokeOperation(contractId, method, args)
	if err != nil {
		return
	}

	tx, err := newTransaction(source, sequence, self.config.BaseFee, op)
	if err != nil {
		return
	}

	// Simulation provides footprint, auth and fees for the real transaction
	sim, err := self.simulate(ctx, method, tx)
	if err != nil {
		return
	}

	resourceFee, err := assemble(op, sim)
	if err != nil {
		err = &TransportError{Method: method, Err: err}
		return
	}

	tx, err = newTransaction(source, sequence, self.config.BaseFee+resourceFee, op)
	if err != nil {
		return
	}

	tx, err = signer.Sign(ctx, tx, self.config.NetworkPassphrase)
	if err != nil {
		return
	}

	envelope, err := tx.Base64()
	if err != nil {
		return
	}

	var sent SendTransactionResponse
	err = self.request(ctx, "sendTransaction", map[string]any{"transaction": envelope}, &sent)
	if err != nil {
		return
	}

	switch sent.Status {
	case SendStatusPending, SendStatusDuplicate:
	default:
		err = &SubmissionError{
			Method:    method,
			Status:    sent.Status,
			Hash:      sent.Hash,
			ResultXDR: sent.ErrorResultXDR,
		}
		return
	}

	self.log.WithField("method", method).
		WithField("hash", sent.Hash).
		WithField("source", source).
		Debug("Transaction sent")

	out, err = self.awaitConfirmation(ctx, method, sent.Hash)
	if err != nil {
		return
	}

	self.report.State.ConfirmedSubmits.Inc()
	return
}

func (self *Client) LatestLedger(ctx context.Context) (out *LatestLedger, err error) {
	defer func() { self.countError(err) }()

	out = new(LatestLedger)
	err = self.request(ctx, "getLatestLedger", nil, out)
	if err != nil {
		return nil, err
	}

	self.report.State.LatestLedger.Store(out.Sequence)
	return
}

func (self *Client) simulate(ctx context.Context, method string, tx *txnbuild.Transaction) (out *SimulateTransactionResponse, err error) {
	envelope, err := tx.Base64()
	if err != nil {
		return
	}

	out = new(SimulateTransactionResponse)
	err = self.request(ctx, "simulateTransaction", map[string]any{"transaction": envelope}, out)
	if err != nil {
		return nil, err
	}

	if out.Error != "" {
		return nil, &SimulationError{Method: method, Message: out.Error}
	}
	return
}

// Current sequence number of the account, read from the ledger
func (self *Client) accountSequence(ctx context.Context, address string) (sequence int64, err error) {
	accountId, err := xdr.AddressToAccountId(address)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	key, err := xdr.MarshalBase64(xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: accountId},
	})
	if err != nil {
		return
	}

	var resp GetLedgerEntriesResponse
	err = self.request(ctx, "getLedgerEntries", map[string]any{"keys": []string{key}}, &resp)
	if err != nil {
		return
	}

	if len(resp.Entries) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	var data xdr.LedgerEntryData
	err = xdr.SafeUnmarshalBase64(resp.Entries[0].XDR, &data)
	if err != nil {
		return
	}

	if data.Account == nil {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	return int64(data.Account.SeqNum), nil
}

// Polls the transaction status. The write itself is never repeated.
func (self *Client) awaitConfirmation(ctx context.Context, method, hash string) (out *SubmitResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, self.config.ConfirmationTimeout)
	defer cancel()

	ticker := time.NewTicker(self.config.ConfirmationPollInterval)
	defer ticker.Stop()

	for {
		var resp GetTransactionResponse
		err = self.request(ctx, "getTransaction", map[string]any{"hash": hash}, &resp)
		if err != nil {
			self.log.WithError(err).WithField("hash", hash).Warn("Failed to get transaction status")
		}

		switch resp.Status {
		case TransactionStatusSuccess:
			var result any
			result, err = decodeReturnValue(&resp)
			if err != nil {
				return
			}
			return &SubmitResult{Hash: hash, Ledger: resp.Ledger, Result: result}, nil
		case TransactionStatusFailed:
			return nil, &TransactionFailedError{Method: method, Hash: hash, ResultXDR: resp.ResultXDR}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", ErrConfirmationTimeout, hash)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func decodeReturnValue(resp *GetTransactionResponse) (out any, err error) {
	var value xdr.ScVal
	switch {
	case resp.ReturnValue != "":
		err = xdr.SafeUnmarshalBase64(resp.ReturnValue, &value)
		if err != nil {
			return
		}
	case resp.ResultMetaXDR != "":
		var meta xdr.TransactionMeta
		err = xdr.SafeUnmarshalBase64(resp.ResultMetaXDR, &meta)
		if err != nil {
			return
		}
		if meta.V3 == nil || meta.V3.SorobanMeta == nil {
			return nil, nil
		}
		value = meta.V3.SorobanMeta.ReturnValue
	default:
		return nil, nil
	}
	return ToNative(value)
}

func (self *Client) countError(err error) {
	if err == nil {
		return
	}

	var (
		simulationErr *SimulationError
		submissionErr *SubmissionError
		failedErr     *TransactionFailedError
		transportErr  *TransportError
	)

	switch {
	case errors.As(err, &simulationErr):
		self.report.Errors.Simulation.Inc()
	case errors.Is(err, ErrEmptyResult):
		self.report.Errors.EmptyResult.Inc()
	case errors.As(err, &submissionErr):
		self.report.Errors.Submission.Inc()
	case errors.As(err, &failedErr):
		self.report.Errors.TransactionFailed.Inc()
	case errors.Is(err, ErrConfirmationTimeout):
		self.report.Errors.ConfirmationTimeout.Inc()
	case errors.As(err, &transportErr):
		self.report.Errors.Transport.Inc()
	}
}

// Calls a read-only function returning Option<T> and decodes the value into out.
// Returns false when the contract returned None.
func CallInto(ctx context.Context, gateway Gateway, contractId, method string, out any, args ...xdr.ScVal) (found bool, err error) {
	native, err := gateway.Call(ctx, contractId, method, args...)
	if err != nil {
		return
	}

	if native == nil {
		return false, nil
	}

	err = Decode(native, out)
	if err != nil {
		return false, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return true, nil
}
