package soroban

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResult         = errors.New("simulation returned no result")
	ErrSignerRequired      = errors.New("signer is required to submit a transaction")
	ErrConfirmationTimeout = errors.New("transaction wasn't confirmed in time")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrUnsupportedValue    = errors.New("unsupported contract value")
)

// Contract call failed during simulation, e.g. the contract panicked
type SimulationError struct {
	Method  string
	Message string
}

func (self *SimulationError) Error() string {
	return fmt.Sprintf("simulation of %s failed: %s", self.Method, self.Message)
}

// Network refused to accept the transaction
type SubmissionError struct {
	Method    string
	Status    string
	Hash      string
	ResultXDR string
}

func (self *SubmissionError) Error() string {
	return fmt.Sprintf("submission of %s rejected with status %s (tx %s)", self.Method, self.Status, self.Hash)
}

// Transaction was included in a ledger but failed
type TransactionFailedError struct {
	Method    string
	Hash      string
	ResultXDR string
}

func (self *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction %s calling %s failed", self.Hash, self.Method)
}

// JSON-RPC level error
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (self *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", self.Code, self.Message)
}

// Request didn't reach the RPC node or the response couldn't be read
type TransportError struct {
	Method string
	Err    error
}

func (self *TransportError) Error() string {
	return fmt.Sprintf("rpc %s: %v", self.Method, self.Err)
}

func (self *TransportError) Unwrap() error {
	return self.Err
}
