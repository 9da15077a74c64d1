package soroban

import (
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

func newInvokeOperation(contractId, method string, args []xdr.ScVal) (op *txnbuild.InvokeHostFunction, err error) {
	contract, err := ParseAddress(contractId)
	if err != nil {
		return
	}

	if args == nil {
		args = []xdr.ScVal{}
	}

	op = &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contract,
				FunctionName:    xdr.ScSymbol(method),
				Args:            args,
			},
		},
	}
	return
}

// Sequence is the account's current sequence, the transaction gets sequence+1
func newTransaction(source string, sequence int64, fee int64, op *txnbuild.InvokeHostFunction) (*txnbuild.Transaction, error) {
	if fee < txnbuild.MinBaseFee {
		fee = txnbuild.MinBaseFee
	}

	return txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: source, Sequence: sequence},
		IncrementSequenceNum: true,
		BaseFee:              fee,
		Operations:           []txnbuild.Operation{op},
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewInfiniteTimeout(),
		},
	})
}

// Applies the simulated footprint, authorization entries and resource fee
func assemble(op *txnbuild.InvokeHostFunction, sim *SimulateTransactionResponse) (resourceFee int64, err error) {
	var data xdr.SorobanTransactionData
	err = xdr.SafeUnmarshalBase64(sim.TransactionData, &data)
	if err != nil {
		return
	}
	op.Ext = xdr.TransactionExt{V: 1, SorobanData: &data}

	op.Auth = nil
	if len(sim.Results) > 0 {
		for _, raw := range sim.Results[0].Auth {
			var entry xdr.SorobanAuthorizationEntry
			err = xdr.SafeUnmarshalBase64(raw, &entry)
			if err != nil {
				return
			}
			op.Auth = append(op.Auth, entry)
		}
	}

	return sim.MinResourceFee, nil
}
