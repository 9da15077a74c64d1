package soroban

import (
	"context"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// Signs transactions on behalf of one account. Wallet integrations implement it outside of this service.
type Signer interface {
	Address() string
	Sign(ctx context.Context, tx *txnbuild.Transaction, networkPassphrase string) (*txnbuild.Transaction, error)
}

// Signs with a secret seed kept in memory
type KeypairSigner struct {
	kp *keypair.Full
}

func NewKeypairSigner(secret string) (self *KeypairSigner, err error) {
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return
	}
	return &KeypairSigner{kp: kp}, nil
}

func (self *KeypairSigner) Address() string {
	return self.kp.Address()
}

func (self *KeypairSigner) Sign(ctx context.Context, tx *txnbuild.Transaction, networkPassphrase string) (*txnbuild.Transaction, error) {
	return tx.Sign(networkPassphrase, self.kp)
}
