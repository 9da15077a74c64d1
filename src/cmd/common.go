package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/pulsartrack/syncer/src/utils/soroban"
)

func newGateway() *soroban.Client {
	return soroban.NewClient(&conf.Soroban)
}

func newSigner() (soroban.Signer, error) {
	if conf.Soroban.SignerSecret == "" {
		return nil, soroban.ErrSignerRequired
	}
	signer, err := soroban.NewKeypairSigner(conf.Soroban.SignerSecret)
	if err != nil {
		return nil, err
	}
	return signer, nil
}

func parseUint(name, value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return v, nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
