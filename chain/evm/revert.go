package evm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// RevertData returns the data attached to a JSON-RPC error, usually the ABI encoded revert
// reason. It fails when err carries no data.
func RevertData(err error) (string, error) {
	if err == nil {
		return "", errors.New("cannot parse nil error")
	}

	var derr rpc.DataError
	if !errors.As(err, &derr) {
		return "", fmt.Errorf("error carries no rpc data: %w", err)
	}

	var data string
	if d := derr.ErrorData(); d != nil {
		data = fmt.Sprintf("%s", d)
	}
	if data == "" && strings.Contains(derr.Error(), "missing trie node") {
		return "", errors.New("missing trie node, likely due to not using an archive node")
	}

	return data, nil
}

// WithRevertData appends the revert data of a JSON-RPC error to it. Errors without data are
// returned unchanged.
func WithRevertData(err error) error {
	data, derr := RevertData(err)
	if derr != nil || data == "" {
		return err
	}

	return fmt.Errorf("%w: %s", err, data)
}
