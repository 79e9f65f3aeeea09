package contracts

import "fmt"

// Single converts the only output of a Call to T.
//
//	symbol, err := contracts.Single[string](backend.Call(ctx, erc20, token, "symbol"))
func Single[T any](out []any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if len(out) != 1 {
		return zero, fmt.Errorf("expected 1 output, got %d", len(out))
	}

	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("expected output of type %T, got %T", zero, out[0])
	}

	return v, nil
}
