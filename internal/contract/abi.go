package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrUnknownMethod   = errors.New("unknown method")
	ErrNotReadOnly     = errors.New("method modifies state")
	ErrBadCalldata     = errors.New("malformed calldata")
	ErrUnsupportedType = errors.New("unsupported ABI type")
)

// ParseABI converts entries into a go-ethereum ABI.
func ParseABI(entries []ABIEntry) (abi.ABI, error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parsing ABI: %w", err)
	}
	return parsed, nil
}

// Selector computes the 4-byte function selector for a canonical signature
// such as "transfer(address,uint256)".
func Selector(sig string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	var out [4]byte
	copy(out[:], h.Sum(nil)[:4])
	return out
}

// SelectorHex is Selector as a 0x-prefixed hex string.
func SelectorHex(sig string) string {
	s := Selector(sig)
	return "0x" + hex.EncodeToString(s[:])
}

var (
	parsedMu sync.Mutex
	parsed   = map[string]abi.ABI{}
)

// BuiltinABI returns the parsed ABI of a built-in, caching the result.
func BuiltinABI(id string) (abi.ABI, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if a, ok := parsed[id]; ok {
		return a, nil
	}
	entries := GetBuiltinABI(id)
	if entries == nil {
		return abi.ABI{}, fmt.Errorf("%w: no built-in %q", ErrUnknownContract, id)
	}
	a, err := ParseABI(entries)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("built-in %s: %w", id, err)
	}
	parsed[id] = a
	return a, nil
}

// Pack builds calldata for method of built-in kind from Go values.
func Pack(kind, method string, args ...interface{}) ([]byte, error) {
	a, err := BuiltinABI(kind)
	if err != nil {
		return nil, err
	}
	if _, ok := a.Methods[method]; !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, kind, method)
	}
	return a.Pack(method, args...)
}

// Unpack decodes the return data of method of built-in kind. Methods with no
// outputs decode to an empty slice.
func Unpack(kind, method string, data []byte) ([]interface{}, error) {
	a, err := BuiltinABI(kind)
	if err != nil {
		return nil, err
	}
	m, ok := a.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, kind, method)
	}
	return m.Outputs.Unpack(data)
}
