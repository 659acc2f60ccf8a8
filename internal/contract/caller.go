package contract

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller turns string arguments from the command line into calldata and
// decoded return data back into strings.
type Caller struct {
	entries []ABIEntry
	abi     abi.ABI
}

// NewCaller creates a Caller for a built-in kind.
func NewCaller(kind string) (*Caller, error) {
	entries := GetBuiltinABI(kind)
	if entries == nil {
		return nil, fmt.Errorf("%w: no built-in %q", ErrUnknownContract, kind)
	}
	a, err := BuiltinABI(kind)
	if err != nil {
		return nil, err
	}
	return &Caller{entries: entries, abi: a}, nil
}

// Function finds an ABI function entry by name.
func (c *Caller) Function(name string) (*ABIEntry, bool) {
	for i := range c.entries {
		if c.entries[i].Type == "function" && c.entries[i].Name == name {
			return &c.entries[i], true
		}
	}
	return nil, false
}

// Encode builds calldata for funcName from string arguments.
func (c *Caller) Encode(funcName string, args ...string) ([]byte, error) {
	method, ok := c.abi.Methods[funcName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, funcName)
	}
	if len(args) != len(method.Inputs) {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", method.Sig, len(method.Inputs), len(args))
	}

	vals := make([]interface{}, len(args))
	for i, in := range method.Inputs {
		v, err := parseArg(in.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("encoding param %s: %w", in.Name, err)
		}
		vals[i] = v
	}
	return c.abi.Pack(funcName, vals...)
}

// Decode unpacks funcName's return data into one string per output.
func (c *Caller) Decode(funcName string, data []byte) ([]string, error) {
	m, ok := c.abi.Methods[funcName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, funcName)
	}
	vals, err := m.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = formatValue(v)
	}
	return out, nil
}

// --- string <-> ABI value conversion (common types only) ---

func parseArg(typ abi.Type, val string) (interface{}, error) {
	val = strings.TrimSpace(val)

	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(val) {
			return nil, fmt.Errorf("invalid address: %q", val)
		}
		return common.HexToAddress(val), nil

	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(val, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer: %q", val)
		}
		if typ.T == abi.UintTy && n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for %s: %s", typ.String(), val)
		}
		if typ.Size > 64 {
			if n.BitLen() > typ.Size {
				return nil, fmt.Errorf("%s overflows %s", val, typ.String())
			}
			return n, nil
		}
		return sizedInt(typ, n)

	case abi.BoolTy:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("invalid bool: %q", val)
		}
		return b, nil

	case abi.StringTy:
		return val, nil

	case abi.BytesTy:
		b, err := hex.DecodeString(strings.TrimPrefix(val, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes: %q", val)
		}
		return b, nil

	case abi.FixedBytesTy:
		if typ.Size != 32 {
			break
		}
		b, err := hex.DecodeString(strings.TrimPrefix(val, "0x"))
		if err != nil || len(b) > 32 {
			return nil, fmt.Errorf("invalid bytes32: %q", val)
		}
		var out [32]byte
		copy(out[:], b)
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ.String())
}

// sizedInt converts n to the Go integer type go-ethereum expects for small
// ABI integer sizes.
func sizedInt(typ abi.Type, n *big.Int) (interface{}, error) {
	if typ.T == abi.UintTy {
		if n.BitLen() > typ.Size {
			return nil, fmt.Errorf("%s overflows %s", n, typ.String())
		}
		u := n.Uint64()
		switch typ.Size {
		case 8:
			return uint8(u), nil
		case 16:
			return uint16(u), nil
		case 32:
			return uint32(u), nil
		case 64:
			return u, nil
		}
	} else {
		if !n.IsInt64() || n.BitLen() >= typ.Size {
			return nil, fmt.Errorf("%s overflows %s", n, typ.String())
		}
		i := n.Int64()
		switch typ.Size {
		case 8:
			return int8(i), nil
		case 16:
			return int16(i), nil
		case 32:
			return int32(i), nil
		case 64:
			return i, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ.String())
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	case []common.Address:
		parts := make([]string, len(x))
		for i, a := range x {
			parts[i] = a.Hex()
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	case []byte:
		return "0x" + hex.EncodeToString(x)
	case [32]byte:
		return "0x" + hex.EncodeToString(x[:])
	}
	return fmt.Sprint(v)
}
