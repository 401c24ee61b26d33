package abi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// Codec encodes calldata from scenario arguments and decodes return data
type Codec struct {
	log *slog.Logger
}

// NewCodec creates a new codec
func NewCodec(log *slog.Logger) *Codec {
	return &Codec{log: log.With("component", "Codec")}
}

var _ usecase.CallCodec = (*Codec)(nil)

// EncodeCall builds calldata for fn with string arguments.
func (c *Codec) EncodeCall(fn string, args []string, contractABI json.RawMessage) ([]byte, error) {
	method, err := c.resolveMethod(fn, len(args), contractABI)
	if err != nil {
		return nil, err
	}
	values, err := coerceArguments(method.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method.Sig, err)
	}
	packed, err := method.Inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", method.Sig, err)
	}
	return append(append([]byte{}, method.ID...), packed...), nil
}

// DecodeResult renders return data as a string. Declared return types win,
// then the contract ABI; otherwise a single word is read as an unsigned
// integer and anything else is returned as hex.
func (c *Codec) DecodeResult(fn string, data []byte, contractABI json.RawMessage) (string, error) {
	var outputs abi.Arguments
	if sig, err := ParseSignature(fn); err == nil && len(sig.Outputs) > 0 {
		outputs = sig.Outputs
	} else if method, err := c.resolveMethod(fn, -1, contractABI); err == nil {
		outputs = method.Outputs
	}

	if len(outputs) > 0 {
		values, err := outputs.Unpack(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode result of %s: %w", fn, err)
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = formatValue(v)
		}
		return strings.Join(parts, ","), nil
	}

	switch len(data) {
	case 0:
		return "0x", nil
	case 32:
		return new(big.Int).SetBytes(data).String(), nil
	}
	return hexutil.Encode(data), nil
}

// EncodeDeployment appends ABI-encoded constructor arguments to creation code.
func (c *Codec) EncodeDeployment(bytecode string, contractABI json.RawMessage, args []string) ([]byte, error) {
	bytecode = strings.TrimSpace(bytecode)
	if strings.Contains(bytecode, "__") {
		return nil, fmt.Errorf("bytecode contains unlinked library references")
	}
	if !strings.HasPrefix(bytecode, "0x") {
		bytecode = "0x" + bytecode
	}
	code, err := hexutil.Decode(bytecode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}
	if len(args) == 0 {
		return code, nil
	}
	if len(contractABI) == 0 {
		return nil, fmt.Errorf("constructor arguments given but the contract ABI is unknown")
	}

	parsed, err := abi.JSON(bytes.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	inputs := parsed.Constructor.Inputs
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("constructor takes %d arguments, got %d", len(inputs), len(args))
	}
	values, err := coerceArguments(inputs, args)
	if err != nil {
		return nil, fmt.Errorf("constructor: %w", err)
	}
	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments: %w", err)
	}
	return append(code, packed...), nil
}

// resolveMethod finds the method for fn. argc < 0 matches any arity.
func (c *Codec) resolveMethod(fn string, argc int, contractABI json.RawMessage) (abi.Method, error) {
	sig, err := ParseSignature(fn)
	if err != nil {
		return abi.Method{}, err
	}
	if !sig.Bare {
		return sig.Method(), nil
	}

	if len(contractABI) > 0 {
		parsed, err := abi.JSON(bytes.NewReader(contractABI))
		if err != nil {
			c.log.Debug("ignoring unparsable ABI", "error", err)
		} else {
			for _, m := range parsed.Methods {
				if m.RawName == sig.Name && (argc < 0 || len(m.Inputs) == argc) {
					return m, nil
				}
			}
			if argc >= 0 {
				return abi.Method{}, fmt.Errorf("contract has no method %s taking %d arguments", sig.Name, argc)
			}
		}
	}

	if argc > 0 {
		return abi.Method{}, fmt.Errorf("cannot encode arguments for %q without types, use a signature like %s(uint256)", sig.Name, sig.Name)
	}
	if argc < 0 {
		return abi.Method{}, fmt.Errorf("no ABI for %s", sig.Name)
	}
	return sig.Method(), nil
}

func coerceArguments(inputs abi.Arguments, args []string) ([]any, error) {
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(args))
	}
	values := make([]any, len(args))
	for i, in := range inputs {
		v, err := coerce(in.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, in.Type.String(), err)
		}
		values[i] = v
	}
	return values, nil
}

// coerce converts a scenario argument string into the Go value the ABI
// packer expects for t.
func coerce(t abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch t.T {
	case abi.AddressTy:
		if !domain.IsHexAddress(s) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, s)
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.UintTy, abi.IntTy:
		n, err := domain.ParseAmount(s)
		if err != nil {
			return nil, err
		}
		rt := t.GetType()
		if rt == reflect.TypeOf(&big.Int{}) {
			return n, nil
		}
		v := reflect.New(rt).Elem()
		if t.T == abi.UintTy {
			if n.Sign() < 0 || !n.IsUint64() || v.OverflowUint(n.Uint64()) {
				return nil, fmt.Errorf("%s out of range for %s", s, t.String())
			}
			v.SetUint(n.Uint64())
		} else {
			if !n.IsInt64() || v.OverflowInt(n.Int64()) {
				return nil, fmt.Errorf("%s out of range for %s", s, t.String())
			}
			v.SetInt(n.Int64())
		}
		return v.Interface(), nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit %s", len(b), t.String())
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		inner := strings.TrimSpace(s)
		if !strings.HasPrefix(inner, "[") || !strings.HasSuffix(inner, "]") {
			return nil, fmt.Errorf("expected a list like [a,b], got %q", s)
		}
		items := splitTopLevel(inner[1 : len(inner)-1])
		if t.T == abi.ArrayTy && len(items) != t.Size {
			return nil, fmt.Errorf("expected %d items, got %d", t.Size, len(items))
		}
		var v reflect.Value
		if t.T == abi.SliceTy {
			v = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			v = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			elem, err := coerce(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			v.Index(i).Set(reflect.ValueOf(elem))
		}
		return v.Interface(), nil
	}
	return nil, fmt.Errorf("unsupported argument type %s", t.String())
}

func formatValue(v any) string {
	switch val := v.(type) {
	case *big.Int:
		return val.String()
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case []byte:
		return hexutil.Encode(val)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		fallthrough
	case reflect.Slice:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return fmt.Sprint(v)
}
