package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// coerceArgs 将 JSON 解出的参数按 ABI 输入类型转换成 abi.Pack 接受的 Go 类型
func coerceArgs(inputs abi.Arguments, args []interface{}) ([]interface{}, error) {
	if len(inputs) != len(args) {
		return nil, errors.Errorf("expected %d argument(s), got %d", len(inputs), len(args))
	}
	params := make([]interface{}, len(args))
	for i, input := range inputs {
		v, err := coerceArg(input.Type, args[i])
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d (%s)", i, input.Type.String())
		}
		params[i] = v
	}
	return params, nil
}

func coerceArg(t abi.Type, v interface{}) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("expected address string, got %T", v)
		}
		return parseAddress(s)
	case abi.UintTy, abi.IntTy:
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		if t.T == abi.UintTy && n.Sign() < 0 {
			return nil, errors.Errorf("negative value %s for %s", n, t.String())
		}
		if !fits(t, n) {
			return nil, errors.Errorf("value %s overflows %s", n, t.String())
		}
		goType := t.GetType()
		if goType == bigIntType {
			return n, nil
		}
		rv := reflect.New(goType).Elem()
		if t.T == abi.UintTy {
			rv.SetUint(n.Uint64())
		} else {
			rv.SetInt(n.Int64())
		}
		return rv.Interface(), nil
	case abi.BoolTy:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			switch strings.ToLower(b) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
		return nil, errors.Errorf("expected bool, got %v", v)
	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	case abi.BytesTy:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("expected hex string, got %T", v)
		}
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Errorf("expected hex string, got %T", v)
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, errors.Errorf("%d bytes do not fit %s", len(b), t.String())
		}
		rv := reflect.New(t.GetType()).Elem()
		reflect.Copy(rv, reflect.ValueOf(b))
		return rv.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		items, ok := v.([]interface{})
		if !ok {
			return nil, errors.Errorf("expected array, got %T", v)
		}
		var rv reflect.Value
		if t.T == abi.SliceTy {
			rv = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			if len(items) != t.Size {
				return nil, errors.Errorf("expected %d elements, got %d", t.Size, len(items))
			}
			rv = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			e, err := coerceArg(*t.Elem, item)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			rv.Index(i).Set(reflect.ValueOf(e))
		}
		return rv.Interface(), nil
	}
	return nil, errors.Errorf("unsupported argument type %s", t.String())
}

// fits uintN 为 [0, 2^N) intN 为 [-2^(N-1), 2^(N-1))
func fits(t abi.Type, n *big.Int) bool {
	if t.T == abi.UintTy {
		return n.BitLen() <= t.Size
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	return n.Cmp(new(big.Int).Neg(limit)) >= 0 && n.Cmp(limit) < 0
}

// inferTypes 未知方法按参数推断类型列表 地址 整数 布尔 其余按字符串
func inferTypes(args []interface{}) (string, error) {
	names := make([]string, len(args))
	for i, arg := range args {
		t, err := inferType(arg)
		if err != nil {
			return "", errors.Wrapf(err, "argument %d", i)
		}
		names[i] = t
	}
	return strings.Join(names, ","), nil
}

func inferType(v interface{}) (string, error) {
	switch x := v.(type) {
	case bool:
		return "bool", nil
	case string:
		if common.IsHexAddress(x) {
			return "address", nil
		}
		return "string", nil
	case json.Number, float64, int, int64:
		n, err := toBigInt(x)
		if err != nil {
			return "", err
		}
		if n.Sign() < 0 {
			return "int256", nil
		}
		return "uint256", nil
	case []interface{}:
		if len(x) == 0 {
			return "uint256[]", nil
		}
		elem, err := inferType(x[0])
		if err != nil {
			return "", err
		}
		return elem + "[]", nil
	}
	return "", errors.Errorf("cannot infer ABI type of %T", v)
}

// toBigInt 支持 JSON 数字 十进制字符串 0x 十六进制字符串
func toBigInt(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, errors.Errorf("expected integer, got %v", n)
		}
		i, _ := big.NewFloat(n).Int(nil)
		return i, nil
	case json.Number:
		return toBigInt(n.String())
	case string:
		return parseBigInt(n)
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	}
	return nil, errors.Errorf("expected integer, got %T", v)
}

// parseBigInt 0x 前缀按十六进制 其余按十进制
func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" {
		return nil, errors.Errorf("invalid integer %q", s)
	}
	return n, nil
}

// formatOutputs 转换为适合 JSON 输出的值 单个返回值直接展开
func formatOutputs(out []interface{}) interface{} {
	switch len(out) {
	case 0:
		return nil
	case 1:
		return formatValue(out[0])
	}
	values := make([]interface{}, len(out))
	for i, v := range out {
		values[i] = formatValue(v)
	}
	return values
}

func formatValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case *big.Int:
		if x == nil {
			return nil
		}
		return x.String()
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return formatValue(rv.Elem().Interface())
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return hexutil.Encode(b)
		}
		fallthrough
	case reflect.Slice:
		values := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			values[i] = formatValue(rv.Index(i).Interface())
		}
		return values
	case reflect.Struct:
		fields := make(map[string]interface{}, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			f := rv.Type().Field(i)
			if f.PkgPath != "" {
				continue
			}
			name := f.Tag.Get("json")
			if name == "" {
				name = lowerFirst(f.Name)
			}
			fields[name] = formatValue(rv.Field(i).Interface())
		}
		return fields
	}
	return v
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
