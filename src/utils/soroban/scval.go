package soroban

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// Converts a contract value into plain Go values:
// void is nil, integers keep their width, 128 bit integers become int64 when they fit and *big.Int otherwise,
// symbols and strings are strings, vectors are []any, maps are map[string]any and addresses are strkeys.
func ToNative(v xdr.ScVal) (out any, err error) {
	switch v.Type {
	case xdr.ScValTypeScvVoid:
		return nil, nil
	case xdr.ScValTypeScvBool:
		return bool(*v.B), nil
	case xdr.ScValTypeScvU32:
		return uint32(*v.U32), nil
	case xdr.ScValTypeScvI32:
		return int32(*v.I32), nil
	case xdr.ScValTypeScvU64:
		return uint64(*v.U64), nil
	case xdr.ScValTypeScvI64:
		return int64(*v.I64), nil
	case xdr.ScValTypeScvTimepoint:
		return uint64(*v.Timepoint), nil
	case xdr.ScValTypeScvDuration:
		return uint64(*v.Duration), nil
	case xdr.ScValTypeScvU128:
		return u128ToNative(*v.U128), nil
	case xdr.ScValTypeScvI128:
		return i128ToNative(*v.I128), nil
	case xdr.ScValTypeScvBytes:
		return []byte(*v.Bytes), nil
	case xdr.ScValTypeScvString:
		return string(*v.Str), nil
	case xdr.ScValTypeScvSymbol:
		return string(*v.Sym), nil
	case xdr.ScValTypeScvAddress:
		return AddressToString(*v.Address)
	case xdr.ScValTypeScvVec:
		vec := make([]any, 0)
		if v.Vec == nil || *v.Vec == nil {
			return vec, nil
		}
		for _, item := range **v.Vec {
			var native any
			native, err = ToNative(item)
			if err != nil {
				return
			}
			vec = append(vec, native)
		}
		return vec, nil
	case xdr.ScValTypeScvMap:
		m := make(map[string]any)
		if v.Map == nil || *v.Map == nil {
			return m, nil
		}
		for _, entry := range **v.Map {
			var key, val any
			key, err = ToNative(entry.Key)
			if err != nil {
				return
			}
			val, err = ToNative(entry.Val)
			if err != nil {
				return
			}
			m[fmt.Sprint(key)] = val
		}
		return m, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, v.Type.String())
}

func i128ToNative(p xdr.Int128Parts) any {
	hi, lo := int64(p.Hi), uint64(p.Lo)
	if (hi == 0 && lo <= math.MaxInt64) || (hi == -1 && lo > math.MaxInt64) {
		return int64(lo)
	}
	b := big.NewInt(hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(lo))
}

func u128ToNative(p xdr.UInt128Parts) any {
	hi, lo := uint64(p.Hi), uint64(p.Lo)
	if hi == 0 && lo <= math.MaxInt64 {
		return int64(lo)
	}
	b := new(big.Int).SetUint64(hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(lo))
}

func AddressToString(addr xdr.ScAddress) (string, error) {
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if addr.AccountId == nil {
			return "", ErrInvalidAddress
		}
		return addr.AccountId.GetAddress()
	case xdr.ScAddressTypeScAddressTypeContract:
		if addr.ContractId == nil {
			return "", ErrInvalidAddress
		}
		return strkey.Encode(strkey.VersionByteContract, addr.ContractId[:])
	}
	return "", fmt.Errorf("%w: unknown address type %d", ErrInvalidAddress, addr.Type)
}

// Parses an account (G...) or contract (C...) strkey
func ParseAddress(address string) (out xdr.ScAddress, err error) {
	if address == "" {
		return out, ErrInvalidAddress
	}

	switch address[0] {
	case 'G':
		var accountId xdr.AccountId
		accountId, err = xdr.AddressToAccountId(address)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		return xdr.ScAddress{
			Type:      xdr.ScAddressTypeScAddressTypeAccount,
			AccountId: &accountId,
		}, nil
	case 'C':
		var raw []byte
		raw, err = strkey.Decode(strkey.VersionByteContract, address)
		if err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		var hash xdr.Hash
		copy(hash[:], raw)
		return xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &hash,
		}, nil
	}

	return out, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
}

func Void() xdr.ScVal {
	return xdr.ScVal{Type: xdr.ScValTypeScvVoid}
}

func Bool(v bool) xdr.ScVal {
	b := v
	return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}
}

func U32(v uint32) xdr.ScVal {
	u := xdr.Uint32(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

func U64(v uint64) xdr.ScVal {
	u := xdr.Uint64(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}
}

func I128(v int64) xdr.ScVal {
	hi := xdr.Int64(0)
	if v < 0 {
		hi = -1
	}
	parts := xdr.Int128Parts{Hi: hi, Lo: xdr.Uint64(uint64(v))}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}

func Symbol(v string) xdr.ScVal {
	s := xdr.ScSymbol(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &s}
}

func String(v string) xdr.ScVal {
	s := xdr.ScString(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &s}
}

func Address(address string) (xdr.ScVal, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}, nil
}

// Encodes a unit enum variant the way contracts do: vec[symbol]
func Enum(variant string) xdr.ScVal {
	return Vec(Symbol(variant))
}

func Vec(items ...xdr.ScVal) xdr.ScVal {
	vec := xdr.ScVec(items)
	p := &vec
	return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &p}
}

// Struct-like map with symbol keys, sorted the way the host expects
func Struct(fields map[string]xdr.ScVal) xdr.ScVal {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make(xdr.ScMap, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, xdr.ScMapEntry{Key: Symbol(k), Val: fields[k]})
	}
	p := &entries
	return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &p}
}
