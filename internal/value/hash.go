package value

import (
	"encoding/binary"
	"math"

	"github.com/minio/highwayhash"
)

// hashKey is a fixed, non-secret 32-byte key: structural hashing here is
// for trie bucketing, not for any cryptographic purpose.
var hashKey = [32]byte{
	0x63, 0x61, 0x6c, 0x63, 0x69, 0x74, 0x2d, 0x68,
	0x61, 0x6d, 0x74, 0x2d, 0x6b, 0x65, 0x79, 0x2d,
	0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38,
	0x39, 0x30, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66,
}

func hashBytes(b []byte) uint64 {
	return highwayhash.Sum64(b, hashKey[:])
}

// HashOf computes a structural hash for any Value, used as the bucket key
// for the Map/Set hash-array-mapped trie (internal/value/hashtrie.go).
// Collections combine their elements' hashes with a commutative mix for
// Set/Map (so content-equal-but-differently-ordered collections hash the
// same, matching spec.md §3's equality rule for sets/maps) and a
// position-sensitive mix for List.
func HashOf(v Value) uint64 {
	switch x := v.(type) {
	case Nil:
		return hashBytes([]byte{byte(KindNil)})
	case Bool:
		if x {
			return hashBytes([]byte{byte(KindBool), 1})
		}
		return hashBytes([]byte{byte(KindBool), 0})
	case Number:
		var buf [9]byte
		buf[0] = byte(KindNumber)
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(float64(x)))
		return hashBytes(buf[:])
	case Str:
		return hashBytes(append([]byte{byte(KindStr)}, []byte(x)...))
	case Tag:
		return hashBytes(append([]byte{byte(KindTag)}, []byte(x.Name())...))
	case Buffer:
		return hashBytes(append([]byte{byte(KindBuffer)}, []byte(x)...))
	case List:
		h := hashBytes([]byte{byte(KindList)})
		x.Each(func(i int, v Value) {
			h = mix(h, HashOf(v))
		})
		return h
	case Set:
		h := uint64(byte(KindSet))
		x.Each(func(v Value) {
			h ^= HashOf(v)
		})
		return hashBytes(uint64ToBytes(h))
	case Map:
		h := uint64(byte(KindMap))
		x.Each(func(k, v Value) {
			h ^= mix(HashOf(k), HashOf(v))
		})
		return hashBytes(uint64ToBytes(h))
	case Tuple:
		h := hashBytes([]byte{byte(KindTuple), byte(x.Tag.ID())})
		for _, e := range x.Extra {
			h = mix(h, HashOf(e))
		}
		return h
	case Record:
		h := hashBytes(append([]byte{byte(KindRecord)}, []byte(x.Struct.Name.Name())...))
		for _, v := range x.Values {
			h = mix(h, HashOf(v))
		}
		return h
	default:
		// Fn/Macro identity, Ref path, AnyRef, etc: hash by a stable
		// per-kind+identity marker. AnyRef ordering/hashing is explicitly
		// unspecified per spec.md §9 Design Notes; this path exists only so
		// a Map/Set *containing* other kinds alongside an AnyRef value
		// elsewhere doesn't panic purely from being hashed — comparing two
		// AnyRefs for order still panics, see equal.go.
		return hashBytes([]byte{byte(v.Kind())})
	}
}

func mix(a, b uint64) uint64 {
	a ^= b + 0x9e3779b97f4a7c15 + (a << 6) + (a >> 2)
	return a
}

func uint64ToBytes(v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:]
}
