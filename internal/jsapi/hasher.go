// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/dop251/goja"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/aplane-algo/jsbridge/internal/class"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// hashAlgorithm describes one entry of the Hasher algorithm table.
type hashAlgorithm struct {
	Size int
	New  func() hash.Hash
}

// hashAlgorithms is shared by every runtime; entries are added at init.
var hashAlgorithms = util.NewStringRegistry[hashAlgorithm]()

func mustBlake2b(newFn func([]byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := newFn(nil)
		if err != nil {
			// Only fails for keys longer than 64 bytes.
			panic(err)
		}
		return h
	}
}

func init() {
	hashAlgorithms.Set("sha256", hashAlgorithm{Size: sha256.Size, New: sha256.New})
	hashAlgorithms.Set("sha512", hashAlgorithm{Size: sha512.Size, New: sha512.New})
	hashAlgorithms.Set("sha512-256", hashAlgorithm{Size: sha512.Size256, New: sha512.New512_256})
	hashAlgorithms.Set("sha3-256", hashAlgorithm{Size: 32, New: func() hash.Hash { return sha3.New256() }})
	hashAlgorithms.Set("sha3-512", hashAlgorithm{Size: 64, New: func() hash.Hash { return sha3.New512() }})
	hashAlgorithms.Set("blake2b-256", hashAlgorithm{Size: blake2b.Size256, New: mustBlake2b(blake2b.New256)})
	hashAlgorithms.Set("blake2b-512", hashAlgorithm{Size: blake2b.Size, New: mustBlake2b(blake2b.New512)})
}

// Hasher is the host value behind the Hasher class. Its digest can be taken
// once; afterwards the script object is empty.
type Hasher struct {
	Algorithm string
	h         hash.Hash
	written   int64
}

// NewHasher creates a hasher for a registered algorithm.
func NewHasher(algorithm string) (Hasher, error) {
	alg, ok := hashAlgorithms.Get(algorithm)
	if !ok {
		return Hasher{}, fmt.Errorf("unknown hash algorithm %q (available: %v)", algorithm, hashAlgorithms.Keys())
	}
	return Hasher{Algorithm: algorithm, h: alg.New()}, nil
}

// Write feeds data into the hash.
func (h *Hasher) Write(data []byte) {
	n, _ := h.h.Write(data) // hash.Hash never returns an error
	h.written += int64(n)
}

// Sum returns the digest of everything written so far.
func (h *Hasher) Sum() []byte {
	return h.h.Sum(nil)
}

func encodeDigest(sum []byte, encoding string) (string, error) {
	switch encoding {
	case "", "hex":
		return hex.EncodeToString(sum), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(sum), nil
	case "base64url":
		return base64.RawURLEncoding.EncodeToString(sum), nil
	default:
		return "", fmt.Errorf("unknown digest encoding %q", encoding)
	}
}

// checkEncoding accepts the encodings of encodeDigest plus "bytes".
func checkEncoding(encoding string) error {
	if encoding == "bytes" {
		return nil
	}
	_, err := encodeDigest(nil, encoding)
	return err
}

func encodingArg(call goja.FunctionCall, i int) string {
	if v := call.Argument(i); !goja.IsUndefined(v) {
		return v.String()
	}
	return ""
}

// digestValue renders sum in the requested encoding; "bytes" gives a Uint8Array.
func (a *API) digestValue(sum []byte, encoding string) goja.Value {
	if encoding == "bytes" {
		return newUint8Array(a.runtime, sum)
	}
	out, err := encodeDigest(sum, encoding)
	if err != nil {
		panic(a.runtime.ToValue(err.Error()))
	}
	return a.runtime.ToValue(out)
}

func (a *API) borrowHasher(call goja.FunctionCall) *Hasher {
	h, err := class.Borrow[Hasher](a.reg, thisObject(call))
	if err != nil {
		a.reg.Throw(err)
	}
	return h
}

func (a *API) hasherSpec() class.Spec[Hasher] {
	return class.Spec[Hasher]{
		Name:   "Hasher",
		Length: 1,
		Construct: func(call goja.ConstructorCall) (Hasher, error) {
			algorithm := "sha256"
			if v := call.Argument(0); !goja.IsUndefined(v) {
				algorithm = v.String()
			}
			return NewHasher(algorithm)
		},
		Properties: []class.Property{
			{
				Name: "algorithm",
				Get: func(call goja.FunctionCall) goja.Value {
					return a.runtime.ToValue(a.borrowHasher(call).Algorithm)
				},
			},
			{
				Name: "size",
				Get: func(call goja.FunctionCall) goja.Value {
					return a.runtime.ToValue(a.borrowHasher(call).h.Size())
				},
			},
			{
				Name: "bytesWritten",
				Get: func(call goja.FunctionCall) goja.Value {
					return a.runtime.ToValue(a.borrowHasher(call).written)
				},
			},
		},
		Methods: []class.Method{
			{
				// update(data) accepts a string, Uint8Array, ArrayBuffer or
				// byte array and returns the hasher for chaining.
				Name:   "update",
				Length: 1,
				Call: func(call goja.FunctionCall) goja.Value {
					a.requireArgs(call, 1, "update() requires a data argument")
					h := a.borrowHasher(call)
					h.Write(toBytes(a.runtime, call.Arguments[0]))
					return call.This
				},
			},
			{
				// digest(encoding) finishes the hash. The hasher cannot be
				// used afterwards.
				Name:   "digest",
				Length: 1,
				Call: func(call goja.FunctionCall) goja.Value {
					encoding := encodingArg(call, 0)
					if err := checkEncoding(encoding); err != nil {
						panic(a.runtime.ToValue(err.Error()))
					}
					h := a.takeHasher(call)
					return a.digestValue(h.Sum(), encoding)
				},
			},
		},
		StaticMethods: []class.Method{
			{
				Name: "algorithms",
				Call: func(call goja.FunctionCall) goja.Value {
					return a.runtime.ToValue(hashAlgorithms.Keys())
				},
			},
			{
				// Hasher.hash(algorithm, data, encoding) is a one-shot digest.
				Name:   "hash",
				Length: 2,
				Call: func(call goja.FunctionCall) goja.Value {
					a.requireArgs(call, 2, "Hasher.hash() requires an algorithm and data")
					h, err := NewHasher(call.Arguments[0].String())
					if err != nil {
						panic(a.runtime.ToValue(err.Error()))
					}
					h.Write(toBytes(a.runtime, call.Arguments[1]))
					return a.digestValue(h.Sum(), encodingArg(call, 2))
				},
			},
		},
	}
}

func (a *API) takeHasher(call goja.FunctionCall) *Hasher {
	h, err := class.Take[Hasher](a.reg, thisObject(call))
	if err != nil {
		a.reg.Throw(err)
	}
	return h
}
