// Copyright 2026 The Cloud Profiler Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package atomicbitops provides typed wrappers around sync/atomic
// primitives, so call sites read as a field access rather than a function
// call over a raw int32/int64/uint32.
package atomicbitops

import "sync/atomic"

// noCopy may be embedded into a struct to prohibit copying after first use;
// it is a no-op marker consumed only by `go vet -copylocks`.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Int32 is an atomically accessed int32.
type Int32 struct {
	_   noCopy
	val int32
}

func (a *Int32) Load() int32                { return atomic.LoadInt32(&a.val) }
func (a *Int32) Store(v int32)              { atomic.StoreInt32(&a.val, v) }
func (a *Int32) Add(delta int32) int32      { return atomic.AddInt32(&a.val, delta) }
func (a *Int32) CompareAndSwap(old, new int32) bool {
	return atomic.CompareAndSwapInt32(&a.val, old, new)
}
func (a *Int32) Swap(v int32) int32 { return atomic.SwapInt32(&a.val, v) }

// Int64 is an atomically accessed int64.
//
// count fields in the ASM (§4.C) are stored as Int64 so the LOCKED
// sentinel (-1) is representable alongside a large positive sample count.
type Int64 struct {
	_   noCopy
	val int64
}

func (a *Int64) Load() int64           { return atomic.LoadInt64(&a.val) }
func (a *Int64) Store(v int64)         { atomic.StoreInt64(&a.val, v) }
func (a *Int64) Add(delta int64) int64 { return atomic.AddInt64(&a.val, delta) }
func (a *Int64) CompareAndSwap(old, new int64) bool {
	return atomic.CompareAndSwapInt64(&a.val, old, new)
}
func (a *Int64) Swap(v int64) int64 { return atomic.SwapInt64(&a.val, v) }

// Uint32 is an atomically accessed uint32.
type Uint32 struct {
	_   noCopy
	val uint32
}

func (a *Uint32) Load() uint32           { return atomic.LoadUint32(&a.val) }
func (a *Uint32) Store(v uint32)         { atomic.StoreUint32(&a.val, v) }
func (a *Uint32) Add(delta uint32) uint32 { return atomic.AddUint32(&a.val, delta) }

// Dec decrements by one and returns the new value. Used by the
// active_updates release path (§4.C steps 4/5/6/7), which only ever
// decrements by exactly one.
func (a *Uint32) Dec() uint32 { return atomic.AddUint32(&a.val, ^uint32(0)) }
