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

package multiset

// Harvest moves every currently-populated slot of a into g (Component E).
// It is the only writer of g during a session and the only drainer of a,
// so it may run concurrently with signal-handler Adds without additional
// synchronization — that guarantee is what ASM.Extract provides.
func Harvest(a *ASM, g *Growable) {
	for i := 0; i < NumSlots(); i++ {
		t, count, ok := a.Extract(i)
		if !ok {
			continue
		}
		g.Add(t, uint64(count))
	}
}
