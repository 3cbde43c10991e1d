//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var kernels sync.Map

// GetKernel returns the calling goroutine's kernel, creating one on first
// use. Each goroutine gets its own ambient scheduler state, so no locking
// is needed inside a single kernel's drain loop.
func GetKernel() *Kernel {
	gid := getGID()

	if k, ok := kernels.Load(gid); ok {
		return k.(*Kernel)
	}

	k := NewKernel()
	kernels.Store(gid, k)
	return k
}

func getGID() int64 {
	return goid.Get()
}
