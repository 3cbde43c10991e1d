//go:build wasm

package internal

import "sync"

var (
	kernelOnce sync.Once
	kernel     *Kernel
)

// GetKernel returns the single global kernel. WASM builds are single-
// goroutine, so the goid-keyed dispatch used elsewhere has nothing to key
// on.
func GetKernel() *Kernel {
	kernelOnce.Do(func() {
		kernel = NewKernel()
	})

	return kernel
}
