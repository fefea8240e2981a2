//go:build arm64

package cpuinfo

import "golang.org/x/sys/cpu"

func init() {
	hasASIMD = cpu.ARM64.HasASIMD
	initCapabilities()
}
