package instance

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/model"
)

func totalMemory(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

// defaultRAM is model.DefaultRAMInMB, clamped to half of physical memory.
func (a *Assembler) defaultRAM(ctx context.Context) int {
	total, err := a.totalMemory(ctx)
	if err != nil || total == 0 {
		logger.Debug("could not read physical memory", logger.Fields{"error": fmt.Sprint(err)})
		return model.DefaultRAMInMB
	}
	half := int(total / 2 / (1 << 20))
	if half < model.DefaultRAMInMB {
		return max(half, 1)
	}
	return model.DefaultRAMInMB
}
