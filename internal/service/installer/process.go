package installer

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/chromedriver-installer/internal/logger"
)

// stopRunningDrivers looks for running processes named like the driver.
// They are killed when kill_running is set; otherwise only a warning is logged,
// since Windows will refuse to replace a running executable.
func (i *installer) stopRunningDrivers(ctx context.Context, name string) error {
	processList, err := i.listProcesses()
	if err != nil {
		logger.WarnKV(ctx, "Unable to list running processes", "error", err)
		return nil
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		processID := process.Pid()
		if processID == thisProcessID || process.Executable() != name {
			continue
		}

		if !i.cfg.KillRunning {
			logger.WarnKV(ctx, "Driver is running while its binary is replaced", "pid", processID)
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(processID)
		if err != nil {
			return fmt.Errorf("find %s (pid %d): %w", name, processID, err)
		}

		if err = runningProcess.Kill(); err != nil {
			return fmt.Errorf("kill %s (pid %d): %w", name, processID, err)
		}

		logger.InfoKV(ctx, "Terminated running driver", "pid", processID)
	}

	return nil
}

// processLister returns a snapshot of the process table.
type processLister func() ([]ps.Process, error)
