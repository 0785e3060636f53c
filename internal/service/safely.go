package service

import (
	"fmt"
	"runtime/debug"

	"github.com/onurcolak/digest-scheduler/pkg/logger"
)

// Safely runs fn and converts a panic into an error so one unit of work
// cannot take down the tick loop.
func Safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Recovered panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
