//go:build unix

package signals

import "syscall"

var defaultDebugSignal = syscall.SIGUSR1
