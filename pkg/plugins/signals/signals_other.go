//go:build !unix

package signals

import "os"

var defaultDebugSignal os.Signal
