package signals

import "os"

// Deliver feeds sig to the plugin as if the operating system sent it.
func (p *Plugin) Deliver(sig os.Signal) { p.handle(sig) }
