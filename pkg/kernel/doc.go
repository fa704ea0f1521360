/*
Package kernel drives the Image Generator frame loop.

Each frame the Kernel drains the network transport, feeds the received CIGI
messages to the session that is authoritative for the current state, advances
the state machine by one Act, prepends a Start-Of-Frame packet when the state
calls for it and flushes the outgoing message to the Host.

Two CIGI sessions share one outgoing message. The internal session only knows
the IG Control handler and is used while the state machine ignores non IG
Control traffic. The normal session carries every handler plugins register
and takes over in Operate and Debug. The choice is made once per frame, before
any message is processed, so a state change never splits a message.

Usage:

	k, err := kernel.New(transport,
		kernel.WithLogger(logger),
		kernel.WithFrameRate(60),
	)
	if err != nil {
		return err
	}
	k.Register(myPlugin)
	err = k.Run(ctx)
*/
package kernel
