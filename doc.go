/*
Package igkernel is the kernel of a CIGI Image Generator.

A simulation Host drives the IG with CIGI packets over UDP. The kernel runs
one state machine step per visual frame: it decodes what the Host sent,
lets plugins update the scene for the current state and answers with a
Start-Of-Frame packet reporting the IG mode and frame counter.

# Architecture

The module follows a Hexagonal layout:

  - pkg/domain: states, modes, the StateContext and status snapshots.
  - internal/runtime: the state machine (transition table and per-state metadata).
  - pkg/cigi, pkg/igctrl: the CIGI codec, sessions and the IG Control processor.
  - pkg/blackboard, pkg/plugin: the typed registry plugins exchange handles through and the plugin manager.
  - pkg/kernel: the frame driver.
  - pkg/adapters: UDP and in-memory transports, Redis, file and in-memory status stores, the metrics endpoint.

# Usage

	tr, err := udp.Open("0.0.0.0", 8004, "10.0.0.2", 8005)
	if err != nil {
		return err
	}
	ig, err := igkernel.New(tr,
		igkernel.WithLogger(logger),
		igkernel.WithDatabase(database.Settings{LoadFrames: 30}),
	)
	if err != nil {
		return err
	}
	return ig.Run(ctx)
*/
package igkernel
