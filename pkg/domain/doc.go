/*
Package domain contains the core types of the IG kernel.

It defines the process phases (SystemState), the CIGI IG modes, the
StateContext that drives state transitions and the Status snapshot published
for monitoring. This package is kept pure and free of I/O.

# Key Entities

  - SystemState: one phase of the lifecycle (Init ... Operate ... Quit).
  - IGMode: the CIGI mode commanded by the Host and reported in SOF.
  - StateContext: the flags read by the transition table.
  - Status: a serializable snapshot of the running kernel.
*/
package domain
