/*
Package ports defines the driven ports (interfaces) of the IG kernel.

These interfaces decouple the kernel from concrete I/O, so the frame loop can
run against a UDP socket in production and an in-memory pipe in tests.

# Key Interfaces

  - Transport: sends and receives whole CIGI messages (one datagram each).
  - StatusStore: persists kernel status snapshots for external monitoring.
  - DistributedLocker: provides an exclusive lease so one IG serves one Host channel.
*/
package ports
