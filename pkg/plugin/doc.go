/*
Package plugin defines the contract between the kernel and the units of IG
behavior it drives.

Plugins are linked into the binary and registered explicitly at startup.
Every frame the state machine calls Manager.Act with the current state, and
the manager calls each plugin in registration order on the kernel goroutine.
A plugin that blocks stalls the whole frame.

Typical lifecycle for a plugin:

  - BlackboardPost: post the handles it owns.
  - BlackboardRetrieve: fetch the handles it needs, register CIGI handlers.
  - ConfigurationLoad / ConfigurationProcess: read and apply settings.
  - Standby / Operate / Debug / DatabaseLoad: per-frame work.
  - Shutdown: last chance to emit packets; Close is called on Quit.
*/
package plugin
