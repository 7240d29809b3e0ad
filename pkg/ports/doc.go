/*
Package ports defines the driven ports (interfaces) of the Strider engine.

The robot's transport layer (wire protocol, authentication handshake, time sync) is
not part of the engine. It is reached only through these capability interfaces, which
lets the same engine run against a real SDK bridge, an HTTP bridge, or a scripted
in-memory robot in tests.

# Key Interfaces

  - Connector / Robot: establishes a session and exposes the per-service clients.
  - LeaseService: takes, renews and returns the exclusive-control lease.
  - CommandService: issues stand and move commands and polls their feedback.
  - ImageService: fetches raw frames by source name.
  - ArtifactStore: persists output images.
*/
package ports
