/*
Package ports defines the driven ports (interfaces) of the turing engine.

These interfaces decouple sessions and the outer surfaces (CLI, HTTP, MCP)
from concrete storage backends and definition sources.

# Key Interfaces

  - DefinitionLoader: resolves machine definitions by name (built-ins, Loam, files).
  - SessionStore: persists sessions (memory, file, Redis).
  - DistributedLocker: serialises access to a session across replicas.
*/
package ports
