/*
Package ports defines the driven ports (interfaces) of the todo application.

These interfaces decouple the core logic from external implementations, allowing
the application to work with various storage backends and to be driven by
different frontends.

# Key Interfaces

  - KeyValueStore: Holds the serialized todo list under a namespaced key (Memory, File, Redis, Loam).
  - DistributedLocker: Provides distributed locking for serializing access across replicas.
  - Engine: The dispatch/render surface consumed by the HTTP, MCP and CLI adapters.
*/
package ports
