/*
Package ports defines the driven ports (interfaces) for the Automata engine.

These interfaces decouple the engine and world from external implementations,
allowing them to work with various clocks, storage backends and lock services.

# Key Interfaces

  - Clock: Provides wall-clock time and cancellable one-shot timers for the world's tick scheduler.
  - DocumentStore: Persists and loads machine documents by key (memory, file, Redis).
  - Library: Read-only source of machine documents (e.g. a Loam repository).
  - DistributedLocker: Provides distributed locking for concurrent saves across instances.
*/
package ports
