/*
Package library implements save/load orchestration for machine documents.

A Manager moves documents between a World and a ports.DocumentStore,
serializing access per key in-process and, optionally, across instances
through a ports.DistributedLocker. A read-only ports.Library (for instance a
Loam directory of curated machines) can back the store, so a key that was
never saved falls back to the shipped document.
*/
package library
