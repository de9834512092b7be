/*
Package session runs machines as persisted, addressable sessions.

A Manager resolves definitions through a ports.DefinitionLoader, keeps the
configuration and its history in a ports.SessionStore and serialises every
read-modify-write of a session behind a per-session lock. With a
ports.DistributedLocker the same guarantee holds across replicas.
*/
package session
