// Package session keeps per-session state for the web API: the working
// copy of the cabinet table and the selected filters.
//
// Repository puts the working copies in front of the durable store. An
// upload stages its result as the session's working copy (clearing the
// filters) and commits it; readers see the working copy while it is
// non-empty and the durable table otherwise. Reload discards the working
// copy.
//
// State lives in a MemoryStore for single-process deployments or in a
// RedisStore when sessions are shared.
package session
