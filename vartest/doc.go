// Package vartest provides test helpers for code built on the variant
// library: an embedded NATS server with JetStream for exercising the KV
// storage backend, a KV bucket factory, and a testing.T-backed logger.
package vartest
