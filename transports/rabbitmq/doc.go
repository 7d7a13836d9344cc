// Package rabbitmq publishes interceptor journal entries to a RabbitMQ topic
// exchange.
//
// The Recorder satisfies journal.Recorder, so it can be combined with the
// in-memory journal via journal.Multi. Each entry is published as a persistent
// JSON message routed by its entry type:
//
//	intercept.constructed
//	intercept.construction_denied
//	intercept.transition
//
// Publishing failures are returned to the caller. Interceptors only log them;
// a broker outage never changes the result of an intercepted call.
package rabbitmq
