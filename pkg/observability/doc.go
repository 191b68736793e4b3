/*
Package observability provides tools for monitoring a running World.

It includes Prometheus metrics fed from the world's tick and lifecycle events,
and structured logging of world and machine events. Both attach through the
ordinary listener registry and return a function that detaches them.
*/
package observability
