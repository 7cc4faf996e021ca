// Package object implements the Loom runtime's object model: class objects
// with C3-linearized resolution orders, instances with mapping- or
// slot-backed storage, the descriptor read/write/remove contract, attribute
// resolution, the metatype-driven class-construction pipeline, and direct
// operator/protocol dispatch. Everything hangs off a Context; independent
// contexts never share state.
package object
