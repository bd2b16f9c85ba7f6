// Package routing implements the obstacle-aware connector routing session:
// a persistent registry of obstacle shapes, cached pins and connections on
// top of the solver engine, plus port assignment, route caching, fallback
// generation, collision validation and batch coordination.
//
// One Session exists per routing-option version and per diagram view. All
// long-lived solver handles (shapes, pins, connections) are owned by the
// session and mutated in place; a change to the option set produces a fresh
// session instead of reconfiguring a live one, because re-applying nudging
// parameters mid-flight reshuffles routes that did not change.
package routing
