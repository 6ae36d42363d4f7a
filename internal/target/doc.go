// Package target implements the Target and TargetMap types, the
// key-projection uniqueness invariant, and the lazy
// fixed-point computation of PUBLIC/PRIVATE interface-settings propagation
// across a target's link dependencies.
package target
