// Package spatial provides the small geometric kit the pipelines are built
// on: 3-vectors, quaternions, rigid transforms and spatial velocities.
//
// Quaternions use scalar-first (W, X, Y, Z) storage and always describe
// rotations from a local frame into its parent. All angular quantities are
// radians.
package spatial
