// Package driver implements the {DetectInputs, LoadInputsBatch} capability
// set and the PackageId-keyed registry the build context asks, in
// registration order, for every input path.
//
// Rather than a base driver type with virtual methods, a Driver is any
// type implementing the small Driver interface below, and the Registry
// holds them in a map keyed by the PackageId each driver is registered
// under.
package driver
