// Package nativehcl is the built-in driver for the native-source build
// description language: a source directory's build is described by an
// ordinary "sw.hcl" manifest, parsed with the standard
// hclparse.Parser → gohcl.DecodeBody pipeline, rather than by literally
// compiling and dynamically loading arbitrary native code.
package nativehcl
