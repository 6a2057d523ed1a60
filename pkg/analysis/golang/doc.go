// Package golang provides an analysis source for Go modules.
//
// Packages become projects, named struct types become classes and named
// interface types become interfaces. References are collected from the type
// checker:
//
//   - embeds: embedded struct fields and embedded interfaces
//   - field: the types of struct fields
//   - parameter, returns: the signatures of methods
//   - implements: concrete types that satisfy an analysed interface through
//     the value or the pointer method set
//
// Imports between analysed packages become project references. Packages
// named main are executable projects.
//
// Loading uses golang.org/x/tools/go/packages and therefore needs the go
// command. Any package error aborts loading with LOAD_FAILURE.
package golang
