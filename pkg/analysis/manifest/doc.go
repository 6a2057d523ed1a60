// Package manifest provides an analysis source that reads a declarative
// solution file instead of analysing code.
//
// A solution file lists projects with their classes, interfaces and
// references. TOML and YAML are accepted, chosen by file extension:
//
//	name = "shop"
//
//	[[project]]
//	name = "Shop.Api"
//	executable = true
//	references = ["Shop.Core"]
//
//	  [[project.class]]
//	  name = "OrderController"
//	  uses = [{ target = "IOrderStore", description = "reads orders" }]
//
//	[[project]]
//	name = "Shop.Core"
//
//	  [[project.interface]]
//	  name = "IOrderStore"
//
// A use target is either a plain type name, looked up in the declaring
// project first and then in every other project, or a qualified
// "Project/Type" name, split at the last slash. Targets that match no declared type become external
// references.
package manifest
