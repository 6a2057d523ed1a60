// Package model provides the element and relationship graph of an analysed
// software solution.
//
// # Overview
//
// A [Model] is the single authoritative registry of [Element] values (projects,
// classes, interfaces, people, systems) and the directed [Relationship] values
// between them. Views, diagrams and exporters all read from one Model.
//
// # Identity
//
// Every element receives a process-unique [ID] at construction. Equality,
// hashing and registration use the ID only, so registering the same element
// twice is a no-op:
//
//	m := model.New()
//	api := model.NewElement(model.KindProject, "Shop Api")
//	m.Add(api)
//	m.Add(api) // still one element
//
// The element [Element.Alias] is derived from its name with all whitespace
// removed. Aliases key the nodes of a rendered diagram.
//
// # Typed Elements
//
// Elements produced by a code-analysis provider carry the provider's handle as
// a payload. [Typed] exposes that payload with its static type:
//
//	cls := model.NewTyped(model.KindClass, "OrderService", handle)
//	cls.UserData() // handle
//
// The structural parent is stored once on the [Element] and shared by every
// typed view of it.
//
// # Deferred Resolution
//
// Relationships may be created before their endpoints are registered, and the
// same logical entity may be wrapped more than once by independent passes.
// After bulk loading, [Model.ResolveNodes] merges wrappers that share a payload
// into the first-registered instance, rewrites relationship endpoints and parent
// references, and drops relationships that still point at unregistered
// elements. Dropped references are reported as [Warning] values rather than
// errors.
//
// # Concurrency
//
// A Model is not safe for concurrent mutation. All mutation is expected to
// happen from a single pipeline run.
package model
