// Package site exports a workspace as a Jekyll site.
//
// Every model element gets a Markdown page under elements/ whose YAML front
// matter carries the title, kind, parent, breadcrumb trail and source link:
//
//	---
//	layout: element
//	title: OrderController
//	kind: class
//	parent: Shop.Api
//	breadcrumbs:
//	    - title: Shop.Api
//	      url: /elements/shop-api/
//	    - title: OrderController
//	      url: /elements/ordercontroller/
//	permalink: /elements/ordercontroller/
//	source_url: https://git.example.com/shop/api
//	diagram: /diagrams/ordercontroller.svg
//	---
//
// The body lists the description, children and the relationships in both
// directions. With a [DiagramRenderer], every element page embeds a context
// diagram (the element, its children and everything related to it) and
// every workspace view gets a page under views/ with its diagram.
//
// The layouts named in front matter are not generated; the site is meant to
// be dropped into an existing Jekyll theme.
package site
