// Package catalog holds the static marketplace data: pricing plans, the tool
// table with per-tool form fields and credit costs, company details, legal
// documents and the inspiration feed.
//
// The compiled-in catalog can be overridden from a YAML file and hot-reloaded
// on change:
//
//	holder := catalog.NewHolder(catalog.Default())
//	if err := holder.LoadFile(path); err != nil { ... }
//	go catalog.Watch(ctx, path, holder, logger)
//
// Readers always take a snapshot through Provider.Current, so a reload never
// changes a catalog mid-request.
package catalog
