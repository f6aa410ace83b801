// Package fallback resolves localization resources for applications that
// assemble a translated UI from many small message files. An application
// declares a list of resource ids and a locale fallback chain; multiple
// overlapping sources (directory trees, langpacks, packaged content) each
// contribute some subset of those resources. For each locale, the registry
// enumerates every valid assignment of resource to source, lazily and in
// priority order, producing one assembled message bundle per valid
// assignment.
//
// The resolution process involves three cooperating pieces:
//  1. A Registry owning an ordered list of sources, which drives bundle
//     generation across a locale chain.
//  2. A solver (package solver) walking the space of (resource x source)
//     assignments with backtracking and pruning.
//  3. A per-source fetch cache (package source) memoizing every per-path
//     outcome so no file is fetched twice, except that a synchronous fetch
//     arriving while an asynchronous fetch of the same path is in flight
//     performs its own independent fetch.
//
// Downstream code consumes bundles one at a time and stops when it has
// found translations for every query, so everything is lazy: a bundle is
// only assembled when pulled, and the parallel generator fires all of a
// candidate's unresolved fetches concurrently to keep latency to one round
// trip per candidate.
package fallback
