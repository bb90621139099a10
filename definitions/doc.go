// Package definitions decodes typed game definitions out of a runecache
// Cache.
//
// The cache engine only hands out raw archives, decoded containers and file
// groups; this package adds the glue that turns a (index, archive) pair into
// an id-keyed map of definitions. FetchArchive and FetchIndex are the two
// generic algorithms, Loader wraps a fetched map, and the inventory and
// varbit decoders are the concrete definitions shipped with the package.
package definitions
