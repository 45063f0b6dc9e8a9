// Package blueprint loads placement sequences by name.
//
// A [Blueprint] is a named, ordered list of placements; the order is the
// build order. Blueprints come from a [Source]:
//
//   - [DirSource]: a directory of <name>.csv files (rows of
//     x,y,width,height,color) and <name>.yaml files
//   - [MongoSource]: documents {name, steps} in a MongoDB collection
//   - [CachedSource]: any source behind a [cache.Cache]
//
// Names are validated with [errors.ValidateBlueprintName] before any lookup,
// so a name can never escape a blueprint directory.
//
// [cache.Cache]: github.com/assys/brickguide/pkg/cache
// [errors.ValidateBlueprintName]: github.com/assys/brickguide/pkg/errors
package blueprint
