// Package monster extracts monster identifiers from a directory of CDDA-style
// JSON content files.
//
// A content file holds either a single JSON object or an array of objects.
// Only records with "type": "MONSTER", a non-empty "id" and no "abstract" key
// qualify; everything else is skipped without error. The scan is
// non-recursive and only looks at regular files ending in ".json".
//
// The package is built around [IsMonster] (the pure record predicate), [Set]
// (the deduplicating identifier set) and [Extractor] (the directory scan).
package monster
