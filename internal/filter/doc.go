// Package filter implements the path exclusion rules used when installing
// the mod. Rules are evaluated against slash-separated paths relative to the
// source root.
//
// The package is built around the [Matcher] interface and the ordered
// [Rules] list. [ParseRule] turns a textual rule into one of the matcher
// variants:
//
//	*.md          suffix match on the file name
//	=utils        a whole path segment equal to "utils"
//	=.env*        any path segment matching the pattern ".env*"
//	**/*.bak      doublestar glob against the relative path
//	tmpclaude-    plain substring of the relative path
package filter
