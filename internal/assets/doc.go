// Package assets downloads remote media referenced by post content into the
// output tree so generated pages do not depend on expiring hosted URLs.
package assets
