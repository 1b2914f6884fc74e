// Package types holds the data shared by dotlink's packages: the filesystem
// capability set the installer runs against, planned links, the actions
// taken for them, and destination states reported by status.
package types
