// Package installer sequences one dotlink run: directory links first,
// then every file of the source tree outside them, then the configured
// extra links.
//
// There is no rollback. The first failure aborts the run and the paths
// handled before it stay linked; running again finishes the job because
// each path is replaced independently.
package installer
