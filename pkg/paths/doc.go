// Package paths provides centralized path handling for dotlink.
// It finds the repository root and the destination root (the home
// directory) and maps configured paths onto them.
//
// Resolution order:
//
//	repository root   --root > DOTLINK_ROOT > git toplevel > cwd
//	destination root  paths.home setting > $HOME > xdg.Home
//	source tree       paths.source setting, relative to the repository root
//	dirlinks list     paths.dirlinks setting, relative to the repository root
package paths
