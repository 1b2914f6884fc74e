package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/dotlink/pkg/types"
)

// maxLinkHops bounds symlink resolution.
const maxLinkHops = 40

// MemoryFS implements types.FS interface with in-memory storage.
//
// Symlinks are stored as nodes. Parent components of every path are
// resolved through symlinks, as the OS does; the final component is only
// followed by Stat, ReadFile and ReadDir.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*fileNode
	cwd   string
	umask os.FileMode

	// Error injection
	errorPaths map[string]error
	opErrors   map[string]error

	// Statistics
	readCount  int
	writeCount int
}

// fileNode represents a file, directory or symlink in memory
type fileNode struct {
	name     string
	mode     os.FileMode
	modTime  time.Time
	content  []byte
	isDir    bool
	isLink   bool
	linkDest string
	children map[string]*fileNode
}

var _ types.FS = (*MemoryFS)(nil)

// NewMemoryFS creates a new in-memory filesystem
func NewMemoryFS() *MemoryFS {
	root := &fileNode{
		name:     "/",
		mode:     0755 | os.ModeDir,
		modTime:  time.Now(),
		isDir:    true,
		children: make(map[string]*fileNode),
	}

	return &MemoryFS{
		files:      map[string]*fileNode{"/": root},
		cwd:        "/",
		umask:      0022,
		errorPaths: make(map[string]error),
		opErrors:   make(map[string]error),
	}
}

// normalizePath converts a path to absolute form with its parent
// directories resolved through symlinks
func (m *MemoryFS) normalizePath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.cwd, path)
	}
	path = filepath.Clean(path)
	if path == "/" {
		return path
	}
	return filepath.Join(m.resolveDir(filepath.Dir(path), 0), filepath.Base(path))
}

// resolveDir returns dir with every symlinked component replaced by the
// real path it points to. Missing components are kept as they are.
func (m *MemoryFS) resolveDir(dir string, hops int) string {
	current := "/"
	for _, part := range strings.Split(dir, "/") {
		if part == "" {
			continue
		}
		next := filepath.Join(current, part)
		if node, ok := m.files[next]; ok && node.isLink && hops < maxLinkHops {
			dest := node.linkDest
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(current, dest)
			}
			next = m.resolveFull(filepath.Clean(dest), hops+1)
		}
		current = next
	}
	return current
}

// resolveFull resolves every component of path, including the last
func (m *MemoryFS) resolveFull(path string, hops int) string {
	if path == "/" {
		return path
	}
	dir := m.resolveDir(filepath.Dir(path), hops)
	path = filepath.Join(dir, filepath.Base(path))
	if node, ok := m.files[path]; ok && node.isLink && hops < maxLinkHops {
		dest := node.linkDest
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(dir, dest)
		}
		return m.resolveFull(filepath.Clean(dest), hops+1)
	}
	return path
}

// injected returns the error configured for op on path, if any
func (m *MemoryFS) injected(op, path string) error {
	if err, ok := m.errorPaths[path]; ok {
		return err
	}
	if err, ok := m.opErrors[op+":"+path]; ok {
		return err
	}
	return nil
}

// getNode retrieves the node at the given path without following a
// final symlink
func (m *MemoryFS) getNode(path string) (*fileNode, error) {
	path = m.normalizePath(path)

	if err, ok := m.errorPaths[path]; ok {
		return nil, err
	}

	node, exists := m.files[path]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	return node, nil
}

// resolve follows symlinks starting at path and returns the final node
func (m *MemoryFS) resolve(path string) (*fileNode, error) {
	path = m.normalizePath(path)
	for i := 0; i < maxLinkHops; i++ {
		node, err := m.getNode(path)
		if err != nil {
			return nil, err
		}
		if !node.isLink {
			return node, nil
		}
		target := node.linkDest
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = m.normalizePath(target)
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: errors.New("too many levels of symbolic links")}
}

// getParentAndName splits a path into parent directory and filename
func (m *MemoryFS) getParentAndName(path string) (parent *fileNode, name string, err error) {
	path = m.normalizePath(path)
	dir := filepath.Dir(path)
	name = filepath.Base(path)

	parent, err = m.getNode(dir)
	if err != nil {
		return nil, "", err
	}

	if !parent.isDir {
		return nil, "", &fs.PathError{Op: "open", Path: dir, Err: errors.New("not a directory")}
	}

	return parent, name, nil
}

// ReadFile reads the entire file content, following symlinks
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCount++

	path := m.normalizePath(name)
	if err := m.injected("read", path); err != nil {
		return nil, err
	}

	node, err := m.resolve(path)
	if err != nil {
		return nil, err
	}

	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}

	// Return a copy to prevent mutation
	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating parent directories as needed.
// It is test setup only and not part of types.FS.
func (m *MemoryFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	path := m.normalizePath(name)
	if err := m.injected("write", path); err != nil {
		return err
	}

	if err := m.mkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	parent, filename, err := m.getParentAndName(path)
	if err != nil {
		return err
	}

	if existing, ok := parent.children[filename]; ok && existing.isDir {
		return &fs.PathError{Op: "write", Path: name, Err: errors.New("is a directory")}
	}

	node := &fileNode{
		name:    filename,
		mode:    perm &^ m.umask,
		modTime: time.Now(),
		content: make([]byte, len(data)),
	}
	copy(node.content, data)

	parent.children[filename] = node
	m.files[path] = node

	return nil
}

// Stat returns file info, following symlinks
func (m *MemoryFS) Stat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := m.normalizePath(name)
	if err := m.injected("stat", path); err != nil {
		return nil, err
	}

	node, err := m.resolve(path)
	if err != nil {
		return nil, err
	}

	return &fileInfo{node: node, name: filepath.Base(path)}, nil
}

// Lstat returns file info without following symlinks
func (m *MemoryFS) Lstat(name string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := m.normalizePath(name)
	if err := m.injected("lstat", path); err != nil {
		return nil, err
	}

	node, err := m.getNode(path)
	if err != nil {
		return nil, err
	}

	return &fileInfo{node: node, name: filepath.Base(path)}, nil
}

// Remove removes a file, symlink or empty directory
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	path := m.normalizePath(name)
	if err := m.injected("remove", path); err != nil {
		return err
	}

	node, err := m.getNode(path)
	if err != nil {
		return err
	}

	// Can't remove non-empty directory
	if node.isDir && len(node.children) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
	}

	parent, filename, err := m.getParentAndName(path)
	if err != nil {
		return err
	}

	delete(parent.children, filename)
	delete(m.files, path)

	return nil
}

// RemoveAll removes a file or directory recursively. A symlink is removed
// itself, never its target.
func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	path = m.normalizePath(path)
	if err := m.injected("removeall", path); err != nil {
		return err
	}
	if path == "/" {
		return &fs.PathError{Op: "removeall", Path: path, Err: fs.ErrInvalid}
	}

	for p := range m.files {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(m.files, p)
		}
	}
	if parent, ok := m.files[filepath.Dir(path)]; ok && parent.isDir {
		delete(parent.children, filepath.Base(path))
	}

	return nil
}

// MkdirAll creates a directory and all necessary parents
func (m *MemoryFS) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = m.normalizePath(path)
	if err := m.injected("mkdir", path); err != nil {
		return err
	}

	return m.mkdirAll(path, perm)
}

// mkdirAll is the internal implementation without locking
func (m *MemoryFS) mkdirAll(path string, perm os.FileMode) error {
	// an existing symlink to a directory satisfies MkdirAll
	path = m.resolveFull(m.normalizePath(path), 0)

	// Check if already exists
	if node, err := m.getNode(path); err == nil {
		if !node.isDir {
			return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("file exists")}
		}
		return nil
	}

	parts := strings.Split(path, "/")
	current := "/"
	currentNode := m.files["/"]

	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}

		next := filepath.Join(current, parts[i])
		if err, ok := m.errorPaths[next]; ok {
			return err
		}

		if child, exists := currentNode.children[parts[i]]; exists {
			if !child.isDir {
				return &fs.PathError{Op: "mkdir", Path: next, Err: errors.New("not a directory")}
			}
			currentNode = child
			current = next
			continue
		}

		m.writeCount++
		newDir := &fileNode{
			name:     parts[i],
			mode:     perm | os.ModeDir,
			modTime:  time.Now(),
			isDir:    true,
			children: make(map[string]*fileNode),
		}

		currentNode.children[parts[i]] = newDir
		m.files[next] = newDir

		currentNode = newDir
		current = next
	}

	return nil
}

// Readlink returns the destination of a symbolic link
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := m.normalizePath(name)
	if err := m.injected("readlink", path); err != nil {
		return "", err
	}

	node, err := m.getNode(path)
	if err != nil {
		return "", err
	}

	if !node.isLink {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: errors.New("not a symbolic link")}
	}

	return node.linkDest, nil
}

// Symlink creates a symbolic link at link pointing to target
func (m *MemoryFS) Symlink(target, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++

	linkPath := m.normalizePath(link)
	if err := m.injected("symlink", linkPath); err != nil {
		return &os.LinkError{Op: "symlink", Old: target, New: link, Err: err}
	}

	if _, err := m.getNode(linkPath); err == nil {
		return &os.LinkError{Op: "symlink", Old: target, New: link, Err: fs.ErrExist}
	}

	parent, filename, err := m.getParentAndName(linkPath)
	if err != nil {
		return err
	}

	node := &fileNode{
		name:     filename,
		mode:     0777 | os.ModeSymlink,
		modTime:  time.Now(),
		isLink:   true,
		linkDest: target,
	}

	parent.children[filename] = node
	m.files[linkPath] = node

	return nil
}

// ReadDir reads a directory and returns its entries sorted by name
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCount++

	path := m.normalizePath(name)
	if err := m.injected("readdir", path); err != nil {
		return nil, err
	}

	node, err := m.resolve(path)
	if err != nil {
		return nil, err
	}

	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}

	entries := make([]fs.DirEntry, 0, len(node.children))
	for childName, child := range node.children {
		entries = append(entries, &dirEntry{
			name: childName,
			info: &fileInfo{node: child, name: childName},
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	return entries, nil
}

// WithError configures the filesystem to return an error for every
// operation on a specific path
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errorPaths[m.normalizePath(path)] = err
	return m
}

// WithOpError configures the filesystem to return an error for a single
// operation on a specific path. Operations are named "read", "write",
// "stat", "lstat", "remove", "removeall", "mkdir", "readlink", "symlink"
// and "readdir".
func (m *MemoryFS) WithOpError(op, path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opErrors[op+":"+m.normalizePath(path)] = err
	return m
}

// Stats returns filesystem operation statistics. Writes count every
// mutation, including directories created by MkdirAll.
func (m *MemoryFS) Stats() (reads, writes int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCount, m.writeCount
}

// fileInfo implements os.FileInfo
type fileInfo struct {
	node *fileNode
	name string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() os.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir }
func (fi *fileInfo) Sys() interface{}   { return fi.node }

// dirEntry implements fs.DirEntry
type dirEntry struct {
	name string
	info os.FileInfo
}

func (de *dirEntry) Name() string               { return de.name }
func (de *dirEntry) IsDir() bool                { return de.info.IsDir() }
func (de *dirEntry) Type() os.FileMode          { return de.info.Mode().Type() }
func (de *dirEntry) Info() (os.FileInfo, error) { return de.info, nil }
