package vfs

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	l "github.com/sirupsen/logrus"

	"github.com/azuline/rose-go/internal/roseerr"
)

var fuselog = l.WithFields(l.Fields{"component": "vfs"})

// ghostTTL and pendingCollageTTL are the short grace periods §4.9
// describes for, respectively, a just-created ghost file surviving past
// its real removal, and an in-progress add-release-to-collage mkdir.
const (
	ghostTTL          = 5 * time.Second
	pendingCollageTTL = 5 * time.Second
)

// shortCircuitNames are looked up without ever consulting the cache, per
// §6's virtual-path grammar note — tools probe for these constantly.
var shortCircuitNames = map[string]bool{
	".git": true, ".DS_Store": true, ".Trash": true, ".Trash-1000": true,
	"HEAD": true, ".envrc": true,
}

// fsRoot is the FUSE bridge's shared state (C9): every node in the tree
// holds a pointer back to one of these. It owns the two caches that
// outlive a single node — ghost files and in-progress collage additions —
// the kernel's own entry/attribute-timeout mechanism (set per Lookup/
// Getattr response below) covers the getattr/lookup absorption §4.9 also
// asks for, and fs.NewListDirStream's snapshot covers readdir_cache.
type fsRoot struct {
	core *Core

	mu      sync.Mutex
	ghosts  map[string]time.Time // VirtualPath.String() -> expiry
	pending map[string]time.Time // VirtualPath.String() -> expiry (collage release dir)
}

func newFSRoot(core *Core) *fsRoot {
	return &fsRoot{core: core, ghosts: map[string]time.Time{}, pending: map[string]time.Time{}}
}

func (r *fsRoot) markGhost(p VirtualPath) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ghosts[p.String()] = time.Now().Add(ghostTTL)
}

func (r *fsRoot) isGhost(p VirtualPath) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.ghosts[p.String()]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(r.ghosts, p.String())
		return false
	}
	return true
}

func (r *fsRoot) markPending(p VirtualPath) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[p.String()] = time.Now().Add(pendingCollageTTL)
}

func (r *fsRoot) isPending(p VirtualPath) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.pending[p.String()]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(r.pending, p.String())
		return false
	}
	return true
}

func (r *fsRoot) clearPending(p VirtualPath) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, p.String())
}

// node is one directory or file in the mounted tree, identified solely by
// its VirtualPath — the FUSE library's own Inode embedding supplies the
// inode numbering and parent/child bookkeeping §4.9 would otherwise have
// to hand-roll.
type node struct {
	fs.Inode
	root  *fsRoot
	vpath VirtualPath
}

var (
	_ fs.NodeLookuper  = (*node)(nil)
	_ fs.NodeReaddirer = (*node)(nil)
	_ fs.NodeGetattrer = (*node)(nil)
	_ fs.NodeOpener    = (*node)(nil)
	_ fs.NodeCreater   = (*node)(nil)
	_ fs.NodeMkdirer   = (*node)(nil)
	_ fs.NodeRmdirer   = (*node)(nil)
	_ fs.NodeUnlinker  = (*node)(nil)
	_ fs.NodeRenamer   = (*node)(nil)
)

func child(parent VirtualPath, name string) VirtualPath {
	p, err := Parse(strings.TrimRight(parent.String(), "/") + "/" + name)
	if err != nil {
		return VirtualPath{View: parent.View, Facet: parent.Facet, Release: parent.Release, File: name}
	}
	return p
}

func errnoFor(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	if kind, ok := roseerr.KindOf(err); ok {
		switch kind {
		case roseerr.ReleaseDoesNotExist, roseerr.TrackDoesNotExist, roseerr.CollageDoesNotExist, roseerr.PlaylistDoesNotExist:
			return syscall.ENOENT
		case roseerr.CollageAlreadyExists, roseerr.PlaylistAlreadyExists:
			return syscall.EEXIST
		case roseerr.InvalidRule:
			return syscall.EACCES
		}
		fuselog.WithError(err).Error("unexpected vfs error")
		return syscall.EIO
	}
	fuselog.WithError(err).Error("unexpected vfs error")
	return syscall.EIO
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if shortCircuitNames[name] {
		return nil, syscall.ENOENT
	}
	c := child(n.vpath, name)

	if n.root.isGhost(c) {
		setGhostAttr(&out.Attr)
		out.SetEntryTimeout(time.Second)
		out.SetAttrTimeout(time.Second)
		return n.NewInode(ctx, &node{root: n.root, vpath: c}, fs.StableAttr{Mode: syscall.S_IFREG}), 0
	}
	if n.root.isPending(c) {
		setDirAttr(&out.Attr)
		out.SetEntryTimeout(time.Second)
		out.SetAttrTimeout(time.Second)
		return n.NewInode(ctx, &node{root: n.root, vpath: c}, fs.StableAttr{Mode: syscall.S_IFDIR}), 0
	}

	rp, err := n.root.core.Getattr(c)
	if err != nil {
		return nil, errnoFor(err)
	}
	mode := uint32(syscall.S_IFDIR)
	if !rp.IsDir {
		mode = syscall.S_IFREG
		fillRealAttr(&out.Attr, rp.HostPath)
	} else {
		setDirAttr(&out.Attr)
	}
	out.SetEntryTimeout(time.Second)
	out.SetAttrTimeout(time.Second)
	return n.NewInode(ctx, &node{root: n.root, vpath: c}, fs.StableAttr{Mode: mode}), 0
}

func (n *node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if n.vpath.IsRoot() {
		setDirAttr(&out.Attr)
		return 0
	}
	if n.root.isGhost(n.vpath) {
		setGhostAttr(&out.Attr)
		return 0
	}
	if n.root.isPending(n.vpath) {
		setDirAttr(&out.Attr)
		return 0
	}
	rp, err := n.root.core.Getattr(n.vpath)
	if err != nil {
		return errnoFor(err)
	}
	if rp.IsDir {
		setDirAttr(&out.Attr)
	} else {
		fillRealAttr(&out.Attr, rp.HostPath)
	}
	return 0
}

func (n *node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := n.root.core.Readdir(n.vpath)
	if err != nil {
		return nil, errnoFor(err)
	}
	out := make([]fuse.DirEntry, len(entries))
	for i, e := range entries {
		mode := uint32(syscall.S_IFREG)
		if e.IsDir {
			mode = syscall.S_IFDIR
		}
		out[i] = fuse.DirEntry{Name: e.Name, Mode: mode}
	}
	return fs.NewListDirStream(out), 0
}

func (n *node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	h, err := n.root.core.Open(n.vpath, int(flags))
	if err != nil {
		return nil, 0, errnoFor(err)
	}
	return &fileHandle{core: n.root.core, h: h}, 0, 0
}

func (n *node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	c := child(n.vpath, name)

	// Step 2 of the add-release-to-collage protocol (§4.8): every file of
	// the copied release except the terminal .rose.<uuid>.toml lands
	// under a directory this bridge marked pending in Mkdir, and is
	// routed straight to /dev/null so cp finishes without the core ever
	// seeing these paths.
	if n.vpath.IsCollages() && n.root.isPending(n.vpath) && !isCollageAddTOML(name) {
		n.root.markGhost(c)
		setGhostAttr(&out.Attr)
		inode := n.NewInode(ctx, &node{root: n.root, vpath: c}, fs.StableAttr{Mode: syscall.S_IFREG})
		return inode, &fileHandle{core: n.root.core, h: &Handle{kind: handleDevNull, buf: &bytes.Buffer{}}}, 0, 0
	}

	h, err := n.root.core.Open(c, int(flags)|os.O_CREATE)
	if err != nil {
		return nil, nil, 0, errnoFor(err)
	}
	n.root.clearPending(n.vpath)
	fillRealAttr(&out.Attr, "")
	out.Attr.Mode = syscall.S_IFREG | mode
	inode := n.NewInode(ctx, &node{root: n.root, vpath: c}, fs.StableAttr{Mode: syscall.S_IFREG})
	return inode, &fileHandle{core: n.root.core, h: h}, 0, 0
}

func (n *node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	c := child(n.vpath, name)

	// A release-shaped mkdir directly under a collage is step one of the
	// add-release-to-collage protocol: record it and report success
	// without calling into Core at all, per §4.8.
	if n.vpath.IsCollages() && n.vpath.Facet != "" && n.vpath.Release == "" {
		n.root.markPending(c)
		setDirAttr(&out.Attr)
		return n.NewInode(ctx, &node{root: n.root, vpath: c}, fs.StableAttr{Mode: syscall.S_IFDIR}), 0
	}

	if err := n.root.core.Mkdir(c); err != nil {
		return nil, errnoFor(err)
	}
	setDirAttr(&out.Attr)
	return n.NewInode(ctx, &node{root: n.root, vpath: c}, fs.StableAttr{Mode: syscall.S_IFDIR}), 0
}

func (n *node) Rmdir(ctx context.Context, name string) syscall.Errno {
	c := child(n.vpath, name)
	if n.root.isPending(c) {
		n.root.clearPending(c)
		return 0
	}
	return errnoFor(n.root.core.Rmdir(c))
}

func (n *node) Unlink(ctx context.Context, name string) syscall.Errno {
	c := child(n.vpath, name)
	if n.root.isGhost(c) {
		return 0
	}
	return errnoFor(n.root.core.Unlink(c))
}

func (n *node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	np, ok := newParent.(*node)
	if !ok {
		return syscall.EXDEV
	}
	return errnoFor(n.root.core.Rename(child(n.vpath, name), child(np.vpath, newName)))
}

func setDirAttr(a *fuse.Attr) {
	now := uint64(time.Now().Unix())
	a.Mode = syscall.S_IFDIR | 0o755
	a.Mtime, a.Ctime, a.Atime = now, now, now
}

func setGhostAttr(a *fuse.Attr) {
	now := uint64(time.Now().Unix())
	a.Mode = syscall.S_IFREG | 0o644
	a.Size = 0
	a.Mtime, a.Ctime, a.Atime = now, now, now
}

func fillRealAttr(a *fuse.Attr, hostPath string) {
	now := uint64(time.Now().Unix())
	a.Mode = syscall.S_IFREG | 0o644
	a.Mtime, a.Ctime, a.Atime = now, now, now
	if hostPath == "" {
		return
	}
	if fi, err := os.Stat(hostPath); err == nil {
		a.Size = uint64(fi.Size())
		mtime := uint64(fi.ModTime().Unix())
		a.Mtime, a.Ctime = mtime, mtime
	}
}

// fileHandle adapts a *Handle to fs.FileHandle's Read/Write/Release
// contract.
type fileHandle struct {
	core *Core
	h    *Handle
}

var (
	_ fs.FileHandle   = (*fileHandle)(nil)
	_ fs.FileReader   = (*fileHandle)(nil)
	_ fs.FileWriter   = (*fileHandle)(nil)
	_ fs.FileReleaser = (*fileHandle)(nil)
)

func (fh *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, err := fh.core.Read(fh.h, dest, off)
	if err != nil {
		return nil, errnoFor(err)
	}
	return fuse.ReadResultData(dest[:n]), 0
}

func (fh *fileHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	n, err := fh.core.Write(fh.h, data, off)
	if err != nil {
		return uint32(n), errnoFor(err)
	}
	return uint32(n), 0
}

func (fh *fileHandle) Release(ctx context.Context) syscall.Errno {
	return errnoFor(fh.core.Release(fh.h))
}

// osBridge is the production Bridge (§4.8): plain os-package passthrough.
// *os.File already implements HostFile (ReadAt/WriteAt/Close), so OpenHost
// needs no wrapper type.
type osBridge struct{}

func (osBridge) OpenHost(hostPath string, flags int, perm os.FileMode) (HostFile, error) {
	return os.OpenFile(hostPath, flags, perm)
}

func (osBridge) WriteHost(hostPath string, data []byte) error {
	tmp := hostPath + ".rose-tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, hostPath)
}

func (osBridge) RemoveHost(hostPath string) error {
	err := os.Remove(hostPath)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// NewBridge returns the production, real-filesystem Bridge implementation.
func NewBridge() Bridge { return osBridge{} }

// Mount serves core at mountDir until the context is canceled or the
// filesystem is unmounted, blocking until then.
func Mount(ctx context.Context, core *Core, mountDir string) error {
	root := &node{root: newFSRoot(core), vpath: VirtualPath{}}
	server, err := fs.Mount(mountDir, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName: "rose",
			Name:   "rose",
		},
	})
	if err != nil {
		return roseerr.Unexpected(err)
	}
	go func() {
		<-ctx.Done()
		_ = server.Unmount()
	}()
	server.Wait()
	return nil
}
