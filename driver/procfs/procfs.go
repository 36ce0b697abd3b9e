// Package procfs implements scantypes.Driver by reading another process's
// address space through /proc/<pid>/mem.
package procfs

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/orviska/fuzzyscan/scantypes"
)

// Driver reads a target process's memory via /proc/<pid>/mem. Reads use
// unix.Pread on a raw file descriptor rather than File.Seek+Read, since the
// seek offset is shared mutable state on one fd and the batched reader
// issues reads concurrently from multiple goroutines.
type Driver struct {
	mu       sync.RWMutex
	fd       int
	pageSize int
}

// Open attaches to pid's memory. The caller must Close the driver when done.
func Open(pid int) (*Driver, error) {
	path := fmt.Sprintf("/proc/%d/mem", pid)
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("procfs: open %s: %w", path, err)
	}
	return &Driver{fd: fd, pageSize: os.Getpagesize()}, nil
}

// Close releases the underlying file descriptor.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// ReadMemory implements scantypes.Driver. When out cannot be read in one
// Pread (a short read, or an error partway through the range), it retries
// page by page so pageStatus reflects exactly which pages were readable;
// the caller always gets pageStatus populated, even on a non-nil return.
func (d *Driver) ReadMemory(addr uint64, out []byte, pageStatus *scantypes.PageStatusBitmap) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fd := d.fd

	if fd < 0 {
		return fmt.Errorf("procfs: driver closed")
	}
	if len(out) == 0 {
		return nil
	}

	n, err := unix.Pread(fd, out, int64(addr))
	if err == nil && n == len(out) {
		if pageStatus != nil {
			for i := 0; i < pageStatus.NumPages(); i++ {
				pageStatus.MarkPageSuccess(i)
			}
		}
		return nil
	}

	return d.readPageByPage(fd, addr, out, pageStatus)
}

// readPageByPage is the fallback path: one Pread per page, so a single
// unmapped or permission-denied page does not sink the whole chunk.
func (d *Driver) readPageByPage(fd int, addr uint64, out []byte, pageStatus *scantypes.PageStatusBitmap) error {
	pageSize := d.pageSize
	if pageStatus != nil && pageStatus.PageSize() > 0 {
		pageSize = pageStatus.PageSize()
	}
	if pageSize <= 0 {
		pageSize = 4096
	}

	var lastErr error
	anySuccess := false

	for off := 0; off < len(out); off += pageSize {
		end := off + pageSize
		if end > len(out) {
			end = len(out)
		}
		pageAddr := addr + uint64(off)
		slice := out[off:end]

		n, err := unix.Pread(fd, slice, int64(pageAddr))
		if err != nil || n != len(slice) {
			lastErr = err
			if err == nil {
				lastErr = fmt.Errorf("procfs: short read at 0x%x", pageAddr)
			}
			continue
		}

		anySuccess = true
		if pageStatus != nil {
			pageStatus.MarkPageSuccess(off / pageSize)
		}
	}

	if anySuccess {
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("procfs: read failed at 0x%x", addr)
	}
	return lastErr
}

var _ scantypes.Driver = (*Driver)(nil)
