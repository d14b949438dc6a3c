package mmgrid

import "sync"

// rowLocks serialises flushes into the same voxel row. Rows hash onto a
// fixed set of mutexes; a nil *rowLocks flushes without locking.
type rowLocks struct{ mu [NumShards]sync.Mutex }

func (l *rowLocks) flush(key int, row Row, buf *rayBuffer) {
	if l == nil {
		buf.flush(row)
		return
	}
	m := &l.mu[key&(NumShards-1)]
	m.Lock()
	buf.flush(row)
	m.Unlock()
}
