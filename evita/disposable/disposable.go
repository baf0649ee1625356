package disposable

import "sync"

// Disposable releases a subscription or resource. Dispose is idempotent.
type Disposable interface {
	Dispose()
}

func NewDisposable(release func()) Disposable {
	return &callbackDisposable{release: release}
}

type callbackDisposable struct {
	once    sync.Once
	release func()
}

func (d *callbackDisposable) Dispose() {
	d.once.Do(d.release)
}

// Composite disposes every member, last attached first.
type Composite struct {
	mu      sync.Mutex
	members []Disposable
}

func NewComposite(members ...Disposable) *Composite {
	return &Composite{members: members}
}

func (c *Composite) Add(d Disposable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members = append(c.members, d)
}

func (c *Composite) Dispose() {
	c.mu.Lock()
	members := c.members
	c.members = nil
	c.mu.Unlock()
	for i := len(members) - 1; i >= 0; i-- {
		members[i].Dispose()
	}
}
