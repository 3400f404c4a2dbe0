package api

import "sync"

// issuedURLs remembers the most recent image URLs returned by submitImage.
// The oldest entry is evicted once capacity is reached.
type issuedURLs struct {
	mu    sync.Mutex
	limit int
	order []string
	set   map[string]struct{}
}

func newIssuedURLs(limit int) *issuedURLs {
	return &issuedURLs{limit: limit, set: make(map[string]struct{}, limit)}
}

func (u *issuedURLs) add(url string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.set[url]; ok {
		return
	}
	if len(u.order) >= u.limit {
		delete(u.set, u.order[0])
		u.order = u.order[1:]
	}
	u.order = append(u.order, url)
	u.set[url] = struct{}{}
}

func (u *issuedURLs) contains(url string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.set[url]
	return ok
}
