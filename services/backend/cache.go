package backendsvc

import (
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sendgrid/rest"

	metricsvc "github.com/trezcool/masomo-storefront/services/metrics"
)

// tag groups cached answers that get invalidated together.
type tag string

const (
	tagAuth        tag = "Auth"
	tagCourses     tag = "Courses"
	tagEnrollments tag = "Enrollments"
)

// allSessions invalidates a tag for every session.
const allSessions = ""

type cacheEntry struct {
	resp    *rest.Response
	tag     tag
	session string
}

// cache keeps the backend's answers to GET calls until they expire or their tag is invalidated.
// Expired answers are swept every ttl.
type cache struct {
	ttl   time.Duration
	store *gocache.Cache
}

// newCache returns a cache keeping answers for ttl; a ttl <= 0 disables caching.
func newCache(ttl time.Duration) *cache {
	c := &cache{ttl: ttl}
	if c.enabled() {
		c.store = gocache.New(ttl, ttl)
	}
	return c
}

func (c *cache) enabled() bool { return c.ttl > 0 }

func cacheKey(session, path string, query map[string]string) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(session)
	b.WriteByte('|')
	b.WriteString(path)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(k + "=" + query[k])
	}
	return b.String()
}

func (c *cache) get(t tag, key string) (*rest.Response, bool) {
	if !c.enabled() {
		return nil, false
	}
	var resp *rest.Response
	obj, ok := c.store.Get(key)
	if ok {
		resp = obj.(cacheEntry).resp
	}
	result := "miss"
	if ok {
		result = "hit"
	}
	metricsvc.CacheLookupsTotal.WithLabelValues(string(t), result).Inc()
	return resp, ok
}

func (c *cache) set(t tag, session, key string, resp *rest.Response) {
	if !c.enabled() {
		return
	}
	c.store.Set(key, cacheEntry{resp: resp, tag: t, session: session}, gocache.DefaultExpiration)
}

// invalidate drops the session's answers carrying one of tags (every session's when session is allSessions).
func (c *cache) invalidate(session string, tags ...tag) {
	if !c.enabled() {
		return
	}
	for key, item := range c.store.Items() {
		entry := item.Object.(cacheEntry)
		if session != allSessions && entry.session != session {
			continue
		}
		for _, t := range tags {
			if entry.tag == t {
				c.store.Delete(key)
				break
			}
		}
	}
}

// size is the number of stored answers, expired ones not swept yet included.
func (c *cache) size() int {
	if !c.enabled() {
		return 0
	}
	return c.store.ItemCount()
}
