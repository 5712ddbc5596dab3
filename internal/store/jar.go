package store

import (
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Jar is an http.CookieJar that mirrors the cookies set by one origin into
// the store, so separate invocations share a login.
type Jar struct {
	store  *Store
	origin *url.URL
	log    *slog.Logger

	mu    sync.Mutex
	inner *cookiejar.Jar
}

// NewJar restores the cookies saved for base's origin.
func NewJar(s *Store, base *url.URL, log *slog.Logger) (*Jar, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	origin := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	j := &Jar{store: s, origin: origin, log: log, inner: inner}

	saved, err := s.ListCookies(Origin(base), time.Now())
	if err != nil {
		return nil, err
	}
	restored := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		hc := &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"}
		if c.Expires != nil {
			hc.Expires = *c.Expires
		}
		restored = append(restored, hc)
	}
	if len(restored) > 0 {
		inner.SetCookies(origin, restored)
	}
	return j, nil
}

// Origin is the scheme://host key cookies and profiles are stored under.
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	if Origin(u) != Origin(j.origin) {
		return
	}
	now := time.Now()
	for _, c := range cookies {
		var err error
		switch {
		case c.MaxAge < 0, !c.Expires.IsZero() && !c.Expires.After(now):
			err = j.store.DeleteCookie(Origin(u), c.Name)
		default:
			sc := Cookie{Origin: Origin(u), Name: c.Name, Value: c.Value}
			if c.MaxAge > 0 {
				exp := now.Add(time.Duration(c.MaxAge) * time.Second)
				sc.Expires = &exp
			} else if !c.Expires.IsZero() {
				exp := c.Expires
				sc.Expires = &exp
			}
			err = j.store.SaveCookie(sc)
		}
		if err != nil {
			j.log.Error("persist cookie", "name", c.Name, "err", err)
		}
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

// Clear drops the session both in memory and on disk.
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	j.inner = inner
	return j.store.ClearCookies(Origin(j.origin))
}
