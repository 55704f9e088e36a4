// Package store holds the site state store: the single reactive container
// between the document/identity services and every page in the application.
// It opens one watch per collection at startup, replaces its in-memory
// records wholesale on every push, and exposes mutation operations that
// round-trip through the document service. Reads flow one way (service ->
// store -> views) and writes flow the other; there is no optimistic local
// update, so the exposed state only changes when a push reflects the write
// back.
// File: store/store.go
package store

import (
	"context"
	"sync"

	"athproof/docstore"
	"athproof/identity"
	"athproof/logger"
	"athproof/models"
)

// Collection and document keys consumed from the document service. The
// profile collection is canonically admin_users.
const (
	CollectionSettings   = "settings"
	DocSiteContent       = "siteContent"
	CollectionAthletes   = "athletes"
	CollectionAdminUsers = "admin_users"
	CollectionBlogs      = "blogs"
	CollectionGallery    = "gallery"
)

// Change names the slice of state that a push just replaced. Observers use
// it to decide what to refresh.
type Change struct {
	What string // "content", "athletes", "blogs", "gallery", "session"
}

// DocumentService is the document-store surface the site store depends on.
type DocumentService interface {
	docstore.Service
	List(ctx context.Context, collection string) ([]docstore.Document, error)
}

// SiteStore is the process-wide reactive container. Construct with New, call
// Open once, and Close on shutdown; a closed store must not be reopened —
// build a fresh one instead so no stale subscription handles survive.
type SiteStore struct {
	docs DocumentService
	auth identity.ServiceInterface

	mu            sync.RWMutex
	content       models.SiteContent
	athletes      []models.Athlete
	blogPosts     []models.BlogPost
	galleryImages []models.GalleryImage
	sessions      map[string]*models.User

	loading bool
	pending int
	readyCh chan struct{}

	subs      []*docstore.Subscription
	unsubAuth func()
	wg        sync.WaitGroup
	closeOnce sync.Once

	obsMu     sync.Mutex
	observers map[int]func(Change)
	nextObs   int
}

// New builds a site store over the given services. Nothing is subscribed
// until Open is called.
func New(docs DocumentService, auth identity.ServiceInterface) *SiteStore {
	return &SiteStore{
		docs:      docs,
		auth:      auth,
		content:   models.DefaultSiteContent(),
		sessions:  make(map[string]*models.User),
		loading:   true,
		readyCh:   make(chan struct{}),
		observers: make(map[int]func(Change)),
	}
}

// Open starts every subscription: the auth-change handler, the single
// document watch on settings/siteContent, and one collection watch each for
// athletes, blogs and gallery. The loading flag clears once every watch has
// delivered its first snapshot.
func (s *SiteStore) Open() {
	s.unsubAuth = s.auth.Subscribe(s.handleAuthEvent)

	contentSub := s.docs.WatchDocument(CollectionSettings, DocSiteContent)
	athleteSub := s.docs.WatchCollection(CollectionAthletes)
	blogSub := s.docs.WatchCollection(CollectionBlogs)
	gallerySub := s.docs.WatchCollection(CollectionGallery)

	s.subs = []*docstore.Subscription{contentSub, athleteSub, blogSub, gallerySub}
	s.pending = len(s.subs)

	s.wg.Add(4)
	go s.consume(contentSub, s.applyContent)
	go s.consume(athleteSub, s.applyAthletes)
	go s.consume(blogSub, s.applyBlogs)
	go s.consume(gallerySub, s.applyGallery)

	logger.Info.Printf("[Open] Site store opened with %d watches", len(s.subs))
}

// Close shuts every subscription down exactly once and waits for the
// consumer goroutines to drain.
func (s *SiteStore) Close() {
	s.closeOnce.Do(func() {
		if s.unsubAuth != nil {
			s.unsubAuth()
		}
		for _, sub := range s.subs {
			sub.Close()
		}
		s.wg.Wait()
		logger.Info.Println("[Close] Site store closed")
	})
}

// ------------------- readiness -------------------

// Ready reports whether every watch has delivered its first snapshot.
// Consumers must not render data-dependent pages while it is false.
func (s *SiteStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loading
}

// WaitReady blocks until the store is ready or the context expires.
func (s *SiteStore) WaitReady(ctx context.Context) error {
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SiteStore) markFirstSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == 0 {
		return
	}
	s.pending--
	if s.pending == 0 {
		s.loading = false
		close(s.readyCh)
		logger.Info.Println("[markFirstSnapshot] All watches delivered; store is ready")
	}
}

// ------------------- snapshot consumers -------------------

func (s *SiteStore) consume(sub *docstore.Subscription, apply func(docstore.Snapshot) Change) {
	defer s.wg.Done()
	first := true
	for snap := range sub.Snapshots() {
		change := apply(snap)
		if first {
			first = false
			s.markFirstSnapshot()
		}
		s.notify(change)
	}
}

// applyContent replaces the content record wholesale. Field-level merging
// only ever happens on the write side.
func (s *SiteStore) applyContent(snap docstore.Snapshot) Change {
	if !snap.Exists {
		// No settings document yet; keep serving the defaults.
		return Change{What: "content"}
	}
	fresh := models.SiteContent{}
	if err := snap.Doc.DataTo(&fresh); err != nil {
		logger.Error.Printf("[applyContent] Decode failed: %v", err)
		return Change{What: "content"}
	}
	s.mu.Lock()
	s.content = fresh
	s.mu.Unlock()
	return Change{What: "content"}
}

func (s *SiteStore) applyAthletes(snap docstore.Snapshot) Change {
	athletes := make([]models.Athlete, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		var a models.Athlete
		if err := doc.DataTo(&a); err != nil {
			logger.Error.Printf("[applyAthletes] Decode failed for %s: %v", doc.ID, err)
			continue
		}
		athletes = append(athletes, a)
	}
	s.mu.Lock()
	s.athletes = athletes
	s.mu.Unlock()
	return Change{What: "athletes"}
}

func (s *SiteStore) applyBlogs(snap docstore.Snapshot) Change {
	posts := make([]models.BlogPost, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		var p models.BlogPost
		if err := doc.DataTo(&p); err != nil {
			logger.Error.Printf("[applyBlogs] Decode failed for %s: %v", doc.ID, err)
			continue
		}
		posts = append(posts, p)
	}
	s.mu.Lock()
	s.blogPosts = posts
	s.mu.Unlock()
	return Change{What: "blogs"}
}

func (s *SiteStore) applyGallery(snap docstore.Snapshot) Change {
	images := make([]models.GalleryImage, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		var g models.GalleryImage
		if err := doc.DataTo(&g); err != nil {
			logger.Error.Printf("[applyGallery] Decode failed for %s: %v", doc.ID, err)
			continue
		}
		images = append(images, g)
	}
	s.mu.Lock()
	s.galleryImages = images
	s.mu.Unlock()
	return Change{What: "gallery"}
}

// ------------------- auth-change handling -------------------

// handleAuthEvent is the sole writer of session state. On sign-in it point
// reads the admin_users profile and stores the merge of principal and
// profile; a missing or unreadable profile falls back to the bare principal.
func (s *SiteStore) handleAuthEvent(ev identity.Event) {
	switch ev.Type {
	case identity.EventSignedIn:
		if ev.Principal == nil {
			return
		}
		user := &models.User{UID: ev.Principal.UID, Email: ev.Principal.Email}
		doc, err := s.docs.Get(context.Background(), CollectionAdminUsers, ev.Principal.UID)
		if err == nil {
			var profile struct {
				Name  string `json:"name"`
				Email string `json:"email"`
				Role  string `json:"role"`
				Code  string `json:"code"`
			}
			if derr := doc.DataTo(&profile); derr == nil {
				if profile.Name != "" {
					user.Name = profile.Name
				}
				if profile.Email != "" {
					user.Email = profile.Email
				}
				user.Role = profile.Role
				user.Code = profile.Code
			}
		} else {
			logger.Debug.Printf("[handleAuthEvent] No profile for uid=%s: %v", ev.Principal.UID, err)
		}
		s.mu.Lock()
		s.sessions[ev.UID] = user
		s.mu.Unlock()
	case identity.EventSignedOut:
		s.mu.Lock()
		delete(s.sessions, ev.UID)
		s.mu.Unlock()
	}
	s.notify(Change{What: "session"})
}

// ------------------- accessors -------------------

// Content returns the current site content record.
func (s *SiteStore) Content() models.SiteContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Athletes returns a copy of the current athlete list.
func (s *SiteStore) Athletes() []models.Athlete {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Athlete(nil), s.athletes...)
}

// BlogPosts returns a copy of the current blog post list.
func (s *SiteStore) BlogPosts() []models.BlogPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.BlogPost(nil), s.blogPosts...)
}

// GalleryImages returns a copy of the current gallery list.
func (s *SiteStore) GalleryImages() []models.GalleryImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.GalleryImage(nil), s.galleryImages...)
}

// SessionUser returns the merged session record for a signed-in uid, or nil.
func (s *SiteStore) SessionUser(uid string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.sessions[uid]
	if !ok {
		return nil
	}
	copied := *u
	return &copied
}

// ------------------- change observers -------------------

// SubscribeChanges registers an observer fired after each applied push. The
// returned function detaches it.
func (s *SiteStore) SubscribeChanges(fn func(Change)) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			defer s.obsMu.Unlock()
			delete(s.observers, id)
		})
	}
}

// notify runs outside the state lock so observers may read the store.
func (s *SiteStore) notify(change Change) {
	s.obsMu.Lock()
	observers := make([]func(Change), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range observers {
		fn(change)
	}
}
