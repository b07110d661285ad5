package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/state"
)

// LastViewed is the last product the user opened, kept so the storefront
// can restore it across sessions.
type LastViewed struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url,omitempty"`
}

type Profile struct {
	DisplayName string      `json:"display_name,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	Birthday    string      `json:"birthday,omitempty"`
	Avatar      string      `json:"avatar,omitempty"`
	LastViewed  *LastViewed `json:"last_viewed,omitempty"`
}

// ProfileStore persists one profile record per identity in the state
// medium. A corrupt record is discarded and replaced with an empty one.
type ProfileStore struct {
	mu     sync.Mutex
	medium state.Medium
	log    *zap.Logger
}

func NewProfileStore(m state.Medium, log *zap.Logger) *ProfileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileStore{medium: m, log: log}
}

func profileKey(identity string) string { return "profile:" + identity }

func (s *ProfileStore) Get(ctx context.Context, identity string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, identity)
}

func (s *ProfileStore) load(ctx context.Context, identity string) (Profile, error) {
	raw, ok, err := s.medium.Get(ctx, profileKey(identity))
	if err != nil {
		return Profile{}, err
	}
	if !ok {
		return Profile{}, nil
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Warn("discarding corrupt profile",
			zap.String("identity", identity), zap.Error(err))
		_ = s.medium.Delete(ctx, profileKey(identity))
		return Profile{}, nil
	}
	return p, nil
}

// Update applies fn to the current profile and persists the result. The
// read-modify-write runs under the store mutex, so concurrent updates do
// not clobber each other.
func (s *ProfileStore) Update(ctx context.Context, identity string, fn func(*Profile)) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load(ctx, identity)
	if err != nil {
		return Profile{}, err
	}

	fn(&p)

	raw, err := json.Marshal(p)
	if err != nil {
		return Profile{}, err
	}
	if err := s.medium.Set(ctx, profileKey(identity), raw); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *ProfileStore) SetLastViewed(ctx context.Context, identity string, lv *LastViewed) (Profile, error) {
	return s.Update(ctx, identity, func(p *Profile) { p.LastViewed = lv })
}
