package app

import (
	"errors"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrNotFound            = errors.New("connection not found")
)

// Registry maps a joined connection to its session metadata.
// Not safe for concurrent use; the orchestrator loop owns it.
type Registry struct {
	sessions map[domain.ConnID]domain.SessionMetadata
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnID]domain.SessionMetadata),
	}
}

// Register adds a joined connection. It fails on a duplicate id.
func (r *Registry) Register(cid domain.ConnID, md domain.SessionMetadata) error {
	if _, ok := r.sessions[cid]; ok {
		return ErrDuplicateConnection
	}
	r.sessions[cid] = md
	log.Debug().Str("module", "app.registry").Str("conn", string(cid)).Str("room", string(md.RoomID)).Msg("registered session")
	return nil
}

// Lookup returns the metadata of cid or ErrNotFound.
func (r *Registry) Lookup(cid domain.ConnID) (domain.SessionMetadata, error) {
	md, ok := r.sessions[cid]
	if !ok {
		return domain.SessionMetadata{}, ErrNotFound
	}
	return md, nil
}

// Remove returns the metadata it deleted. A second Remove of the same
// connection reports ErrNotFound.
func (r *Registry) Remove(cid domain.ConnID) (domain.SessionMetadata, error) {
	md, ok := r.sessions[cid]
	if !ok {
		return domain.SessionMetadata{}, ErrNotFound
	}
	delete(r.sessions, cid)
	log.Debug().Str("module", "app.registry").Str("conn", string(cid)).Msg("removed session")
	return md, nil
}

// Len is the number of joined connections.
func (r *Registry) Len() int { return len(r.sessions) }

// InRoom lists registered connections whose metadata names the room.
// Used only for invariant checks; order is unspecified.
func (r *Registry) InRoom(room domain.RoomID) []domain.ConnID {
	var out []domain.ConnID
	for cid, md := range r.sessions {
		if md.RoomID == room {
			out = append(out, cid)
		}
	}
	return out
}
