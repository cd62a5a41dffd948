package library

import (
	"strings"

	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/domain/event"
)

// Cache keys are the query name followed by its resolved arguments.
const (
	prefixItems        = "items:"
	prefixSharedByMe   = "shared-items:"
	prefixSharedWithMe = "items-shared-with-me:"
	prefixUsers        = "users:"
	prefixUserSearch   = "users:search:"
	prefixProfile      = "current-user-profile:"

	KeyAllUsers = "users:all"
)

func ItemsKey(owner uuid.UUID) string { return prefixItems + owner.String() }
func SharedByMeKey(sharer uuid.UUID) string { return prefixSharedByMe + sharer.String() }
func SharedWithMeKey(recipient uuid.UUID) string { return prefixSharedWithMe + recipient.String() }
func ProfileKey(id uuid.UUID) string { return prefixProfile + id.String() }

// UserSearchKey normalizes the term the same way the search does, so " ab" and "ab" share an entry.
func UserSearchKey(term string) string { return prefixUserSearch + strings.TrimSpace(term) }

// principalKeys lists every key scoped to one principal.
func principalKeys(id uuid.UUID) []string {
	return []string{ItemsKey(id), SharedByMeKey(id), SharedWithMeKey(id), ProfileKey(id)}
}

// invalidations maps a change to the keys and key prefixes it makes stale.
func invalidations(e event.Event) (keys []string, prefixes []string) {
	recipientKeys := func() []string {
		out := make([]string, 0, len(e.Audience))
		for _, r := range e.Audience {
			out = append(out, SharedWithMeKey(r))
		}
		return out
	}

	switch e.Type {
	case event.TypeItemCreated:
		keys = []string{ItemsKey(e.ActorID)}
	case event.TypeItemUpdated, event.TypeItemDeleted:
		keys = append([]string{ItemsKey(e.ActorID), SharedByMeKey(e.ActorID)}, recipientKeys()...)
	case event.TypeItemShared, event.TypeItemUnshared:
		keys = append([]string{SharedByMeKey(e.ActorID)}, recipientKeys()...)
	case event.TypeProfileChanged:
		keys = []string{ProfileKey(e.ActorID)}
		prefixes = []string{prefixUsers}
	}
	return keys, prefixes
}
