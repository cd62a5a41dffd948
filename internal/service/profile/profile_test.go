package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	domainprofile "github.com/alanyang/promptshelf/internal/domain/profile"
	"github.com/alanyang/promptshelf/internal/mocks"
	profilesvc "github.com/alanyang/promptshelf/internal/service/profile"
)

func newProfileSvc(t *testing.T) (*profilesvc.Service, *mocks.MockProfileRepository, *mocks.MockEventBus) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProfileRepository(ctrl)
	bus := mocks.NewMockEventBus(ctrl)
	return profilesvc.NewService(repo, bus), repo, bus
}

func signedIn(p principal.Principal) context.Context {
	return principal.WithContext(context.Background(), p)
}

func TestSearch_ShortTerm_NoStoreCall(t *testing.T) {
	for _, term := range []string{"", "a", "  b  ", "é"} {
		t.Run(term, func(t *testing.T) {
			svc, _, _ := newProfileSvc(t)

			got, err := svc.Search(signedIn(principal.Principal{ID: uuid.New()}), term)
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.NotNil(t, got)
		})
	}
}

func TestSearch_TrimsAndLimits(t *testing.T) {
	svc, repo, _ := newProfileSvc(t)
	want := []domainprofile.UserProfile{{ID: uuid.New(), Email: "bob@example.com"}}
	repo.EXPECT().Search(gomock.Any(), "bo", domainprofile.MaxSearchLimit).Return(want, nil)

	got, err := svc.Search(signedIn(principal.Principal{ID: uuid.New()}), "  bo ")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSearch_Unauthenticated(t *testing.T) {
	svc, _, _ := newProfileSvc(t)

	_, err := svc.Search(context.Background(), "bob")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestGetOrCreate_Existing(t *testing.T) {
	svc, repo, _ := newProfileSvc(t)
	id := uuid.New()
	existing := domainprofile.UserProfile{ID: id, Email: "a@example.com"}
	repo.EXPECT().GetByID(gomock.Any(), id).Return(existing, nil)

	got, err := svc.GetOrCreate(signedIn(principal.Principal{ID: id}))
	require.NoError(t, err)
	assert.Equal(t, existing, got)
}

func TestGetOrCreate_CreatesWithDefaultName(t *testing.T) {
	svc, repo, bus := newProfileSvc(t)
	id := uuid.New()
	repo.EXPECT().GetByID(gomock.Any(), id).Return(domainprofile.UserProfile{}, apperr.ErrNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p domainprofile.UserProfile) (domainprofile.UserProfile, error) {
			require.NotNil(t, p.DisplayName)
			assert.Equal(t, "carol", *p.DisplayName)
			assert.Equal(t, id, p.ID)
			return p, nil
		})
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.GetOrCreate(signedIn(principal.Principal{ID: id, Email: "carol@example.com"}))
	require.NoError(t, err)
}

func TestGetOrCreate_RepoFailure(t *testing.T) {
	svc, repo, _ := newProfileSvc(t)
	repo.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(domainprofile.UserProfile{}, errors.New("conn reset"))

	_, err := svc.GetOrCreate(signedIn(principal.Principal{ID: uuid.New()}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get profile")
}

func TestUpdate_EmptyPatch(t *testing.T) {
	svc, _, _ := newProfileSvc(t)

	_, err := svc.Update(signedIn(principal.Principal{ID: uuid.New()}), domainprofile.Patch{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdate_BlankDisplayName(t *testing.T) {
	svc, _, _ := newProfileSvc(t)
	blank := "  "

	_, err := svc.Update(signedIn(principal.Principal{ID: uuid.New()}), domainprofile.Patch{DisplayName: &blank})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdate_Success(t *testing.T) {
	svc, repo, bus := newProfileSvc(t)
	id := uuid.New()
	name := "Dana"
	repo.EXPECT().GetByID(gomock.Any(), id).Return(domainprofile.UserProfile{ID: id}, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p domainprofile.UserProfile) (domainprofile.UserProfile, error) { return p, nil })
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	got, err := svc.Update(signedIn(principal.Principal{ID: id}), domainprofile.Patch{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Dana", *got.DisplayName)
}
