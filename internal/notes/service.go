package notes

import (
	"context"
	"strings"

	"github.com/ghaggin/notes/internal/model"
	"github.com/ghaggin/notes/internal/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service is what the views call. Writes go through a singleflight group
// so a repeated submission that arrives while the first is still running
// shares its result instead of reaching the backend twice. The shared call
// runs detached from the first caller's cancellation, since later callers
// wait on the same result.
type Service struct {
	repo     repository.Repository
	log      *zap.Logger
	inflight singleflight.Group
}

type Params struct {
	fx.In

	Repo repository.Repository
	Log  *zap.Logger
}

func NewService(p Params) *Service {
	return &Service{
		repo: p.Repo,
		log:  p.Log.Named("notes"),
	}
}

var Module = fx.Options(
	fx.Provide(NewService),
)

func flightKey(ctx context.Context, parts ...string) string {
	owner := ""
	if s, ok := model.SessionFromContext(ctx); ok {
		owner = s.UserID + "|" + s.AccessToken
	}
	return owner + "\x00" + strings.Join(parts, "\x00")
}

func (s *Service) List(ctx context.Context) ([]model.NoteSummary, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warn("list notes failed", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.NoteDetail, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		s.log.Warn("get note failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return n, nil
}

// Create expects a validated form.
func (s *Service) Create(ctx context.Context, f Form) (string, error) {
	v, err, shared := s.inflight.Do(flightKey(ctx, "create", f.Title, f.Body), func() (any, error) {
		return s.repo.Create(context.WithoutCancel(ctx), f.Title, f.Body)
	})
	if err != nil {
		s.log.Warn("create note failed", zap.Error(err))
		return "", err
	}
	if shared {
		s.log.Debug("collapsed duplicate create")
	}
	return v.(string), nil
}

// Update expects a validated form.
func (s *Service) Update(ctx context.Context, id string, f Form) (string, error) {
	v, err, _ := s.inflight.Do(flightKey(ctx, "update", id, f.Title, f.Body), func() (any, error) {
		return s.repo.Update(context.WithoutCancel(ctx), id, f.Title, f.Body)
	})
	if err != nil {
		s.log.Warn("update note failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return v.(string), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err, _ := s.inflight.Do(flightKey(ctx, "delete", id), func() (any, error) {
		return nil, s.repo.Delete(context.WithoutCancel(ctx), id)
	})
	if err != nil {
		s.log.Warn("delete note failed", zap.String("id", id), zap.Error(err))
	}
	return err
}
