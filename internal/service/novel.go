package service

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/theLastOfCats/novel-library-server/internal/mapper"
	"github.com/theLastOfCats/novel-library-server/internal/model"
)

// Repository is the storage the service needs. *db.DB satisfies it.
type Repository interface {
	ExistsByNameExcept(ctx context.Context, name string, id int64) (bool, error)
	ExistsByLinkExcept(ctx context.Context, link string, id int64) (bool, error)
	ExistsByNameOrLink(ctx context.Context, name, link string) (bool, error)
	FindByNameContaining(ctx context.Context, name string) ([]model.Novel, error)
	FindByGenre(ctx context.Context, genre string) ([]model.Novel, error)
	FindAll(ctx context.Context) ([]model.Novel, error)
	FindByID(ctx context.Context, id int64) (*model.Novel, error)
	Count(ctx context.Context) (int64, error)
	InsertNovel(ctx context.Context, n *model.Novel) (int64, error)
	InsertNovels(ctx context.Context, novels []model.Novel) (int, error)
	UpdateNovel(ctx context.Context, n *model.Novel) error
	SaveDetails(ctx context.Context, id int64, d *model.NovelDetails) error
	SaveOpinion(ctx context.Context, id int64, o *model.NovelOpinion) error
	DeleteByID(ctx context.Context, id int64) error
}

// NovelUpdate holds the fields of a partial update. Blank fields are left unchanged.
type NovelUpdate struct {
	Name         string
	Link         string
	OriginalName string
	Genre        string
}

func (u NovelUpdate) trimmed() NovelUpdate {
	return NovelUpdate{
		Name:         strings.TrimSpace(u.Name),
		Link:         strings.TrimSpace(u.Link),
		OriginalName: strings.TrimSpace(u.OriginalName),
		Genre:        strings.TrimSpace(u.Genre),
	}
}

func (u NovelUpdate) empty() bool {
	return u.Name == "" && u.Link == "" && u.OriginalName == "" && u.Genre == ""
}

type NovelService struct {
	repo Repository
}

func NewNovelService(repo Repository) *NovelService {
	return &NovelService{repo: repo}
}

// AddNovelIfNotExists validates and stores a new novel, returning its id. A novel whose name or
// link is already taken is rejected with ErrDuplicate.
func (s *NovelService) AddNovelIfNotExists(ctx context.Context, req *mapper.NovelRequest) (int64, error) {
	if err := mapper.Validate(req); err != nil {
		return 0, err
	}

	n := mapper.ToEntity(req)
	id, err := s.repo.InsertNovel(ctx, n)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"id": id, "name": n.Name}).Info("novel added")
	return id, nil
}

// AddNovelsInBulk stores every valid request whose name and link are free. Nothing is stored
// when any request fails validation.
func (s *NovelService) AddNovelsInBulk(ctx context.Context, reqs []mapper.NovelRequest) (mapper.BulkResult, error) {
	if len(reqs) == 0 {
		return mapper.BulkResult{}, model.Errorf(model.ErrInvalidInput, "At least one novel must be provided")
	}

	novels := make([]model.Novel, 0, len(reqs))
	for i := range reqs {
		if err := mapper.Validate(&reqs[i]); err != nil {
			return mapper.BulkResult{}, model.Errorf(model.ErrInvalidInput, "novel %d: %s", i, err)
		}
		novels = append(novels, *mapper.ToEntity(&reqs[i]))
	}

	added, err := s.repo.InsertNovels(ctx, novels)
	if err != nil {
		return mapper.BulkResult{}, err
	}
	res := mapper.BulkResult{Added: added, Skipped: len(novels) - added}
	log.WithFields(log.Fields{"added": res.Added, "skipped": res.Skipped}).Info("bulk add finished")
	return res, nil
}

func (s *NovelService) FindNovelByNameOrLink(ctx context.Context, name, link string) (bool, error) {
	name, link = strings.TrimSpace(name), strings.TrimSpace(link)
	if name == "" && link == "" {
		return false, model.Errorf(model.ErrInvalidInput, "Name or link must be provided")
	}
	return s.repo.ExistsByNameOrLink(ctx, name, link)
}

func (s *NovelService) FindNovelByName(ctx context.Context, name string) ([]model.Novel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.Errorf(model.ErrInvalidInput, "Name must not be blank")
	}
	return s.repo.FindByNameContaining(ctx, name)
}

func (s *NovelService) FindNovelByGenre(ctx context.Context, genre string) ([]model.Novel, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, model.Errorf(model.ErrInvalidInput, "Genre must not be blank")
	}
	return s.repo.FindByGenre(ctx, genre)
}

func (s *NovelService) GetNovelsCount(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *NovelService) GetAllNovels(ctx context.Context) ([]model.Novel, error) {
	return s.repo.FindAll(ctx)
}

func (s *NovelService) GetNovelByID(ctx context.Context, id int64) (*model.Novel, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateNovel applies the non-blank fields of u to novel id. A changed name or link must not
// belong to another novel.
func (s *NovelService) UpdateNovel(ctx context.Context, id int64, u NovelUpdate) (*model.Novel, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	u = u.trimmed()
	if u.empty() {
		return nil, model.Errorf(model.ErrInvalidInput, "At least one of name, link, originalName or genre must be provided")
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Name != "" && u.Name != n.Name {
		// The novel itself is excluded so a case-only rename passes under case-insensitive collations.
		taken, err := s.repo.ExistsByNameExcept(ctx, u.Name, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.Errorf(model.ErrDuplicate, "Novel already exists with name: %s", u.Name)
		}
		n.Name = u.Name
	}
	if u.Link != "" && u.Link != n.Link {
		taken, err := s.repo.ExistsByLinkExcept(ctx, u.Link, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.Errorf(model.ErrDuplicate, "Novel already exists with link : %s", u.Link)
		}
		n.Link = u.Link
	}
	if u.OriginalName != "" {
		n.OriginalName = &u.OriginalName
	}
	if u.Genre != "" {
		n.Genre = u.Genre
	}

	if err := s.repo.UpdateNovel(ctx, n); err != nil {
		return nil, err
	}
	log.WithField("id", id).Info("novel updated")
	return n, nil
}

func (s *NovelService) UpdateNovelDetails(ctx context.Context, id int64, req *mapper.DetailsRequest) (*model.Novel, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := mapper.Validate(req); err != nil {
		return nil, err
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := mapper.DetailsToEntity(req)
	if n.Details != nil {
		d.AddedOn = n.Details.AddedOn
	}
	if err := s.repo.SaveDetails(ctx, id, d); err != nil {
		return nil, err
	}
	n.Details = d
	return n, nil
}

func (s *NovelService) UpdateNovelOpinion(ctx context.Context, id int64, req *mapper.OpinionRequest) (*model.Novel, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := mapper.Validate(req); err != nil {
		return nil, err
	}

	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o := mapper.OpinionToEntity(req)
	if err := s.repo.SaveOpinion(ctx, id, o); err != nil {
		return nil, err
	}
	n.Opinion = o
	return n, nil
}

func (s *NovelService) DeleteNovel(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	log.WithField("id", id).Info("novel deleted")
	return nil
}

func checkID(id int64) error {
	if id <= 0 {
		return model.Errorf(model.ErrInvalidInput, "Novel id must be a positive number, got %d", id)
	}
	return nil
}
