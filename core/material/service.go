package material

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/course"
)

// ErrNotFound is returned by a Repository when no row matches.
var ErrNotFound = errors.New("material not found")

type (
	Repository interface {
		// QueryMaterials returns the materials matching filter, newest upload first.
		QueryMaterials(ctx context.Context, filter QueryFilter) ([]Material, error)
		GetMaterial(ctx context.Context, id string) (Material, error)
		CreateMaterial(ctx context.Context, m Material) (Material, error)
		UpdateMaterial(ctx context.Context, m Material) (Material, error)
		DeleteMaterial(ctx context.Context, id string) error
	}

	Service struct {
		repo       Repository
		curriculum course.Curriculum
		validator  *core.Validator
	}
)

func NewService(repo Repository, curriculum course.Curriculum, validator *core.Validator) *Service {
	return &Service{repo: repo, curriculum: curriculum, validator: validator}
}

// Validate cleans nm and checks it references a lesson of the curriculum.
func (svc *Service) Validate(nm *NewMaterial) error {
	nm.clean()
	if err := svc.validator.Struct(nm); err != nil {
		return err
	}
	if _, ok := svc.curriculum.Module(nm.ModuleID); !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "module_id", Error: "unknown module"})
	}
	if nm.LessonID != "" && !svc.curriculum.HasLesson(nm.ModuleID, nm.LessonID) {
		return core.NewValidationError(nil, core.FieldError{Field: "lesson_id", Error: "unknown lesson for this module"})
	}
	return nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Material, error) {
	filter.Clean()
	mats, err := svc.repo.QueryMaterials(ctx, filter)
	if err != nil {
		return nil, core.NewPersistenceError("querying materials", err)
	}
	return mats, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Material, error) {
	mat, err := svc.repo.GetMaterial(ctx, id)
	if err != nil {
		return Material{}, svc.repoErr("getting material", id, err)
	}
	return mat, nil
}

func (svc *Service) Create(ctx context.Context, nm NewMaterial) (Material, error) {
	if err := svc.Validate(&nm); err != nil {
		return Material{}, err
	}
	now := core.NowFunc().UTC()
	mat := Material{
		ID:         uuid.New().String(),
		UploadDate: now,
		UpdatedAt:  now,
	}
	nm.apply(&mat)

	mat, err := svc.repo.CreateMaterial(ctx, mat)
	if err != nil {
		return Material{}, core.NewPersistenceError("creating material", err)
	}
	return mat, nil
}

func (svc *Service) Update(ctx context.Context, id string, nm NewMaterial) (Material, error) {
	if err := svc.Validate(&nm); err != nil {
		return Material{}, err
	}
	mat, err := svc.Get(ctx, id)
	if err != nil {
		return Material{}, err
	}
	nm.apply(&mat)
	mat.UpdatedAt = core.NowFunc().UTC()

	mat, err = svc.repo.UpdateMaterial(ctx, mat)
	if err != nil {
		return Material{}, svc.repoErr("updating material", id, err)
	}
	return mat, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteMaterial(ctx, id); err != nil {
		return svc.repoErr("deleting material", id, err)
	}
	return nil
}

func (svc *Service) repoErr(op, id string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return core.NewNotFoundError("material", id)
	}
	return core.NewPersistenceError(fmt.Sprintf("%s %s", op, id), err)
}

func (nm NewMaterial) apply(mat *Material) {
	mat.ModuleID = nm.ModuleID
	mat.LessonID = null.NewString(nm.LessonID, nm.LessonID != "")
	mat.Title = nm.Title
	mat.Description = nm.Description
	mat.FileURL = nm.FileURL
	mat.FileType = nm.FileType
}
