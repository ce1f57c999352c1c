package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mk3hierros/internal/config"
	"mk3hierros/internal/models"
	"mk3hierros/internal/repository"
	"mk3hierros/internal/testutil"
)

func newWorkService(t *testing.T) (*WorkService, *testutil.MemoryDB) {
	t.Helper()
	db := testutil.NewMemoryDB()
	return NewWorkService(db.Works(), db.Images(), nil, zerolog.Nop()), db
}

func TestCreateWorkDefaults(t *testing.T) {
	svc, _ := newWorkService(t)

	work, err := svc.Create(context.Background(), models.WorkInput{Title: "Portón corredizo", Price: 1500})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, work.Status)
	assert.Equal(t, models.PriorityMedium, work.Priority)
	assert.Nil(t, work.Category)
	assert.NotZero(t, work.ID)
	assert.NotNil(t, work.Images)
}

func TestCreateWorkRejectsUnknownEnums(t *testing.T) {
	svc, _ := newWorkService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.WorkInput{Title: "x", Priority: "Urgente"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, models.WorkInput{Title: "x", Status: "Entregado"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, models.WorkInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := int64(77)
	_, err = svc.Create(ctx, models.WorkInput{Title: "x", CategoryID: &missing})
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)
}

func TestUpdateWritesAnyStatus(t *testing.T) {
	svc, _ := newWorkService(t)
	ctx := context.Background()

	work, err := svc.Create(ctx, models.WorkInput{Title: "Reja", Status: string(models.StatusFinished)})
	require.NoError(t, err)

	for _, status := range []models.Status{models.StatusQuote, models.StatusCanceled, models.StatusFinished, models.StatusInProgress} {
		updated, err := svc.Update(ctx, work.ID, models.WorkPatch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	bogus := models.Status("Archivado")
	_, err = svc.Update(ctx, work.ID, models.WorkPatch{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badPriority := models.Priority("Urgente")
	_, err = svc.Update(ctx, work.ID, models.WorkPatch{Priority: &badPriority})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, 999, models.WorkPatch{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput, "validation runs before the lookup")

	status := models.StatusQuote
	_, err = svc.Update(ctx, 999, models.WorkPatch{Status: &status})
	assert.ErrorIs(t, err, repository.ErrWorkNotFound)
}

func TestListFilters(t *testing.T) {
	svc, db := newWorkService(t)
	ctx := context.Background()
	cat, err := db.Categories().Create(ctx, "Portones")
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.WorkInput{Title: "a", Status: string(models.StatusFinished), CategoryID: &cat.ID, Priority: "Alta"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.WorkInput{Title: "b", Status: string(models.StatusFinished)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.WorkInput{Title: "c", CategoryID: &cat.ID})
	require.NoError(t, err)

	finished, err := svc.ListFinished(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, finished, 2)

	finishedInCategory, err := svc.ListFinished(ctx, &cat.ID)
	require.NoError(t, err)
	require.Len(t, finishedInCategory, 1)
	assert.Equal(t, "a", finishedInCategory[0].Title)

	byCategory, err := svc.ListByCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byPriority, err := svc.ListByPriority(ctx, "Alta")
	require.NoError(t, err)
	assert.Len(t, byPriority, 1)

	_, err = svc.ListByPriority(ctx, "alta")
	assert.ErrorIs(t, err, ErrInvalidInput)

	byStatus, err := svc.ListByStatus(ctx, string(models.StatusPendingApproval))
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "c", byStatus[0].Title)
}

func TestListAttachesImages(t *testing.T) {
	db := testutil.NewMemoryDB()
	works := NewWorkService(db.Works(), db.Images(), nil, zerolog.Nop())
	images := NewImageService(db.Works(), db.Images(), nil, config.UploadConfig{MaxFiles: 10, MaxFileBytes: 1 << 20}, zerolog.Nop())
	ctx := context.Background()

	withImages, err := works.Create(ctx, models.WorkInput{Title: "con fotos"})
	require.NoError(t, err)
	_, err = works.Create(ctx, models.WorkInput{Title: "sin fotos"})
	require.NoError(t, err)

	_, err = images.Upload(ctx, withImages.ID, []UploadFile{
		{Name: "a.jpg", MIMEType: "image/jpeg", Size: 4, Content: strings.NewReader("\xff\xd8\xff\xe0")},
	})
	require.NoError(t, err)

	all, err := works.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Len(t, all[0].Images, 1)
	assert.NotNil(t, all[1].Images)
	assert.Empty(t, all[1].Images)
}

func TestDeleteWorkRemovesObjects(t *testing.T) {
	db := testutil.NewMemoryDB()
	blobs := testutil.NewMemoryBlobs()
	works := NewWorkService(db.Works(), db.Images(), blobs, zerolog.Nop())
	images := NewImageService(db.Works(), db.Images(), blobs, config.UploadConfig{MaxFiles: 10, MaxFileBytes: 1 << 20}, zerolog.Nop())
	ctx := context.Background()

	work, err := works.Create(ctx, models.WorkInput{Title: "Puerta"})
	require.NoError(t, err)
	_, err = images.Upload(ctx, work.ID, []UploadFile{
		{Name: "a.png", MIMEType: "image/png", Size: 8, Content: strings.NewReader("\x89PNG\r\n\x1a\n")},
		{Name: "b.png", MIMEType: "image/png", Size: 8, Content: strings.NewReader("\x89PNG\r\n\x1a\n")},
	})
	require.NoError(t, err)
	require.Len(t, blobs.Keys(), 2)

	require.NoError(t, works.Delete(ctx, work.ID))
	assert.Empty(t, blobs.Keys())
	assert.Zero(t, db.ImageCount())

	assert.ErrorIs(t, works.Delete(ctx, work.ID), repository.ErrWorkNotFound)
}
