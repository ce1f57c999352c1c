package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mk3hierros/internal/models"
)

type fakeAPI struct {
	works     map[int64]models.Work
	calls     []string
	uploaded  [][]string
	deleted   []int64
	failOn    string
	failAfter int
	nextImage int64
}

func newFakeAPI(works ...models.Work) *fakeAPI {
	api := &fakeAPI{works: map[int64]models.Work{}, nextImage: 100}
	for _, w := range works {
		api.works[w.ID] = w
	}
	return api
}

func (f *fakeAPI) shouldFail(call string) bool {
	if f.failOn != call {
		return false
	}
	if f.failAfter > 0 {
		f.failAfter--
		return false
	}
	return true
}

func (f *fakeAPI) GetWork(_ context.Context, id int64) (models.Work, error) {
	f.calls = append(f.calls, "get")
	if f.shouldFail("get") {
		return models.Work{}, errors.New("network down")
	}
	w, ok := f.works[id]
	if !ok {
		return models.Work{}, errors.New("not found")
	}
	return w, nil
}

func (f *fakeAPI) DeleteImage(_ context.Context, imageID int64) error {
	f.calls = append(f.calls, "delete")
	if f.shouldFail("delete") {
		return errors.New("delete refused")
	}
	f.deleted = append(f.deleted, imageID)
	for id, w := range f.works {
		kept := w.Images[:0:0]
		for _, img := range w.Images {
			if img.ID != imageID {
				kept = append(kept, img)
			}
		}
		w.Images = kept
		f.works[id] = w
	}
	return nil
}

func (f *fakeAPI) UploadImages(_ context.Context, workID int64, paths []string) ([]models.WorkImage, error) {
	f.calls = append(f.calls, "upload")
	if f.shouldFail("upload") {
		return nil, errors.New("upload rejected")
	}
	f.uploaded = append(f.uploaded, append([]string(nil), paths...))
	w := f.works[workID]
	var out []models.WorkImage
	for _, p := range paths {
		f.nextImage++
		img := models.WorkImage{ID: f.nextImage, WorkID: workID, ImageName: p}
		w.Images = append(w.Images, img)
		out = append(out, img)
	}
	f.works[workID] = w
	return out, nil
}

func (f *fakeAPI) UpdateWork(_ context.Context, id int64, patch models.WorkPatch) (models.Work, error) {
	f.calls = append(f.calls, "update")
	if f.shouldFail("update") {
		return models.Work{}, errors.New("update failed")
	}
	w := f.works[id]
	if patch.Status != nil {
		w.Status = *patch.Status
	}
	if patch.CategoryID != nil {
		w.Category = &models.Category{ID: *patch.CategoryID}
	}
	if patch.MarketingTitle != nil {
		w.MarketingTitle = patch.MarketingTitle
	}
	if patch.MarketingDescription != nil {
		w.MarketingDescription = patch.MarketingDescription
	}
	f.works[id] = w
	return w, nil
}

func (f *fakeAPI) ImageURL(workID, imageID int64) string {
	return fmt.Sprintf("https://api.example.com/trabajo/%d/images/%d", workID, imageID)
}

func TestFinishRequestValidate(t *testing.T) {
	valid := FinishRequest{WorkID: 1, MarketingTitle: "t", MarketingDescription: "d", CategoryID: 1, Images: []string{"a.jpg"}}
	require.NoError(t, valid.Validate())

	tests := []struct {
		field  string
		mutate func(r *FinishRequest)
	}{
		{"marketingTitle", func(r *FinishRequest) { r.MarketingTitle = "   " }},
		{"marketingDescription", func(r *FinishRequest) { r.MarketingDescription = "" }},
		{"categoryId", func(r *FinishRequest) { r.CategoryID = 0 }},
		{"images", func(r *FinishRequest) { r.Images = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFinishWithoutImagesMakesNoCalls(t *testing.T) {
	api := newFakeAPI(models.Work{ID: 7, Status: models.StatusInProgress})
	f := NewFinisher(api)

	report, err := f.Finish(context.Background(), FinishRequest{
		WorkID: 7, MarketingTitle: "Portón X", MarketingDescription: "desc", CategoryID: 2,
	})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, api.calls)
	assert.Empty(t, report.Steps)
	assert.Equal(t, models.StatusInProgress, api.works[7].Status)
}

func TestFinishNewWork(t *testing.T) {
	api := newFakeAPI(models.Work{ID: 7, Status: models.StatusInProgress})
	f := NewFinisher(api)

	report, err := f.Finish(context.Background(), FinishRequest{
		WorkID:               7,
		MarketingTitle:       "Portón X",
		MarketingDescription: "desc",
		CategoryID:           2,
		Images:               []string{"a.jpg"},
	})
	require.NoError(t, err)
	assert.True(t, report.Succeeded())

	got := api.works[7]
	assert.Equal(t, models.StatusFinished, got.Status)
	require.NotNil(t, got.MarketingTitle)
	assert.Equal(t, "Portón X", *got.MarketingTitle)
	assert.Equal(t, int64(2), got.CategoryID())
	assert.Equal(t, [][]string{{"a.jpg"}}, api.uploaded)
	require.NotNil(t, report.Work)
	assert.Equal(t, models.StatusFinished, report.Work.Status)
}

func TestFinishRunsStepsInOrder(t *testing.T) {
	work := models.Work{ID: 3, Status: models.StatusInProgress, Images: []models.WorkImage{{ID: 10}, {ID: 11}, {ID: 12}}}
	api := newFakeAPI(work)
	f := NewFinisher(api)

	_, err := f.Finish(context.Background(), FinishRequest{
		WorkID:               3,
		MarketingTitle:       "Reja",
		MarketingDescription: "Reja colonial",
		CategoryID:           1,
		Images:               []string{api.ImageURL(3, 11), "/tmp/new.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"get", "delete", "delete", "upload", "update"}, api.calls)
	assert.ElementsMatch(t, []int64{10, 12}, api.deleted)
	assert.Equal(t, [][]string{{"/tmp/new.jpg"}}, api.uploaded)
}

func TestFinishKeepsImagesSelectedThroughAnyHost(t *testing.T) {
	work := models.Work{ID: 3, Status: models.StatusInProgress, Images: []models.WorkImage{{ID: 10}, {ID: 11}}}
	api := newFakeAPI(work)
	f := NewFinisher(api)

	report, err := f.Finish(context.Background(), FinishRequest{
		WorkID:               3,
		MarketingTitle:       "Reja",
		MarketingDescription: "Reja colonial",
		CategoryID:           1,
		Images: []string{
			"https://mk3hierros.com.ar/api/trabajo/3/images/10",
			"http://10.0.2.2:3000/trabajo/3/images/11",
		},
	})
	require.NoError(t, err)

	assert.Empty(t, api.deleted)
	assert.Empty(t, api.uploaded)
	assert.Equal(t, StepResult{Step: StepDeleteImages, State: StepDone}, report.Steps[1])
	assert.Equal(t, models.StatusFinished, api.works[3].Status)
}

func TestFinishIgnoresImagesOfOtherWorks(t *testing.T) {
	work := models.Work{ID: 3, Images: []models.WorkImage{{ID: 10}}}
	api := newFakeAPI(work)
	f := NewFinisher(api)

	_, err := f.Finish(context.Background(), FinishRequest{
		WorkID: 3, MarketingTitle: "t", MarketingDescription: "d", CategoryID: 1,
		Images: []string{"https://mk3hierros.com.ar/trabajo/4/images/10", "nueva.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{10}, api.deleted)
	assert.Equal(t, [][]string{{"nueva.jpg"}}, api.uploaded)
}

func TestFinishBatchesUploads(t *testing.T) {
	api := newFakeAPI(models.Work{ID: 1})
	f := NewFinisher(api)

	var paths []string
	for i := 0; i < 23; i++ {
		paths = append(paths, fmt.Sprintf("img_%d.jpg", i))
	}
	report, err := f.Finish(context.Background(), FinishRequest{
		WorkID: 1, MarketingTitle: "t", MarketingDescription: "d", CategoryID: 1, Images: paths,
	})
	require.NoError(t, err)

	require.Len(t, api.uploaded, 3)
	assert.Len(t, api.uploaded[0], 10)
	assert.Len(t, api.uploaded[1], 10)
	assert.Len(t, api.uploaded[2], 3)
	assert.Equal(t, StepResult{Step: StepUploadImages, State: StepDone, Total: 23, Completed: 23}, report.Steps[2])
}

func TestFinishReportsPartialDelete(t *testing.T) {
	work := models.Work{ID: 5, Status: models.StatusInProgress, Images: []models.WorkImage{{ID: 1}, {ID: 2}, {ID: 3}}}
	api := newFakeAPI(work)
	api.failOn = "delete"
	api.failAfter = 2
	f := NewFinisher(api)

	report, err := f.Finish(context.Background(), FinishRequest{
		WorkID: 5, MarketingTitle: "t", MarketingDescription: "d", CategoryID: 1, Images: []string{"new.jpg"},
	})

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepDeleteImages, stepErr.Step)
	assert.Equal(t, 2, stepErr.Completed)
	assert.Equal(t, 3, stepErr.Total)

	failed, ok := report.Failed()
	require.True(t, ok)
	assert.Equal(t, StepDeleteImages, failed.Step)
	assert.Equal(t, StepSkipped, report.Steps[2].State)
	assert.Equal(t, StepSkipped, report.Steps[3].State)
	assert.False(t, report.Succeeded())
	assert.Equal(t, models.StatusInProgress, api.works[5].Status, "status is untouched when an earlier step fails")
	assert.Contains(t, report.String(), "delete-images: failed (2/3)")
}

func TestFinishUpdateFailureKeepsUploadedImages(t *testing.T) {
	api := newFakeAPI(models.Work{ID: 9, Status: models.StatusQuote})
	api.failOn = "update"
	f := NewFinisher(api)

	report, err := f.Finish(context.Background(), FinishRequest{
		WorkID: 9, MarketingTitle: "t", MarketingDescription: "d", CategoryID: 4, Images: []string{"a.jpg", "b.jpg"},
	})
	require.Error(t, err)

	assert.Equal(t, StepDone, report.Steps[2].State)
	assert.Equal(t, 2, report.Steps[2].Completed)
	assert.Equal(t, StepFailed, report.Steps[3].State)
	assert.Len(t, api.works[9].Images, 2)
	assert.Equal(t, models.StatusQuote, api.works[9].Status)
}

func TestFinishLoadFailure(t *testing.T) {
	api := newFakeAPI(models.Work{ID: 2})
	api.failOn = "get"
	f := NewFinisher(api)

	report, err := f.Finish(context.Background(), FinishRequest{
		WorkID: 2, MarketingTitle: "t", MarketingDescription: "d", CategoryID: 1, Images: []string{"a.jpg"},
	})
	require.Error(t, err)
	require.Len(t, report.Steps, 4)
	assert.Equal(t, StepFailed, report.Steps[0].State)
	assert.Equal(t, []string{"get"}, api.calls)
}
