package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mk3hierros/internal/models"
)

// MaxImagesPerUpload mirrors the server limit on files per upload request.
const MaxImagesPerUpload = 10

// WorkAPI is the subset of the API the finish pipeline talks to.
type WorkAPI interface {
	GetWork(ctx context.Context, id int64) (models.Work, error)
	DeleteImage(ctx context.Context, imageID int64) error
	UploadImages(ctx context.Context, workID int64, paths []string) ([]models.WorkImage, error)
	UpdateWork(ctx context.Context, id int64, patch models.WorkPatch) (models.Work, error)
}

// FinishRequest carries what staff enter when closing a work. Images holds the
// final selection: URLs of images already on the server and local file paths
// of new ones.
type FinishRequest struct {
	WorkID               int64
	MarketingTitle       string
	MarketingDescription string
	CategoryID           int64
	Images               []string
}

// ValidationError names the first FinishRequest field that failed the gate.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate is the gate run before any network call.
func (r FinishRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.MarketingTitle) == "":
		return &ValidationError{Field: "marketingTitle", Message: "el título para web es obligatorio"}
	case strings.TrimSpace(r.MarketingDescription) == "":
		return &ValidationError{Field: "marketingDescription", Message: "la descripción para web es obligatoria"}
	case r.CategoryID == 0:
		return &ValidationError{Field: "categoryId", Message: "debes seleccionar una categoría"}
	case len(r.Images) == 0:
		return &ValidationError{Field: "images", Message: "debes agregar al menos una imagen"}
	}
	return nil
}

// Step names one stage of the finish pipeline.
type Step string

const (
	StepLoadWork     Step = "load-work"
	StepDeleteImages Step = "delete-images"
	StepUploadImages Step = "upload-images"
	StepUpdateWork   Step = "update-work"
)

// StepState is how a step ended.
type StepState string

const (
	StepDone    StepState = "done"
	StepFailed  StepState = "failed"
	StepSkipped StepState = "skipped"
)

// StepResult records how far a step got. Total and Completed count images for
// the image steps and are 1/0 or 1/1 for the others.
type StepResult struct {
	Step      Step
	State     StepState
	Total     int
	Completed int
	Err       error
}

func (r StepResult) String() string {
	line := fmt.Sprintf("%s: %s (%d/%d)", r.Step, r.State, r.Completed, r.Total)
	if r.Err != nil {
		line += ": " + r.Err.Error()
	}
	return line
}

// FinishReport lists every step of one Finish call in order, including the
// ones skipped after a failure. Work is set only when all steps succeeded.
type FinishReport struct {
	WorkID int64
	Steps  []StepResult
	Work   *models.Work
}

// Succeeded reports whether every step ran to completion.
func (r FinishReport) Succeeded() bool {
	if len(r.Steps) == 0 {
		return false
	}
	for _, s := range r.Steps {
		if s.State != StepDone {
			return false
		}
	}
	return true
}

// Failed returns the step that stopped the pipeline, if any.
func (r FinishReport) Failed() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.State == StepFailed {
			return s, true
		}
	}
	return StepResult{}, false
}

func (r FinishReport) String() string {
	lines := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}

// StepError is returned by Finish when a step fails. Earlier steps are not
// rolled back; the report says exactly what was applied.
type StepError struct {
	Step      Step
	Completed int
	Total     int
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed after %d of %d: %v", e.Step, e.Completed, e.Total, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Finisher runs the finish pipeline against a WorkAPI.
type Finisher struct {
	api WorkAPI
}

// NewFinisher returns a Finisher that talks to api.
func NewFinisher(api WorkAPI) *Finisher {
	return &Finisher{api: api}
}

// Finish deletes the server images dropped from the selection, uploads the
// new local ones and finally writes the marketing fields with status
// Finalizado. It stops at the first failing step.
func (f *Finisher) Finish(ctx context.Context, req FinishRequest) (FinishReport, error) {
	report := FinishReport{WorkID: req.WorkID}
	if err := req.Validate(); err != nil {
		return report, err
	}

	steps := []Step{StepLoadWork, StepDeleteImages, StepUploadImages, StepUpdateWork}
	skipRest := func(from int) {
		for _, s := range steps[from:] {
			report.Steps = append(report.Steps, StepResult{Step: s, State: StepSkipped})
		}
	}
	fail := func(idx int, res StepResult, err error) (FinishReport, error) {
		res.State = StepFailed
		res.Err = err
		report.Steps = append(report.Steps, res)
		skipRest(idx + 1)
		return report, &StepError{Step: res.Step, Completed: res.Completed, Total: res.Total, Err: err}
	}

	work, err := f.api.GetWork(ctx, req.WorkID)
	if err != nil {
		return fail(0, StepResult{Step: StepLoadWork, Total: 1}, err)
	}
	report.Steps = append(report.Steps, StepResult{Step: StepLoadWork, State: StepDone, Total: 1, Completed: 1})

	toDelete, toUpload := f.plan(work, req.Images)

	deleted := StepResult{Step: StepDeleteImages, Total: len(toDelete)}
	for _, img := range toDelete {
		if err := f.api.DeleteImage(ctx, img.ID); err != nil {
			return fail(1, deleted, fmt.Errorf("delete image %d: %w", img.ID, err))
		}
		deleted.Completed++
	}
	deleted.State = StepDone
	report.Steps = append(report.Steps, deleted)

	uploaded := StepResult{Step: StepUploadImages, Total: len(toUpload)}
	for start := 0; start < len(toUpload); start += MaxImagesPerUpload {
		end := min(start+MaxImagesPerUpload, len(toUpload))
		if _, err := f.api.UploadImages(ctx, req.WorkID, toUpload[start:end]); err != nil {
			return fail(2, uploaded, err)
		}
		uploaded.Completed = end
	}
	uploaded.State = StepDone
	report.Steps = append(report.Steps, uploaded)

	finished := models.StatusFinished
	categoryID := req.CategoryID
	title := req.MarketingTitle
	description := req.MarketingDescription
	updatedWork, err := f.api.UpdateWork(ctx, req.WorkID, models.WorkPatch{
		Status:               &finished,
		CategoryID:           &categoryID,
		MarketingTitle:       &title,
		MarketingDescription: &description,
	})
	if err != nil {
		return fail(3, StepResult{Step: StepUpdateWork, Total: 1}, err)
	}
	report.Steps = append(report.Steps, StepResult{Step: StepUpdateWork, State: StepDone, Total: 1, Completed: 1})
	report.Work = &updatedWork

	return report, nil
}

// plan splits the selection into server images to delete and local files to
// upload. Anything starting with http:// or https:// refers to the server and
// is matched by the ids in its path, so the host it was copied from does not
// matter. Remote entries of other works keep nothing.
func (f *Finisher) plan(work models.Work, selection []string) ([]models.WorkImage, []string) {
	selected := make(map[int64]struct{}, len(selection))
	var uploads []string
	for _, entry := range selection {
		if !isRemote(entry) {
			uploads = append(uploads, entry)
			continue
		}
		if workID, imageID, ok := models.ParseImageURL(entry); ok && workID == work.ID {
			selected[imageID] = struct{}{}
		}
	}

	var deletes []models.WorkImage
	for _, img := range work.Images {
		if _, keep := selected[img.ID]; !keep {
			deletes = append(deletes, img)
		}
	}
	return deletes, uploads
}

func isRemote(entry string) bool {
	return strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://")
}

// IsValidation reports whether err came from the finish gate.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
