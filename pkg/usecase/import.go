package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/service/blob"
	"github.com/secmon-lab/cottus/pkg/service/mapping"
	"github.com/secmon-lab/cottus/pkg/service/spreadsheet"
	"github.com/secmon-lab/cottus/pkg/utils/async"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
	"github.com/secmon-lab/cottus/pkg/utils/safe"
)

// previewSampleRows is the number of data rows returned by Preview
const previewSampleRows = 5

// ImportUseCase manages frameworks and imports their controls from spreadsheets
type ImportUseCase struct {
	repo      interfaces.Repository
	blobStore interfaces.BlobStore
	notifier  interfaces.Notifier
	assistant interfaces.MappingAssistant
}

func NewImportUseCase(repo interfaces.Repository, blobStore interfaces.BlobStore, notifier interfaces.Notifier, assistant interfaces.MappingAssistant) *ImportUseCase {
	return &ImportUseCase{
		repo:      repo,
		blobStore: blobStore,
		notifier:  notifier,
		assistant: assistant,
	}
}

func (uc *ImportUseCase) CreateFramework(ctx context.Context, framework *model.Framework) (*model.Framework, error) {
	if framework.Name == "" {
		return nil, goerr.Wrap(model.ErrMissingRequired, "framework name is required")
	}

	created, err := uc.repo.Framework().Create(ctx, &model.Framework{
		Name:        framework.Name,
		Version:     framework.Version,
		Description: framework.Description,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create framework")
	}
	return created, nil
}

func (uc *ImportUseCase) GetFramework(ctx context.Context, id model.FrameworkID) (*model.Framework, error) {
	fw, err := uc.repo.Framework().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrFrameworkNotFound, "framework not found", goerr.V(model.FrameworkIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get framework", goerr.V(model.FrameworkIDKey, id))
	}
	return fw, nil
}

func (uc *ImportUseCase) ListFrameworks(ctx context.Context) ([]*model.Framework, error) {
	frameworks, err := uc.repo.Framework().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list frameworks")
	}
	return frameworks, nil
}

// DeleteFramework removes the framework, its controls and the implementation
// records that refer to those controls
func (uc *ImportUseCase) DeleteFramework(ctx context.Context, id model.FrameworkID) error {
	if _, err := uc.GetFramework(ctx, id); err != nil {
		return err
	}

	controls, err := uc.repo.Control().ListByFramework(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to list controls", goerr.V(model.FrameworkIDKey, id))
	}
	if _, err := uc.deleteControls(ctx, controlIDs(controls)); err != nil {
		return goerr.Wrap(err, "failed to delete controls", goerr.V(model.FrameworkIDKey, id))
	}
	if err := uc.repo.Framework().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete framework", goerr.V(model.FrameworkIDKey, id))
	}
	return nil
}

// deleteControls removes implementation records of ids first, then the controls,
// so no record is left pointing at a missing control
func (uc *ImportUseCase) deleteControls(ctx context.Context, ids []model.ControlID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := uc.repo.ControlImplementation().DeleteByControls(ctx, ids); err != nil {
		return 0, goerr.Wrap(err, "failed to delete control implementations")
	}
	deleted, err := uc.repo.Control().DeleteMany(ctx, ids)
	if err != nil {
		return deleted, goerr.Wrap(err, "failed to delete controls")
	}
	return deleted, nil
}

func controlIDs(controls []*model.Control) []model.ControlID {
	ids := make([]model.ControlID, 0, len(controls))
	for _, c := range controls {
		ids = append(ids, c.ID)
	}
	return ids
}

func (uc *ImportUseCase) ListControls(ctx context.Context, frameworkID model.FrameworkID) ([]*model.Control, error) {
	if _, err := uc.GetFramework(ctx, frameworkID); err != nil {
		return nil, err
	}
	controls, err := uc.repo.Control().ListByFramework(ctx, frameworkID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list controls", goerr.V(model.FrameworkIDKey, frameworkID))
	}
	return controls, nil
}

// Upload stores a framework source file and returns its storage key
func (uc *ImportUseCase) Upload(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if uc.blobStore == nil {
		return "", goerr.Wrap(ErrBlobStoreNotConfigured, "cannot upload file")
	}

	contentType := spreadsheet.ContentType(fileName)
	if contentType == "" {
		return "", goerr.Wrap(spreadsheet.ErrUnsupportedFormat, "cannot upload file", goerr.V(FileNameKey, fileName))
	}

	key := blob.NewKey(fileName)
	if err := uc.blobStore.Put(ctx, key, r, contentType); err != nil {
		return "", goerr.Wrap(err, "failed to store uploaded file", goerr.V(FileNameKey, fileName))
	}

	logging.From(ctx).Info("framework source uploaded", "file_name", fileName, "storage_key", key)
	return key, nil
}

// ImportPreview describes an uploaded file before it is imported
type ImportPreview struct {
	StorageKey string
	Columns    []string
	SampleRows [][]string
	RowCount   int
	Mappings   []model.ColumnMapping
}

// Preview parses an uploaded file and suggests column mappings
func (uc *ImportUseCase) Preview(ctx context.Context, storageKey string) (*ImportPreview, error) {
	sheet, err := uc.load(ctx, storageKey)
	if err != nil {
		return nil, err
	}

	mappings := mapping.SuggestMappings(sheet.Header)
	if uc.assistant != nil {
		mappings = uc.assistant.Augment(ctx, mappings, sheet.Header, sheet.Sample(previewSampleRows))
	}

	return &ImportPreview{
		StorageKey: storageKey,
		Columns:    sheet.Header,
		SampleRows: sheet.Sample(previewSampleRows),
		RowCount:   len(sheet.Rows),
		Mappings:   mappings,
	}, nil
}

// ImportInput selects the uploaded file, the target framework and the confirmed mappings
type ImportInput struct {
	FrameworkID model.FrameworkID
	StorageKey  string
	Mappings    []model.ColumnMapping
	// Replace removes the previous controls of the framework once the new ones are saved
	Replace bool
	// DryRun builds controls without writing them
	DryRun bool
}

// ImportResult summarizes an import
type ImportResult struct {
	FrameworkID      model.FrameworkID
	Imported         int
	Skipped          int
	Replaced         int
	DuplicateTargets []types.TargetField
	Controls         []*model.Control
}

// Import turns every row of the uploaded file into a control. It fails with
// mapping.ErrTitleNotMapped before reading or writing anything when no column
// targets title. Rows without a title are skipped.
func (uc *ImportUseCase) Import(ctx context.Context, input ImportInput) (*ImportResult, error) {
	if err := mapping.RequireTitle(input.Mappings); err != nil {
		return nil, goerr.Wrap(err, "cannot import", goerr.V(model.FrameworkIDKey, input.FrameworkID))
	}

	fw, err := uc.GetFramework(ctx, input.FrameworkID)
	if err != nil {
		return nil, err
	}

	sheet, err := uc.load(ctx, input.StorageKey)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		FrameworkID:      fw.ID,
		DuplicateTargets: mapping.DuplicateTargets(input.Mappings),
	}
	for _, row := range sheet.Rows {
		values := mapping.Apply(input.Mappings, sheet.Header, row)
		control, ok := mapping.BuildControl(fw.ID, values)
		if !ok {
			result.Skipped++
			continue
		}
		result.Controls = append(result.Controls, control)
	}
	result.Imported = len(result.Controls)

	logger := logging.From(ctx).With("framework_id", fw.ID, "storage_key", input.StorageKey)
	if len(result.DuplicateTargets) > 0 {
		logger.Warn("several columns map to the same field, the rightmost mapping wins",
			"targets", result.DuplicateTargets)
	}
	if input.DryRun {
		logger.Info("dry run import", "controls", result.Imported, "skipped", result.Skipped)
		return result, nil
	}

	// Existing controls are removed only after the new ones are stored, so a failed
	// save leaves the framework as it was.
	var previous []model.ControlID
	if input.Replace {
		existing, err := uc.repo.Control().ListByFramework(ctx, fw.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list existing controls", goerr.V(model.FrameworkIDKey, fw.ID))
		}
		previous = controlIDs(existing)
	}

	if err := uc.repo.Control().SaveMany(ctx, fw.ID, result.Controls); err != nil {
		if _, rbErr := uc.repo.Control().DeleteMany(ctx, controlIDs(result.Controls)); rbErr != nil {
			logger.Error("failed to roll back partially saved controls", "error", rbErr)
		}
		return nil, goerr.Wrap(err, "failed to save controls",
			goerr.V(model.FrameworkIDKey, fw.ID), goerr.V("count", len(result.Controls)))
	}

	if input.Replace {
		replaced, err := uc.deleteControls(ctx, previous)
		if err != nil {
			return nil, goerr.Wrap(err, "new controls were saved but replaced controls could not all be removed",
				goerr.V(model.FrameworkIDKey, fw.ID), goerr.V("removed", replaced))
		}
		result.Replaced = replaced
	}

	logger.Info("framework controls imported",
		"imported", result.Imported, "skipped", result.Skipped, "replaced", result.Replaced)
	uc.notifyImported(ctx, fw, result)

	return result, nil
}

// notifyImported sends the import summary without blocking the caller
func (uc *ImportUseCase) notifyImported(ctx context.Context, fw *model.Framework, result *ImportResult) {
	if uc.notifier == nil {
		return
	}

	name := fw.Name
	if fw.Version != "" {
		name += " " + fw.Version
	}

	n := &model.Notification{
		Title: "Framework imported: " + name,
		Body:  fmt.Sprintf("%d controls imported into *%s*.", result.Imported, name),
		Fields: map[string]string{
			"Imported": strconv.Itoa(result.Imported),
			"Skipped":  strconv.Itoa(result.Skipped),
			"Replaced": strconv.Itoa(result.Replaced),
		},
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := uc.notifier.Notify(ctx, n); err != nil {
			return goerr.Wrap(err, "failed to send import notification", goerr.V(model.FrameworkIDKey, fw.ID))
		}
		return nil
	})
}

func (uc *ImportUseCase) load(ctx context.Context, storageKey string) (*spreadsheet.Sheet, error) {
	if uc.blobStore == nil {
		return nil, goerr.Wrap(ErrBlobStoreNotConfigured, "cannot read uploaded file")
	}

	r, err := uc.blobStore.Get(ctx, storageKey)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return nil, goerr.Wrap(ErrObjectNotFound, "uploaded file not found", goerr.V(StorageKeyKey, storageKey))
		}
		return nil, goerr.Wrap(err, "failed to open uploaded file", goerr.V(StorageKeyKey, storageKey))
	}
	defer safe.Close(ctx, r)

	sheet, err := spreadsheet.Parse(storageKey, r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse uploaded file", goerr.V(StorageKeyKey, storageKey))
	}
	return sheet, nil
}
