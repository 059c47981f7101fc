package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type controlDocument struct {
	ID                     string    `firestore:"id"`
	FrameworkID            string    `firestore:"framework_id"`
	Code                   string    `firestore:"code"`
	Title                  string    `firestore:"title"`
	Description            string    `firestore:"description"`
	Domain                 string    `firestore:"domain"`
	Subcategory            string    `firestore:"subcategory"`
	ControlType            string    `firestore:"control_type"`
	Guidance               string    `firestore:"guidance"`
	ImplementationGuidance string    `firestore:"implementation_guidance"`
	ReferenceLinks         []string  `firestore:"reference_links"`
	SecurityFunction       string    `firestore:"security_function"`
	CreatedAt              time.Time `firestore:"created_at"`
	UpdatedAt              time.Time `firestore:"updated_at"`
}

func newControlDocument(c *model.Control) *controlDocument {
	return &controlDocument{
		ID:                     string(c.ID),
		FrameworkID:            string(c.FrameworkID),
		Code:                   c.Code,
		Title:                  c.Title,
		Description:            c.Description,
		Domain:                 c.Domain,
		Subcategory:            c.Subcategory,
		ControlType:            c.ControlType,
		Guidance:               c.Guidance,
		ImplementationGuidance: c.ImplementationGuidance,
		ReferenceLinks:         c.ReferenceLinks,
		SecurityFunction:       c.SecurityFunction,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

func (d *controlDocument) toModel() *model.Control {
	return &model.Control{
		ID:                     model.ControlID(d.ID),
		FrameworkID:            model.FrameworkID(d.FrameworkID),
		Code:                   d.Code,
		Title:                  d.Title,
		Description:            d.Description,
		Domain:                 d.Domain,
		Subcategory:            d.Subcategory,
		ControlType:            d.ControlType,
		Guidance:               d.Guidance,
		ImplementationGuidance: d.ImplementationGuidance,
		ReferenceLinks:         d.ReferenceLinks,
		SecurityFunction:       d.SecurityFunction,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

type controlRepository struct {
	client *firestore.Client
	prefix string
}

func (r *controlRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.prefix, CollectionControls))
}

func (r *controlRepository) SaveMany(ctx context.Context, frameworkID model.FrameworkID, controls []*model.Control) error {
	if len(controls) == 0 {
		return nil
	}

	now := time.Now().UTC()
	bulkWriter := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(controls))

	for _, c := range controls {
		saved := c.Copy()
		if saved.ID == "" {
			saved.ID = model.NewControlID()
		}
		saved.FrameworkID = frameworkID
		if saved.CreatedAt.IsZero() {
			saved.CreatedAt = now
		}
		saved.UpdatedAt = now

		job, err := bulkWriter.Set(r.collection().Doc(string(saved.ID)), newControlDocument(saved))
		if err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to enqueue control",
				goerr.V(model.FrameworkIDKey, frameworkID), goerr.V(model.ControlIDKey, saved.ID))
		}
		jobs = append(jobs, job)
	}
	bulkWriter.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to save control", goerr.V(model.FrameworkIDKey, frameworkID))
		}
	}
	return nil
}

func (r *controlRepository) Get(ctx context.Context, id model.ControlID) (*model.Control, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "control not found", goerr.V(model.ControlIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get control", goerr.V(model.ControlIDKey, id))
	}

	var controlDoc controlDocument
	if err := doc.DataTo(&controlDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal control", goerr.V(model.ControlIDKey, id))
	}
	return controlDoc.toModel(), nil
}

func (r *controlRepository) ListByFramework(ctx context.Context, frameworkID model.FrameworkID) ([]*model.Control, error) {
	iter := r.collection().
		Where("framework_id", "==", string(frameworkID)).
		OrderBy("code", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var controls []*model.Control
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate controls", goerr.V(model.FrameworkIDKey, frameworkID))
		}

		var controlDoc controlDocument
		if err := doc.DataTo(&controlDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal control", goerr.V("docID", doc.Ref.ID))
		}
		controls = append(controls, controlDoc.toModel())
	}

	return controls, nil
}

func (r *controlRepository) DeleteByFramework(ctx context.Context, frameworkID model.FrameworkID) (int, error) {
	iter := r.collection().Where("framework_id", "==", string(frameworkID)).Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate controls for deletion", goerr.V(model.FrameworkIDKey, frameworkID))
		}
		refs = append(refs, doc.Ref)
	}

	deleted, err := bulkDelete(ctx, r.client, refs)
	if err != nil {
		return deleted, goerr.Wrap(err, "failed to delete controls", goerr.V(model.FrameworkIDKey, frameworkID))
	}
	return deleted, nil
}

func (r *controlRepository) DeleteMany(ctx context.Context, ids []model.ControlID) (int, error) {
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.collection().Doc(string(id)))
	}

	deleted, err := bulkDelete(ctx, r.client, refs)
	if err != nil {
		return deleted, goerr.Wrap(err, "failed to delete controls", goerr.V("count", len(ids)))
	}
	return deleted, nil
}
