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

type frameworkDocument struct {
	ID          string    `firestore:"id"`
	Name        string    `firestore:"name"`
	Version     string    `firestore:"version"`
	Description string    `firestore:"description"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func (d *frameworkDocument) toModel() *model.Framework {
	return &model.Framework{
		ID:          model.FrameworkID(d.ID),
		Name:        d.Name,
		Version:     d.Version,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type frameworkRepository struct {
	client *firestore.Client
	prefix string
}

func (r *frameworkRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.prefix, CollectionFrameworks))
}

func (r *frameworkRepository) Create(ctx context.Context, framework *model.Framework) (*model.Framework, error) {
	id := framework.ID
	if id == "" {
		id = model.NewFrameworkID()
	}
	now := time.Now().UTC()
	doc := &frameworkDocument{
		ID:          string(id),
		Name:        framework.Name,
		Version:     framework.Version,
		Description: framework.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.collection().Doc(doc.ID).Create(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create framework", goerr.V(model.FrameworkIDKey, id))
	}
	return doc.toModel(), nil
}

func (r *frameworkRepository) Get(ctx context.Context, id model.FrameworkID) (*model.Framework, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "framework not found", goerr.V(model.FrameworkIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get framework", goerr.V(model.FrameworkIDKey, id))
	}

	var fwDoc frameworkDocument
	if err := doc.DataTo(&fwDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal framework", goerr.V(model.FrameworkIDKey, id))
	}
	return fwDoc.toModel(), nil
}

func (r *frameworkRepository) List(ctx context.Context) ([]*model.Framework, error) {
	iter := r.collection().OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var frameworks []*model.Framework
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate frameworks")
		}

		var fwDoc frameworkDocument
		if err := doc.DataTo(&fwDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal framework", goerr.V("docID", doc.Ref.ID))
		}
		frameworks = append(frameworks, fwDoc.toModel())
	}

	return frameworks, nil
}

func (r *frameworkRepository) Delete(ctx context.Context, id model.FrameworkID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "framework not found", goerr.V(model.FrameworkIDKey, id))
		}
		return goerr.Wrap(err, "failed to get framework", goerr.V(model.FrameworkIDKey, id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete framework", goerr.V(model.FrameworkIDKey, id))
	}
	return nil
}
