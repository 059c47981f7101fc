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

type bandDocument struct {
	Label       string `firestore:"label"`
	Color       string `firestore:"color"`
	MinScore    int    `firestore:"min_score"`
	MaxScore    int    `firestore:"max_score"`
	Description string `firestore:"description"`
}

// appetiteDocument stores bands as an array to keep their authored order
type appetiteDocument struct {
	ID          string         `firestore:"id"`
	Name        string         `firestore:"name"`
	Bands       []bandDocument `firestore:"bands"`
	Tolerance   int            `firestore:"tolerance"`
	Description string         `firestore:"description"`
	UpdatedAt   time.Time      `firestore:"updated_at"`
}

func newAppetiteDocument(a *model.RiskAppetite) *appetiteDocument {
	bands := make([]bandDocument, len(a.Bands))
	for i, b := range a.Bands {
		bands[i] = bandDocument(b)
	}
	return &appetiteDocument{
		ID:          string(a.ID),
		Name:        a.Name,
		Bands:       bands,
		Tolerance:   a.Tolerance,
		Description: a.Description,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (d *appetiteDocument) toModel() *model.RiskAppetite {
	bands := make([]model.Band, len(d.Bands))
	for i, b := range d.Bands {
		bands[i] = model.Band(b)
	}
	return &model.RiskAppetite{
		ID:          model.AppetiteID(d.ID),
		Name:        d.Name,
		Bands:       bands,
		Tolerance:   d.Tolerance,
		Description: d.Description,
		UpdatedAt:   d.UpdatedAt,
	}
}

type appetiteRepository struct {
	client *firestore.Client
	prefix string
}

func (r *appetiteRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.prefix, CollectionAppetites))
}

func (r *appetiteRepository) Put(ctx context.Context, appetite *model.RiskAppetite) error {
	saved := appetite.Copy()
	saved.UpdatedAt = time.Now().UTC()

	if _, err := r.collection().Doc(string(saved.ID)).Set(ctx, newAppetiteDocument(saved)); err != nil {
		return goerr.Wrap(err, "failed to put appetite", goerr.V(model.AppetiteIDKey, appetite.ID))
	}
	return nil
}

func (r *appetiteRepository) Get(ctx context.Context, id model.AppetiteID) (*model.RiskAppetite, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "appetite not found", goerr.V(model.AppetiteIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get appetite", goerr.V(model.AppetiteIDKey, id))
	}

	var appetiteDoc appetiteDocument
	if err := doc.DataTo(&appetiteDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal appetite", goerr.V(model.AppetiteIDKey, id))
	}
	return appetiteDoc.toModel(), nil
}

func (r *appetiteRepository) List(ctx context.Context) ([]*model.RiskAppetite, error) {
	iter := r.collection().OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var appetites []*model.RiskAppetite
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate appetites")
		}

		var appetiteDoc appetiteDocument
		if err := doc.DataTo(&appetiteDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal appetite", goerr.V("docID", doc.Ref.ID))
		}
		appetites = append(appetites, appetiteDoc.toModel())
	}

	return appetites, nil
}

func (r *appetiteRepository) Delete(ctx context.Context, id model.AppetiteID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "appetite not found", goerr.V(model.AppetiteIDKey, id))
		}
		return goerr.Wrap(err, "failed to get appetite", goerr.V(model.AppetiteIDKey, id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete appetite", goerr.V(model.AppetiteIDKey, id))
	}
	return nil
}
