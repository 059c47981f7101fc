package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type riskDocument struct {
	ID                 string    `firestore:"id"`
	Title              string    `firestore:"title"`
	Description        string    `firestore:"description"`
	CategoryID         string    `firestore:"category_id"`
	Owner              string    `firestore:"owner"`
	InherentSeverity   string    `firestore:"inherent_severity"`
	InherentLikelihood string    `firestore:"inherent_likelihood"`
	Treatment          string    `firestore:"treatment"`
	AppetiteID         string    `firestore:"appetite_id"`
	CreatedAt          time.Time `firestore:"created_at"`
	UpdatedAt          time.Time `firestore:"updated_at"`
}

func newRiskDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		ID:                 r.ID.String(),
		Title:              r.Title,
		Description:        r.Description,
		CategoryID:         string(r.CategoryID),
		Owner:              r.Owner,
		InherentSeverity:   string(r.InherentSeverity),
		InherentLikelihood: string(r.InherentLikelihood),
		Treatment:          string(r.Treatment),
		AppetiteID:         string(r.AppetiteID),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (d *riskDocument) toModel() *model.Risk {
	return &model.Risk{
		ID:                 model.RiskID(d.ID),
		Title:              d.Title,
		Description:        d.Description,
		CategoryID:         types.CategoryID(d.CategoryID),
		Owner:              d.Owner,
		InherentSeverity:   types.Severity(d.InherentSeverity),
		InherentLikelihood: types.Likelihood(d.InherentLikelihood),
		Treatment:          types.TreatmentStrategy(d.Treatment),
		AppetiteID:         model.AppetiteID(d.AppetiteID),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type riskRepository struct {
	client *firestore.Client
	prefix string
}

func (r *riskRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.prefix, CollectionRisks))
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	created := risk.Copy()
	if created.ID == "" {
		created.ID = model.NewRiskID()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection().Doc(created.ID.String()).Create(ctx, newRiskDocument(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V(model.RiskIDKey, created.ID))
	}
	return created, nil
}

func (r *riskRepository) Get(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, id))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V(model.RiskIDKey, id))
	}
	return riskDoc.toModel(), nil
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	iter := r.collection().OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var risks []*model.Risk
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("docID", doc.Ref.ID))
		}
		risks = append(risks, riskDoc.toModel())
	}

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	docRef := r.collection().Doc(risk.ID.String())
	updated := risk.Copy()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, risk.ID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, risk.ID))
		}

		var existing riskDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal risk", goerr.V(model.RiskIDKey, risk.ID))
		}

		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, newRiskDocument(updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(model.RiskIDKey, risk.ID))
	}

	return updated, nil
}

func (r *riskRepository) Delete(ctx context.Context, id model.RiskID) error {
	docRef := r.collection().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "risk not found", goerr.V(model.RiskIDKey, id))
		}
		return goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V(model.RiskIDKey, id))
	}
	return nil
}
