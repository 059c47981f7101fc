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

type controlImplementationDocument struct {
	RiskID                string    `firestore:"risk_id"`
	ControlID             string    `firestore:"control_id"`
	Status                string    `firestore:"status"`
	EffectivenessEstimate *int      `firestore:"effectiveness_estimate"`
	Notes                 string    `firestore:"notes"`
	UpdatedAt             time.Time `firestore:"updated_at"`
}

func (d *controlImplementationDocument) toModel() *model.ControlImplementation {
	return &model.ControlImplementation{
		RiskID:                model.RiskID(d.RiskID),
		ControlID:             model.ControlID(d.ControlID),
		Status:                types.ImplementationStatus(d.Status),
		EffectivenessEstimate: d.EffectivenessEstimate,
		Notes:                 d.Notes,
		UpdatedAt:             d.UpdatedAt,
	}
}

type controlImplementationRepository struct {
	client *firestore.Client
	prefix string
}

func (r *controlImplementationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.prefix, CollectionControlImplementations))
}

// implementationDocID keys the record by (risk, control) so Put replaces an earlier record
func implementationDocID(riskID model.RiskID, controlID model.ControlID) string {
	return riskID.String() + "_" + string(controlID)
}

func (r *controlImplementationRepository) Put(ctx context.Context, impl *model.ControlImplementation) error {
	doc := &controlImplementationDocument{
		RiskID:                impl.RiskID.String(),
		ControlID:             string(impl.ControlID),
		Status:                string(impl.Status),
		EffectivenessEstimate: impl.EffectivenessEstimate,
		Notes:                 impl.Notes,
		UpdatedAt:             time.Now().UTC(),
	}

	if _, err := r.collection().Doc(implementationDocID(impl.RiskID, impl.ControlID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put control implementation",
			goerr.V(model.RiskIDKey, impl.RiskID), goerr.V(model.ControlIDKey, impl.ControlID))
	}
	return nil
}

func (r *controlImplementationRepository) ListByRisk(ctx context.Context, riskID model.RiskID) ([]*model.ControlImplementation, error) {
	iter := r.collection().
		Where("risk_id", "==", riskID.String()).
		OrderBy("control_id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var impls []*model.ControlImplementation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate control implementations", goerr.V(model.RiskIDKey, riskID))
		}

		var implDoc controlImplementationDocument
		if err := doc.DataTo(&implDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal control implementation", goerr.V("docID", doc.Ref.ID))
		}
		impls = append(impls, implDoc.toModel())
	}

	return impls, nil
}

func (r *controlImplementationRepository) Delete(ctx context.Context, riskID model.RiskID, controlID model.ControlID) error {
	docRef := r.collection().Doc(implementationDocID(riskID, controlID))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "control implementation not found",
				goerr.V(model.RiskIDKey, riskID), goerr.V(model.ControlIDKey, controlID))
		}
		return goerr.Wrap(err, "failed to get control implementation",
			goerr.V(model.RiskIDKey, riskID), goerr.V(model.ControlIDKey, controlID))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete control implementation",
			goerr.V(model.RiskIDKey, riskID), goerr.V(model.ControlIDKey, controlID))
	}
	return nil
}

// maxInValues is the largest value list Firestore accepts for an "in" filter
const maxInValues = 30

func (r *controlImplementationRepository) DeleteByControls(ctx context.Context, controlIDs []model.ControlID) (int, error) {
	var refs []*firestore.DocumentRef
	for start := 0; start < len(controlIDs); start += maxInValues {
		end := min(start+maxInValues, len(controlIDs))
		values := make([]string, 0, end-start)
		for _, id := range controlIDs[start:end] {
			values = append(values, string(id))
		}

		iter := r.collection().Where("control_id", "in", values).Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return 0, goerr.Wrap(err, "failed to iterate control implementations for deletion")
			}
			refs = append(refs, doc.Ref)
		}
		iter.Stop()
	}

	deleted, err := bulkDelete(ctx, r.client, refs)
	if err != nil {
		return deleted, goerr.Wrap(err, "failed to delete control implementations", goerr.V("controls", len(controlIDs)))
	}
	return deleted, nil
}
