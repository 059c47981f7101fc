package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names. Index definitions in the migrate command refer to these.
const (
	CollectionRisks                  = "risks"
	CollectionControls               = "controls"
	CollectionControlImplementations = "control_implementations"
	CollectionFrameworks             = "frameworks"
	CollectionAppetites              = "appetites"
)

type Firestore struct {
	client                *firestore.Client
	risk                  *riskRepository
	control               *controlRepository
	controlImplementation *controlImplementationRepository
	framework             *frameworkRepository
	appetite              *appetiteRepository
}

var _ interfaces.Repository = &Firestore{}

// CollectionName returns the name of base under prefix
func CollectionName(prefix, base string) string {
	if prefix != "" {
		return prefix + "_" + base
	}
	return base
}

type Option func(*Firestore)

// WithCollectionPrefix isolates collections, e.g. for tests sharing a database
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.risk.prefix = prefix
		f.control.prefix = prefix
		f.controlImplementation.prefix = prefix
		f.framework.prefix = prefix
		f.appetite.prefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:                client,
		risk:                  &riskRepository{client: client},
		control:               &controlRepository{client: client},
		controlImplementation: &controlImplementationRepository{client: client},
		framework:             &frameworkRepository{client: client},
		appetite:              &appetiteRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Control() interfaces.ControlRepository {
	return f.control
}

func (f *Firestore) ControlImplementation() interfaces.ControlImplementationRepository {
	return f.controlImplementation
}

func (f *Firestore) Framework() interfaces.FrameworkRepository {
	return f.framework
}

func (f *Firestore) Appetite() interfaces.AppetiteRepository {
	return f.appetite
}

func (f *Firestore) Close(ctx context.Context) error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// bulkDelete deletes refs in one BulkWriter pass and checks every job. Documents that
// no longer exist are not counted. When some deletes fail, the first failure is
// returned together with the number of documents that were removed.
func bulkDelete(ctx context.Context, client *firestore.Client, refs []*firestore.DocumentRef) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	bulkWriter := client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bulkWriter.Delete(ref, firestore.Exists)
		if err != nil {
			bulkWriter.End()
			return 0, goerr.Wrap(err, "failed to enqueue delete", goerr.V("docID", ref.ID))
		}
		jobs = append(jobs, job)
	}
	bulkWriter.End()

	deleted := 0
	var firstErr error
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			if firstErr == nil {
				firstErr = goerr.Wrap(err, "failed to delete document", goerr.V("docID", refs[i].ID))
			}
			continue
		}
		deleted++
	}
	return deleted, firstErr
}
