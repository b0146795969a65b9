package training

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/lyceum/internal/classifiers"
	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/faults"
	"github.com/JaimeStill/lyceum/internal/projects"
)

// Payload is a validated test input. Which fields are set depends on the
// project type.
type Payload struct {
	Text      string
	ImageURL  string
	ImageData []byte
	Numbers   []float64
	// ClassifierTimestamp is when the tested model was created.
	ClassifierTimestamp time.Time
}

// Keyring holds the accounts referenced by a batch of records.
type Keyring map[uuid.UUID]*credentials.Credentials

// Strategy talks to one training provider. Errors are returned raw; the
// orchestrator classifies them.
type Strategy interface {
	// QueryStatuses refreshes each record's status from the provider.
	// Records the provider no longer knows become Unknown; records that
	// cannot be queried are returned unchanged. The result keeps the order
	// of recs and the batch never fails.
	QueryStatuses(ctx context.Context, classID string, recs []classifiers.Record, keys Keyring) []classifiers.Record
	Train(ctx context.Context, p *projects.Project, creds *credentials.Credentials) (*classifiers.Record, error)
	Test(ctx context.Context, p *projects.Project, creds *credentials.Credentials, classifierID string, payload Payload) ([]classifiers.Classification, error)
	// Delete succeeds when the provider no longer has the model.
	Delete(ctx context.Context, p *projects.Project, creds *credentials.Credentials, classifierID string) error
}

// StatusFetcher asks a provider for the current state of one record and
// returns the record with Status, and Updated when known, refreshed.
type StatusFetcher func(ctx context.Context, creds *credentials.Credentials, rec classifiers.Record) (classifiers.Record, error)

// Refresh runs fetch over recs with at most limit calls in flight. It is
// the shared body of QueryStatuses for providers with remote models. The
// result has the same order as recs. A status change the provider reports
// without a newer timestamp is stamped with the current time.
func Refresh(
	ctx context.Context,
	recs []classifiers.Record,
	keys Keyring,
	limit int,
	logger *slog.Logger,
	fetch StatusFetcher,
) []classifiers.Record {
	out := make([]classifiers.Record, len(recs))
	copy(out, recs)

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, rec := range recs {
		creds, ok := keys[rec.CredentialsID]
		if !ok {
			logger.Warn("no credentials for classifier status", "classifier", rec.ClassifierID, "credentials", rec.CredentialsID)
			continue
		}

		g.Go(func() error {
			updated, err := fetch(ctx, creds, rec)
			if err == nil {
				if updated.Status != rec.Status && !updated.Updated.After(rec.Updated) {
					updated.Updated = time.Now().UTC()
				}
				out[i] = updated
				return nil
			}

			if faults.KindOf(faults.Translate(err, string(rec.ProjectType))) == faults.KindRemoteModelMissing {
				out[i].Status = classifiers.Unknown
				return nil
			}

			logger.Warn("classifier status unavailable", "classifier", rec.ClassifierID, "error", err)
			return nil
		})
	}

	g.Wait()
	return out
}
