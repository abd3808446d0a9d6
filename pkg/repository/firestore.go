package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	recordCollection = "veracity_records"
	metaCollection   = "veracity_meta"
	statsDocID       = "stats"
)

// firestoreRepo implements Repository using Firestore. Each persisted
// record is one document; PutRecords removes documents absent from the
// incoming set so the stored set always mirrors the last write.
type firestoreRepo struct {
	client *firestore.Client
}

// persistedDoc is the Firestore document shape for a persisted record
type persistedDoc struct {
	ID         string               `firestore:"id"`
	Text       string               `firestore:"text"`
	Embedding  firestore.Vector32   `firestore:"embedding"`
	Kind       string               `firestore:"kind"`
	Knowledge  *model.KnowledgeMeta `firestore:"knowledge,omitempty"`
	Turn       *turnDoc             `firestore:"turn,omitempty"`
	Evaluation *evalDoc             `firestore:"evaluation,omitempty"`

	Collection  string    `firestore:"collection"`
	CreatedAt   time.Time `firestore:"created_at"`
	PersistedAt time.Time `firestore:"persisted_at"`
}

type turnDoc struct {
	Role     string `firestore:"role"`
	Session  string `firestore:"session"`
	Sequence int    `firestore:"sequence"`
}

type evalDoc struct {
	Confidence float64 `firestore:"confidence"`
	FlagCount  int     `firestore:"flag_count"`
}

// NewFirestore creates a Firestore-backed repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &firestoreRepo{client: client}, nil
}

func (r *firestoreRepo) PutRecords(ctx context.Context, records []*model.PersistedVectorRecord) error {
	keep := make(map[string]bool, len(records))
	bw := r.client.BulkWriter(ctx)

	for _, rec := range records {
		keep[string(rec.ID)] = true
		ref := r.client.Collection(recordCollection).Doc(string(rec.ID))
		if _, err := bw.Set(ref, toDoc(rec)); err != nil {
			return goerr.Wrap(err, "failed to queue record write", goerr.V("id", rec.ID))
		}
	}

	// Drop documents that did not survive this merge.
	existing, err := r.client.Collection(recordCollection).Select().Documents(ctx).GetAll()
	if err != nil {
		return goerr.Wrap(err, "failed to list persisted records")
	}
	for _, doc := range existing {
		if !keep[doc.Ref.ID] {
			if _, err := bw.Delete(doc.Ref); err != nil {
				return goerr.Wrap(err, "failed to queue record delete", goerr.V("id", doc.Ref.ID))
			}
		}
	}

	bw.End()
	return nil
}

func (r *firestoreRepo) GetRecords(ctx context.Context) ([]*model.PersistedVectorRecord, error) {
	docs, err := r.client.Collection(recordCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read persisted records")
	}

	records := make([]*model.PersistedVectorRecord, 0, len(docs))
	for _, doc := range docs {
		var d persistedDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode persisted record", goerr.V("id", doc.Ref.ID))
		}
		records = append(records, fromDoc(&d))
	}

	return records, nil
}

func (r *firestoreRepo) PutStats(ctx context.Context, stats *model.StoreStats) error {
	ref := r.client.Collection(metaCollection).Doc(statsDocID)
	if _, err := ref.Set(ctx, stats); err != nil {
		return goerr.Wrap(err, "failed to write store stats")
	}
	return nil
}

func (r *firestoreRepo) GetStats(ctx context.Context) (*model.StoreStats, error) {
	doc, err := r.client.Collection(metaCollection).Doc(statsDocID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrStatsNotFound
		}
		return nil, goerr.Wrap(err, "failed to read store stats")
	}

	var stats model.StoreStats
	if err := doc.DataTo(&stats); err != nil {
		return nil, goerr.Wrap(err, "failed to decode store stats")
	}
	return &stats, nil
}

func (r *firestoreRepo) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}

func toDoc(rec *model.PersistedVectorRecord) *persistedDoc {
	d := &persistedDoc{
		ID:          string(rec.ID),
		Text:        rec.Text,
		Embedding:   firestore.Vector32(rec.Embedding),
		Kind:        string(rec.Kind),
		Knowledge:   rec.Knowledge,
		Collection:  rec.Collection,
		CreatedAt:   rec.CreatedAt,
		PersistedAt: rec.PersistedAt,
	}
	if rec.Turn != nil {
		d.Turn = &turnDoc{
			Role:     string(rec.Turn.Role),
			Session:  rec.Turn.Session,
			Sequence: rec.Turn.Sequence,
		}
	}
	if rec.Evaluation != nil {
		d.Evaluation = &evalDoc{
			Confidence: rec.Evaluation.Confidence,
			FlagCount:  rec.Evaluation.FlagCount,
		}
	}
	return d
}

func fromDoc(d *persistedDoc) *model.PersistedVectorRecord {
	rec := &model.PersistedVectorRecord{
		VectorRecord: model.VectorRecord{
			ID:        model.RecordID(d.ID),
			Text:      d.Text,
			Embedding: []float32(d.Embedding),
			Kind:      model.RecordKind(d.Kind),
			Knowledge: d.Knowledge,
			CreatedAt: d.CreatedAt,
		},
		Collection:  d.Collection,
		PersistedAt: d.PersistedAt,
	}
	if d.Turn != nil {
		rec.Turn = &model.TurnMeta{
			Role:     model.Role(d.Turn.Role),
			Session:  d.Turn.Session,
			Sequence: d.Turn.Sequence,
		}
	}
	if d.Evaluation != nil {
		rec.Evaluation = &model.EvaluationMeta{
			Confidence: d.Evaluation.Confidence,
			FlagCount:  d.Evaluation.FlagCount,
		}
	}
	return rec
}
