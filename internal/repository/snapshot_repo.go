package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gestaogado/internal/dto"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SnapshotDiario is the document archived once a day with the dashboard figures.
type SnapshotDiario struct {
	Dia       string
	Dashboard dto.DashboardResponse
	CriadoEm  time.Time
}

// snapshotDoc is the stored shape. bson cannot encode decimal.Decimal, so the
// dashboard goes through its JSON form where decimals are strings.
type snapshotDoc struct {
	Dia       string                 `bson:"dia"`
	Dashboard map[string]interface{} `bson:"dashboard"`
	CriadoEm  time.Time              `bson:"criado_em"`
}

// SnapshotRepository archives dashboard snapshots outside the relational store.
type SnapshotRepository interface {
	Save(ctx context.Context, s SnapshotDiario) error
	Close(ctx context.Context) error
}

type mongoSnapshotRepo struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoSnapshotRepository connects and pings MongoDB before returning.
func NewMongoSnapshotRepository(ctx context.Context, uri, dbName string) (SnapshotRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &mongoSnapshotRepo{client: client, dbName: dbName, collName: "snapshots_diarios"}, nil
}

// Save replaces the snapshot of the same day so a re-run of the job never duplicates it.
func (r *mongoSnapshotRepo) Save(ctx context.Context, s SnapshotDiario) error {
	raw, err := json.Marshal(s.Dashboard)
	if err != nil {
		return err
	}
	doc := snapshotDoc{Dia: s.Dia, CriadoEm: s.CriadoEm}
	if err := json.Unmarshal(raw, &doc.Dashboard); err != nil {
		return err
	}
	coll := r.client.Database(r.dbName).Collection(r.collName)
	_, err = coll.ReplaceOne(ctx, bson.M{"dia": s.Dia}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.Dia, err)
	}
	return nil
}

func (r *mongoSnapshotRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
