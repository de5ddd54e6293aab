package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
)

// QdrantStore keeps every chunk as one Qdrant point. Document metadata is
// denormalized into each point's payload, so document-level reads scroll
// and dedupe.
type QdrantStore struct {
	conn       *grpc.ClientConn
	points     qdrant.PointsClient
	collection string
	dimension  uint64
}

func NewQdrantStore(ctx context.Context, addr, collection string, dimension int) (*QdrantStore, error) {
	if addr == "" {
		addr = "localhost:6334"
	}
	if collection == "" {
		collection = "vaultvec_chunks"
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	s := &QdrantStore{
		conn:       conn,
		points:     qdrant.NewPointsClient(conn),
		collection: collection,
		dimension:  uint64(dimension),
	}
	if err := s.ensureCollection(ctx, qdrant.NewCollectionsClient(conn)); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, collections qdrant.CollectionsClient) error {
	_, err := collections.Get(ctx, &qdrant.GetCollectionInfoRequest{
		CollectionName: s.collection,
	})
	if err == nil {
		return nil
	}

	_, err = collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	return nil
}

func (s *QdrantStore) UpsertDocument(ctx context.Context, doc DocumentInfo, chunks []ChunkRecord) error {
	// Clear old points first so a shrinking chunk count leaves no strays.
	if err := s.deleteByDocument(ctx, doc.ID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		payload := map[string]*qdrant.Value{
			"document_id":       stringValue(doc.ID),
			"document_title":    stringValue(doc.Title),
			"file_name":         stringValue(doc.FileName),
			"folder_path":       stringValue(doc.FolderPath),
			"content_hash":      stringValue(doc.ContentHash),
			"chunk_count":       intValue(int64(doc.ChunkCount)),
			"ingested_at":       stringValue(doc.IngestedAt.UTC().Format(time.RFC3339Nano)),
			"chunk_index":       intValue(int64(c.Index)),
			"text":              stringValue(c.Text),
			"enriched_text":     stringValue(c.EnrichedText),
			"token_count":       intValue(int64(c.TokenCount)),
			"relative_position": doubleValue(c.RelativePosition),
		}
		points = append(points, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: c.ID}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: c.Vector}}},
			Payload: payload,
		})
	}

	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           proto.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		return []SearchHit{}, nil
	}

	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	hits := make([]SearchHit, 0, len(resp.GetResult()))
	for _, scored := range resp.GetResult() {
		payload := scored.GetPayload()
		if payload == nil {
			continue
		}
		hits = append(hits, SearchHit{
			ChunkID:       pointUUID(scored.GetId()),
			DocumentID:    payload["document_id"].GetStringValue(),
			DocumentTitle: payload["document_title"].GetStringValue(),
			Index:         int(payload["chunk_index"].GetIntegerValue()),
			Text:          payload["text"].GetStringValue(),
			Score:         float64(scored.GetScore()),
		})
	}
	return hits, nil
}

func (s *QdrantStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	seen := make(map[string]DocumentInfo)
	err := s.scroll(ctx, nil, func(point *qdrant.RetrievedPoint) {
		payload := point.GetPayload()
		id := payload["document_id"].GetStringValue()
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		ingestedAt, _ := time.Parse(time.RFC3339Nano, payload["ingested_at"].GetStringValue())
		seen[id] = DocumentInfo{
			ID:          id,
			Title:       payload["document_title"].GetStringValue(),
			FileName:    payload["file_name"].GetStringValue(),
			FolderPath:  payload["folder_path"].GetStringValue(),
			ContentHash: payload["content_hash"].GetStringValue(),
			ChunkCount:  int(payload["chunk_count"].GetIntegerValue()),
			IngestedAt:  ingestedAt,
		}
	})
	if err != nil {
		return nil, err
	}

	docs := make([]DocumentInfo, 0, len(seen))
	for _, doc := range seen {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].IngestedAt.After(docs[j].IngestedAt) })
	return docs, nil
}

func (s *QdrantStore) ListChunks(ctx context.Context, documentID string) ([]StoredChunk, error) {
	var chunks []StoredChunk
	err := s.scroll(ctx, documentFilter(documentID), func(point *qdrant.RetrievedPoint) {
		chunks = append(chunks, chunkFromPayload(pointUUID(point.GetId()), point.GetPayload()))
	})
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

func (s *QdrantStore) GetChunk(ctx context.Context, chunkID string) (StoredChunk, error) {
	resp, err := s.points.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{{PointIdOptions: &qdrant.PointId_Uuid{Uuid: chunkID}}},
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return StoredChunk{}, fmt.Errorf("get point: %w", err)
	}
	result := resp.GetResult()
	if len(result) == 0 {
		return StoredChunk{}, ErrNotFound
	}
	return chunkFromPayload(chunkID, result[0].GetPayload()), nil
}

func (s *QdrantStore) DeleteDocument(ctx context.Context, documentID string) error {
	// Qdrant's delete-by-filter doesn't report how many points matched,
	// so probe first to keep ErrNotFound semantics.
	if _, err := s.ListChunks(ctx, documentID); err != nil {
		return err
	}
	return s.deleteByDocument(ctx, documentID)
}

func (s *QdrantStore) FindByContentHash(ctx context.Context, hash string) (string, error) {
	limit := uint32(1)
	resp, err := s.points.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter:         keywordFilter("content_hash", hash),
		Limit:          &limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return "", fmt.Errorf("scroll points: %w", err)
	}
	result := resp.GetResult()
	if len(result) == 0 {
		return "", ErrNotFound
	}
	return result[0].GetPayload()["document_id"].GetStringValue(), nil
}

func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

func (s *QdrantStore) deleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: documentFilter(documentID)},
		},
		Wait: proto.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("delete points: %w", err)
	}
	return nil
}

func (s *QdrantStore) scroll(ctx context.Context, filter *qdrant.Filter, visit func(*qdrant.RetrievedPoint)) error {
	limit := uint32(256)
	var offset *qdrant.PointId
	for {
		resp, err := s.points.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Filter:         filter,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
		})
		if err != nil {
			return fmt.Errorf("scroll points: %w", err)
		}
		for _, point := range resp.GetResult() {
			visit(point)
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			return nil
		}
	}
}

func chunkFromPayload(id string, payload map[string]*qdrant.Value) StoredChunk {
	return StoredChunk{
		ID:               id,
		DocumentID:       payload["document_id"].GetStringValue(),
		Index:            int(payload["chunk_index"].GetIntegerValue()),
		Text:             payload["text"].GetStringValue(),
		EnrichedText:     payload["enriched_text"].GetStringValue(),
		TokenCount:       int(payload["token_count"].GetIntegerValue()),
		RelativePosition: payload["relative_position"].GetDoubleValue(),
	}
}

func documentFilter(documentID string) *qdrant.Filter {
	return keywordFilter("document_id", documentID)
}

func keywordFilter(key, value string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   key,
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: value}},
				},
			},
		}},
	}
}

func pointUUID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u, ok := id.GetPointIdOptions().(*qdrant.PointId_Uuid); ok {
		return u.Uuid
	}
	return ""
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func intValue(n int64) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: n}}
}

func doubleValue(f float64) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: f}}
}
