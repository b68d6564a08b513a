package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"nauassist/internal/models"
)

// NewsMongo runs filtered K-NN searches over the news knowledge base.
//
// Expected schema:
//
//	news
//	  { _id, title, text, category, faculty, department, url, embedding: []float32 }
type NewsMongo struct {
	col       *mongo.Collection
	vectorIdx string
}

// NewNewsRepository wires the collection.
func NewNewsRepository(db *mongo.Database) *NewsMongo {
	return &NewsMongo{
		col:       db.Collection("news"),
		vectorIdx: "news_embedding_index",
	}
}

// VectorSearch performs a K-NN search over news embeddings with metadata
// filters derived from the routing decision. Hits below minScore are
// dropped; the result is ordered by score descending.
func (r *NewsMongo) VectorSearch(ctx context.Context, queryVec []float32, filter models.ScopeFilter, topK int, minScore float64) ([]models.SearchHit, error) {
	search := bson.D{
		{Key: "index", Value: r.vectorIdx},
		{Key: "queryVector", Value: queryVec},
		{Key: "path", Value: "embedding"},
		{Key: "numCandidates", Value: topK * 10},
		{Key: "limit", Value: topK},
	}
	if f := scopeConditions(filter); len(f) > 0 {
		search = append(search, bson.E{Key: "filter", Value: f})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "text", Value: 1},
			{Key: "category", Value: 1},
			{Key: "faculty", Value: 1},
			{Key: "department", Value: 1},
			{Key: "url", Value: 1},
			{Key: "score", Value: bson.M{"$meta": "vectorSearchScore"}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var hits []models.SearchHit
	if err := cur.All(ctx, &hits); err != nil {
		return nil, err
	}

	filtered := hits[:0]
	for _, h := range hits {
		if h.Score >= minScore {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

// scopeConditions translates a ScopeFilter into $vectorSearch pre-filter
// conditions. An empty filter means a university-wide search.
func scopeConditions(f models.ScopeFilter) bson.M {
	conditions := bson.M{}
	if f.Faculty != "" {
		conditions["faculty"] = f.Faculty
	}
	if f.Department != "" {
		conditions["department"] = f.Department
	}
	if f.Category != "" {
		conditions["category"] = f.Category
	}
	return conditions
}
