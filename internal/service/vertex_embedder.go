package service

import (
	"context"
	"fmt"
	"os"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexEmbedder embeds query text with text-multilingual-embedding-002,
// the same model the knowledge-base documents were indexed with. Queries use
// task_type RETRIEVAL_QUERY so they align with the document vectors.
type VertexEmbedder struct {
	client    *aiplatform.PredictionClient
	modelName string
}

// NewVertexEmbedder dials the regional Vertex AI prediction endpoint.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS or the ambient
// service account.
func NewVertexEmbedder(ctx context.Context, projectID, location string) (*VertexEmbedder, error) {
	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)),
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := aiplatform.NewPredictionClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create prediction client: %w", err)
	}

	return &VertexEmbedder{
		client: client,
		modelName: fmt.Sprintf(
			"projects/%s/locations/%s/publishers/google/models/text-multilingual-embedding-002",
			projectID, location,
		),
	}, nil
}

// Embed returns the 768-dimensional query embedding for text.
func (v *VertexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	instance, err := structpb.NewStruct(map[string]interface{}{
		"content":   text,
		"task_type": "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("build instance: %w", err)
	}

	resp, err := v.client.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:  v.modelName,
		Instances: []*structpb.Value{structpb.NewStructValue(instance)},
	})
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("no predictions returned")
	}

	prediction := resp.Predictions[0].GetStructValue()
	embeddings := prediction.GetFields()["embeddings"].GetStructValue()
	values := embeddings.GetFields()["values"].GetListValue().GetValues()
	if len(values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	out := make([]float32, len(values))
	for i, val := range values {
		out[i] = float32(val.GetNumberValue())
	}
	return out, nil
}

// Close releases the underlying gRPC connection.
func (v *VertexEmbedder) Close() error {
	return v.client.Close()
}
